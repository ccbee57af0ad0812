package royalty_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/oracle/royalty"
)

func newOracle() (*royalty.Oracle, *events.Hub) {
	hub := events.NewHub()
	o := royalty.New(royalty.Config{
		OracleID: "oracle-royalty",
		Hub:      hub,
	})
	return o, hub
}

func report(revenue int64, paid int64) royalty.Report {
	return royalty.Report{
		CompanyID:       "goldfields-tarkwa",
		Region:          "Western",
		Period:          "2025-Q3",
		GrossRevenueGHS: decimal.NewFromInt(revenue),
		RoyaltyPaidGHS:  decimal.NewFromInt(paid),
	}
}

func kinds(hub *events.Hub) []events.Kind {
	var out []events.Kind
	for _, n := range hub.Recent() {
		out = append(out, n.Kind)
	}
	return out
}

func Test_RoyaltyMismatch(t *testing.T) {
	o, hub := newOracle()

	// 5% of 10,000,000 is 500,000; 400,000 is 20% short.
	rec, err := o.RecordProductionReport(report(10_000_000, 400_000))
	require.NoError(t, err, "a mismatched report is still recorded")
	require.True(t, rec.ExpectedGHS.Equal(decimal.NewFromInt(500_000)))
	require.Contains(t, kinds(hub), events.KindRoyaltyMismatch)

	require.True(t, o.TotalRoyalties().Equal(decimal.NewFromInt(400_000)))
}

func Test_RoyaltyWithinTolerance(t *testing.T) {
	o, hub := newOracle()

	_, err := o.RecordProductionReport(report(10_000_000, 500_000))
	require.NoError(t, err)
	require.NotContains(t, kinds(hub), events.KindRoyaltyMismatch)
}

func Test_ForecastConfidence(t *testing.T) {
	o, _ := newOracle()

	f := o.GenerateForecast()
	require.Equal(t, royalty.ConfidenceLow, f.Confidence)
	require.True(t, f.AmountGHS.GreaterThan(decimal.Zero), "an empty history still forecasts the default")

	_, err := o.RecordProductionReport(report(10_000_000, 500_000))
	require.NoError(t, err)
	require.Equal(t, royalty.ConfidenceLow, o.GenerateForecast().Confidence)

	_, err = o.RecordProductionReport(report(12_000_000, 600_000))
	require.NoError(t, err)
	f = o.GenerateForecast()
	require.Equal(t, royalty.ConfidenceMedium, f.Confidence)
	require.True(t, f.AmountGHS.Equal(decimal.NewFromInt(550_000)), "forecast is the historical average")

	for i := 0; i < 3; i++ {
		r := report(10_000_000, 500_000)
		r.Period = fmt.Sprintf("2025-Q%d", i)
		_, err = o.RecordProductionReport(r)
		require.NoError(t, err)
	}
	require.Equal(t, royalty.ConfidenceHigh, o.GenerateForecast().Confidence)
	require.Equal(t, 5, o.GenerateForecast().SampleCount)
}

func Test_RegionBreakdown(t *testing.T) {
	o, _ := newOracle()

	_, err := o.RecordProductionReport(report(10_000_000, 500_000))
	require.NoError(t, err)

	ashanti := report(4_000_000, 200_000)
	ashanti.CompanyID = "anglogold-obuasi"
	ashanti.Region = "Ashanti"
	_, err = o.RecordProductionReport(ashanti)
	require.NoError(t, err)

	byRegion := o.RegionBreakdown()
	require.True(t, byRegion["Western"].Equal(decimal.NewFromInt(500_000)))
	require.True(t, byRegion["Ashanti"].Equal(decimal.NewFromInt(200_000)))
}

func Test_RoyaltyAttestation(t *testing.T) {
	o, _ := newOracle()

	_, err := o.RecordProductionReport(report(10_000_000, 500_000))
	require.NoError(t, err)

	a := o.GenerateAttestation()
	require.True(t, o.VerifyAttestation(a.ID))

	state, ok := a.Payload.(royalty.RoyaltyState)
	require.True(t, ok)
	require.Equal(t, 1, state.ReportCount)
	require.True(t, state.TotalRoyaltiesGHS.Equal(decimal.NewFromInt(500_000)))
}
