package warehouse_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/oracle/warehouse"
)

func newOracle() (*warehouse.Oracle, *events.Hub) {
	hub := events.NewHub()
	o := warehouse.New(warehouse.Config{
		OracleID: "oracle-warehouse",
		Hub:      hub,
	})
	return o, hub
}

func delivery(bags int, weightKg int64, moisture float64, grade warehouse.Grade) warehouse.Delivery {
	return warehouse.Delivery{
		FarmerID:           "farmer-ama",
		LBCID:              "lbc-pbcl",
		Region:             "Ashanti",
		BagsCount:          bags,
		WeightKg:           decimal.NewFromInt(weightKg),
		MoistureContentPct: decimal.NewFromFloat(moisture),
		QualityGrade:       grade,
		SeasonYear:         2025,
	}
}

func kinds(hub *events.Hub) []events.Kind {
	var out []events.Kind
	for _, n := range hub.Recent() {
		out = append(out, n.Kind)
	}
	return out
}

func Test_WeightAnomaly(t *testing.T) {
	o, hub := newOracle()

	// 10 bags expects 640kg; 500kg is 21.88% off.
	_, err := o.RecordDelivery(delivery(10, 500, 6.5, warehouse.GradeStandard))
	require.NoError(t, err, "an anomalous delivery is still recorded")
	require.Contains(t, kinds(hub), events.KindWeightAnomaly)
}

func Test_WeightWithinTolerance(t *testing.T) {
	o, hub := newOracle()

	// 10 bags expects 640kg; 650kg is 1.56% off.
	_, err := o.RecordDelivery(delivery(10, 650, 6.5, warehouse.GradeStandard))
	require.NoError(t, err)
	require.NotContains(t, kinds(hub), events.KindWeightAnomaly)
}

func Test_QualityDowngrade(t *testing.T) {
	o, hub := newOracle()

	in := delivery(10, 640, 9.2, warehouse.GradePremium)
	rec, err := o.RecordDelivery(in)
	require.NoError(t, err)

	require.Equal(t, warehouse.GradeSubStandard, rec.QualityGrade, "moisture above 8% forces a downgrade")
	require.Equal(t, warehouse.GradePremium, in.QualityGrade, "the caller's delivery must not be mutated")
	require.Contains(t, kinds(hub), events.KindQualityDowngrade)

	stored, exists := o.Delivery(rec.ReceiptID)
	require.True(t, exists)
	require.Equal(t, warehouse.GradeSubStandard, stored.QualityGrade)
	require.NotEmpty(t, stored.ContentHash)
}

func Test_SeasonSummary(t *testing.T) {
	o, _ := newOracle()

	_, err := o.RecordDelivery(delivery(10, 640, 6.0, warehouse.GradePremium))
	require.NoError(t, err)
	_, err = o.RecordDelivery(delivery(20, 1280, 6.5, warehouse.GradeStandard))
	require.NoError(t, err)

	summary := o.SeasonSummary(2025)
	require.Equal(t, 2, summary.TotalDeliveries)
	require.True(t, summary.TotalWeightKg.Equal(decimal.NewFromInt(1920)))
	require.True(t, summary.RegionWeightsKg["Ashanti"].Equal(decimal.NewFromInt(1920)))

	sum := summary.Grades.PremiumPct.Add(summary.Grades.StandardPct).Add(summary.Grades.SubStandardPct)
	require.True(t, sum.Equal(decimal.NewFromInt(100)), "grade percentages must sum to 100")
	require.True(t, summary.Grades.PremiumPct.Equal(decimal.NewFromInt(50)))
}

func Test_EmptySeason(t *testing.T) {
	o, _ := newOracle()

	summary := o.SeasonSummary(2019)
	require.Zero(t, summary.TotalDeliveries)
	require.True(t, summary.TotalWeightKg.Equal(decimal.Zero))
	require.True(t, summary.Grades.PremiumPct.Add(summary.Grades.StandardPct).Add(summary.Grades.SubStandardPct).Equal(decimal.Zero))
}

func Test_WarehouseAttestation(t *testing.T) {
	o, _ := newOracle()

	rec, err := o.RecordDelivery(delivery(10, 640, 6.0, warehouse.GradeStandard))
	require.NoError(t, err)

	require.Error(t, o.RecordWarehouseEntry(warehouse.Entry{
		WarehouseID: "wh-tema-01",
		ReceiptID:   "no-such-receipt",
		WeightKg:    decimal.NewFromInt(640),
	}), "an entry must reference a recorded receipt")

	require.NoError(t, o.RecordWarehouseEntry(warehouse.Entry{
		WarehouseID: "wh-tema-01",
		ReceiptID:   rec.ReceiptID,
		WeightKg:    rec.WeightKg,
	}))

	a := o.GenerateAttestation("wh-tema-01")
	require.True(t, o.VerifyAttestation(a.ID))

	state, ok := a.Payload.(warehouse.WarehouseState)
	require.True(t, ok)
	require.Equal(t, 1, state.EntryCount)
	require.True(t, state.TotalWeightKg.Equal(decimal.NewFromInt(640)))
}
