package goldvault_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/oracle/goldvault"
)

func newOracle(validity time.Duration) (*goldvault.Oracle, *events.Hub) {
	hub := events.NewHub()
	o := goldvault.New(goldvault.Config{
		OracleID:            "oracle-goldvault",
		Hub:                 hub,
		AttestationValidity: validity,
	})
	return o, hub
}

func reading(sensorID string, grams int64, tampered bool) goldvault.Reading {
	r := goldvault.Reading{
		SensorID:       sensorID,
		VaultID:        "vault-obuasi-01",
		WeightGrams:    decimal.NewFromInt(grams),
		TamperDetected: tampered,
		TakenAt:        time.Now().UTC(),
	}
	r.IntegrityHash = goldvault.ReadingHash(r)
	return r
}

func kinds(hub *events.Hub) []events.Kind {
	var out []events.Kind
	for _, n := range hub.Recent() {
		out = append(out, n.Kind)
	}
	return out
}

func Test_IntegrityFailure(t *testing.T) {
	o, hub := newOracle(0)

	require.NoError(t, o.RegisterSensor(goldvault.Sensor{
		ID:           "scale-a1",
		VaultID:      "vault-obuasi-01",
		TolerancePct: decimal.NewFromInt(5),
	}))

	r := reading("scale-a1", 100_000, false)
	r.WeightGrams = decimal.NewFromInt(120_000) // altered after hashing
	o.ProcessReading(r)

	require.Contains(t, kinds(hub), events.KindIntegrityFailure)

	_, stored := o.LatestReading("scale-a1")
	require.False(t, stored, "a reading that fails integrity must be dropped")
}

func Test_TamperAlert(t *testing.T) {
	o, hub := newOracle(0)

	require.NoError(t, o.RegisterSensor(goldvault.Sensor{
		ID:           "scale-a1",
		VaultID:      "vault-obuasi-01",
		TolerancePct: decimal.NewFromInt(5),
	}))

	o.ProcessReading(reading("scale-a1", 100_000, true))

	require.Contains(t, kinds(hub), events.KindTamperAlert)

	_, stored := o.LatestReading("scale-a1")
	require.True(t, stored, "a tampered reading is still recorded for the audit trail")
}

func Test_WeightDiscrepancy(t *testing.T) {
	o, hub := newOracle(0)

	require.NoError(t, o.RegisterSensor(goldvault.Sensor{
		ID:           "scale-a1",
		VaultID:      "vault-obuasi-01",
		TolerancePct: decimal.NewFromInt(5),
	}))

	o.ProcessReading(reading("scale-a1", 100_000, false))
	o.ProcessReading(reading("scale-a1", 104_000, false))
	require.NotContains(t, kinds(hub), events.KindWeightDiscrepancy, "a 4% move is within tolerance")

	o.ProcessReading(reading("scale-a1", 90_000, false))
	require.Contains(t, kinds(hub), events.KindWeightDiscrepancy, "a 13.4% move exceeds the 5% tolerance")
}

func Test_AttestationRoundTrip(t *testing.T) {
	o, hub := newOracle(0)

	require.NoError(t, o.RegisterBar(goldvault.Bar{
		SerialNumber:  "PMMC-2025-0001",
		VaultID:       "vault-obuasi-01",
		WeightGrams:   decimal.NewFromInt(12_500),
		PurityPct:     decimal.NewFromFloat(99.5),
		AssayReportID: "assay-771",
	}))
	require.NoError(t, o.RegisterBar(goldvault.Bar{
		SerialNumber:  "PMMC-2025-0002",
		VaultID:       "vault-obuasi-01",
		WeightGrams:   decimal.NewFromInt(12_400),
		PurityPct:     decimal.NewFromFloat(99.7),
		AssayReportID: "assay-772",
	}))

	a := o.GenerateAttestation("vault-obuasi-01")

	state, ok := a.Payload.(goldvault.VaultState)
	require.True(t, ok)
	require.True(t, state.TotalGrams.Equal(decimal.NewFromInt(24_900)))

	require.True(t, o.VerifyAttestation(a.ID))
	require.False(t, o.VerifyAttestation("no-such-attestation"))
	require.Contains(t, kinds(hub), events.KindAttestation)
}

func Test_AttestationExpiry(t *testing.T) {
	o, _ := newOracle(-time.Second)

	a := o.GenerateAttestation("vault-obuasi-01")
	require.False(t, o.VerifyAttestation(a.ID), "an attestation past its window must not verify")
}
