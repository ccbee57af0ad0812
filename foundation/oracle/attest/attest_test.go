package attest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cedichain/cedichain/foundation/oracle/attest"
)

func Test_RoundTrip(t *testing.T) {
	payload := map[string]any{"vault_id": "vault-obuasi-01", "total_grams": "125000"}

	a := attest.New(attest.SourceGoldVault, "vault-obuasi-01", payload, "oracle-goldvault", time.Hour)

	require.NotEmpty(t, a.ID)
	require.True(t, a.Verify(time.Now().UTC()), "fresh attestation should verify")
}

func Test_Expiry(t *testing.T) {
	a := attest.New(attest.SourceCocoaWarehouse, "wh-tema-01", "receipt-set", "oracle-warehouse", time.Hour)

	require.True(t, a.Verify(a.IssuedAt.Add(59*time.Minute)))
	require.False(t, a.Verify(a.ExpiresAt.Add(time.Second)), "expired attestation must not verify")
}

func Test_Tamper(t *testing.T) {
	a := attest.New(attest.SourceRoyalty, "goldfields-tarkwa", "q3-report", "oracle-royalty", time.Hour)
	now := time.Now().UTC()

	tampered := a
	tampered.Payload = "q3-report-altered"
	require.False(t, tampered.Verify(now), "payload change must break the content hash")

	forged := a
	forged.SignedBy = "oracle-imposter"
	require.False(t, forged.Verify(now), "signature must be bound to the signer")
}
