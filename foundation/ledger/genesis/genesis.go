// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Genesis represents the genesis file. These values seed the engine with the
// identity of the trusted validator, the system accounts required before any
// operation can run, and the reserve backing ceiling enforced on minting.
type Genesis struct {
	Date               time.Time       `json:"date"`
	ChainID            uint16          `json:"chain_id"`             // Unique id for this running instance.
	ValidatorID        string          `json:"validator_id"`         // Account sealing blocks for this chain.
	TreasuryAccountID  string          `json:"treasury_account_id"`  // Account holding newly minted instruments.
	ReserveAccountID   string          `json:"reserve_account_id"`   // Account representing the physical reserve side.
	GoldBackingCeiling decimal.Decimal `json:"gold_backing_ceiling"` // Fraction of gold reserves that may back outstanding GBDC.
	TransPerBlock      int             `json:"trans_per_block"`      // Maximum number of transactions sealed into a block.
	SealIntervalSecs   int             `json:"seal_interval_secs"`   // How often the worker seals pending transactions.
}

// SealInterval returns the sealing cadence as a duration.
func (g Genesis) SealInterval() time.Duration {
	return time.Duration(g.SealIntervalSecs) * time.Second
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Default returns a genesis configured with the values used when no genesis
// file is provided. Tests rely on this configuration as well.
func Default() Genesis {
	return Genesis{
		Date:               time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:            233,
		ValidatorID:        "validator-bog-01",
		TreasuryAccountID:  "treasury-main",
		ReserveAccountID:   "reserve-vault",
		GoldBackingCeiling: decimal.NewFromFloat(0.10),
		TransPerBlock:      32,
		SealIntervalSecs:   10,
	}
}
