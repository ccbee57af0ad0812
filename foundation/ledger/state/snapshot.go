package state

import (
	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/database"
)

// Snapshot is the full serializable state of the engine: the ledger
// registries and chain, plus the engine's own pending set and audit chain
// cursor.
type Snapshot struct {
	Ledger            database.Snapshot `json:"ledger"`
	Pending           []database.Tx     `json:"pending_transactions"`
	LastTxHash        string            `json:"last_tx_hash"`
	LastGoldPriceUSD  decimal.Decimal   `json:"last_gold_price_usd"`
	LastFXRateUSDGHS  decimal.Decimal   `json:"last_fx_rate_usd_ghs"`
	LastCocoaPriceGHS decimal.Decimal   `json:"last_cocoa_price_ghs"`
}

// Snapshot captures the complete engine state for external persistence.
func (s *State) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.db.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}

	pending := make([]database.Tx, len(s.pending))
	copy(pending, s.pending)

	return Snapshot{
		Ledger:            ledger,
		Pending:           pending,
		LastTxHash:        s.lastTxHash,
		LastGoldPriceUSD:  s.lastGoldPriceUSD,
		LastFXRateUSDGHS:  s.lastFXRateUSDGHS,
		LastCocoaPriceGHS: s.lastCocoaPriceGHS,
	}, nil
}

// Restore replaces the engine state with a previously captured snapshot.
func (s *State) Restore(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Restore(snap.Ledger); err != nil {
		return err
	}

	s.pending = make([]database.Tx, len(snap.Pending))
	copy(s.pending, snap.Pending)
	s.lastTxHash = snap.LastTxHash
	s.lastGoldPriceUSD = snap.LastGoldPriceUSD
	s.lastFXRateUSDGHS = snap.LastFXRateUSDGHS
	s.lastCocoaPriceGHS = snap.LastCocoaPriceGHS

	s.evHandler("state: Restore: accounts[%d] blocks[%d] pending[%d]",
		len(snap.Ledger.Accounts), len(snap.Ledger.Blocks), len(snap.Pending))

	return nil
}
