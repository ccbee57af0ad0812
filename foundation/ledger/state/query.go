package state

import (
	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/database"
)

// QueryLatest represents a query against the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// ReserveSummary is the read-only aggregate view of the engine.
type ReserveSummary struct {
	GoldReserveGrams    decimal.Decimal `json:"gold_reserve_grams"`
	CocoaReserveKg      decimal.Decimal `json:"cocoa_reserve_kg"`
	GBDCOutstanding     decimal.Decimal `json:"gbdc_outstanding"`
	CRDNOutstanding     decimal.Decimal `json:"crdn_outstanding"`
	AccountCount        int             `json:"account_count"`
	BackingRatio        decimal.Decimal `json:"backing_ratio"`
	ChainHeight         uint64          `json:"chain_height"`
	PendingTransactions int             `json:"pending_transactions"`
}

// AccountBalance returns a copy of the specified account with its two
// running balances.
func (s *State) AccountBalance(accountID string) (database.Account, error) {
	id, err := database.ToAccountID(accountID)
	if err != nil {
		return database.Account{}, err
	}

	return s.db.Account(id)
}

// Accounts returns a copy of the account registry.
func (s *State) Accounts() []database.Account {
	return s.db.CopyAccounts()
}

// GBDCRecord returns a copy of the specified GBDC instrument.
func (s *State) GBDCRecord(instrumentID string) (database.GBDC, error) {
	return s.db.GBDCRecord(instrumentID)
}

// CRDNRecord returns a copy of the specified CRDN instrument.
func (s *State) CRDNRecord(instrumentID string) (database.CRDN, error) {
	return s.db.CRDNRecord(instrumentID)
}

// TotalGBDCOutstanding sums the cedi value of all non-terminal GBDC
// instruments.
func (s *State) TotalGBDCOutstanding() decimal.Decimal {
	return s.db.TotalGBDCOutstanding()
}

// TotalCRDNOutstanding sums the cedi value of all non-terminal CRDN
// instruments.
func (s *State) TotalCRDNOutstanding() decimal.Decimal {
	return s.db.TotalCRDNOutstanding()
}

// ReserveSummary aggregates reserves, outstanding instrument value, the
// reserve backing ratio, and the chain height. The asset side of the ratio
// is valued at the prices captured at the latest issuances; with nothing
// outstanding the ratio reports zero.
func (s *State) ReserveSummary() ReserveSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	gold := s.db.GoldReserve()
	cocoa := s.db.CocoaReserve()
	gbdcOut := s.db.TotalGBDCOutstanding()
	crdnOut := s.db.TotalCRDNOutstanding()

	assetValue := gold.Total.Mul(s.lastGoldPriceUSD).Mul(s.lastFXRateUSDGHS).
		Add(cocoa.Total.Mul(s.lastCocoaPriceGHS))
	outstanding := gbdcOut.Add(crdnOut)

	ratio := decimal.Zero
	if outstanding.GreaterThan(decimal.Zero) {
		ratio = assetValue.DivRound(outstanding, 8)
	}

	return ReserveSummary{
		GoldReserveGrams:    gold.Total,
		CocoaReserveKg:      cocoa.Total,
		GBDCOutstanding:     gbdcOut,
		CRDNOutstanding:     crdnOut,
		AccountCount:        s.db.AccountCount(),
		BackingRatio:        ratio,
		ChainHeight:         s.db.LatestBlock().Header.Number,
		PendingTransactions: len(s.pending),
	}
}

// LatestBlock returns a copy of the latest sealed block.
func (s *State) LatestBlock() database.Block {
	return s.db.LatestBlock()
}

// QueryBlocksByNumber returns the set of blocks for the inclusive range of
// block numbers. Use QueryLatest for either bound to mean the tip.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	if from == QueryLatest {
		from = s.db.LatestBlock().Header.Number
		to = from
	}
	if to == QueryLatest {
		to = s.db.LatestBlock().Header.Number
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		block, err := s.db.GetBlock(i)
		if err != nil {
			s.evHandler("state: QueryBlocksByNumber: ERROR: %s", err)
			return nil
		}
		out = append(out, block)
	}

	return out
}

// PendingTransactions returns a copy of the uncommitted transactions.
func (s *State) PendingTransactions() []database.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]database.Tx, len(s.pending))
	copy(out, s.pending)
	return out
}
