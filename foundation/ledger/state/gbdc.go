package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/database"
)

// MintGBDC creates a new GBDC instrument held by the treasury account,
// capturing the gold price and exchange rate at issuance. The backing
// ceiling check and the instrument insert happen as one atomic unit; a
// rejected mint performs no state mutation.
func (s *State) MintGBDC(amountCedi decimal.Decimal, goldBackingGrams decimal.Decimal, goldPricePerGramUSD decimal.Decimal, exchangeRateUSDGHS decimal.Decimal, issuanceID string, issuedBy string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case amountCedi.LessThanOrEqual(decimal.Zero):
		return "", &database.ValidationError{Field: "amount cedi", Reason: "must be greater than zero"}
	case goldBackingGrams.LessThanOrEqual(decimal.Zero):
		return "", &database.ValidationError{Field: "gold backing grams", Reason: "must be greater than zero"}
	case goldPricePerGramUSD.LessThanOrEqual(decimal.Zero):
		return "", &database.ValidationError{Field: "gold price per gram", Reason: "must be greater than zero"}
	case exchangeRateUSDGHS.LessThanOrEqual(decimal.Zero):
		return "", &database.ValidationError{Field: "exchange rate", Reason: "must be greater than zero"}
	case issuanceID == "":
		return "", &database.ValidationError{Field: "issuance id", Reason: "must not be empty"}
	case issuedBy == "":
		return "", &database.ValidationError{Field: "issued by", Reason: "must not be empty"}
	}

	now := time.Now().UTC()
	treasuryID := database.AccountID(s.genesis.TreasuryAccountID)
	reserveID := database.AccountID(s.genesis.ReserveAccountID)

	g := database.GBDC{
		ID:                  uuid.NewString(),
		AmountCedi:          amountCedi,
		GoldBackingGrams:    goldBackingGrams,
		GoldPricePerGramUSD: goldPricePerGramUSD,
		ExchangeRateUSDGHS:  exchangeRateUSDGHS,
		IssuanceID:          issuanceID,
		IssuedBy:            database.AccountID(issuedBy),
		Holder:              treasuryID,
		Status:              database.GBDCMinted,
		IssuedAt:            now,
		UpdatedAt:           now,
	}

	if err := s.db.CreateGBDC(g); err != nil {
		return "", err
	}

	s.lastGoldPriceUSD = goldPricePerGramUSD
	s.lastFXRateUSDGHS = exchangeRateUSDGHS

	s.appendTx(database.InstrumentGBDC, g.ID, reserveID, treasuryID, amountCedi, database.TxMint, "treasury", issuanceID)

	s.evHandler("state: MintGBDC: instrument[%s] amount[%s] backing[%s]g", g.ID, amountCedi, goldBackingGrams)

	return g.ID, nil
}

// TransferGBDC moves the instrument to a new holder and marks it
// circulating. The from account is trusted as given by the caller; the
// engine refuses only unknown instruments and instruments that have left
// circulation.
func (s *State) TransferGBDC(instrumentID string, fromAccount string, toAccount string, amountCedi decimal.Decimal, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := database.ToAccountID(fromAccount)
	if err != nil {
		return "", err
	}
	to, err := database.ToAccountID(toAccount)
	if err != nil {
		return "", err
	}

	if err := s.db.TransferGBDC(instrumentID, to, time.Now().UTC()); err != nil {
		return "", err
	}

	s.appendTx(database.InstrumentGBDC, instrumentID, from, to, amountCedi, database.TxTransfer, "transfer", description)

	s.evHandler("state: TransferGBDC: instrument[%s] %s -> %s", instrumentID, from, to)

	return instrumentID, nil
}

// RedeemGBDC is a terminal operation: the instrument leaves circulation and
// a REDEEM transaction is recorded from its holder to the redeeming bank.
// Restricting the call to banks is the caller's responsibility.
func (s *State) RedeemGBDC(instrumentID string, bankAccount string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := database.ToAccountID(bankAccount)
	if err != nil {
		return "", err
	}

	g, err := s.db.GBDCRecord(instrumentID)
	if err != nil {
		return "", err
	}

	if err := s.db.SetGBDCStatus(instrumentID, database.GBDCRedeemed, time.Now().UTC()); err != nil {
		return "", err
	}

	s.appendTx(database.InstrumentGBDC, instrumentID, g.Holder, bank, g.AmountCedi, database.TxRedeem, "redemption", "")

	s.evHandler("state: RedeemGBDC: instrument[%s] bank[%s]", instrumentID, bank)

	return instrumentID, nil
}

// LockGBDC takes the instrument out of circulation terminally.
func (s *State) LockGBDC(instrumentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.SetGBDCStatus(instrumentID, database.GBDCLocked, time.Now().UTC())
}

// BurnGBDC destroys the instrument terminally, freeing its gold backing
// for future mints.
func (s *State) BurnGBDC(instrumentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.SetGBDCStatus(instrumentID, database.GBDCBurned, time.Now().UTC())
}
