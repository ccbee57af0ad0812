package state

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/database"
)

// IssueCRDN creates a Cocoa Receipt Digital Note for a farmer against a
// warehouse receipt. The cedi amount is fixed at issuance as the delivered
// weight times the producer price. CRDN issuance is backed one-to-one by a
// physical delivery, so no ceiling applies against the cocoa reserve.
func (s *State) IssueCRDN(farmerID string, lbcID string, cocoaWeightKg decimal.Decimal, pricePerKgGHS decimal.Decimal, warehouseReceiptID string, seasonYear int, attestationHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farmer, err := database.ToAccountID(farmerID)
	if err != nil {
		return "", err
	}
	lbc, err := database.ToAccountID(lbcID)
	if err != nil {
		return "", err
	}

	switch {
	case cocoaWeightKg.LessThanOrEqual(decimal.Zero):
		return "", &database.ValidationError{Field: "cocoa weight", Reason: "must be greater than zero"}
	case pricePerKgGHS.LessThanOrEqual(decimal.Zero):
		return "", &database.ValidationError{Field: "price per kg", Reason: "must be greater than zero"}
	case warehouseReceiptID == "":
		return "", &database.ValidationError{Field: "warehouse receipt id", Reason: "must not be empty"}
	case seasonYear < 2000:
		return "", &database.ValidationError{Field: "season year", Reason: "must be a plausible season"}
	}

	now := time.Now().UTC()
	amountCedi := cocoaWeightKg.Mul(pricePerKgGHS)

	c := database.CRDN{
		ID:                 uuid.NewString(),
		AmountCedi:         amountCedi,
		CocoaWeightKg:      cocoaWeightKg,
		PricePerKgGHS:      pricePerKgGHS,
		FarmerID:           farmer,
		LBCID:              lbc,
		WarehouseReceiptID: warehouseReceiptID,
		SeasonYear:         seasonYear,
		AttestationHash:    attestationHash,
		Status:             database.CRDNIssued,
		IssuedAt:           now,
		UpdatedAt:          now,
	}

	if err := s.db.CreateCRDN(c); err != nil {
		return "", err
	}

	s.lastCocoaPriceGHS = pricePerKgGHS

	s.appendTx(database.InstrumentCRDN, c.ID, lbc, farmer, amountCedi, database.TxMint, "crdn_issue", warehouseReceiptID)

	s.evHandler("state: IssueCRDN: instrument[%s] farmer[%s] amount[%s]", c.ID, farmer, amountCedi)

	return c.ID, nil
}

// ConvertCRDN converts the note into GBDC value: the instrument is marked
// CONVERTED and the farmer's GBDC balance is credited by the instrument's
// cedi amount in one atomic unit. CONVERTED is terminal; a second call
// fails with ErrAlreadyConverted.
func (s *State) ConvertCRDN(instrumentID string, farmerID string, targetInstrument string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farmer, err := database.ToAccountID(farmerID)
	if err != nil {
		return "", err
	}

	if !strings.EqualFold(targetInstrument, string(database.InstrumentGBDC)) {
		return "", &database.ValidationError{Field: "target instrument", Reason: "only GBDC conversion is supported"}
	}

	c, err := s.db.CRDNRecord(instrumentID)
	if err != nil {
		return "", err
	}

	amount, err := s.db.ConvertCRDN(instrumentID, farmer, time.Now().UTC())
	if err != nil {
		return "", err
	}

	s.appendTx(database.InstrumentCRDN, instrumentID, c.LBCID, farmer, amount, database.TxConvert, "conversion", "")

	s.evHandler("state: ConvertCRDN: instrument[%s] farmer[%s] credited[%s]", instrumentID, farmer, amount)

	return instrumentID, nil
}

// ExpireCRDN terminally expires an unconverted note.
func (s *State) ExpireCRDN(instrumentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.SetCRDNStatus(instrumentID, database.CRDNExpired, time.Now().UTC())
}

// CancelCRDN terminally cancels an unconverted note.
func (s *State) CancelCRDN(instrumentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.SetCRDNStatus(instrumentID, database.CRDNCancelled, time.Now().UTC())
}
