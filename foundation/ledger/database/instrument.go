package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// GBDCStatus captures where a GBDC instrument is in its lifecycle.
type GBDCStatus string

// State machine for GBDC instruments. REDEEMED, LOCKED and BURNED are
// terminal and excluded from outstanding totals and backing sums.
const (
	GBDCMinted      GBDCStatus = "MINTED"
	GBDCCirculating GBDCStatus = "CIRCULATING"
	GBDCRedeemed    GBDCStatus = "REDEEMED"
	GBDCLocked      GBDCStatus = "LOCKED"
	GBDCBurned      GBDCStatus = "BURNED"
)

var gbdcTransitions = map[GBDCStatus][]GBDCStatus{
	GBDCMinted:      {GBDCCirculating, GBDCRedeemed, GBDCLocked, GBDCBurned},
	GBDCCirculating: {GBDCCirculating, GBDCRedeemed, GBDCLocked, GBDCBurned},
}

// CanTransition reports whether the status machine permits moving to the
// specified status.
func (s GBDCStatus) CanTransition(to GBDCStatus) bool {
	for _, next := range gbdcTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the instrument has left circulation for good.
func (s GBDCStatus) IsTerminal() bool {
	switch s {
	case GBDCRedeemed, GBDCLocked, GBDCBurned:
		return true
	}
	return false
}

// GBDC represents a Gold-Backed Digital Cedi instrument. The gold price and
// exchange rate are captured at issuance so the backing calculation can be
// audited later.
type GBDC struct {
	ID                  string          `json:"id"`
	AmountCedi          decimal.Decimal `json:"amount_cedi"`
	GoldBackingGrams    decimal.Decimal `json:"gold_backing_grams"`
	GoldPricePerGramUSD decimal.Decimal `json:"gold_price_per_gram_usd"`
	ExchangeRateUSDGHS  decimal.Decimal `json:"exchange_rate_usd_ghs"`
	IssuanceID          string          `json:"issuance_id"`
	IssuedBy            AccountID       `json:"issued_by"`
	Holder              AccountID       `json:"holder"`
	Status              GBDCStatus      `json:"status"`
	IssuedAt            time.Time       `json:"issued_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// =============================================================================

// CRDNStatus captures where a CRDN instrument is in its lifecycle.
type CRDNStatus string

// State machine for CRDN instruments. CONVERTED, EXPIRED and CANCELLED are
// terminal; HELD and CONVERTING are transient.
const (
	CRDNIssued     CRDNStatus = "ISSUED"
	CRDNHeld       CRDNStatus = "HELD"
	CRDNConverting CRDNStatus = "CONVERTING"
	CRDNConverted  CRDNStatus = "CONVERTED"
	CRDNExpired    CRDNStatus = "EXPIRED"
	CRDNCancelled  CRDNStatus = "CANCELLED"
)

var crdnTransitions = map[CRDNStatus][]CRDNStatus{
	CRDNIssued:     {CRDNHeld, CRDNConverting, CRDNConverted, CRDNExpired, CRDNCancelled},
	CRDNHeld:       {CRDNConverting, CRDNConverted, CRDNExpired, CRDNCancelled},
	CRDNConverting: {CRDNConverted, CRDNCancelled},
}

// CanTransition reports whether the status machine permits moving to the
// specified status.
func (s CRDNStatus) CanTransition(to CRDNStatus) bool {
	for _, next := range crdnTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the instrument has reached a final status.
func (s CRDNStatus) IsTerminal() bool {
	switch s {
	case CRDNConverted, CRDNExpired, CRDNCancelled:
		return true
	}
	return false
}

// CRDN represents a Cocoa Receipt Digital Note issued to a farmer against a
// warehouse receipt. Its cedi amount is fixed at issuance as weight times
// the producer price.
type CRDN struct {
	ID                 string          `json:"id"`
	AmountCedi         decimal.Decimal `json:"amount_cedi"`
	CocoaWeightKg      decimal.Decimal `json:"cocoa_weight_kg"`
	PricePerKgGHS      decimal.Decimal `json:"price_per_kg_ghs"`
	FarmerID           AccountID       `json:"farmer_id"`
	LBCID              AccountID       `json:"lbc_id"`
	WarehouseReceiptID string          `json:"warehouse_receipt_id"`
	SeasonYear         int             `json:"season_year"`
	AttestationHash    string          `json:"attestation_hash"`
	Status             CRDNStatus      `json:"status"`
	IssuedAt           time.Time       `json:"issued_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
