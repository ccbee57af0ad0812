package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset identifies the physical asset class a reserve tracks.
type Asset string

// Set of reserve asset classes.
const (
	AssetGold  Asset = "GOLD"  // measured in grams
	AssetCocoa Asset = "COCOA" // measured in kilograms
)

// Reserve tracks the cumulative attested weight of a physical asset class.
// The total only ever increases; there is no write-down operation.
type Reserve struct {
	Asset           Asset           `json:"asset"`
	Total           decimal.Decimal `json:"total"`
	LastAttestation string          `json:"last_attestation"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// add applies an attested increment to the reserve total. Increments must
// be strictly positive to preserve monotonicity.
func (r *Reserve) add(amount decimal.Decimal, attestationHash string, now time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "reserve amount", Reason: "must be greater than zero"}
	}
	if attestationHash == "" {
		return &ValidationError{Field: "attestation hash", Reason: "must not be empty"}
	}

	r.Total = r.Total.Add(amount)
	r.LastAttestation = attestationHash
	r.UpdatedAt = now

	return nil
}
