package database

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors returned by ledger operations. Callers are expected to
// check these with errors.Is to distinguish rejection reasons.
var (
	ErrDuplicateAccount   = errors.New("account already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrAlreadyConverted   = errors.New("instrument already converted")
	ErrAccountArchived    = errors.New("account is archived")
)

// ReserveCeilingError is returned when a mint would push the total gold
// backing of outstanding GBDC instruments past the configured fraction of
// the registered gold reserve. The operation performs no state mutation.
type ReserveCeilingError struct {
	RequestedGrams decimal.Decimal
	BackedGrams    decimal.Decimal
	CeilingGrams   decimal.Decimal
}

// Error implements the error interface.
func (e *ReserveCeilingError) Error() string {
	return fmt.Sprintf("reserve ceiling exceeded: backing %s grams outstanding, requested %s grams, ceiling %s grams",
		e.BackedGrams, e.RequestedGrams, e.CeilingGrams)
}

// IsReserveCeiling checks if an error chain contains a ReserveCeilingError.
func IsReserveCeiling(err error) bool {
	var rce *ReserveCeilingError
	return errors.As(err, &rce)
}

// InvalidTransitionError is returned when an operation is attempted against
// an instrument that is not in a status the operation requires.
type InvalidTransitionError struct {
	InstrumentID string
	From         string
	To           string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("instrument %s cannot move from %s to %s", e.InstrumentID, e.From, e.To)
}

// IsInvalidTransition checks if an error chain contains an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// ValidationError is returned when a required field is missing or malformed
// before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation checks if an error chain contains a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
