package state

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/database"
)

// RegisterGoldReserve applies an attested increment, in grams, to the gold
// reserve. The attestation hash is retained as the justification for the
// increment. Attestation expiry is enforced at the oracle boundary before
// this call is made.
func (s *State) RegisterGoldReserve(grams decimal.Decimal, attestationHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.AddGoldReserve(grams, attestationHash, time.Now().UTC()); err != nil {
		return err
	}

	s.evHandler("state: RegisterGoldReserve: grams[%s] attestation[%s]", grams, attestationHash)

	return nil
}

// RegisterCocoaReserve applies an attested increment, in kilograms, to the
// cocoa reserve.
func (s *State) RegisterCocoaReserve(kg decimal.Decimal, attestationHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.AddCocoaReserve(kg, attestationHash, time.Now().UTC()); err != nil {
		return err
	}

	s.evHandler("state: RegisterCocoaReserve: kg[%s] attestation[%s]", kg, attestationHash)

	return nil
}

// GoldReserve returns a copy of the gold reserve.
func (s *State) GoldReserve() database.Reserve {
	return s.db.GoldReserve()
}

// CocoaReserve returns a copy of the cocoa reserve.
func (s *State) CocoaReserve() database.Reserve {
	return s.db.CocoaReserve()
}
