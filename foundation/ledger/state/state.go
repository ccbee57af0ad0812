// Package state is the core API for the asset-backed ledger and implements
// all the business rules and processing. Every operation runs to completion
// under the engine mutex, so callers observe a strictly serialized engine
// even when the HTTP layer runs requests concurrently.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/ledger/database"
	"github.com/cedichain/cedichain/foundation/ledger/genesis"
	"github.com/cedichain/cedichain/foundation/ledger/signature"
)

// ErrNoPendingTransactions is returned from SealBlock when there is nothing
// to seal. The worker treats it as a no-op.
var ErrNoPendingTransactions = errors.New("no pending transactions to seal")

// =============================================================================

// EventHandler defines a function that is called when events occur in the
// processing of ledger operations.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for background block sealing.
type Worker interface {
	Shutdown()
	SignalSealing()
}

// =============================================================================

// Config represents the configuration required to start the ledger engine.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Storage
	EvHandler EventHandler
	Hub       *events.Hub
}

// State manages the ledger. It owns the account, reserve and instrument
// registries through the database, the pending transaction set, and the
// sealed chain.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	evHandler EventHandler
	hub       *events.Hub

	db         *database.Database
	pending    []database.Tx
	lastTxHash string

	// Latest pricing observed at issuance, used for the backing ratio.
	lastGoldPriceUSD  decimal.Decimal
	lastFXRateUSDGHS  decimal.Decimal
	lastCocoaPriceGHS decimal.Decimal

	// Worker is not set here. The call to worker.Run will assign itself
	// and start the sealing loop.
	Worker Worker
}

// New constructs the ledger engine, seeding the treasury and reserve
// accounts and the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		genesis:    cfg.Genesis,
		evHandler:  ev,
		hub:        cfg.Hub,
		db:         db,
		lastTxHash: signature.ZeroHash,
	}

	return &state, nil
}

// Shutdown cleanly brings the engine down.
func (s *State) Shutdown() error {
	defer s.db.Close()

	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// Genesis returns a copy of the genesis configuration.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// =============================================================================

// RegisterAccount creates a zero-balance account with the specified role.
// Registering an id twice fails with ErrDuplicateAccount.
func (s *State) RegisterAccount(accountID string, role string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := database.ToAccountID(accountID)
	if err != nil {
		return "", err
	}

	r, err := database.ParseRole(role)
	if err != nil {
		return "", err
	}

	if err := s.db.RegisterAccount(id, r, time.Now().UTC()); err != nil {
		return "", err
	}

	s.evHandler("state: RegisterAccount: account[%s] role[%s]", id, r)

	return string(id), nil
}

// ArchiveAccount soft-archives an account; balances and history remain.
func (s *State) ArchiveAccount(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := database.ToAccountID(accountID)
	if err != nil {
		return err
	}

	return s.db.ArchiveAccount(id)
}

// =============================================================================

// appendTx links a new transaction into the audit chain and adds it to the
// pending set. The engine mutex must be held by the caller. When the
// pending set reaches a block's worth of transactions, the worker is
// signaled to seal.
func (s *State) appendTx(itype database.InstrumentType, instrumentID string, from database.AccountID, to database.AccountID, amount decimal.Decimal, kind database.TxKind, channel string, memo string) database.Tx {
	tx := database.NewTx(uuid.NewString(), itype, instrumentID, from, to, amount, kind, channel, memo, s.lastTxHash, time.Now().UTC())
	s.lastTxHash = tx.HashHex()
	s.pending = append(s.pending, tx)

	s.evHandler("state: appendTx: %s", tx)

	if len(s.pending) >= s.genesis.TransPerBlock && s.Worker != nil {
		s.Worker.SignalSealing()
	}

	return tx
}

// notify publishes a notification when a hub is configured.
func (s *State) notify(n events.Notification) {
	if s.hub != nil {
		s.hub.Send(n)
	}
}
