// Package database manages the in-memory ledger state: the account
// registry, the gold and cocoa reserves, the instrument registries, and the
// sealed chain of blocks. Every invariant-bearing mutation is applied as a
// single critical section so a reader can never observe a half-applied
// operation.
package database

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/genesis"
)

// Storage interface represents the behavior required to be implemented by
// any package providing support for storing and reading sealed blocks.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the stored blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator provides block iteration over storage.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// Database manages all state for participants transacting on the ledger.
type Database struct {
	mu sync.RWMutex

	genesis     genesis.Genesis
	accounts    map[AccountID]Account
	gold        Reserve
	cocoa       Reserve
	gbdc        map[string]GBDC
	crdn        map[string]CRDN
	latestBlock Block

	storage Storage
}

// New constructs a new database, seeds the system accounts named in genesis
// and reads any previously sealed blocks back from storage, validating the
// chain as it goes.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		genesis:  gen,
		accounts: make(map[AccountID]Account),
		gold:     Reserve{Asset: AssetGold, Total: decimal.Zero},
		cocoa:    Reserve{Asset: AssetCocoa, Total: decimal.Zero},
		gbdc:     make(map[string]GBDC),
		crdn:     make(map[string]CRDN),
		storage:  storage,
	}

	treasuryID, err := ToAccountID(gen.TreasuryAccountID)
	if err != nil {
		return nil, err
	}
	reserveID, err := ToAccountID(gen.ReserveAccountID)
	if err != nil {
		return nil, err
	}
	db.accounts[treasuryID] = newAccount(treasuryID, RoleTreasury, gen.Date)
	db.accounts[reserveID] = newAccount(reserveID, RoleAgency, gen.Date)

	// Read back any chain that exists in storage. An empty storage gets
	// the genesis block sealed by the configured validator.
	var latestBlock Block
	iter := storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		block, err := ToBlock(blockData)
		if err != nil {
			return nil, err
		}

		if block.Header.Number > 0 {
			if err := block.ValidateBlock(latestBlock, evHandler); err != nil {
				return nil, err
			}
		}

		latestBlock = block
	}

	if latestBlock.Header.ValidatorID == "" {
		latestBlock = NewGenesisBlock(gen.ValidatorID, gen.Date)
		if err := storage.Write(NewBlockData(latestBlock)); err != nil {
			return nil, err
		}
	}
	db.latestBlock = latestBlock

	return &db, nil
}

// Close closes the underlying block storage.
func (db *Database) Close() {
	db.storage.Close()
}

// =============================================================================
// Accounts

// RegisterAccount creates a zero-balance account. Duplicate registrations
// fail; registration is not idempotent.
func (db *Database) RegisterAccount(accountID AccountID, role Role, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.accounts[accountID]; exists {
		return fmt.Errorf("account %s: %w", accountID, ErrDuplicateAccount)
	}

	db.accounts[accountID] = newAccount(accountID, role, now)
	return nil
}

// ArchiveAccount soft-archives an account. Accounts are never deleted.
func (db *Database) ArchiveAccount(accountID AccountID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return fmt.Errorf("account %s: %w", accountID, ErrAccountNotFound)
	}

	account.Archived = true
	db.accounts[accountID] = account
	return nil
}

// Account returns a copy of the specified account.
func (db *Database) Account(accountID AccountID) (Account, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return Account{}, fmt.Errorf("account %s: %w", accountID, ErrAccountNotFound)
	}

	return account, nil
}

// CopyAccounts makes a copy of the current account registry in a stable
// order.
func (db *Database) CopyAccounts() []Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make([]Account, 0, len(db.accounts))
	for _, account := range db.accounts {
		accounts = append(accounts, account)
	}
	sortAccounts(accounts)

	return accounts
}

// AccountCount returns the number of registered accounts.
func (db *Database) AccountCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.accounts)
}

// =============================================================================
// Reserves

// AddGoldReserve applies an attested increment to the gold reserve.
func (db *Database) AddGoldReserve(grams decimal.Decimal, attestationHash string, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.gold.add(grams, attestationHash, now)
}

// AddCocoaReserve applies an attested increment to the cocoa reserve.
func (db *Database) AddCocoaReserve(kg decimal.Decimal, attestationHash string, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.cocoa.add(kg, attestationHash, now)
}

// GoldReserve returns a copy of the gold reserve.
func (db *Database) GoldReserve() Reserve {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.gold
}

// CocoaReserve returns a copy of the cocoa reserve.
func (db *Database) CocoaReserve() Reserve {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.cocoa
}

// =============================================================================
// GBDC instruments

// CreateGBDC inserts a new GBDC instrument after checking the backing
// ceiling: the sum of gold backing across all non-terminal instruments,
// including the new one, must not exceed the ceiling fraction of the
// registered gold reserve. Check and insert happen under one lock so
// concurrent mints cannot both pass the check.
func (db *Database) CreateGBDC(g GBDC) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	ceilingGrams := db.gold.Total.Mul(db.genesis.GoldBackingCeiling)
	backed := db.backedGramsLocked()

	if backed.Add(g.GoldBackingGrams).GreaterThan(ceilingGrams) {
		return &ReserveCeilingError{
			RequestedGrams: g.GoldBackingGrams,
			BackedGrams:    backed,
			CeilingGrams:   ceilingGrams,
		}
	}

	db.gbdc[g.ID] = g
	return nil
}

// TransferGBDC moves the instrument to a new holder and marks it
// circulating. The caller is trusted on the from account; the engine only
// refuses instruments that have left circulation.
func (db *Database) TransferGBDC(instrumentID string, to AccountID, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, exists := db.gbdc[instrumentID]
	if !exists {
		return fmt.Errorf("instrument %s: %w", instrumentID, ErrInstrumentNotFound)
	}

	if !g.Status.CanTransition(GBDCCirculating) {
		return &InvalidTransitionError{InstrumentID: instrumentID, From: string(g.Status), To: string(GBDCCirculating)}
	}

	g.Holder = to
	g.Status = GBDCCirculating
	g.UpdatedAt = now
	db.gbdc[instrumentID] = g

	return nil
}

// SetGBDCStatus applies a status transition to a GBDC instrument,
// validating the move against the status machine.
func (db *Database) SetGBDCStatus(instrumentID string, to GBDCStatus, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, exists := db.gbdc[instrumentID]
	if !exists {
		return fmt.Errorf("instrument %s: %w", instrumentID, ErrInstrumentNotFound)
	}

	if !g.Status.CanTransition(to) {
		return &InvalidTransitionError{InstrumentID: instrumentID, From: string(g.Status), To: string(to)}
	}

	g.Status = to
	g.UpdatedAt = now
	db.gbdc[instrumentID] = g

	return nil
}

// GBDCRecord returns a copy of the specified GBDC instrument.
func (db *Database) GBDCRecord(instrumentID string) (GBDC, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	g, exists := db.gbdc[instrumentID]
	if !exists {
		return GBDC{}, fmt.Errorf("instrument %s: %w", instrumentID, ErrInstrumentNotFound)
	}

	return g, nil
}

// TotalGBDCOutstanding sums the cedi value of all non-terminal GBDC
// instruments.
func (db *Database) TotalGBDCOutstanding() decimal.Decimal {
	db.mu.RLock()
	defer db.mu.RUnlock()

	total := decimal.Zero
	for _, g := range db.gbdc {
		if g.Status.IsTerminal() {
			continue
		}
		total = total.Add(g.AmountCedi)
	}

	return total
}

// GBDCBackedGrams sums the gold backing of all non-terminal GBDC
// instruments.
func (db *Database) GBDCBackedGrams() decimal.Decimal {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.backedGramsLocked()
}

func (db *Database) backedGramsLocked() decimal.Decimal {
	backed := decimal.Zero
	for _, g := range db.gbdc {
		if g.Status.IsTerminal() {
			continue
		}
		backed = backed.Add(g.GoldBackingGrams)
	}

	return backed
}

// =============================================================================
// CRDN instruments

// CreateCRDN inserts a new CRDN instrument and credits the farmer's CRDN
// balance in the same critical section.
func (db *Database) CreateCRDN(c CRDN) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	farmer, exists := db.accounts[c.FarmerID]
	if !exists {
		return fmt.Errorf("account %s: %w", c.FarmerID, ErrAccountNotFound)
	}

	db.crdn[c.ID] = c
	farmer.CRDNBalance = farmer.CRDNBalance.Add(c.AmountCedi)
	db.accounts[c.FarmerID] = farmer

	return nil
}

// ConvertCRDN marks the instrument converted and credits the farmer's GBDC
// balance by the instrument's cedi amount. Status change and balance credit
// are one atomic unit; a reader can never observe one without the other.
// The returned amount is what was credited.
func (db *Database) ConvertCRDN(instrumentID string, farmerID AccountID, now time.Time) (decimal.Decimal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, exists := db.crdn[instrumentID]
	if !exists {
		return decimal.Zero, fmt.Errorf("instrument %s: %w", instrumentID, ErrInstrumentNotFound)
	}

	if c.Status == CRDNConverted {
		return decimal.Zero, fmt.Errorf("instrument %s: %w", instrumentID, ErrAlreadyConverted)
	}

	if !c.Status.CanTransition(CRDNConverted) {
		return decimal.Zero, &InvalidTransitionError{InstrumentID: instrumentID, From: string(c.Status), To: string(CRDNConverted)}
	}

	if c.FarmerID != farmerID {
		return decimal.Zero, &ValidationError{Field: "farmer id", Reason: fmt.Sprintf("instrument is held by %s", c.FarmerID)}
	}

	farmer, exists := db.accounts[farmerID]
	if !exists {
		return decimal.Zero, fmt.Errorf("account %s: %w", farmerID, ErrAccountNotFound)
	}

	c.Status = CRDNConverted
	c.UpdatedAt = now
	db.crdn[instrumentID] = c

	farmer.CRDNBalance = farmer.CRDNBalance.Sub(c.AmountCedi)
	farmer.GBDCBalance = farmer.GBDCBalance.Add(c.AmountCedi)
	db.accounts[farmerID] = farmer

	return c.AmountCedi, nil
}

// SetCRDNStatus applies a status transition to a CRDN instrument,
// validating the move against the status machine. Expiring or cancelling a
// note releases the value credited to the farmer at issuance.
func (db *Database) SetCRDNStatus(instrumentID string, to CRDNStatus, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, exists := db.crdn[instrumentID]
	if !exists {
		return fmt.Errorf("instrument %s: %w", instrumentID, ErrInstrumentNotFound)
	}

	if !c.Status.CanTransition(to) {
		return &InvalidTransitionError{InstrumentID: instrumentID, From: string(c.Status), To: string(to)}
	}

	c.Status = to
	c.UpdatedAt = now
	db.crdn[instrumentID] = c

	if to == CRDNExpired || to == CRDNCancelled {
		if farmer, exists := db.accounts[c.FarmerID]; exists {
			farmer.CRDNBalance = farmer.CRDNBalance.Sub(c.AmountCedi)
			db.accounts[c.FarmerID] = farmer
		}
	}

	return nil
}

// CRDNRecord returns a copy of the specified CRDN instrument.
func (db *Database) CRDNRecord(instrumentID string) (CRDN, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	c, exists := db.crdn[instrumentID]
	if !exists {
		return CRDN{}, fmt.Errorf("instrument %s: %w", instrumentID, ErrInstrumentNotFound)
	}

	return c, nil
}

// TotalCRDNOutstanding sums the cedi value of all non-terminal CRDN
// instruments.
func (db *Database) TotalCRDNOutstanding() decimal.Decimal {
	db.mu.RLock()
	defer db.mu.RUnlock()

	total := decimal.Zero
	for _, c := range db.crdn {
		if c.Status.IsTerminal() {
			continue
		}
		total = total.Add(c.AmountCedi)
	}

	return total
}

// =============================================================================
// Blocks

// UpdateLatestBlock provides safe access to update the latest block.
func (db *Database) UpdateLatestBlock(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.latestBlock = block
}

// LatestBlock returns the latest sealed block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Write adds a new block to the chain in storage.
func (db *Database) Write(block Block) error {
	return db.storage.Write(NewBlockData(block))
}

// GetBlock returns the contents of the specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	blockData, err := db.storage.GetBlock(num)
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// ForEach returns an iterator to walk through all the sealed blocks
// starting with the genesis block.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.storage.ForEach()}
}
