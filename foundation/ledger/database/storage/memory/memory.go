// Package memory implements the database.Storage interface keeping all the
// sealed blocks in memory. The engine is specified as an in-memory single
// process system, so this is the default storage for both the service and
// the tests.
package memory

import (
	"errors"
	"sync"

	"github.com/cedichain/cedichain/foundation/ledger/database"
)

// Memory represents the storage implementation for reading and storing
// blocks in memory.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.BlockData
}

// New constructs an in-memory block storage.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to release.
func (m *Memory) Close() error {
	return nil
}

// Write appends a new block to the chain.
func (m *Memory) Write(blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = append(m.blocks, blockData)
	return nil
}

// GetBlock returns the specified block by number.
func (m *Memory) GetBlock(num uint64) (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, blockData := range m.blocks {
		if blockData.Header.Number == num {
			return blockData, nil
		}
	}

	return database.BlockData{}, errors.New("block not found")
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block.
func (m *Memory) ForEach() database.Iterator {
	return &iterator{storage: m}
}

// Reset clears all stored blocks.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

// iterator represents the iteration implementation for walking through the
// in-memory blocks.
type iterator struct {
	storage *Memory
	current int
	done    bool
}

// Next retrieves the next block in the chain.
func (it *iterator) Next() (database.BlockData, error) {
	it.storage.mu.RLock()
	defer it.storage.mu.RUnlock()

	if it.current >= len(it.storage.blocks) {
		it.done = true
		return database.BlockData{}, errors.New("done")
	}

	blockData := it.storage.blocks[it.current]
	it.current++

	return blockData, nil
}

// Done returns the end of chain value.
func (it *iterator) Done() bool {
	return it.done
}
