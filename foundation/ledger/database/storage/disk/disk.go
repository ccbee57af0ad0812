// Package disk implements the database.Storage interface writing each
// sealed block as one JSON document per file, named by block number.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/cedichain/cedichain/foundation/ledger/database"
)

// Disk represents the storage implementation for reading and storing blocks
// in their own separate files on disk.
type Disk struct {
	dbPath string
}

// New constructs a disk storage rooted at the specified path.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to release.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified block and stores it on disk in a file labeled
// with the block number.
func (d *Disk) Write(blockData database.BlockData) error {
	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.getPath(blockData.Header.Number), os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// GetBlock searches the blockchain on disk to locate and return the
// contents of the specified block by number.
func (d *Disk) GetBlock(num uint64) (database.BlockData, error) {
	f, err := os.OpenFile(d.getPath(num), os.O_RDONLY, 0600)
	if err != nil {
		return database.BlockData{}, err
	}
	defer f.Close()

	var blockData database.BlockData
	if err := json.NewDecoder(f).Decode(&blockData); err != nil {
		return database.BlockData{}, err
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block.
func (d *Disk) ForEach() database.Iterator {
	return &iterator{storage: d}
}

// Reset removes all the blocks from disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}

	return os.MkdirAll(d.dbPath, 0755)
}

// getPath forms the path to the specified block file.
func (d *Disk) getPath(blockNum uint64) string {
	name := strconv.FormatUint(blockNum, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// iterator represents the iteration implementation for walking through the
// block files on disk.
type iterator struct {
	storage *Disk
	current uint64
	started bool
	done    bool
}

// Next retrieves the next block from disk. The walk starts at the genesis
// block, which is stored as block number zero.
func (it *iterator) Next() (database.BlockData, error) {
	if it.done {
		return database.BlockData{}, errors.New("done")
	}

	if it.started {
		it.current++
	}
	it.started = true
	blockData, err := it.storage.GetBlock(it.current)
	if errors.Is(err, fs.ErrNotExist) {
		it.done = true
		return database.BlockData{}, errors.New("done")
	}

	return blockData, err
}

// Done returns the end of chain value.
func (it *iterator) Done() bool {
	return it.done
}
