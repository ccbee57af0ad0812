package state

import (
	"fmt"
	"time"

	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/ledger/database"
)

// SealBlock assembles the pending transactions into the next block,
// hash-links it to the latest block, validates it, and writes it to
// storage. At most TransPerBlock transactions are sealed per call; the
// worker keeps sealing while transactions remain.
func (s *State) SealBlock() (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return database.Block{}, ErrNoPendingTransactions
	}

	take := len(s.pending)
	if take > s.genesis.TransPerBlock {
		take = s.genesis.TransPerBlock
	}
	trans := make([]database.Tx, take)
	copy(trans, s.pending[:take])

	latestBlock := s.db.LatestBlock()

	block, err := database.NewBlock(s.genesis.ValidatorID, latestBlock, trans, time.Now().UTC())
	if err != nil {
		return database.Block{}, err
	}

	if err := block.ValidateBlock(latestBlock, s.evHandler); err != nil {
		return database.Block{}, err
	}

	if err := s.db.Write(block); err != nil {
		return database.Block{}, err
	}
	s.db.UpdateLatestBlock(block)

	s.pending = s.pending[take:]

	s.evHandler("state: SealBlock: blk[%d] txs[%d] hash[%s]", block.Header.Number, take, block.Hash())

	s.notify(events.Notification{
		Severity: events.SeverityInfo,
		Kind:     events.KindBlockSealed,
		Source:   "ledger",
		SourceID: s.genesis.ValidatorID,
		Message:  fmt.Sprintf("sealed block %d with %d transactions", block.Header.Number, take),
		At:       time.Now().UTC(),
	})

	return block, nil
}

// PendingCount returns the current size of the pending transaction set.
func (s *State) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

// ValidateChain walks the sealed chain from genesis, validating hash
// continuity, the recomputed block hash and the merkle root of every block.
func (s *State) ValidateChain() error {
	var previous database.Block
	var started bool

	iter := s.db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return err
		}

		if started {
			if err := block.ValidateBlock(previous, s.evHandler); err != nil {
				return fmt.Errorf("block %d: %w", block.Header.Number, err)
			}
		}

		previous = block
		started = true
	}

	return nil
}
