package database

import (
	"fmt"
	"time"

	"github.com/cedichain/cedichain/foundation/ledger/merkle"
	"github.com/cedichain/cedichain/foundation/ledger/signature"
)

// BlockHeader represents common information required for each block.
// Hashing only the header keeps the chain cryptographically checkable
// without needing the full transaction data of every block.
type BlockHeader struct {
	Number        uint64 `json:"number"`          // Block height in the chain, 0 for genesis.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was sealed.
	ValidatorID   string `json:"validator"`       // The trusted validator that sealed the block.
	TransRoot     string `json:"trans_root"`      // Merkle tree root hash for the transactions in this block.
	TxCount       int    `json:"tx_count"`        // Number of transactions sealed into this block.
}

// Block represents a group of sealed transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  *merkle.Tree[Tx]
}

// NewGenesisBlock constructs the height zero block for a new chain. It has
// no transactions, an all-zero previous hash and the fixed empty merkle
// root sentinel.
func NewGenesisBlock(validatorID string, date time.Time) Block {
	return Block{
		Header: BlockHeader{
			Number:        0,
			PrevBlockHash: signature.ZeroHash,
			TimeStamp:     uint64(date.UTC().Unix()),
			ValidatorID:   validatorID,
			TransRoot:     signature.EmptyRootHash(),
			TxCount:       0,
		},
	}
}

// NewBlock constructs the next block in the chain from the set of pending
// transactions.
func NewBlock(validatorID string, prevBlock Block, trans []Tx, now time.Time) (Block, error) {
	tree, err := merkle.NewTree(trans)
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Header: BlockHeader{
			Number:        prevBlock.Header.Number + 1,
			PrevBlockHash: prevBlock.Hash(),
			TimeStamp:     uint64(now.UTC().Unix()),
			ValidatorID:   validatorID,
			TransRoot:     tree.RootHex(),
			TxCount:       len(trans),
		},
		Trans: tree,
	}

	return nb, nil
}

// Hash returns the unique hash for the block, computed over the header only.
// Same header, same hash; any field change changes the hash.
func (b Block) Hash() string {
	return signature.Hash(b.Header)
}

// ValidateBlock takes a block and validates it to be included into the
// chain after the specified previous block. The checks are side-effect
// free and recompute the hash continuity and merkle root from the data.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	nextNumber := previousBlock.Header.Number + 1

	ev("database: ValidateBlock: blk[%d]: check: block number is the next number", b.Header.Number)

	if b.Header.Number != nextNumber {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Header.Number, nextNumber)
	}

	ev("database: ValidateBlock: blk[%d]: check: previous hash matches previous block", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash() {
		return fmt.Errorf("previous block hash doesn't match our known previous block, got %s, exp %s", b.Header.PrevBlockHash, previousBlock.Hash())
	}

	ev("database: ValidateBlock: blk[%d]: check: block timestamp is not before previous block", b.Header.Number)

	parentTime := time.Unix(int64(previousBlock.Header.TimeStamp), 0)
	blockTime := time.Unix(int64(b.Header.TimeStamp), 0)
	if blockTime.Before(parentTime) {
		return fmt.Errorf("block timestamp is before previous block, previous %s, block %s", parentTime, blockTime)
	}

	ev("database: ValidateBlock: blk[%d]: check: merkle root does match transactions", b.Header.Number)

	if b.Trans == nil {
		return fmt.Errorf("block %d carries no transactions", b.Header.Number)
	}

	if b.Header.TransRoot != b.Trans.RootHex() {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", b.Trans.RootHex(), b.Header.TransRoot)
	}

	if b.Header.TxCount != len(b.Trans.Values()) {
		return fmt.Errorf("transaction count does not match transactions, got %d, exp %d", len(b.Trans.Values()), b.Header.TxCount)
	}

	return nil
}

// =============================================================================

// BlockData represents what is serialized to storage and over the wire.
type BlockData struct {
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
	Trans  []Tx        `json:"trans"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(block Block) BlockData {
	bd := BlockData{
		Hash:   block.Hash(),
		Header: block.Header,
	}
	if block.Trans != nil {
		bd.Trans = block.Trans.Values()
	}

	return bd
}

// ToBlock converts a BlockData back into a Block. The stored hash is
// checked against the recomputed header hash so a tampered record cannot
// round-trip silently.
func ToBlock(blockData BlockData) (Block, error) {
	nb := Block{
		Header: blockData.Header,
	}

	if len(blockData.Trans) > 0 {
		tree, err := merkle.NewTree(blockData.Trans)
		if err != nil {
			return Block{}, err
		}
		nb.Trans = tree
	}

	if blockData.Hash != nb.Hash() {
		return Block{}, fmt.Errorf("stored hash does not match recomputed hash, got %s, exp %s", blockData.Hash, nb.Hash())
	}

	return nb, nil
}
