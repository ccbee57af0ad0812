package database

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/signature"
)

// TxKind identifies what a ledger transaction records.
type TxKind string

// Set of transaction kinds.
const (
	TxMint     TxKind = "MINT"
	TxTransfer TxKind = "TRANSFER"
	TxRedeem   TxKind = "REDEEM"
	TxConvert  TxKind = "CONVERT"
)

// InstrumentType identifies which instrument registry a transaction touches.
type InstrumentType string

// Set of instrument types.
const (
	InstrumentGBDC InstrumentType = "GBDC"
	InstrumentCRDN InstrumentType = "CRDN"
)

// Tx is an immutable ledger transaction. Every transaction carries the hash
// of the one appended before it, forming an audit chain that is independent
// of the block chain.
type Tx struct {
	TxID           string          `json:"tx_id"`
	InstrumentType InstrumentType  `json:"instrument_type"`
	InstrumentID   string          `json:"instrument_id"`
	FromID         AccountID       `json:"from"`
	ToID           AccountID       `json:"to"`
	AmountCedi     decimal.Decimal `json:"amount_cedi"`
	Kind           TxKind          `json:"kind"`
	Status         string          `json:"status"`
	Channel        string          `json:"channel"`
	Memo           string          `json:"memo,omitempty"`
	TimeStamp      uint64          `json:"timestamp"`
	PrevTxHash     string          `json:"prev_tx_hash"`
}

// NewTx constructs a transaction and links it to its predecessor by hash.
func NewTx(txID string, itype InstrumentType, instrumentID string, from AccountID, to AccountID, amount decimal.Decimal, kind TxKind, channel string, memo string, prevTxHash string, now time.Time) Tx {
	return Tx{
		TxID:           txID,
		InstrumentType: itype,
		InstrumentID:   instrumentID,
		FromID:         from,
		ToID:           to,
		AmountCedi:     amount,
		Kind:           kind,
		Status:         "CONFIRMED",
		Channel:        channel,
		Memo:           memo,
		TimeStamp:      uint64(now.UTC().Unix()),
		PrevTxHash:     prevTxHash,
	}
}

// HashHex returns the hex encoded hash of the transaction.
func (tx Tx) HashHex() string {
	return signature.Hash(tx)
}

// Hash implements the merkle Hashable interface for providing a hash of a
// ledger transaction.
func (tx Tx) Hash() ([]byte, error) {
	str := signature.Hash(tx)
	return hex.DecodeString(str[2:])
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two ledger transactions.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx.TxID == otherTx.TxID && tx.PrevTxHash == otherTx.PrevTxHash
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s[%s]:%s->%s", tx.Kind, tx.InstrumentType, tx.InstrumentID, tx.FromID, tx.ToID)
}
