// Package signature provides the hashing and placeholder signing support
// used by the ledger and the oracle pipeline. The ledger runs with a single
// trusted validator, so a signature here is a keyed hash over the content
// hash and the signer id rather than a full asymmetric scheme.
package signature

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros. It is the previous-block hash
// of the genesis block and the previous-transaction hash of the first
// ledger transaction.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Hash returns a unique hex encoded hash for the value. The value is
// serialized to JSON first so the same set of fields always produces the
// same hash.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// EmptyRootHash is the merkle root recorded for a block that carries no
// transactions, which is only ever the genesis block.
func EmptyRootHash() string {
	return Hash("empty")
}

// Sign produces the signature for a content hash. The signer id is folded
// into the hash so a signature from one validator or oracle cannot be
// replayed as another's.
func Sign(contentHash string, signerID string) string {
	return Hash(contentHash + ":" + signerID)
}

// VerifySign checks a signature was produced for the specified content
// hash by the specified signer.
func VerifySign(sig string, contentHash string, signerID string) bool {
	return sig == Sign(contentHash, signerID)
}
