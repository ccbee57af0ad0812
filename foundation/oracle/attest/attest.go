// Package attest defines the signed, time-bounded claims the oracles
// produce about physical reserve state. An attestation is the only artifact
// the ledger side trusts as the justification for a reserve increment, so
// verification recomputes everything from stored data rather than trusting
// flags on the record.
package attest

import (
	"time"

	"github.com/google/uuid"

	"github.com/cedichain/cedichain/foundation/ledger/signature"
)

// SourceType identifies the kind of oracle that produced an attestation.
type SourceType string

// Set of attestation source types.
const (
	SourceGoldVault      SourceType = "GOLD_VAULT"
	SourceCocoaWarehouse SourceType = "COCOA_WAREHOUSE"
	SourceRoyalty        SourceType = "ROYALTY"
)

// Attestation is a signed claim about the accumulated state of a source at
// a point in time. It expires: a consumer must not accept an attestation
// past its expiry.
type Attestation struct {
	ID          string     `json:"id"`
	SourceType  SourceType `json:"source_type"`
	SourceID    string     `json:"source_id"`
	Payload     any        `json:"payload"`
	ContentHash string     `json:"content_hash"`
	Signature   string     `json:"signature"`
	SignedBy    string     `json:"signed_by"`
	IssuedAt    time.Time  `json:"issued_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

// New constructs a signed attestation over the payload, valid for the
// specified window from now.
func New(sourceType SourceType, sourceID string, payload any, signedBy string, validity time.Duration) Attestation {
	now := time.Now().UTC()
	contentHash := signature.Hash(payload)

	return Attestation{
		ID:          uuid.NewString(),
		SourceType:  sourceType,
		SourceID:    sourceID,
		Payload:     payload,
		ContentHash: contentHash,
		Signature:   signature.Sign(contentHash, signedBy),
		SignedBy:    signedBy,
		IssuedAt:    now,
		ExpiresAt:   now.Add(validity),
	}
}

// Expired reports whether the attestation's validity window has elapsed.
func (a Attestation) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// Verify recomputes the content hash from the stored payload and checks
// the signature against it. Expired attestations never verify.
func (a Attestation) Verify(now time.Time) bool {
	if a.Expired(now) {
		return false
	}

	contentHash := signature.Hash(a.Payload)
	if contentHash != a.ContentHash {
		return false
	}

	return signature.VerifySign(a.Signature, contentHash, a.SignedBy)
}
