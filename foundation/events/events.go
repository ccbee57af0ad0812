// Package events provides the typed notification hub the oracle pipeline
// publishes anomalies and lifecycle events on. Anomalies are observations,
// not failures: the hub never blocks a publisher, and it keeps a bounded
// ring of recent notifications so an anomaly stays observable even when no
// subscriber was registered before the call.
package events

import (
	"fmt"
	"sync"
	"time"
)

// Severity classifies how a subscriber should weigh a notification.
type Severity string

// Set of notification severities.
const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Kind tags what a notification reports.
type Kind string

// Set of notification kinds.
const (
	KindTamperAlert       Kind = "TAMPER_ALERT"
	KindWeightDiscrepancy Kind = "WEIGHT_DISCREPANCY"
	KindIntegrityFailure  Kind = "INTEGRITY_FAILURE"
	KindWeightAnomaly     Kind = "WEIGHT_ANOMALY"
	KindQualityDowngrade  Kind = "QUALITY_DOWNGRADE"
	KindRoyaltyMismatch   Kind = "ROYALTY_MISMATCH"
	KindAttestation       Kind = "ATTESTATION"
	KindBlockSealed       Kind = "BLOCK_SEALED"
)

// Notification is a tagged record of something an oracle or the ledger
// observed.
type Notification struct {
	Severity Severity  `json:"severity"`
	Kind     Kind      `json:"kind"`
	Source   string    `json:"source"`
	SourceID string    `json:"source_id"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// =============================================================================

// Since a notification is dropped if a subscriber is not ready to receive,
// this buffer gives slow subscribers room before messages are lost.
const subscriberBuffer = 100

// How many notifications the hub retains for callers that subscribe late.
const recentCapacity = 256

// Hub maintains a mapping of unique id and channels so goroutines can
// register and receive notifications, plus the bounded recent ring.
type Hub struct {
	mu     sync.RWMutex
	m      map[string]chan Notification
	recent []Notification
}

// NewHub constructs a hub for publishing and receiving notifications.
func NewHub() *Hub {
	return &Hub{
		m: make(map[string]chan Notification),
	}
}

// Shutdown closes and removes all channels that were provided by the call
// to Acquire.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.m {
		delete(h.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive notifications.
func (h *Hub) Acquire(id string) chan Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, exists := h.m[id]
	if exists {
		return ch
	}

	h.m[id] = make(chan Notification, subscriberBuffer)
	return h.m[id]
}

// Release closes and removes the channel that was provided by the call to
// Acquire.
func (h *Hub) Release(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, exists := h.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(h.m, id)
	close(ch)
	return nil
}

// Send publishes a notification to every registered channel and appends it
// to the recent ring. Send will not block waiting for a receiver on any
// given channel.
func (h *Hub) Send(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, n)
	if len(h.recent) > recentCapacity {
		h.recent = h.recent[len(h.recent)-recentCapacity:]
	}

	for _, ch := range h.m {
		select {
		case ch <- n:
		default:
		}
	}
}

// Recent returns a copy of the retained notifications, oldest first.
func (h *Hub) Recent() []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Notification, len(h.recent))
	copy(out, h.recent)
	return out
}
