// Package goldvault implements the gold vault oracle: it ingests sensor
// weight readings and assayed bar registrations, verifies reading integrity,
// detects tampering and weight discrepancies, and produces signed
// attestations of a vault's accumulated state.
//
// Anomalies are observations, not failures. A bad reading from one sensor is
// published on the hub and dropped; it never halts ingestion from others.
package goldvault

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/ledger/signature"
	"github.com/cedichain/cedichain/foundation/oracle/attest"
)

// DefaultAttestationValidity is how long a generated attestation remains
// acceptable when no validity is configured.
const DefaultAttestationValidity = 24 * time.Hour

// Sensor is a registered weight sensor inside a vault. The tolerance is
// the percentage by which consecutive readings may differ before a
// discrepancy is flagged.
type Sensor struct {
	ID           string          `json:"id"`
	VaultID      string          `json:"vault_id"`
	Location     string          `json:"location"`
	TolerancePct decimal.Decimal `json:"tolerance_pct"`
	RegisteredAt time.Time       `json:"registered_at"`
}

// Bar is a registered gold bar with its assay report.
type Bar struct {
	SerialNumber  string          `json:"serial_number"`
	VaultID       string          `json:"vault_id"`
	WeightGrams   decimal.Decimal `json:"weight_grams"`
	PurityPct     decimal.Decimal `json:"purity_pct"`
	AssayReportID string          `json:"assay_report_id"`
	RegisteredAt  time.Time       `json:"registered_at"`
}

// Reading is a raw weight measurement from a sensor. The integrity hash is
// computed by the sensor over the measurement fields; the oracle recomputes
// it on ingestion and drops readings that do not match.
type Reading struct {
	SensorID       string          `json:"sensor_id"`
	VaultID        string          `json:"vault_id"`
	WeightGrams    decimal.Decimal `json:"weight_grams"`
	TamperDetected bool            `json:"tamper_detected"`
	IntegrityHash  string          `json:"integrity_hash"`
	TakenAt        time.Time       `json:"taken_at"`
}

// ReadingHash computes the integrity hash for a reading from its
// measurement fields. Sensors and the oracle must agree on this function.
func ReadingHash(r Reading) string {
	return signature.Hash(struct {
		SensorID       string          `json:"sensor_id"`
		VaultID        string          `json:"vault_id"`
		WeightGrams    decimal.Decimal `json:"weight_grams"`
		TamperDetected bool            `json:"tamper_detected"`
		TakenAt        time.Time       `json:"taken_at"`
	}{r.SensorID, r.VaultID, r.WeightGrams, r.TamperDetected, r.TakenAt})
}

// VaultState is the payload an attestation covers: everything the oracle
// currently holds for one vault.
type VaultState struct {
	VaultID     string          `json:"vault_id"`
	TotalGrams  decimal.Decimal `json:"total_grams"`
	Bars        []Bar           `json:"bars"`
	Readings    []Reading       `json:"readings"`
	SensorCount int             `json:"sensor_count"`
}

// =============================================================================

// Config holds the settings for constructing the oracle.
type Config struct {
	OracleID            string
	Hub                 *events.Hub
	AttestationValidity time.Duration
}

// Oracle maintains the registered sensors and bars, the latest accepted
// reading per sensor, and the attestations it has issued.
type Oracle struct {
	mu           sync.Mutex
	oracleID     string
	hub          *events.Hub
	validity     time.Duration
	sensors      map[string]Sensor
	bars         map[string][]Bar
	latest       map[string]Reading
	attestations map[string]attest.Attestation
}

// New constructs the gold vault oracle.
func New(cfg Config) *Oracle {
	validity := cfg.AttestationValidity
	if validity == 0 {
		validity = DefaultAttestationValidity
	}

	return &Oracle{
		oracleID:     cfg.OracleID,
		hub:          cfg.Hub,
		validity:     validity,
		sensors:      make(map[string]Sensor),
		bars:         make(map[string][]Bar),
		latest:       make(map[string]Reading),
		attestations: make(map[string]attest.Attestation),
	}
}

// RegisterSensor adds a sensor to the registry. A sensor must be
// registered before its readings are accepted.
func (o *Oracle) RegisterSensor(s Sensor) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.ID == "" || s.VaultID == "" {
		return fmt.Errorf("sensor id and vault id are required")
	}
	if s.TolerancePct.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("sensor tolerance must be greater than zero")
	}

	o.sensors[s.ID] = s
	return nil
}

// RegisterBar records an assayed bar against its vault.
func (o *Oracle) RegisterBar(b Bar) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if b.SerialNumber == "" || b.VaultID == "" {
		return fmt.Errorf("bar serial number and vault id are required")
	}
	if b.WeightGrams.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("bar weight must be greater than zero")
	}

	o.bars[b.VaultID] = append(o.bars[b.VaultID], b)
	return nil
}

// ProcessReading ingests a sensor reading. Readings that fail the
// integrity recompute are published as INTEGRITY_FAILURE and dropped.
// Accepted readings may additionally raise TAMPER_ALERT and
// WEIGHT_DISCREPANCY notifications but are stored regardless.
func (o *Oracle) ProcessReading(r Reading) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sensor, exists := o.sensors[r.SensorID]
	if !exists {
		o.notify(events.SeverityError, events.KindIntegrityFailure, r.SensorID,
			fmt.Sprintf("reading from unregistered sensor %s", r.SensorID))
		return
	}

	if ReadingHash(r) != r.IntegrityHash {
		o.notify(events.SeverityError, events.KindIntegrityFailure, r.SensorID,
			fmt.Sprintf("integrity hash mismatch on sensor %s", r.SensorID))
		return
	}

	if r.TamperDetected {
		o.notify(events.SeverityError, events.KindTamperAlert, r.SensorID,
			fmt.Sprintf("tamper bit set on sensor %s", r.SensorID))
	}

	if previous, exists := o.latest[r.SensorID]; exists && previous.WeightGrams.GreaterThan(decimal.Zero) {
		deviation := r.WeightGrams.Sub(previous.WeightGrams).Abs().
			Div(previous.WeightGrams).Mul(decimal.NewFromInt(100))

		if deviation.GreaterThan(sensor.TolerancePct) {
			o.notify(events.SeverityWarning, events.KindWeightDiscrepancy, r.SensorID,
				fmt.Sprintf("sensor %s weight moved %s%% against a tolerance of %s%%", r.SensorID, deviation.StringFixed(2), sensor.TolerancePct))
		}
	}

	o.latest[r.SensorID] = r
}

// LatestReading returns the last accepted reading for a sensor.
func (o *Oracle) LatestReading(sensorID string) (Reading, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	r, exists := o.latest[sensorID]
	return r, exists
}

// VaultState assembles the current view of a vault: its registered bars,
// the latest reading per sensor in the vault, and the total bar weight.
func (o *Oracle) VaultState(vaultID string) VaultState {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.vaultStateLocked(vaultID)
}

func (o *Oracle) vaultStateLocked(vaultID string) VaultState {
	state := VaultState{
		VaultID: vaultID,
		Bars:    append([]Bar(nil), o.bars[vaultID]...),
	}

	for _, b := range state.Bars {
		state.TotalGrams = state.TotalGrams.Add(b.WeightGrams)
	}

	for id, s := range o.sensors {
		if s.VaultID != vaultID {
			continue
		}
		state.SensorCount++
		if r, exists := o.latest[id]; exists {
			state.Readings = append(state.Readings, r)
		}
	}

	return state
}

// GenerateAttestation signs the current state of the vault for the
// configured validity window and publishes an ATTESTATION notification.
func (o *Oracle) GenerateAttestation(vaultID string) attest.Attestation {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := o.vaultStateLocked(vaultID)

	a := attest.New(attest.SourceGoldVault, vaultID, state, o.oracleID, o.validity)
	o.attestations[a.ID] = a

	o.notify(events.SeverityInfo, events.KindAttestation, vaultID,
		fmt.Sprintf("attested vault %s at %s grams across %d bars", vaultID, state.TotalGrams, len(state.Bars)))

	return a
}

// VerifyAttestation recomputes the content hash of a stored attestation
// and checks its signature and expiry.
func (o *Oracle) VerifyAttestation(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, exists := o.attestations[id]
	if !exists {
		return false
	}

	return a.Verify(time.Now().UTC())
}

// Attestation returns a stored attestation by id.
func (o *Oracle) Attestation(id string) (attest.Attestation, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, exists := o.attestations[id]
	return a, exists
}

func (o *Oracle) notify(sev events.Severity, kind events.Kind, sourceID string, msg string) {
	if o.hub == nil {
		return
	}

	o.hub.Send(events.Notification{
		Severity: sev,
		Kind:     kind,
		Source:   "goldvault",
		SourceID: sourceID,
		Message:  msg,
		At:       time.Now().UTC(),
	})
}
