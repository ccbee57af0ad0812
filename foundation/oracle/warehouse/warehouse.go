// Package warehouse implements the cocoa warehouse oracle: it records farm
// gate deliveries and warehouse entries, flags weight anomalies against the
// standard bag weight, enforces the moisture-based quality downgrade, and
// attests a warehouse's accumulated intake.
//
// RecordDelivery never mutates its argument; the corrected, content-hashed
// receipt is returned as a new value.
package warehouse

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/ledger/signature"
	"github.com/cedichain/cedichain/foundation/oracle/attest"
)

// DefaultAttestationValidity is how long a generated attestation remains
// acceptable when no validity is configured.
const DefaultAttestationValidity = 24 * time.Hour

// StandardBagKg is the weight of one standard cocoa bag.
const StandardBagKg = 64

// weightTolerancePct is the allowed deviation between the declared weight
// and the bag-count expectation before an anomaly is raised.
const weightTolerancePct = 5

// moistureLimitPct is the moisture content above which a delivery is
// downgraded to sub-standard regardless of its submitted grade.
const moistureLimitPct = 8

// Grade classifies the quality of a cocoa delivery.
type Grade string

// Set of quality grades.
const (
	GradePremium     Grade = "PREMIUM"
	GradeStandard    Grade = "STANDARD"
	GradeSubStandard Grade = "SUB_STANDARD"
)

// Delivery is a farm gate delivery of cocoa. The receipt id and content
// hash are assigned by the oracle when the delivery is recorded.
type Delivery struct {
	ReceiptID          string          `json:"receipt_id"`
	FarmerID           string          `json:"farmer_id"`
	LBCID              string          `json:"lbc_id"`
	Region             string          `json:"region"`
	BagsCount          int             `json:"bags_count"`
	WeightKg           decimal.Decimal `json:"weight_kg"`
	MoistureContentPct decimal.Decimal `json:"moisture_content_pct"`
	QualityGrade       Grade           `json:"quality_grade"`
	SeasonYear         int             `json:"season_year"`
	ContentHash        string          `json:"content_hash"`
	DeliveredAt        time.Time       `json:"delivered_at"`
}

// Entry records a receipted delivery arriving at a warehouse.
type Entry struct {
	WarehouseID string          `json:"warehouse_id"`
	ReceiptID   string          `json:"receipt_id"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
	EnteredAt   time.Time       `json:"entered_at"`
}

// GradeSplit is the percentage of a season's deliveries falling into each
// quality bucket. The three values sum to 100, or are all zero for an
// empty season.
type GradeSplit struct {
	PremiumPct     decimal.Decimal `json:"premium_pct"`
	StandardPct    decimal.Decimal `json:"standard_pct"`
	SubStandardPct decimal.Decimal `json:"sub_standard_pct"`
}

// SeasonSummary aggregates a season's deliveries by region and grade.
type SeasonSummary struct {
	SeasonYear      int                        `json:"season_year"`
	TotalDeliveries int                        `json:"total_deliveries"`
	TotalWeightKg   decimal.Decimal            `json:"total_weight_kg"`
	RegionWeightsKg map[string]decimal.Decimal `json:"region_weights_kg"`
	Grades          GradeSplit                 `json:"grades"`
}

// WarehouseState is the payload an attestation covers.
type WarehouseState struct {
	WarehouseID   string          `json:"warehouse_id"`
	EntryCount    int             `json:"entry_count"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
	Entries       []Entry         `json:"entries"`
}

// =============================================================================

// Config holds the settings for constructing the oracle.
type Config struct {
	OracleID            string
	Hub                 *events.Hub
	AttestationValidity time.Duration
}

// Oracle maintains the recorded deliveries, warehouse entries, and issued
// attestations.
type Oracle struct {
	mu           sync.Mutex
	oracleID     string
	hub          *events.Hub
	validity     time.Duration
	deliveries   map[string]Delivery
	entries      map[string][]Entry
	attestations map[string]attest.Attestation
}

// New constructs the cocoa warehouse oracle.
func New(cfg Config) *Oracle {
	validity := cfg.AttestationValidity
	if validity == 0 {
		validity = DefaultAttestationValidity
	}

	return &Oracle{
		oracleID:     cfg.OracleID,
		hub:          cfg.Hub,
		validity:     validity,
		deliveries:   make(map[string]Delivery),
		entries:      make(map[string][]Entry),
		attestations: make(map[string]attest.Attestation),
	}
}

// RecordDelivery validates and stores a delivery, returning the corrected
// receipt. The expected weight is the bag count times the standard bag
// weight; a deviation past tolerance raises a weight anomaly. A delivery
// whose moisture exceeds the limit is recorded sub-standard regardless of
// its submitted grade. The argument is never mutated.
func (o *Oracle) RecordDelivery(d Delivery) (Delivery, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case d.FarmerID == "" || d.LBCID == "":
		return Delivery{}, fmt.Errorf("farmer id and lbc id are required")
	case d.BagsCount <= 0:
		return Delivery{}, fmt.Errorf("bags count must be greater than zero")
	case d.WeightKg.LessThanOrEqual(decimal.Zero):
		return Delivery{}, fmt.Errorf("weight must be greater than zero")
	}

	rec := d
	if rec.ReceiptID == "" {
		rec.ReceiptID = uuid.NewString()
	}
	if rec.DeliveredAt.IsZero() {
		rec.DeliveredAt = time.Now().UTC()
	}

	expected := decimal.NewFromInt(int64(rec.BagsCount) * StandardBagKg)
	deviation := rec.WeightKg.Sub(expected).Abs().Div(expected).Mul(decimal.NewFromInt(100))
	if deviation.GreaterThan(decimal.NewFromInt(weightTolerancePct)) {
		o.notify(events.SeverityWarning, events.KindWeightAnomaly, rec.ReceiptID,
			fmt.Sprintf("delivery %s declared %skg against %skg expected for %d bags (%s%% off)",
				rec.ReceiptID, rec.WeightKg, expected, rec.BagsCount, deviation.StringFixed(2)))
	}

	if rec.MoistureContentPct.GreaterThan(decimal.NewFromInt(moistureLimitPct)) && rec.QualityGrade != GradeSubStandard {
		o.notify(events.SeverityWarning, events.KindQualityDowngrade, rec.ReceiptID,
			fmt.Sprintf("delivery %s downgraded from %s at %s%% moisture", rec.ReceiptID, rec.QualityGrade, rec.MoistureContentPct))
		rec.QualityGrade = GradeSubStandard
	}

	rec.ContentHash = signature.Hash(struct {
		ReceiptID  string          `json:"receipt_id"`
		FarmerID   string          `json:"farmer_id"`
		LBCID      string          `json:"lbc_id"`
		BagsCount  int             `json:"bags_count"`
		WeightKg   decimal.Decimal `json:"weight_kg"`
		Grade      Grade           `json:"grade"`
		SeasonYear int             `json:"season_year"`
	}{rec.ReceiptID, rec.FarmerID, rec.LBCID, rec.BagsCount, rec.WeightKg, rec.QualityGrade, rec.SeasonYear})

	o.deliveries[rec.ReceiptID] = rec

	return rec, nil
}

// Delivery returns a recorded delivery by receipt id.
func (o *Oracle) Delivery(receiptID string) (Delivery, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	d, exists := o.deliveries[receiptID]
	return d, exists
}

// RecordWarehouseEntry records a receipted delivery arriving at a
// warehouse. The receipt must have been recorded first.
func (o *Oracle) RecordWarehouseEntry(e Entry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if e.WarehouseID == "" {
		return fmt.Errorf("warehouse id is required")
	}
	if _, exists := o.deliveries[e.ReceiptID]; !exists {
		return fmt.Errorf("receipt %s has not been recorded", e.ReceiptID)
	}

	if e.EnteredAt.IsZero() {
		e.EnteredAt = time.Now().UTC()
	}

	o.entries[e.WarehouseID] = append(o.entries[e.WarehouseID], e)
	return nil
}

// SeasonSummary aggregates the season's deliveries by region and quality
// grade. The grade percentages sum to 100; an empty season reports zeros.
func (o *Oracle) SeasonSummary(seasonYear int) SeasonSummary {
	o.mu.Lock()
	defer o.mu.Unlock()

	summary := SeasonSummary{
		SeasonYear:      seasonYear,
		RegionWeightsKg: make(map[string]decimal.Decimal),
	}

	var premium, standard int
	for _, d := range o.deliveries {
		if d.SeasonYear != seasonYear {
			continue
		}

		summary.TotalDeliveries++
		summary.TotalWeightKg = summary.TotalWeightKg.Add(d.WeightKg)
		summary.RegionWeightsKg[d.Region] = summary.RegionWeightsKg[d.Region].Add(d.WeightKg)

		switch d.QualityGrade {
		case GradePremium:
			premium++
		case GradeStandard:
			standard++
		}
	}

	if summary.TotalDeliveries == 0 {
		return summary
	}

	// The sub-standard bucket takes the remainder so the three always sum
	// to exactly 100.
	total := decimal.NewFromInt(int64(summary.TotalDeliveries))
	hundred := decimal.NewFromInt(100)
	summary.Grades.PremiumPct = decimal.NewFromInt(int64(premium)).Mul(hundred).DivRound(total, 2)
	summary.Grades.StandardPct = decimal.NewFromInt(int64(standard)).Mul(hundred).DivRound(total, 2)
	summary.Grades.SubStandardPct = hundred.Sub(summary.Grades.PremiumPct).Sub(summary.Grades.StandardPct)

	return summary
}

// GenerateAttestation signs the current intake of the warehouse for the
// configured validity window.
func (o *Oracle) GenerateAttestation(warehouseID string) attest.Attestation {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := WarehouseState{
		WarehouseID: warehouseID,
		Entries:     append([]Entry(nil), o.entries[warehouseID]...),
	}
	for _, e := range state.Entries {
		state.TotalWeightKg = state.TotalWeightKg.Add(e.WeightKg)
	}
	state.EntryCount = len(state.Entries)

	a := attest.New(attest.SourceCocoaWarehouse, warehouseID, state, o.oracleID, o.validity)
	o.attestations[a.ID] = a

	o.notify(events.SeverityInfo, events.KindAttestation, warehouseID,
		fmt.Sprintf("attested warehouse %s at %skg across %d entries", warehouseID, state.TotalWeightKg, state.EntryCount))

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
		Source:   "warehouse",
		SourceID: sourceID,
		Message:  msg,
		At:       time.Now().UTC(),
	})
}
