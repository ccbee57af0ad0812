// Package royalty implements the mineral royalty oracle: it records mining
// production reports, cross-checks the declared royalty against the
// statutory rate, and extrapolates a royalty forecast from the recorded
// history. A mismatched royalty is surveillance data, not a rejection; the
// report is stored and the divergence is published on the hub.
package royalty

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/oracle/attest"
)

// DefaultAttestationValidity is how long a generated attestation remains
// acceptable when no validity is configured.
const DefaultAttestationValidity = 24 * time.Hour

// RoyaltyRatePct is the statutory royalty rate applied to gross revenue.
const RoyaltyRatePct = 5

// mismatchTolerancePct is how far the declared royalty may diverge from
// the statutory expectation before a mismatch is published.
const mismatchTolerancePct = 1

// Confidence tiers for a forecast, driven by sample count.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// defaultForecastGHS is the forecast returned when no reports have been
// recorded yet.
var defaultForecastGHS = decimal.NewFromInt(1_000_000)

// Report is a production report declared by a mining company for a period.
type Report struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	Region          string          `json:"region"`
	Period          string          `json:"period"`
	GrossRevenueGHS decimal.Decimal `json:"gross_revenue_ghs"`
	RoyaltyPaidGHS  decimal.Decimal `json:"royalty_paid_ghs"`
	ExpectedGHS     decimal.Decimal `json:"expected_ghs"`
	ReportedAt      time.Time       `json:"reported_at"`
}

// Forecast is the oracle's extrapolation of the next period's royalty.
type Forecast struct {
	AmountGHS   decimal.Decimal `json:"amount_ghs"`
	Confidence  string          `json:"confidence"`
	SampleCount int             `json:"sample_count"`
}

// RoyaltyState is the payload an attestation covers.
type RoyaltyState struct {
	TotalRoyaltiesGHS decimal.Decimal            `json:"total_royalties_ghs"`
	ReportCount       int                        `json:"report_count"`
	RegionTotalsGHS   map[string]decimal.Decimal `json:"region_totals_ghs"`
}

// =============================================================================

// Config holds the settings for constructing the oracle.
type Config struct {
	OracleID            string
	Hub                 *events.Hub
	AttestationValidity time.Duration
}

// Oracle maintains the recorded production reports and issued attestations.
type Oracle struct {
	mu           sync.Mutex
	oracleID     string
	hub          *events.Hub
	validity     time.Duration
	reports      []Report
	attestations map[string]attest.Attestation
}

// New constructs the royalty oracle.
func New(cfg Config) *Oracle {
	validity := cfg.AttestationValidity
	if validity == 0 {
		validity = DefaultAttestationValidity
	}

	return &Oracle{
		oracleID:     cfg.OracleID,
		hub:          cfg.Hub,
		validity:     validity,
		attestations: make(map[string]attest.Attestation),
	}
}

// RecordProductionReport stores a report and cross-checks the declared
// royalty against the statutory rate. A divergence past tolerance is
// published as a ROYALTY_MISMATCH notification; the report is stored
// either way.
func (o *Oracle) RecordProductionReport(r Report) (Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case r.CompanyID == "":
		return Report{}, fmt.Errorf("company id is required")
	case r.GrossRevenueGHS.LessThanOrEqual(decimal.Zero):
		return Report{}, fmt.Errorf("gross revenue must be greater than zero")
	case r.RoyaltyPaidGHS.LessThan(decimal.Zero):
		return Report{}, fmt.Errorf("royalty paid must not be negative")
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.ReportedAt.IsZero() {
		r.ReportedAt = time.Now().UTC()
	}

	r.ExpectedGHS = r.GrossRevenueGHS.Mul(decimal.NewFromInt(RoyaltyRatePct)).Div(decimal.NewFromInt(100))

	deviation := r.RoyaltyPaidGHS.Sub(r.ExpectedGHS).Abs().
		Div(r.ExpectedGHS).Mul(decimal.NewFromInt(100))
	if deviation.GreaterThan(decimal.NewFromInt(mismatchTolerancePct)) {
		o.notify(events.SeverityWarning, events.KindRoyaltyMismatch, r.CompanyID,
			fmt.Sprintf("company %s declared %s GHS against %s GHS expected for period %s",
				r.CompanyID, r.RoyaltyPaidGHS, r.ExpectedGHS, r.Period))
	}

	o.reports = append(o.reports, r)

	return r, nil
}

// GenerateForecast extrapolates the next period's royalty from the average
// of the recorded history, falling back to a fixed default with no
// history. Confidence rises with the sample count.
func (o *Oracle) GenerateForecast() Forecast {
	o.mu.Lock()
	defer o.mu.Unlock()

	count := len(o.reports)

	f := Forecast{
		AmountGHS:   defaultForecastGHS,
		Confidence:  ConfidenceLow,
		SampleCount: count,
	}

	if count > 0 {
		var total decimal.Decimal
		for _, r := range o.reports {
			total = total.Add(r.RoyaltyPaidGHS)
		}
		f.AmountGHS = total.DivRound(decimal.NewFromInt(int64(count)), 2)
	}

	switch {
	case count > 4:
		f.Confidence = ConfidenceHigh
	case count > 1:
		f.Confidence = ConfidenceMedium
	}

	return f
}

// TotalRoyalties sums the declared royalties across all recorded reports.
func (o *Oracle) TotalRoyalties() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()

	var total decimal.Decimal
	for _, r := range o.reports {
		total = total.Add(r.RoyaltyPaidGHS)
	}
	return total
}

// RegionBreakdown sums the declared royalties per region.
func (o *Oracle) RegionBreakdown() map[string]decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[string]decimal.Decimal)
	for _, r := range o.reports {
		out[r.Region] = out[r.Region].Add(r.RoyaltyPaidGHS)
	}
	return out
}

// GenerateAttestation signs the accumulated royalty state for the
// configured validity window.
func (o *Oracle) GenerateAttestation() attest.Attestation {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := RoyaltyState{
		ReportCount:     len(o.reports),
		RegionTotalsGHS: make(map[string]decimal.Decimal),
	}
	for _, r := range o.reports {
		state.TotalRoyaltiesGHS = state.TotalRoyaltiesGHS.Add(r.RoyaltyPaidGHS)
		state.RegionTotalsGHS[r.Region] = state.RegionTotalsGHS[r.Region].Add(r.RoyaltyPaidGHS)
	}

	a := attest.New(attest.SourceRoyalty, o.oracleID, state, o.oracleID, o.validity)
	o.attestations[a.ID] = a

	o.notify(events.SeverityInfo, events.KindAttestation, o.oracleID,
		fmt.Sprintf("attested %s GHS of royalties across %d reports", state.TotalRoyaltiesGHS, state.ReportCount))

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
		Source:   "royalty",
		SourceID: sourceID,
		Message:  msg,
		At:       time.Now().UTC(),
	})
}
