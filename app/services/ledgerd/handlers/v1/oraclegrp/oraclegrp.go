// Package oraclegrp maintains the group of handlers for the oracle
// pipeline: measurement ingestion, attestation generation and verification,
// attested reserve registration, and the notification feed.
package oraclegrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cedichain/cedichain/business/web/errs"
	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/ledger/state"
	"github.com/cedichain/cedichain/foundation/oracle/goldvault"
	"github.com/cedichain/cedichain/foundation/oracle/royalty"
	"github.com/cedichain/cedichain/foundation/oracle/warehouse"
	"github.com/cedichain/cedichain/foundation/web"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handlers manages the set of oracle endpoints.
type Handlers struct {
	Log       *zap.SugaredLogger
	State     *state.State
	Hub       *events.Hub
	GoldVault *goldvault.Oracle
	Warehouse *warehouse.Oracle
	Royalty   *royalty.Oracle
	WS        websocket.Upgrader
}

// Events handles a web socket to stream notifications to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Hub.Acquire(v.TraceID)
	defer h.Hub.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case n, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(n); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Notifications returns the recent notification ring for callers that
// subscribed late or cannot hold a socket open.
func (h Handlers) Notifications(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Hub.Recent(), http.StatusOK)
}

// =============================================================================
// Gold vault

// RegisterSensor adds a weight sensor to the vault oracle.
func (h Handlers) RegisterSensor(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rs registerSensor
	if err := web.Decode(r, &rs); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	s := goldvault.Sensor{
		ID:           rs.SensorID,
		VaultID:      rs.VaultID,
		Location:     rs.Location,
		TolerancePct: rs.TolerancePct,
		RegisteredAt: time.Now().UTC(),
	}
	if err := h.GoldVault.RegisterSensor(s); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, s, http.StatusCreated)
}

// RegisterBar records an assayed gold bar.
func (h Handlers) RegisterBar(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rb registerBar
	if err := web.Decode(r, &rb); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	b := goldvault.Bar{
		SerialNumber:  rb.SerialNumber,
		VaultID:       rb.VaultID,
		WeightGrams:   rb.WeightGrams,
		PurityPct:     rb.PurityPct,
		AssayReportID: rb.AssayReportID,
		RegisteredAt:  time.Now().UTC(),
	}
	if err := h.GoldVault.RegisterBar(b); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, b, http.StatusCreated)
}

// ProcessReading ingests a sensor reading. Integrity failures and anomalies
// surface on the notification feed, never as request failures.
func (h Handlers) ProcessReading(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var sr sensorReading
	if err := web.Decode(r, &sr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.GoldVault.ProcessReading(goldvault.Reading{
		SensorID:       sr.SensorID,
		VaultID:        sr.VaultID,
		WeightGrams:    sr.WeightGrams,
		TamperDetected: sr.TamperDetected,
		IntegrityHash:  sr.IntegrityHash,
		TakenAt:        sr.TakenAt,
	})

	return web.Respond(ctx, w, nil, http.StatusAccepted)
}

// AttestVault generates a signed attestation of the vault's current state.
func (h Handlers) AttestVault(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	vaultID := web.Param(r, "vault")

	a := h.GoldVault.GenerateAttestation(vaultID)

	return web.Respond(ctx, w, a, http.StatusCreated)
}

// VerifyVaultAttestation reports whether a stored attestation still verifies.
func (h Handlers) VerifyVaultAttestation(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	resp := struct {
		AttestationID string `json:"attestation_id"`
		Verified      bool   `json:"verified"`
	}{
		AttestationID: id,
		Verified:      h.GoldVault.VerifyAttestation(id),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterGoldReserve applies an attested gold increment to the ledger. The
// attestation must exist and still verify; expiry is enforced here, at the
// oracle boundary, before the engine sees the increment.
func (h Handlers) RegisterGoldReserve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var rg registerGoldReserve
	if err := web.Decode(r, &rg); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	a, exists := h.GoldVault.Attestation(rg.AttestationID)
	if !exists {
		return errs.NewTrusted(fmt.Errorf("attestation %s not found", rg.AttestationID), http.StatusNotFound)
	}
	if !h.GoldVault.VerifyAttestation(rg.AttestationID) {
		return errs.NewTrusted(errors.New("attestation failed verification or has expired"), http.StatusConflict)
	}

	h.Log.Infow("register gold reserve", "traceid", v.TraceID, "grams", rg.Grams, "attestation", rg.AttestationID)

	if err := h.State.RegisterGoldReserve(rg.Grams, a.ContentHash); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.State.GoldReserve(), http.StatusCreated)
}

// =============================================================================
// Cocoa warehouse

// RecordDelivery records a farm gate delivery and returns the corrected,
// content-hashed receipt.
func (h Handlers) RecordDelivery(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nd newDelivery
	if err := web.Decode(r, &nd); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	rec, err := h.Warehouse.RecordDelivery(warehouse.Delivery{
		FarmerID:           nd.FarmerID,
		LBCID:              nd.LBCID,
		Region:             nd.Region,
		BagsCount:          nd.BagsCount,
		WeightKg:           nd.WeightKg,
		MoistureContentPct: nd.MoistureContentPct,
		QualityGrade:       warehouse.Grade(nd.QualityGrade),
		SeasonYear:         nd.SeasonYear,
	})
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, rec, http.StatusCreated)
}

// RecordWarehouseEntry records a receipted delivery arriving at a warehouse.
func (h Handlers) RecordWarehouseEntry(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var we warehouseEntry
	if err := web.Decode(r, &we); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	e := warehouse.Entry{
		WarehouseID: we.WarehouseID,
		ReceiptID:   we.ReceiptID,
		WeightKg:    we.WeightKg,
		EnteredAt:   time.Now().UTC(),
	}
	if err := h.Warehouse.RecordWarehouseEntry(e); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, e, http.StatusCreated)
}

// SeasonSummary aggregates a season's deliveries by region and grade.
func (h Handlers) SeasonSummary(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	year, err := strconv.Atoi(web.Param(r, "year"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid season year %q", web.Param(r, "year")), http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.Warehouse.SeasonSummary(year), http.StatusOK)
}

// AttestWarehouse generates a signed attestation of the warehouse's intake.
func (h Handlers) AttestWarehouse(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	warehouseID := web.Param(r, "warehouse")

	a := h.Warehouse.GenerateAttestation(warehouseID)

	return web.Respond(ctx, w, a, http.StatusCreated)
}

// RegisterCocoaReserve applies an attested cocoa increment to the ledger
// after verifying the attestation at the oracle boundary.
func (h Handlers) RegisterCocoaReserve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var rc registerCocoaReserve
	if err := web.Decode(r, &rc); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	a, exists := h.Warehouse.Attestation(rc.AttestationID)
	if !exists {
		return errs.NewTrusted(fmt.Errorf("attestation %s not found", rc.AttestationID), http.StatusNotFound)
	}
	if !h.Warehouse.VerifyAttestation(rc.AttestationID) {
		return errs.NewTrusted(errors.New("attestation failed verification or has expired"), http.StatusConflict)
	}

	h.Log.Infow("register cocoa reserve", "traceid", v.TraceID, "kg", rc.Kg, "attestation", rc.AttestationID)

	if err := h.State.RegisterCocoaReserve(rc.Kg, a.ContentHash); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.State.CocoaReserve(), http.StatusCreated)
}

// =============================================================================
// Royalty

// RecordProductionReport records a mining production report. A royalty
// mismatch surfaces on the notification feed, never as a request failure.
func (h Handlers) RecordProductionReport(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr productionReport
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	rec, err := h.Royalty.RecordProductionReport(royalty.Report{
		CompanyID:       pr.CompanyID,
		Region:          pr.Region,
		Period:          pr.Period,
		GrossRevenueGHS: pr.GrossRevenueGHS,
		RoyaltyPaidGHS:  pr.RoyaltyPaidGHS,
	})
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, rec, http.StatusCreated)
}

// RoyaltyForecast extrapolates the next period's royalty from history.
func (h Handlers) RoyaltyForecast(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Royalty.GenerateForecast(), http.StatusOK)
}

// RoyaltyTotals returns the total and per-region royalty sums.
func (h Handlers) RoyaltyTotals(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		TotalGHS decimal.Decimal            `json:"total_ghs"`
		ByRegion map[string]decimal.Decimal `json:"by_region"`
	}{
		TotalGHS: h.Royalty.TotalRoyalties(),
		ByRegion: h.Royalty.RegionBreakdown(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
