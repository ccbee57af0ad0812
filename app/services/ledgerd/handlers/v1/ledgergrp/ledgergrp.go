// Package ledgergrp maintains the group of handlers for ledger access.
package ledgergrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cedichain/cedichain/business/web/errs"
	"github.com/cedichain/cedichain/foundation/ledger/database"
	"github.com/cedichain/cedichain/foundation/ledger/state"
	"github.com/cedichain/cedichain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// trusted maps the engine's error taxonomy onto HTTP status codes. Errors
// outside the taxonomy propagate as untrusted 500s.
func trusted(err error) error {
	switch {
	case database.IsValidation(err):
		return errs.NewTrusted(err, http.StatusBadRequest)
	case errors.Is(err, database.ErrAccountNotFound), errors.Is(err, database.ErrInstrumentNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)
	case errors.Is(err, database.ErrDuplicateAccount),
		errors.Is(err, database.ErrAlreadyConverted),
		errors.Is(err, database.ErrAccountArchived),
		database.IsReserveCeiling(err),
		database.IsInvalidTransition(err):
		return errs.NewTrusted(err, http.StatusConflict)
	}
	return err
}

// Genesis returns the genesis configuration in use.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Genesis(), http.StatusOK)
}

// RegisterAccount creates a new zero-balance account.
func (h Handlers) RegisterAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var na newAccount
	if err := web.Decode(r, &na); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("register account", "traceid", v.TraceID, "account", na.AccountID, "role", na.Role)

	id, err := h.State.RegisterAccount(na.AccountID, na.Role)
	if err != nil {
		return trusted(fmt.Errorf("register account: %w", err))
	}

	resp := struct {
		AccountID string `json:"account_id"`
	}{
		AccountID: id,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// ArchiveAccount soft-archives an account.
func (h Handlers) ArchiveAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID := web.Param(r, "account")

	if err := h.State.ArchiveAccount(accountID); err != nil {
		return trusted(fmt.Errorf("archive account: %w", err))
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Accounts returns the account registry.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Accounts(), http.StatusOK)
}

// AccountBalance returns one account with its running balances.
func (h Handlers) AccountBalance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID := web.Param(r, "account")

	account, err := h.State.AccountBalance(accountID)
	if err != nil {
		return trusted(fmt.Errorf("account balance: %w", err))
	}

	return web.Respond(ctx, w, account, http.StatusOK)
}

// =============================================================================

// MintGBDC mints a new gold-backed instrument held by the treasury.
func (h Handlers) MintGBDC(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var m mintGBDC
	if err := web.Decode(r, &m); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("mint gbdc", "traceid", v.TraceID, "amount", m.AmountCedi, "backing", m.GoldBackingGrams)

	id, err := h.State.MintGBDC(m.AmountCedi, m.GoldBackingGrams, m.GoldPricePerGramUSD, m.ExchangeRateUSDGHS, m.IssuanceID, m.IssuedBy)
	if err != nil {
		return trusted(fmt.Errorf("mint gbdc: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.GBDCMinted)}, http.StatusCreated)
}

// TransferGBDC moves an instrument to a new holder.
func (h Handlers) TransferGBDC(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var t transferGBDC
	if err := web.Decode(r, &t); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	id, err := h.State.TransferGBDC(t.InstrumentID, t.FromAccount, t.ToAccount, t.AmountCedi, t.Description)
	if err != nil {
		return trusted(fmt.Errorf("transfer gbdc: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.GBDCCirculating)}, http.StatusOK)
}

// RedeemGBDC terminally redeems an instrument at a bank.
func (h Handlers) RedeemGBDC(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rd redeemGBDC
	if err := web.Decode(r, &rd); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	id, err := h.State.RedeemGBDC(rd.InstrumentID, rd.BankAccountID)
	if err != nil {
		return trusted(fmt.Errorf("redeem gbdc: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.GBDCRedeemed)}, http.StatusOK)
}

// LockGBDC terminally locks an instrument.
func (h Handlers) LockGBDC(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	if err := h.State.LockGBDC(id); err != nil {
		return trusted(fmt.Errorf("lock gbdc: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.GBDCLocked)}, http.StatusOK)
}

// BurnGBDC terminally burns an instrument, freeing its gold backing.
func (h Handlers) BurnGBDC(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	if err := h.State.BurnGBDC(id); err != nil {
		return trusted(fmt.Errorf("burn gbdc: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.GBDCBurned)}, http.StatusOK)
}

// GBDCRecord returns one gold-backed instrument.
func (h Handlers) GBDCRecord(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	g, err := h.State.GBDCRecord(web.Param(r, "id"))
	if err != nil {
		return trusted(fmt.Errorf("gbdc record: %w", err))
	}

	return web.Respond(ctx, w, g, http.StatusOK)
}

// =============================================================================

// IssueCRDN issues a cocoa receipt note to a farmer.
func (h Handlers) IssueCRDN(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ic issueCRDN
	if err := web.Decode(r, &ic); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("issue crdn", "traceid", v.TraceID, "farmer", ic.FarmerID, "weight", ic.CocoaWeightKg)

	id, err := h.State.IssueCRDN(ic.FarmerID, ic.LBCID, ic.CocoaWeightKg, ic.PricePerKgGHS, ic.WarehouseReceiptID, ic.SeasonYear, ic.AttestationHash)
	if err != nil {
		return trusted(fmt.Errorf("issue crdn: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.CRDNIssued)}, http.StatusCreated)
}

// ConvertCRDN converts a note, crediting the farmer's GBDC balance.
func (h Handlers) ConvertCRDN(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var cc convertCRDN
	if err := web.Decode(r, &cc); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	id, err := h.State.ConvertCRDN(cc.InstrumentID, cc.FarmerID, cc.TargetInstrument)
	if err != nil {
		return trusted(fmt.Errorf("convert crdn: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.CRDNConverted)}, http.StatusOK)
}

// ExpireCRDN terminally expires an unconverted note.
func (h Handlers) ExpireCRDN(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	if err := h.State.ExpireCRDN(id); err != nil {
		return trusted(fmt.Errorf("expire crdn: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.CRDNExpired)}, http.StatusOK)
}

// CancelCRDN terminally cancels an unconverted note.
func (h Handlers) CancelCRDN(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	if err := h.State.CancelCRDN(id); err != nil {
		return trusted(fmt.Errorf("cancel crdn: %w", err))
	}

	return web.Respond(ctx, w, instrumentResult{InstrumentID: id, Status: string(database.CRDNCancelled)}, http.StatusOK)
}

// CRDNRecord returns one cocoa receipt note.
func (h Handlers) CRDNRecord(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	c, err := h.State.CRDNRecord(web.Param(r, "id"))
	if err != nil {
		return trusted(fmt.Errorf("crdn record: %w", err))
	}

	return web.Respond(ctx, w, c, http.StatusOK)
}

// =============================================================================

// Summary returns the aggregate reserve and instrument position.
func (h Handlers) Summary(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.ReserveSummary(), http.StatusOK)
}

// PendingTransactions returns the uncommitted transactions.
func (h Handlers) PendingTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.PendingTransactions(), http.StatusOK)
}

// BlocksByNumber returns blocks for the specified range. The literal
// "latest" selects the chain tip.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	toStr := web.Param(r, "to")

	from, err := blockNumber(fromStr)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := blockNumber(toStr)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	blocks := h.State.QueryBlocksByNumber(from, to)

	out := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		out[i] = database.NewBlockData(block)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

func blockNumber(s string) (uint64, error) {
	if s == "latest" || s == "" {
		return state.QueryLatest, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q", s)
	}
	return n, nil
}
