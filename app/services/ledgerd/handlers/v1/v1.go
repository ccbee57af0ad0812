// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/cedichain/cedichain/app/services/ledgerd/handlers/v1/ledgergrp"
	"github.com/cedichain/cedichain/app/services/ledgerd/handlers/v1/oraclegrp"
	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/ledger/state"
	"github.com/cedichain/cedichain/foundation/oracle/goldvault"
	"github.com/cedichain/cedichain/foundation/oracle/royalty"
	"github.com/cedichain/cedichain/foundation/oracle/warehouse"
	"github.com/cedichain/cedichain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *zap.SugaredLogger
	State     *state.State
	Hub       *events.Hub
	GoldVault *goldvault.Oracle
	Warehouse *warehouse.Oracle
	Royalty   *royalty.Oracle
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	lgr := ledgergrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/genesis", lgr.Genesis)
	app.Handle(http.MethodPost, version, "/accounts", lgr.RegisterAccount)
	app.Handle(http.MethodGet, version, "/accounts", lgr.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/:account", lgr.AccountBalance)
	app.Handle(http.MethodDelete, version, "/accounts/:account", lgr.ArchiveAccount)

	app.Handle(http.MethodPost, version, "/gbdc/mint", lgr.MintGBDC)
	app.Handle(http.MethodPost, version, "/gbdc/transfer", lgr.TransferGBDC)
	app.Handle(http.MethodPost, version, "/gbdc/redeem", lgr.RedeemGBDC)
	app.Handle(http.MethodPost, version, "/gbdc/lock/:id", lgr.LockGBDC)
	app.Handle(http.MethodPost, version, "/gbdc/burn/:id", lgr.BurnGBDC)
	app.Handle(http.MethodGet, version, "/gbdc/:id", lgr.GBDCRecord)

	app.Handle(http.MethodPost, version, "/crdn/issue", lgr.IssueCRDN)
	app.Handle(http.MethodPost, version, "/crdn/convert", lgr.ConvertCRDN)
	app.Handle(http.MethodPost, version, "/crdn/expire/:id", lgr.ExpireCRDN)
	app.Handle(http.MethodPost, version, "/crdn/cancel/:id", lgr.CancelCRDN)
	app.Handle(http.MethodGet, version, "/crdn/:id", lgr.CRDNRecord)

	app.Handle(http.MethodGet, version, "/summary", lgr.Summary)
	app.Handle(http.MethodGet, version, "/tx/pending", lgr.PendingTransactions)
	app.Handle(http.MethodGet, version, "/blocks/:from/:to", lgr.BlocksByNumber)

	org := oraclegrp.Handlers{
		Log:       cfg.Log,
		State:     cfg.State,
		Hub:       cfg.Hub,
		GoldVault: cfg.GoldVault,
		Warehouse: cfg.Warehouse,
		Royalty:   cfg.Royalty,
	}

	app.Handle(http.MethodGet, version, "/events", org.Events)
	app.Handle(http.MethodGet, version, "/notifications", org.Notifications)

	app.Handle(http.MethodPost, version, "/oracle/gold/sensors", org.RegisterSensor)
	app.Handle(http.MethodPost, version, "/oracle/gold/bars", org.RegisterBar)
	app.Handle(http.MethodPost, version, "/oracle/gold/readings", org.ProcessReading)
	app.Handle(http.MethodPost, version, "/oracle/gold/attest/:vault", org.AttestVault)
	app.Handle(http.MethodGet, version, "/oracle/gold/attestations/:id/verify", org.VerifyVaultAttestation)
	app.Handle(http.MethodPost, version, "/reserves/gold", org.RegisterGoldReserve)

	app.Handle(http.MethodPost, version, "/oracle/cocoa/deliveries", org.RecordDelivery)
	app.Handle(http.MethodPost, version, "/oracle/cocoa/entries", org.RecordWarehouseEntry)
	app.Handle(http.MethodGet, version, "/oracle/cocoa/seasons/:year", org.SeasonSummary)
	app.Handle(http.MethodPost, version, "/oracle/cocoa/attest/:warehouse", org.AttestWarehouse)
	app.Handle(http.MethodPost, version, "/reserves/cocoa", org.RegisterCocoaReserve)

	app.Handle(http.MethodPost, version, "/oracle/royalty/reports", org.RecordProductionReport)
	app.Handle(http.MethodGet, version, "/oracle/royalty/forecast", org.RoyaltyForecast)
	app.Handle(http.MethodGet, version, "/oracle/royalty/totals", org.RoyaltyTotals)
}
