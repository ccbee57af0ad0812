// Package handlers manages the different versions of the API.
package handlers

import (
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/cedichain/cedichain/app/services/ledgerd/handlers/debug/checkgrp"
	v1 "github.com/cedichain/cedichain/app/services/ledgerd/handlers/v1"
	"github.com/cedichain/cedichain/business/web/v1/mid"
	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/ledger/state"
	"github.com/cedichain/cedichain/foundation/oracle/goldvault"
	"github.com/cedichain/cedichain/foundation/oracle/royalty"
	"github.com/cedichain/cedichain/foundation/oracle/warehouse"
	"github.com/cedichain/cedichain/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown  chan os.Signal
	Log       *zap.SugaredLogger
	State     *state.State
	Hub       *events.Hub
	GoldVault *goldvault.Oracle
	Warehouse *warehouse.Oracle
	Royalty   *royalty.Oracle
}

// APIMux constructs a http.Handler with all application routes defined.
func APIMux(cfg MuxConfig) http.Handler {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Cors("*"),
		mid.Panics(),
	)

	// Load the v1 routes.
	v1.Routes(app, v1.Config{
		Log:       cfg.Log,
		State:     cfg.State,
		Hub:       cfg.Hub,
		GoldVault: cfg.GoldVault,
		Warehouse: cfg.Warehouse,
		Royalty:   cfg.Royalty,
	})

	return app
}

// DebugStandardLibraryMux registers all the debug routes from the standard
// library into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service.
func DebugMux(build string, log *zap.SugaredLogger, st *state.State) http.Handler {
	mux := DebugStandardLibraryMux()

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
		State: st,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
