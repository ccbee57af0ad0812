package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"

	"github.com/cedichain/cedichain/app/services/ledgerd/handlers"
	"github.com/cedichain/cedichain/foundation/events"
	"github.com/cedichain/cedichain/foundation/ledger/database"
	"github.com/cedichain/cedichain/foundation/ledger/database/storage/disk"
	"github.com/cedichain/cedichain/foundation/ledger/database/storage/memory"
	"github.com/cedichain/cedichain/foundation/ledger/genesis"
	"github.com/cedichain/cedichain/foundation/ledger/state"
	"github.com/cedichain/cedichain/foundation/ledger/worker"
	"github.com/cedichain/cedichain/foundation/logger"
	"github.com/cedichain/cedichain/foundation/oracle/goldvault"
	"github.com/cedichain/cedichain/foundation/oracle/royalty"
	"github.com/cedichain/cedichain/foundation/oracle/warehouse"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("LEDGERD")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
		}
		Ledger struct {
			GenesisPath string `conf:"default:"`
			Storage     string `conf:"default:memory"`
			DBPath      string `conf:"default:zledger/blocks/"`
		}
		Oracle struct {
			GoldVaultID         string        `conf:"default:oracle-goldvault"`
			WarehouseID         string        `conf:"default:oracle-warehouse"`
			RoyaltyID           string        `conf:"default:oracle-royalty"`
			AttestationValidity time.Duration `conf:"default:24h"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "LEDGERD"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Ledger Engine Support

	// The genesis file carries the validator identity, the system account
	// ids, and the reserve backing ceiling.
	gen := genesis.Default()
	if cfg.Ledger.GenesisPath != "" {
		gen, err = genesis.Load(cfg.Ledger.GenesisPath)
		if err != nil {
			return fmt.Errorf("unable to load genesis file: %w", err)
		}
	}

	var strg database.Storage
	switch cfg.Ledger.Storage {
	case "disk":
		strg, err = disk.New(cfg.Ledger.DBPath)
	default:
		strg, err = memory.New()
	}
	if err != nil {
		return fmt.Errorf("unable to construct storage: %w", err)
	}

	// The hub carries the typed notifications the oracles and the engine
	// publish. Websocket clients subscribe to it through the API.
	hub := events.NewHub()
	defer hub.Shutdown()

	// The engine packages accept a function of this signature to allow the
	// application to log.
	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		Storage:   strg,
		EvHandler: ev,
		Hub:       hub,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker seals pending transactions into blocks on the genesis
	// cadence. The worker registers itself with the state.
	worker.Run(st, ev)

	// =========================================================================
	// Oracle Support

	goldVault := goldvault.New(goldvault.Config{
		OracleID:            cfg.Oracle.GoldVaultID,
		Hub:                 hub,
		AttestationValidity: cfg.Oracle.AttestationValidity,
	})

	cocoaWarehouse := warehouse.New(warehouse.Config{
		OracleID:            cfg.Oracle.WarehouseID,
		Hub:                 hub,
		AttestationValidity: cfg.Oracle.AttestationValidity,
	})

	mineralRoyalty := royalty.New(royalty.Config{
		OracleID:            cfg.Oracle.RoyaltyID,
		Hub:                 hub,
		AttestationValidity: cfg.Oracle.AttestationValidity,
	})

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the
	// debug related endpoints. This includes the standard library endpoints.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start API Service

	log.Infow("startup", "status", "initializing V1 API support")

	// Make a channel to listen for an interrupt or terminate signal from the
	// OS. Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Construct the mux for the API calls.
	apiMux := handlers.APIMux(handlers.MuxConfig{
		Shutdown:  shutdown,
		Log:       log,
		State:     st,
		Hub:       hub,
		GoldVault: goldVault,
		Warehouse: cocoaWarehouse,
		Royalty:   mineralRoyalty,
	})

	// Construct a server to service the requests against the mux.
	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      apiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop api service gracefully: %w", err)
		}
	}

	return nil
}
