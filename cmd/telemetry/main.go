package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetsight/compressor-telemetry/api"
	"github.com/fleetsight/compressor-telemetry/internal/engine"
	"github.com/fleetsight/compressor-telemetry/internal/logger"
	"github.com/fleetsight/compressor-telemetry/internal/metrics"
	"github.com/fleetsight/compressor-telemetry/internal/orchestrator"
	"github.com/fleetsight/compressor-telemetry/internal/resilience"
	"github.com/fleetsight/compressor-telemetry/internal/sink"
	"github.com/fleetsight/compressor-telemetry/pkg/config"
	"github.com/fleetsight/compressor-telemetry/pkg/database"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connection established")

	if *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logger.Info("Running database migrations")
		migrator := database.NewMigrator(db)
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	eng := engine.New(engine.Config{
		Params:           engineParams(cfg),
		Units:            fleetFromConfig(cfg),
		Seed:             cfg.Telemetry.Seed,
		Predictive:       cfg.Telemetry.Predictive,
		ExposePredictive: cfg.Telemetry.ExposePredictive,
	})

	store := sink.NewResilientSink(sink.ResilientSinkConfig{
		Sink: sink.NewPostgresSink(db),
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
			metrics.Get().SetCircuitBreakerState(name, int(to))
		},
	})

	orch := orchestrator.New(cfg, eng, store, db)
	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to start orchestrator: %w", err)
	}
	defer orch.Stop()

	server := api.NewServer(cfg, db, orch, orch)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// engineParams applies config overrides onto the default tuning preset.
func engineParams(cfg *config.Config) engine.Params {
	p := engine.DefaultParams()

	if cfg.Engine.LockWindow > 0 {
		p.LockWindow = cfg.Engine.LockWindow
	}
	if cfg.Engine.BiasInterval > 0 {
		p.BiasInterval = cfg.Engine.BiasInterval
	}
	if cfg.Engine.DwellActive > 0 {
		p.ActiveRates.Dwell = cfg.Engine.DwellActive
	}
	if cfg.Engine.DwellInactive > 0 {
		p.InactiveRates.Dwell = cfg.Engine.DwellInactive
	}
	if cfg.Engine.DwellOffline > 0 {
		p.OfflineRates.Dwell = cfg.Engine.DwellOffline
	}

	return p
}

// fleetFromConfig translates configured units into engine specs; an empty
// list falls back to the default six-compressor fleet.
func fleetFromConfig(cfg *config.Config) []engine.UnitSpec {
	if len(cfg.Telemetry.Units) == 0 {
		return nil
	}

	specs := make([]engine.UnitSpec, 0, len(cfg.Telemetry.Units))
	for _, u := range cfg.Telemetry.Units {
		name := u.Name
		if name == "" {
			name = u.ID
		}
		specs = append(specs, engine.UnitSpec{
			ID:     u.ID,
			Name:   name,
			Pinned: models.Status(u.Pinned),
		})
	}
	return specs
}
