package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crisisd/internal/config"
	"github.com/fyrsmithlabs/crisisd/internal/costing"
	"github.com/fyrsmithlabs/crisisd/internal/docks"
	"github.com/fyrsmithlabs/crisisd/internal/drafting"
	crisishttp "github.com/fyrsmithlabs/crisisd/internal/http"
	"github.com/fyrsmithlabs/crisisd/internal/llm"
	"github.com/fyrsmithlabs/crisisd/internal/logging"
	"github.com/fyrsmithlabs/crisisd/internal/lookup"
	"github.com/fyrsmithlabs/crisisd/internal/mailstore"
	"github.com/fyrsmithlabs/crisisd/internal/planning"
	"github.com/fyrsmithlabs/crisisd/internal/store"
	"github.com/fyrsmithlabs/crisisd/internal/telemetry"
	"github.com/fyrsmithlabs/crisisd/internal/workflow"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the crisisd daemon",
	Long: `Start the crisisd HTTP server with full service initialization.

Configuration is loaded from the optional --config YAML file and
CRISISD_* environment variables. See internal/config for details.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
}

// runServe starts the daemon and blocks until the context is cancelled.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Initialize telemetry and logger
//  3. Open SQLite stores (workflows + mail records on one file)
//  4. Create adapters (generation client, lookup, dock monitor)
//  5. Wire the workflow engine
//  6. Start HTTP server, shut down gracefully on SIGINT/SIGTERM
func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetryConfigFromEnv())
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() { _ = tel.Shutdown(context.Background()) }()

	logger, err := logging.New(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting crisisd",
		zap.Int("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("store_path", cfg.Store.Path),
		zap.Bool("telemetry_enabled", tel.IsEnabled()))

	// Both stores share one database file.
	workflowStore, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open workflow store: %w", err)
	}
	defer workflowStore.Close()

	mailStore, err := mailstore.NewSQLiteStore(workflowStore.DB())
	if err != nil {
		return fmt.Errorf("failed to open mail store: %w", err)
	}

	generationClient, err := llm.NewClient(llm.Config{
		Provider:          cfg.LLM.Provider,
		Model:             cfg.LLM.Model,
		APIKey:            cfg.LLM.APIKey.Value(),
		BaseURL:           cfg.LLM.BaseURL,
		MaxTokens:         cfg.LLM.MaxTokens,
		Temperature:       cfg.LLM.Temperature,
		Timeout:           cfg.LLM.Timeout.Duration(),
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	})
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	lookupClient, err := lookup.NewHTTPClient(lookup.HTTPConfig{
		BaseURL: cfg.Lookup.BaseURL,
		Timeout: cfg.Lookup.Timeout.Duration(),
	})
	if err != nil {
		return fmt.Errorf("failed to create lookup client: %w", err)
	}

	estimator := costing.NewEstimator(costing.Rates{
		DockRentalPerDay:       cfg.Costing.DockRentalPerDay,
		LaborPerDay:            cfg.Costing.LaborPerDay,
		EquipmentPerDay:        cfg.Costing.EquipmentPerDay,
		ExternalPremiumPerDay:  cfg.Costing.ExternalPremiumPerDay,
		DemurragePerDay:        cfg.Costing.DemurragePerDay,
		DemurrageThresholdDays: cfg.Costing.DemurrageThresholdDay,
	})

	engine, err := workflow.NewEngine(
		&workflow.Config{Stakeholders: cfg.Drafting.Stakeholders},
		workflowStore,
		lookup.NewAdapter(lookupClient, cfg.Lookup.TopK, logger),
		docks.NewMonitor(&docks.Config{
			Names:     cfg.Docks.Names,
			ScanLimit: cfg.Docks.ScanLimit,
		}, mailStore, logger),
		planning.NewGenerator(generationClient, estimator, logger),
		planning.NewSelector(generationClient, logger),
		drafting.NewDrafter(),
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create workflow engine: %w", err)
	}

	srv, err := crisishttp.NewServer(engine, logger, &crisishttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// telemetryConfigFromEnv builds telemetry config from CRISISD_TELEMETRY_*
// environment variables. Telemetry sits outside the main config tree so
// it can be toggled without touching the config file.
func telemetryConfigFromEnv() *telemetry.Config {
	cfg := telemetry.NewDefaultConfig()
	cfg.ServiceVersion = version
	if os.Getenv("CRISISD_TELEMETRY_ENABLED") == "true" {
		cfg.Enabled = true
	}
	if endpoint := os.Getenv("CRISISD_TELEMETRY_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if protocol := os.Getenv("CRISISD_TELEMETRY_PROTOCOL"); protocol != "" {
		cfg.Protocol = protocol
	}
	if os.Getenv("CRISISD_TELEMETRY_INSECURE") == "false" {
		cfg.Insecure = false
	}
	return cfg
}
