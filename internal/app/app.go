// Package app wires configuration, logging, storage, clients and services.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/fairval/internal/clients/gemini"
	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/interfaces"
	"github.com/bobmcallan/fairval/internal/models"
	"github.com/bobmcallan/fairval/internal/services/analysis"
	"github.com/bobmcallan/fairval/internal/services/report"
	"github.com/bobmcallan/fairval/internal/storage"
	"github.com/bobmcallan/fairval/internal/valuation"
)

// App holds all initialized services and clients. It is the shared core
// behind cmd/fairval-server.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	ResearchClient  interfaces.ResearchClient
	Engine          *valuation.Engine
	AnalysisService interfaces.AnalysisService
	ReportService   interfaces.ReportService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes all services, clients and storage.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, FAIRVAL_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FAIRVAL_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "fairval.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fairval.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	// Resolve Gemini API key; without one the oracle is disabled and every
	// analysis falls back to the static defaults.
	var oracle interfaces.ResearchClient
	geminiKey, err := common.ResolveAPIKey(config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - live analysis disabled, static fallbacks in use")
		oracle = &disabledOracle{}
	} else {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - static fallbacks in use")
			oracle = &disabledOracle{}
		} else {
			oracle = client
		}
	}

	engine, err := valuation.NewEngine(config.Valuation.Multipliers, valuation.ZoneConfig{
		BuyBelow:  config.Valuation.BuyBelow,
		SellAbove: config.Valuation.SellAbove,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid valuation config: %w", err)
	}

	backtestDefaults := models.BacktestParams{
		InitialCapital: config.Backtest.DefaultCapital,
		BuyThreshold:   config.Backtest.BuyThreshold,
		SellThreshold:  config.Backtest.SellThreshold,
		AlternateAsset: config.Backtest.AlternateAsset,
	}

	ttl := common.DefaultFreshnessTTL()
	ttl.Snapshot = config.Valuation.GetFreshness()

	analysisService := analysis.NewService(oracle, storageManager, engine, backtestDefaults, ttl, logger)
	analysisService.LoadCached(ctx)

	reportService := report.NewService(logger)

	a := &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		ResearchClient:  oracle,
		Engine:          engine,
		AnalysisService: analysisService,
		ReportService:   reportService,
		StartupTime:     startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
