// Package app wires configuration, storage, clients, and services into a
// single application core shared by cmd/core-server and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/corelabs/core/internal/clients/eodhd"
	"github.com/corelabs/core/internal/clients/fxrates"
	"github.com/corelabs/core/internal/clients/gemini"
	"github.com/corelabs/core/internal/common"
	"github.com/corelabs/core/internal/interfaces"
	"github.com/corelabs/core/internal/services/fx"
	"github.com/corelabs/core/internal/services/news"
	"github.com/corelabs/core/internal/services/portfolio"
	"github.com/corelabs/core/internal/services/quote"
	"github.com/corelabs/core/internal/services/snapshot"
	"github.com/corelabs/core/internal/services/valuation"
	"github.com/corelabs/core/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	EODHDClient  *eodhd.Client
	FXClient     *fxrates.Client
	GeminiClient *gemini.Client

	FXService        interfaces.FXService
	QuoteService     interfaces.QuoteService
	ValuationService interfaces.ValuationService
	SnapshotService  interfaces.SnapshotService
	PortfolioService interfaces.PortfolioService
	NewsService      interfaces.NewsService

	StartupTime time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services from configuration.
// configPath may be empty, in which case CORE_CONFIG and then the binary
// directory are consulted.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("CORE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "core.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/core.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative badger path to the binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	if config.IsProduction() {
		if missing := config.ValidateRequired(); len(missing) > 0 {
			return nil, fmt.Errorf("missing required configuration: %v", missing)
		}
	}

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	internalStore := storageManager.InternalStore()

	eodhdKey, err := common.ResolveAPIKey(ctx, internalStore, "eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - quotes and news will be unavailable")
	}

	fxratesKey, _ := common.ResolveAPIKey(ctx, internalStore, "fxrates_api_key", config.Clients.FXRates.APIKey)

	geminiKey, err := common.ResolveAPIKey(ctx, internalStore, "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - news digest will be unavailable")
	}

	var eodhdClient *eodhd.Client
	if eodhdKey != "" {
		eodhdClient = eodhd.NewClient(eodhdKey,
			eodhd.WithLogger(logger),
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	// The FX provider works unauthenticated at a lower quota, so the client is
	// always constructed.
	fxClient := fxrates.NewClient(fxratesKey,
		fxrates.WithLogger(logger),
		fxrates.WithBaseURL(config.Clients.FXRates.BaseURL),
		fxrates.WithTimeout(config.Clients.FXRates.GetTimeout()),
	)

	var geminiClient *gemini.Client
	if geminiKey != "" {
		geminiClient, err = gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		}
	}

	fxService := fx.NewService(fxClient, logger)

	var marketClient interfaces.MarketDataClient
	if eodhdClient != nil {
		marketClient = eodhdClient
	}
	quoteService := quote.NewService(marketClient, logger)
	valuationService := valuation.NewService(quoteService, fxService, logger)
	snapshotService := snapshot.NewService(storageManager, valuationService, logger)
	portfolioService := portfolio.NewService(storageManager, logger)

	var aiClient interfaces.AIClient
	if geminiClient != nil {
		aiClient = geminiClient
	}
	newsService := news.NewService(marketClient, aiClient, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		EODHDClient:      eodhdClient,
		FXClient:         fxClient,
		GeminiClient:     geminiClient,
		FXService:        fxService,
		QuoteService:     quoteService,
		ValuationService: valuationService,
		SnapshotService:  snapshotService,
		PortfolioService: portfolioService,
		NewsService:      newsService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
