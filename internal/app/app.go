// Package app wires configuration, storage, clients and services together.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/folio/internal/clients/marketfeed"
	"github.com/bobmcallan/folio/internal/clients/mockfeed"
	"github.com/bobmcallan/folio/internal/clients/newswire"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/analyzer"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/scheduler"
	badgerstore "github.com/bobmcallan/folio/internal/storage/badger"
)

// App holds all initialized services, clients and storage. It is the shared
// core used by cmd/folio-server and by handler tests.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MarketClient     interfaces.MarketDataClient
	NewsClient       interfaces.NewsClient
	Analyzer         interfaces.AnalyzerService
	Scheduler        interfaces.SchedulerService
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients and services from config.
// configPath may be empty, in which case FOLIO_CONFIG and the binary
// directory are tried before the development fallback.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := badgerstore.NewManager(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Market data: real provider when an API key is configured, otherwise
	// the built-in mock provider.
	var marketClient interfaces.MarketDataClient
	if config.Clients.MarketFeed.APIKey != "" && !config.Clients.MarketFeed.UseMockData {
		marketClient = marketfeed.NewClient(config.Clients.MarketFeed.APIKey,
			marketfeed.WithLogger(logger),
			marketfeed.WithBaseURL(config.Clients.MarketFeed.BaseURL),
			marketfeed.WithRateLimit(config.Clients.MarketFeed.RateLimit),
			marketfeed.WithTimeout(config.Clients.MarketFeed.GetTimeout()),
		)
	} else {
		logger.Info().Msg("Using mock market data provider")
		marketClient = mockfeed.NewClient(logger)
	}

	var newsClient interfaces.NewsClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := newswire.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			newswire.WithLogger(logger),
			newswire.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize news client - news refresh disabled")
		} else {
			newsClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - news refresh disabled")
	}

	analyzerService := analyzer.NewService(marketClient, logger)
	schedulerService := scheduler.NewService(analyzerService, newsClient, storageManager, logger, config.Scheduler)
	portfolioService := portfolio.NewService(storageManager, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		MarketClient:     marketClient,
		NewsClient:       newsClient,
		Analyzer:         analyzerService,
		Scheduler:        schedulerService,
		PortfolioService: portfolioService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App. Shutdown order: stop the
// scheduler, close storage.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
