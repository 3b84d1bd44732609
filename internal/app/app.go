// Package app wires Folio's configuration, storage, clients and services.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dpetrov/folio/internal/clients/gemini"
	"github.com/dpetrov/folio/internal/clients/newsfeed"
	"github.com/dpetrov/folio/internal/clients/publicportfolio"
	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/interfaces"
	"github.com/dpetrov/folio/internal/services/analysis"
	"github.com/dpetrov/folio/internal/services/batch"
	"github.com/dpetrov/folio/internal/services/portfolio"
	"github.com/dpetrov/folio/internal/storage"
)

// App holds the application state and all wired services.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	NewsClient       interfaces.NewsClient
	CompletionClient interfaces.CompletionClient

	Portfolio interfaces.PortfolioService
	Analysis  interfaces.AnalysisService
	Batch     interfaces.BatchCoordinator

	StartupTime time.Time
}

// NewApp initializes the application from the config path. An empty path
// falls back to folio.toml next to the binary, then defaults.
func NewApp(configPath string) (*App, error) {
	if configPath == "" {
		if exe, err := os.Executable(); err == nil {
			candidate := filepath.Join(filepath.Dir(exe), "folio.toml")
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
			}
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		StartupTime: time.Now(),
	}

	a.NewsClient = newsfeed.NewClient(
		newsfeed.WithTimeout(config.Clients.News.GetTimeout()),
		newsfeed.WithLogger(logger),
	)

	// The completion client needs an API key. Without one the server still
	// serves sync and queries; analysis endpoints report the missing provider.
	if apiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey); err == nil {
		client, err := gemini.NewClient(context.Background(), apiKey,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create Gemini client, analysis disabled")
		} else {
			a.CompletionClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured, analysis disabled")
	}

	fetcher := publicportfolio.NewClient(publicportfolio.WithLogger(logger))

	a.Portfolio = portfolio.NewService(storageManager, config, logger,
		portfolio.WithFetcher(fetcher))
	a.Analysis = analysis.NewService(storageManager, a.NewsClient, a.CompletionClient, config, logger)
	a.Batch = batch.NewCoordinator(a.Portfolio, a.Analysis, logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("version", common.GetVersion()).
		Bool("gemini_configured", a.CompletionClient != nil).
		Msg("App initialized")

	return a, nil
}

// Close shuts down the application and releases resources.
func (a *App) Close() {
	if a.CompletionClient != nil {
		if err := a.CompletionClient.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close completion client")
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
}
