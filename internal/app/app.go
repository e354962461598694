package app

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/handlers"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/modules"
	"github.com/ternarybob/censeo/internal/orchestrator"
	"github.com/ternarybob/censeo/internal/services/credentials"
	"github.com/ternarybob/censeo/internal/services/events"
	"github.com/ternarybob/censeo/internal/services/scheduler"
	"github.com/ternarybob/censeo/internal/storage"
	"github.com/ternarybob/censeo/internal/synthesis"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager
	EventService   interfaces.EventService
	Credentials    *credentials.Service
	Orchestrator   interfaces.AnalysisOrchestrator
	Scheduler      *scheduler.Service

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	AnalysisHandler *handlers.AnalysisHandler
	APIKeyHandler   *handlers.APIKeyHandler
	WSHandler       *handlers.WebSocketHandler
}

// New wires all services and handlers from configuration
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	a.EventService = events.NewService(logger)

	credentialService, err := credentials.NewService(storageManager.KeyValueStorage(), config.Credentials.EncryptionKey, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize credential service: %w", err)
	}
	a.Credentials = credentialService

	providerClient := modules.NewClient(
		modules.WithBaseURL(config.Provider.BaseURL),
		modules.WithLogger(logger),
		modules.WithRateLimit(config.Provider.RateLimit),
		modules.WithHTTPClient(&http.Client{
			Timeout: common.ParseDuration(config.Provider.RequestTimeout, modules.DefaultTimeout),
		}),
	)
	analysisModules := []interfaces.AnalysisModule{
		modules.NewFundamentalModule(providerClient),
		modules.NewTechnicalModule(providerClient),
		modules.NewESGModule(providerClient),
	}

	engineConfig := synthesis.DefaultConfig()
	if config.Analysis.APIVersion != "" {
		engineConfig.APIVersion = config.Analysis.APIVersion
	}

	a.Orchestrator = orchestrator.New(
		analysisModules,
		synthesis.NewEngine(engineConfig),
		credentialService,
		storageManager.AnalysisStorage(),
		a.EventService,
		logger,
		orchestrator.Options{
			ModuleTimeout:   common.ParseDuration(config.Analysis.ModuleTimeout, orchestrator.DefaultOptions().ModuleTimeout),
			WorkflowTimeout: common.ParseDuration(config.Analysis.WorkflowTimeout, orchestrator.DefaultOptions().WorkflowTimeout),
			RetryPolicy: orchestrator.RetryPolicy{
				MaxAttempts:    config.Provider.MaxAttempts,
				BaseDelay:      common.ParseDuration(config.Provider.RetryBaseDelay, orchestrator.DefaultRetryPolicy().BaseDelay),
				MaxDelay:       common.ParseDuration(config.Provider.RetryMaxDelay, orchestrator.DefaultRetryPolicy().MaxDelay),
				JitterFraction: config.Provider.JitterFraction,
			},
		},
	)

	if config.Retention.Enabled {
		a.Scheduler = scheduler.NewService(
			storageManager.AnalysisStorage(),
			a.EventService,
			logger,
			config.Retention.Schedule,
			common.ParseDuration(config.Retention.MaxAge, 0),
		)
		if err := a.Scheduler.Start(); err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to start retention scheduler: %w", err)
		}
	}

	a.APIHandler = handlers.NewAPIHandler()
	a.AnalysisHandler = handlers.NewAnalysisHandler(a.Orchestrator, storageManager.AnalysisStorage(), logger)
	a.APIKeyHandler = handlers.NewAPIKeyHandler(credentialService, logger)
	if config.WebSocket.Enabled {
		a.WSHandler = handlers.NewWebSocketHandler(a.EventService, logger, &config.WebSocket)
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("storage", config.Storage.Badger.Path).
		Msg("Application initialized")

	return a, nil
}

// Close shuts down all application components
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.WSHandler != nil {
		a.WSHandler.Close()
	}
	if closer, ok := a.EventService.(interface{ Close() error }); ok {
		closer.Close()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
