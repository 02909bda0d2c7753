package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/common"
	"github.com/ternarybob/mediascope/internal/handlers"
	"github.com/ternarybob/mediascope/internal/interfaces"
	"github.com/ternarybob/mediascope/internal/services/batch"
	"github.com/ternarybob/mediascope/internal/services/chat"
	"github.com/ternarybob/mediascope/internal/services/cleanup"
	"github.com/ternarybob/mediascope/internal/services/events"
	"github.com/ternarybob/mediascope/internal/services/ffmpeg"
	"github.com/ternarybob/mediascope/internal/services/llm"
	"github.com/ternarybob/mediascope/internal/services/media"
	"github.com/ternarybob/mediascope/internal/services/pipeline"
	"github.com/ternarybob/mediascope/internal/services/providers"
	"github.com/ternarybob/mediascope/internal/services/report"
	badgerstore "github.com/ternarybob/mediascope/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Event fan-out
	Notifier interfaces.Notifier

	// Analysis providers
	VisionProvider interfaces.VisionProvider
	AudioProvider  interfaces.AudioProvider
	LLMService     interfaces.LLMService

	// Core services
	PipelineService *pipeline.Service
	MediaService    interfaces.MediaService
	BatchService    *batch.Service
	ChatService     interfaces.ChatService
	ReportService   interfaces.ReportService
	CleanupService  *cleanup.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	UploadHandler *handlers.UploadHandler
	MediaHandler  *handlers.MediaHandler
	BatchHandler  *handlers.BatchHandler
	ChatHandler   *handlers.ChatHandler
	ExportHandler *handlers.ExportHandler
	WSHandler     *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	app.PipelineService.Start()
	logger.Debug().Msg("Pipeline workers started")

	if err := app.CleanupService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Cleanup service failed to start")
	}

	logger.Info().
		Str("llm_provider", app.llmProviderName()).
		Bool("vision_enabled", app.VisionProvider != nil).
		Bool("audio_enabled", app.AudioProvider != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer (Badger)
func (a *App) initStorage() error {
	storageManager, err := badgerstore.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

func (a *App) initServices() error {
	ctx := context.Background()

	throttle := common.ParseDurationOr(a.Config.WebSocket.ProgressThrottle, 0)
	a.Notifier = events.NewNotifier(a.Logger, throttle)

	// Gemini backs both vision and audio analysis. Runs needing a missing
	// provider fail per-run instead of blocking startup.
	if a.Config.Gemini.APIKey != "" {
		gemini, err := providers.NewGeminiProvider(ctx, &a.Config.Gemini, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Gemini provider unavailable, image and audio analysis disabled")
		} else {
			a.VisionProvider = gemini
			a.AudioProvider = gemini
		}
	} else {
		a.Logger.Warn().Msg("No Gemini API key configured, image and audio analysis disabled")
	}

	llmService, err := llm.NewLLMService(ctx, a.Config, a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("No LLM provider available, summaries and chat degraded")
	} else {
		a.LLMService = llmService
	}

	tools := ffmpeg.NewToolchain()
	if !ffmpeg.Available() {
		a.Logger.Warn().Msg("ffmpeg not found on PATH, audio and video analysis will fail")
	}

	a.PipelineService = pipeline.NewService(
		a.Config,
		a.StorageManager,
		a.Notifier,
		a.VisionProvider,
		a.AudioProvider,
		a.LLMService,
		tools,
		a.Logger,
	)

	a.MediaService = media.NewService(&a.Config.Upload, a.StorageManager, tools, a.Logger)
	a.BatchService = batch.NewService(a.MediaService, a.PipelineService, a.Logger)
	a.ChatService = chat.NewService(a.StorageManager, a.LLMService, a.Logger)
	a.ReportService = report.NewService(a.StorageManager, a.Logger)
	a.CleanupService = cleanup.NewService(&a.Config.Cleanup, a.Logger, a.PipelineService, a.BatchService)

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Config, a.StorageManager, a.PipelineService)
	a.UploadHandler = handlers.NewUploadHandler(a.MediaService, a.PipelineService, a.Logger)
	a.MediaHandler = handlers.NewMediaHandler(a.MediaService, a.StorageManager, a.PipelineService, a.Logger)
	a.BatchHandler = handlers.NewBatchHandler(a.BatchService, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.Logger)
	a.ExportHandler = handlers.NewExportHandler(a.ReportService, a.StorageManager, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.Notifier, a.StorageManager, a.Logger)
}

func (a *App) llmProviderName() string {
	if a.LLMService == nil {
		return "none"
	}
	return a.LLMService.GetProviderName()
}

// Close shuts down services in reverse dependency order
func (a *App) Close() error {
	if a.CleanupService != nil {
		a.CleanupService.Stop()
		a.Logger.Info().Msg("Cleanup service stopped")
	}

	if a.PipelineService != nil {
		done := make(chan struct{})
		go func() {
			a.PipelineService.Stop()
			close(done)
		}()
		select {
		case <-done:
			a.Logger.Info().Msg("Pipeline workers stopped")
		case <-time.After(30 * time.Second):
			a.Logger.Warn().Msg("Pipeline workers did not stop in time")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
