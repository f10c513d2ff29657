package bootstrap

import (
	"log"
	"time"

	"f1-assistant-be/internal/config"
	"f1-assistant-be/internal/pkg/logger"
	"f1-assistant-be/internal/service"
	"f1-assistant-be/pkg/assistant/handler"
	"f1-assistant-be/pkg/assistant/history"
	"f1-assistant-be/pkg/assistant/intent"
	"f1-assistant-be/pkg/assistant/router"
	"f1-assistant-be/pkg/assistant/vision"
	"f1-assistant-be/pkg/events"
	"f1-assistant-be/pkg/llm"
	"f1-assistant-be/pkg/llm/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Services
	AssistantService service.IAssistantService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Core components exposed for harnesses
	QueryRouter *router.Router
	LLMProvider llm.LLMProvider
	Logger      logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	eventPublisher := events.NewWatermillPublisher(pubSub, cfg.App.EventTopic)

	// 3. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		time.Duration(cfg.Ai.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Engine components
	keywords := intent.DefaultKeywords()
	if len(cfg.Engine.DownloadKeywords) > 0 {
		keywords.Download = cfg.Engine.DownloadKeywords
	}
	if len(cfg.Engine.ReportKeywords) > 0 {
		keywords.Report = cfg.Engine.ReportKeywords
	}
	if len(cfg.Engine.ComparisonKeywords) > 0 {
		keywords.Comparison = cfg.Engine.ComparisonKeywords
	}
	if len(cfg.Engine.TechnicalKeywords) > 0 {
		keywords.Technical = cfg.Engine.TechnicalKeywords
	}

	engineLogger := log.Default()
	cacheTTL := time.Duration(cfg.Engine.ClassifierCacheTTLSec) * time.Second
	classifier := intent.NewClassifier(llmProvider, keywords, cacheTTL, engineLogger)
	compressor := history.NewCompressor(llmProvider, cfg.Engine.MaxInteractions, engineLogger)
	pipeline := vision.NewPipeline(llmProvider, engineLogger)
	registry := handler.NewRegistry(llmProvider, pipeline, engineLogger)

	queryRouter, err := router.NewRouter(
		classifier,
		compressor,
		registry,
		eventPublisher,
		engineLogger,
		router.Config{MaxImageSizeMB: cfg.Engine.MaxImageSizeMB},
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize query router: %v", err)
	}

	// 5. Services
	assistantService := service.NewAssistantService(queryRouter, llmProvider, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.App.EventTopic)

	return &Container{
		AssistantService: assistantService,
		ConsumerService:  consumerService,
		QueryRouter:      queryRouter,
		LLMProvider:      llmProvider,
		Logger:           sysLogger,
	}
}
