package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"bytebuddhi-be/internal/config"
	"bytebuddhi-be/internal/controller"
	"bytebuddhi-be/internal/handler"
	"bytebuddhi-be/internal/pkg/logger"
	"bytebuddhi-be/internal/pkg/mailer"
	"bytebuddhi-be/internal/repository/memory"
	"bytebuddhi-be/internal/repository/unitofwork"
	internalRetrieval "bytebuddhi-be/internal/retrieval"
	"bytebuddhi-be/internal/service"
	"bytebuddhi-be/internal/websocket"
	"bytebuddhi-be/pkg/agent"
	"bytebuddhi-be/pkg/llm/factory"
	pktNats "bytebuddhi-be/pkg/nats"
	"bytebuddhi-be/pkg/websearch/tavily"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	OAuthController   controller.IOAuthController
	ProjectController controller.IProjectController
	ChatController    controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	uowFactory := unitofwork.NewRepositoryFactory(db)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.App.ClientURL,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	if cfg.Ai.EmbeddingProvider != "" && cfg.Ai.EmbeddingProvider != cfg.Ai.LLMProvider {
		embedder, err := factory.NewEmbeddingProvider(
			cfg.Ai.EmbeddingProvider,
			cfg.Ai.OllamaBaseURL,
			cfg.Keys.GoogleGemini,
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
		}
		llmProvider = factory.WithEmbedder(llmProvider, embedder)
		log.Printf("[INFO] Using embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}

	searchProvider := tavily.NewTavilyClient(cfg.Keys.Tavily)
	retriever := internalRetrieval.NewPgVectorRetriever(uowFactory, llmProvider)

	// 4. Query Workflow
	agentLogger := initAgentLogger()
	workflowRouter := agent.NewRouter()
	engine := agent.NewEngine(workflowRouter, agentLogger, []agent.Stage{
		agent.NewClassifyStage(llmProvider, agentLogger),
		agent.NewSearchStage(searchProvider, agentLogger),
		agent.NewRetrieveStage(retriever, agentLogger),
		agent.NewRespondStage(llmProvider, agentLogger),
	})
	queryAgent := agent.NewAgent(engine, agentLogger)

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	historyCache := memory.NewHistoryCache(rdb)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.IndexProjectTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IndexProjectTopic,
		uowFactory,
		llmProvider,
		natsPub,
	)

	authService := service.NewAuthService(uowFactory, emailService, natsPub, cfg.Auth.JwtSecret)
	oauthService := service.NewOAuthService(
		uowFactory,
		cfg.Auth.GithubClientId,
		cfg.Auth.GithubClientSecret,
		cfg.App.BaseURL,
		cfg.Auth.JwtSecret,
	)

	projectService := service.NewProjectService(uowFactory, publisherService)
	chatService := service.NewChatService(uowFactory, queryAgent, historyCache)

	// 7. Notification System
	notifService := service.NewNotificationService(natsSub, wsHub, appLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		AuthController:      controller.NewAuthController(authService),
		OAuthController:     controller.NewOAuthController(oauthService),
		ProjectController:   controller.NewProjectController(projectService),
		ChatController:      controller.NewChatController(chatService),

		ConsumerService: consumerService,
	}
}

func initAgentLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "agent_workflow.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[AGENT] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
