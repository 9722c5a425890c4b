package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appdashboard "github.com/stockpilot/backend/internal/application/dashboard"
	appincoming "github.com/stockpilot/backend/internal/application/incoming"
	appinventory "github.com/stockpilot/backend/internal/application/inventory"
	appproduction "github.com/stockpilot/backend/internal/application/production"
	apptransfer "github.com/stockpilot/backend/internal/application/transfer"
	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/infrastructure/auth"
	"github.com/stockpilot/backend/internal/infrastructure/cache"
	"github.com/stockpilot/backend/internal/infrastructure/config"
	"github.com/stockpilot/backend/internal/infrastructure/ecommerce"
	"github.com/stockpilot/backend/internal/infrastructure/event"
	"github.com/stockpilot/backend/internal/infrastructure/logger"
	"github.com/stockpilot/backend/internal/infrastructure/notification"
	"github.com/stockpilot/backend/internal/infrastructure/persistence"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
	"github.com/stockpilot/backend/internal/infrastructure/telemetry"
	"github.com/stockpilot/backend/internal/interfaces/http/handler"
	"github.com/stockpilot/backend/internal/interfaces/http/middleware"
	"github.com/stockpilot/backend/internal/interfaces/http/router"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Stockpilot Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize the durable store
	blobStore, err := newBlobStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize blob store", zap.Error(err))
	}
	docs := storage.NewDocumentStore(blobStore, log)
	log.Info("Durable store ready", zap.String("backend", cfg.Storage.Backend))

	// Initialize repositories
	transferRepo := persistence.NewBlobTransferRepository(docs)
	productionRepo := persistence.NewBlobProductionRepository(docs)

	// Shopify platform adapter; a missing token leaves the port unconfigured
	// so the rest of the dashboard still works
	var platform inventory.Platform
	if cfg.Shopify.AccessToken != "" {
		adapter, err := ecommerce.NewShopifyAdapter(&ecommerce.ShopifyConfig{
			ShopDomain:  cfg.Shopify.ShopDomain,
			AccessToken: cfg.Shopify.AccessToken,
			APIVersion:  cfg.Shopify.APIVersion,
			Timeout:     cfg.Shopify.Timeout,
			PageSize:    cfg.Shopify.PageSize,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize Shopify adapter", zap.Error(err))
		}
		platform = adapter
		log.Info("Shopify adapter ready", zap.String("shop", cfg.Shopify.ShopDomain))
	} else {
		platform = ecommerce.NewUnconfiguredPlatform()
		log.Warn("Shopify access token not set, snapshot refresh is disabled")
	}

	// Alert deduplication store: Redis when enabled, in-memory otherwise
	var dedup cache.DedupStore
	if cfg.Redis.Enabled {
		redisDedup, err := cache.NewRedisDedupStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisDedup.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		dedup = redisDedup
		log.Info("Redis dedup store ready", zap.String("addr", cfg.Redis.Addr()))
	} else {
		dedup = cache.NewInMemoryDedupStore()
	}

	// Initialize application services
	projectionService := appincoming.NewProjectionService(docs, log)
	inventoryService := appinventory.NewService(docs, platform, dedup,
		cfg.Inventory.LowStockThreshold, cfg.Inventory.AlertDedupTTL, log)
	transferService := apptransfer.NewService(transferRepo, projectionService,
		inventoryService, cfg.Transfer.StrictStockCheck, log)
	productionService := appproduction.NewService(productionRepo, log)
	dashboardService := appdashboard.NewService(docs, log)

	// Auth services over the statically configured accounts
	jwtService := auth.NewJWTService(cfg.JWT)
	authenticator := auth.NewAuthenticator(cfg.Auth.Users)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	transferService.SetEventPublisher(eventBus)
	productionService.SetEventPublisher(eventBus)
	inventoryService.SetEventPublisher(eventBus)

	// Slack notifications: fire and forget through a background dispatcher
	if cfg.Slack.Enabled {
		slackClient, err := notification.NewSlackClient(cfg.Slack.WebhookURL, cfg.Slack.Channel, cfg.Slack.Timeout)
		if err != nil {
			log.Fatal("Failed to initialize Slack client", zap.Error(err))
		}
		dispatcher := notification.NewDispatcher(slackClient, log,
			notification.WithQueueSize(cfg.Slack.QueueSize),
			notification.WithSendTimeout(cfg.Slack.Timeout),
		)
		dispatcher.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := dispatcher.Stop(stopCtx); err != nil {
				log.Error("Error stopping Slack dispatcher", zap.Error(err))
			}
		}()
		eventBus.Subscribe(dispatcher, dispatcher.EventTypes()...)
		log.Info("Slack notifications enabled",
			zap.String("channel", cfg.Slack.Channel),
			zap.Strings("events", dispatcher.EventTypes()),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding validations
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))

	// Health check endpoint, outside API versioning and auth
	systemHandler := handler.NewSystemHandler(version)
	engine.GET("/health", systemHandler.Health)

	// API routes: login is public, everything else sits behind JWT auth
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.JWTAuth(jwtService, log)),
	)
	r.RegisterPublic(handler.NewAuthHandler(authenticator, jwtService))
	r.Register(systemHandler).
		Register(handler.NewTransferHandler(transferService)).
		Register(handler.NewIncomingHandler(projectionService, transferRepo)).
		Register(handler.NewProductionHandler(productionService)).
		Register(handler.NewInventoryHandler(inventoryService)).
		Register(handler.NewDashboardHandler(dashboardService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newBlobStore builds the configured durable store backend
func newBlobStore(cfg *config.Config, log *zap.Logger) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3BlobStore(&cfg.Storage, storage.WithLogger(log))
	case "memory":
		log.Warn("Using in-memory storage, documents are lost on restart")
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewFileStore(cfg.Storage.DataDir)
	}
}
