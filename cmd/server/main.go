package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courseforge/dragdrop-service/internal/cache"
	"github.com/courseforge/dragdrop-service/internal/config"
	"github.com/courseforge/dragdrop-service/internal/events"
	"github.com/courseforge/dragdrop-service/internal/handlers"
	"github.com/courseforge/dragdrop-service/internal/services"
	"github.com/courseforge/dragdrop-service/internal/store"
	"github.com/courseforge/dragdrop-service/internal/store/local"
	"github.com/courseforge/dragdrop-service/internal/store/postgres"
	"github.com/courseforge/dragdrop-service/internal/utils"
	"github.com/courseforge/dragdrop-service/internal/validator"
	"github.com/courseforge/dragdrop-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Remote document store (course platform database)
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	remoteStore := postgres.NewExercisePostgreSQL(db)
	if err := remoteStore.Migrate(); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Local fallback store
	localStore, err := local.Open(ctx, cfg.LocalDBPath)
	if err != nil {
		logger.Error("Failed to open local store", "error", err)
		os.Exit(1)
	}
	defer localStore.Close()

	documentStore := store.NewFallbackStore(remoteStore, localStore, slogger)

	// Cache: Redis when configured, in-process otherwise
	var cacheService cache.CacheService
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogger)
	} else {
		logger.Info("No Redis configured, using in-memory cache")
		cacheService = cache.NewMemoryCache()
	}

	// Event publishing
	eventCfg := config.LoadEventConfig()
	eventPublisher, err := eventCfg.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher, using mock", "error", err)
		eventPublisher = events.NewMockEventPublisher(slogger)
	}
	defer eventPublisher.Close()

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		logger.Warn("Invalid SESSION_TTL, using default", "value", cfg.SessionTTL)
		sessionTTL = services.DefaultSessionTTL
	}

	serviceManager := services.NewServiceManager(services.Dependencies{
		Store:      documentStore,
		Lister:     remoteStore,
		Cache:      cacheService,
		Events:     eventPublisher,
		Validator:  validator.New(),
		Logger:     slogger,
		SessionTTL: sessionTTL,
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
