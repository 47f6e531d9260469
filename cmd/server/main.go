package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Deekshi05/AceAI/internal/ai"
	_ "github.com/Deekshi05/AceAI/internal/ai/gemini"
	_ "github.com/Deekshi05/AceAI/internal/ai/webhook"
	"github.com/Deekshi05/AceAI/internal/audit"
	"github.com/Deekshi05/AceAI/internal/config"
	"github.com/Deekshi05/AceAI/internal/events"
	"github.com/Deekshi05/AceAI/internal/handlers"
	"github.com/Deekshi05/AceAI/internal/jobs"
	"github.com/Deekshi05/AceAI/internal/metrics"
	"github.com/Deekshi05/AceAI/internal/recorder"
	"github.com/Deekshi05/AceAI/internal/repositories"
	"github.com/Deekshi05/AceAI/internal/repositories/memory"
	mongorepo "github.com/Deekshi05/AceAI/internal/repositories/mongo"
	"github.com/Deekshi05/AceAI/internal/routers"
	"github.com/Deekshi05/AceAI/internal/state"
	"github.com/Deekshi05/AceAI/internal/upload"
)

func registerRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler, liveHandler *handlers.LiveHandler, aiHandler *handlers.AIHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.SessionRoutes(router, sessionHandler, liveHandler)
	routers.AIRoutes(router, aiHandler)
}

func main() {
	// optional .env for local development
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("port", cfg.Port))

	ctx := context.Background()

	// session store: mongo when configured, in-memory otherwise
	var store repositories.SessionStore
	var storePing func() error
	var mongoClient *mongorepo.Client
	if cfg.MongoURI != "" {
		mongoClient, err = mongorepo.NewClient(ctx)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		repo, err := mongorepo.NewSessionRepo(mongoClient)
		if err != nil {
			logger.Fatal("Failed to initialize session repository", zap.Error(err))
		}
		store = repo
		storePing = func() error { return mongoClient.Ping(context.Background()) }
		logger.Info("Using MongoDB session store")
	} else {
		store = memory.NewSessionStore()
		logger.Warn("MONGO_URI not set, sessions are held in memory and lost on restart")
	}

	// lifecycle event publisher, optional
	var publisher *events.Publisher
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("Redis unreachable, lifecycle events disabled", zap.Error(err))
		} else {
			publisher = events.NewPublisher(rdb, logger)
			logger.Info("Lifecycle events enabled", zap.String("channel", events.Channel))
		}
	}

	// interaction archive, optional
	var archiver *audit.Archiver
	if cfg.PostgresDSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
		if err != nil {
			logger.Error("Failed to connect to Postgres, interaction archive disabled", zap.Error(err))
		} else {
			archiver, err = audit.NewArchiver(db)
			if err != nil {
				logger.Error("Failed to initialize interaction archive", zap.Error(err))
				archiver = nil
			} else {
				logger.Info("Interaction archive enabled")
			}
		}
	}

	// AI provider based on configuration
	aiProvider, err := ai.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	machine := state.NewMachine(store, publisher, logger)
	rec := recorder.New(store, archiver, logger)
	uploader := upload.NewClient(upload.NewConfig())

	sessionHandler := handlers.NewSessionHandler(store, machine, rec, logger)
	liveHandler := handlers.NewLiveHandler(store, machine, rec, aiProvider, logger)
	aiHandler := handlers.NewAIHandler(aiProvider, uploader, store, rec, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, store, cfg, storePing)

	// background jobs
	sweeper := jobs.NewTimeoutSweeper(store, machine, &jobs.SweeperConfig{
		Schedule: cfg.SweeperSchedule,
		Enabled:  cfg.SweeperEnabled,
	}, logger)
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start timeout sweeper", zap.Error(err))
	}

	var exporter *jobs.InteractionExporter
	if archiver != nil {
		exporter = jobs.NewInteractionExporter(archiver, &jobs.ExporterConfig{
			Schedule:  cfg.ExportSchedule,
			ExportDir: cfg.ExportDir,
			Enabled:   cfg.ExportEnabled,
		}, logger)
		if err := exporter.Start(); err != nil {
			logger.Error("Failed to start interaction exporter", zap.Error(err))
		}
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer)
	router.Use(metrics.Middleware())

	registerRoutes(router, sessionHandler, liveHandler, aiHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts; WriteTimeout stays generous because
	// question generation can take up to two minutes
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	sweeper.Stop()
	if exporter != nil {
		exporter.Stop()
	}

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}

	logger.Info("Interview service exited")
}
