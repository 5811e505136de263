package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/completion"
	"github.com/andrewpaige1/mindcanvas-api/config"
	"github.com/andrewpaige1/mindcanvas-api/editor"
	"github.com/andrewpaige1/mindcanvas-api/handlers"
	"github.com/andrewpaige1/mindcanvas-api/metrics"
	"github.com/andrewpaige1/mindcanvas-api/middleware"
	"github.com/andrewpaige1/mindcanvas-api/store"
	"github.com/andrewpaige1/mindcanvas-api/syncer"
	"github.com/andrewpaige1/mindcanvas-api/workspace"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func init() {
	// Load .env file if not in production environment
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: .env file could not be loaded: %v", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	checks := map[string]handlers.Check{}

	remote, err := openStore(cfg, checks)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	var state editor.StateStore = editor.NewMemoryState()
	if cfg.RedisURL != "" {
		redisState, err := editor.NewRedisState(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisState.Close()
		state = redisState
		checks["redis"] = redisState.Ping
	}

	collector := metrics.NewCollector("mindcanvas")

	openAI := completion.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, completion.WithModel(cfg.OpenAIModel))
	breaker := completion.NewBreaker(openAI, logger, completion.DefaultBreakerConfig("openai"))
	completer := completion.WithMetrics(breaker, collector)
	checks["completion"] = func(ctx context.Context) error {
		if breaker.State() == "open" {
			return errors.New("circuit breaker open")
		}
		return nil
	}

	registry := workspace.NewRegistry(remote, state, completer, logger, workspace.Options{
		Syncer: syncer.Options{
			DefaultMapTitle:    cfg.DefaultMapTitle,
			DefaultNodeLabel:   cfg.DefaultNodeLabel,
			DefaultNodeContent: cfg.DefaultNodeContent,
			Metrics:            collector,
		},
		RewriteTimeout: cfg.CompletionTimeout,
		IdleTTL:        cfg.WorkspaceIdleTTL,
	})

	authMiddleware, err := middleware.EnsureValidToken(cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up authentication", zap.Error(err))
	}

	APIHandler := handlers.NewAPIHandler(completer, cfg.CompletionTimeout, logger)
	api := http.NewServeMux()
	APIHandler.Register(api, registry)

	mux := http.NewServeMux()
	mux.Handle("/api/", authMiddleware(api))
	mux.HandleFunc("GET /healthz", handlers.Health(checks))
	mux.Handle("GET /metrics", collector.Handler())

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(mux)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.RequestLogger(logger, collector)(corsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go registry.Run(ctx, time.Minute)

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// Pending remote writes are drained before exit.
	registry.Close()
}

func openStore(cfg *config.Config, checks map[string]handlers.Check) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSupabase:
		return store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)
	case config.DriverPostgres, config.DriverSqlite:
		db, err := config.OpenDatabase(cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		checks["database"] = sqlDB.PingContext
		return store.NewGormStore(db), nil
	default:
		return store.NewMemoryStore(), nil
	}
}
