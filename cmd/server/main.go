package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/year-bingo/tracker/internal/config"
	"github.com/year-bingo/tracker/internal/database"
	"github.com/year-bingo/tracker/internal/handlers"
	"github.com/year-bingo/tracker/internal/logging"
	"github.com/year-bingo/tracker/internal/middleware"
	"github.com/year-bingo/tracker/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	// Initialize logger
	logger := logging.New()

	// .env is a local development convenience; production config comes from the environment
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err == nil {
			logger.Info("Loaded environment from .env")
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{
			"env": cfg.Server.Environment,
		})
	}

	logger.Info("Starting bingo tracker server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	// Connect to Redis
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)

	userService := services.NewUserService(dbAdapter)
	bingoService := services.NewBingoDataService(dbAdapter)
	progressService := services.NewProgressService(dbAdapter)
	activityService := services.NewActivityService(dbAdapter)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	userHandler := handlers.NewUserHandler(userService)
	bingoHandler := handlers.NewBingoDataHandler(bingoService)
	progressHandler := handlers.NewProgressHandler(progressService)
	activityHandler := handlers.NewActivityHandler(activityService)

	// Initialize middleware
	requestLogger := middleware.NewRequestLogger(logger)
	rateLimit := resolveRateLimit(cfg, logger, os.LookupEnv)
	rateLimiter := middleware.NewRateLimiter(redisDB.Client, rateLimit, cfg.RateLimit.Window, "ratelimit:api:", true)

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// User endpoints
	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.HandleFunc("POST /api/users", userHandler.Create)
	mux.HandleFunc("GET /api/users/{id}", userHandler.Get)
	mux.HandleFunc("DELETE /api/users/{id}", userHandler.Delete)

	// Bingo data endpoints
	mux.HandleFunc("GET /api/users/{id}/data", bingoHandler.Get)
	mux.HandleFunc("PUT /api/users/{id}/data", bingoHandler.Replace)

	// Progress endpoints
	mux.HandleFunc("GET /api/users/{id}/progress", progressHandler.Get)
	mux.HandleFunc("PUT /api/users/{id}/progress", progressHandler.Merge)
	mux.HandleFunc("POST /api/users/{id}/randomize", progressHandler.MarkRandomized)
	mux.HandleFunc("POST /api/users/{id}/reset-progress", progressHandler.Reset)
	mux.HandleFunc("GET /api/users/{id}/cells/{index}", progressHandler.GetCell)
	mux.HandleFunc("PUT /api/users/{id}/cells/{index}", progressHandler.PutCell)
	mux.HandleFunc("DELETE /api/users/{id}/cells/{index}", progressHandler.DeleteCell)

	// Activity feed
	mux.HandleFunc("GET /api/activities", activityHandler.Feed)

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = rateLimiter.Middleware(handler)
	handler = requestLogger.Apply(handler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

func resolveRateLimit(cfg *config.Config, logger *logging.Logger, lookupEnv func(string) (string, bool)) int64 {
	rateLimit := cfg.RateLimit.Limit
	if cfg.Server.Environment == "development" {
		rateLimit = 1000
		logger.Info("Using development rate limit", map[string]interface{}{"limit": rateLimit})
	}
	if v, ok := lookupEnv("RATE_LIMIT"); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			rateLimit = parsed
			logger.Info("Using rate limit from env", map[string]interface{}{"limit": rateLimit})
		} else {
			logger.Warn("Invalid RATE_LIMIT; using default", map[string]interface{}{
				"value": v,
				"limit": rateLimit,
			})
		}
	}
	return rateLimit
}
