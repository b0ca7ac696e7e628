// Package main is the entry point for the DIYHub API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"diyhub/internal/auth"
	"diyhub/internal/cache"
	"diyhub/internal/config"
	"diyhub/internal/database"
	"diyhub/internal/handlers"
	"diyhub/internal/middleware"
	"diyhub/internal/router"
	"diyhub/internal/store"
)

func main() {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache). The API works without
	// it; aggregate endpoints just skip caching.
	var responseCache *cache.ResponseCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey not available — response caching disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		responseCache = cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	projectStore := store.NewProjectStore(db)
	savedStore := store.NewSavedStore(db)

	tokens := auth.NewTokens(cfg.JWTSecret)

	// Rate limiter for the credential endpoints.
	limiter := middleware.NewRateLimiter(10, time.Minute)
	defer limiter.Stop()

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(userStore, tokens)
	projectHandlers := handlers.NewProjects(projectStore, savedStore, userStore, responseCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(tokens, userStore, authHandlers, projectHandlers, limiter, cfg.CORSOrigins)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
