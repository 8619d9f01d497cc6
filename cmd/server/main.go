package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/api"
	"github.com/user-import-api/internal/config"
	"github.com/user-import-api/internal/database"
	"github.com/user-import-api/internal/repository"
	"github.com/user-import-api/internal/service"
	"github.com/user-import-api/pkg/logger"
)

func main() {
	// A missing .env file is fine, the environment wins either way
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(config.LogConfig{})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info().Msg("Starting User Import API server...")
	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	// Initialize the record store
	repos, closeStore := openStore(cfg, log)
	defer closeStore()

	// Initialize services
	services := service.NewServices(repos, log)

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("store", cfg.Store.Driver).
			Str("cors_origin", cfg.CORS.AllowedOrigin).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited gracefully")
}

// openStore builds the configured record store and returns its cleanup function
func openStore(cfg *config.Config, log zerolog.Logger) (*repository.Repositories, func()) {
	if cfg.Store.Driver != config.StorePostgres {
		log.Info().Str("store", config.StoreMemory).Msg("Using in-memory record store, data is lost on restart")
		return repository.NewMemory(), func() {}
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		db.Close()
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	return repository.New(db), func() { db.Close() }
}
