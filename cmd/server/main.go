package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"character-chat/backend/internal/models"
	"character-chat/backend/pkg/config"
	"character-chat/backend/pkg/di"
	"character-chat/backend/pkg/logger"
	"character-chat/backend/pkg/observability"
	"character-chat/backend/pkg/router"
	"character-chat/backend/pkg/secrets"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting character chat server", "env", cfg.Server.Env)

	if err := secrets.Init(log); err != nil {
		log.LogError(err, "Failed to initialize secrets manager")
		os.Exit(1)
	}

	db, err := config.NewDB(log)
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Character{},
		&models.Conversation{},
		&models.Message{},
		&models.User{},
	); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// Conversation transcripts are always read in timestamp order.
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_conv_ts ON messages(conversation_id, timestamp)").Error; err != nil {
		log.LogError(err, "Failed to create message index", "index", "idx_messages_conv_ts")
	}

	container := di.New(cfg, db, log)

	// Bootstrap a staff account when configured, so a fresh deployment has
	// an admin login without manual SQL.
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := container.Users.EnsureStaffUser(ctx, "Admin", email, os.Getenv("ADMIN_PASSWORD")); err != nil {
			log.LogError(err, "Failed to bootstrap staff user", "email", email)
		}
		cancel()
	}

	shutdownTracing, err := observability.SetupTracing("character-chat")
	if err != nil {
		log.LogError(err, "Failed to set up tracing")
	}

	_, metricsHandler, err := observability.SetupMetrics()
	if err != nil {
		log.LogError(err, "Failed to set up metrics")
	}

	r := router.New(container)
	r.SetupRoutes(metricsHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r.Engine,
		ReadHeaderTimeout: cfg.Server.Timeout,
		// No WriteTimeout: chat turns block on the completion provider,
		// which enforces its own deadline.
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			log.LogError(err, "Failed to flush traces")
		}
	}

	log.Info("Server exited gracefully")
}
