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

	"github.com/nemopss/expense-tracker/backend/api"
	"github.com/nemopss/expense-tracker/backend/auth"
	"github.com/nemopss/expense-tracker/backend/config"
	"github.com/nemopss/expense-tracker/backend/db"
	_ "github.com/nemopss/expense-tracker/backend/docs"
	"github.com/nemopss/expense-tracker/backend/events"
	"github.com/nemopss/expense-tracker/backend/logger"
)

// @title Expense Tracker API
// @version 1.0
// @description Categories, transactions and monthly spending reports.
// @BasePath /

// @SecurityDefinitions.apikey ApiKeyAuth
// @In header
// @Name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)
	appLog := logger.Component(log, logger.ComponentApp)

	storageLog := logger.Component(log, logger.ComponentStorage)
	storage, err := openStorage(cfg)
	if err != nil {
		storageLog.Error("Failed to open database", "error", err, "driver", cfg.DBDriver)
		os.Exit(1)
	}
	defer storage.Close()
	storageLog.Info("Database ready", "driver", storage.Driver())

	publisher := events.Publisher(events.Noop{})
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			appLog.Error("Failed to connect to AMQP broker", "error", err)
			os.Exit(1)
		}
		publisher = p
		appLog.Info("Publishing change events", "exchange", cfg.AMQPExchange)
	}
	defer publisher.Close()

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, storage, db.ErrNotFound)
	handler := api.NewHandler(storage, verifier, publisher)

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        api.NewRouter(handler, log),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLog.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server shutdown error", "error", err)
	}
	appLog.Info("Server stopped gracefully")
}

func openStorage(cfg *config.Config) (*db.Storage, error) {
	if db.Driver(cfg.DBDriver) == db.SQLite {
		return db.NewSQLiteStorage(cfg.SQLitePath)
	}
	return db.NewStorage(cfg.PostgresURL)
}
