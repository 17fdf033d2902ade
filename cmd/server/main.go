// cmd/server is the application entry point. It wires config, database,
// services and the HTTP stack together and runs the server until SIGINT or
// SIGTERM.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"whenworks/config"
	delivery "whenworks/internal/delivery/http"
	"whenworks/internal/delivery/http/controllers"
	"whenworks/internal/delivery/http/middleware"
	"whenworks/internal/repository/postgres"
	"whenworks/internal/services"
)

func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(db); err != nil {
		logger.Error("run migrations", "err", err)
		os.Exit(1)
	}

	txm := postgres.NewTxManager(db)
	scheduleService := services.NewScheduleService(txm, cfg.PublicIDLength, 10*time.Second)

	scheduleController := controllers.NewScheduleController(logger, scheduleService)
	healthController := controllers.NewHealthController(logger, db)

	mux := delivery.NewRouter(scheduleController, healthController)
	handler := middleware.RequestID(
		middleware.ClientIP(
			middleware.LoggingMiddleware(logger, mux),
		),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
