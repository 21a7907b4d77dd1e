package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the optional JSON config file")
	flag.Parse()

	if err := loadDotEnv(defaultDotEnvPath); err != nil {
		slog.Warn("Could not parse .env file", "error", err)
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("Could not load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stdout, config.LogLevel)

	store, err := NewPostgresStore(config.DB)
	if err != nil {
		logger.Error("Unable to initialize store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	publisher, err := newPublisher(config)
	if err != nil {
		logger.Error("Unable to initialize event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	page, err := LoadPage()
	if err != nil {
		logger.Error("Unable to load web page", "error", err)
		os.Exit(1)
	}

	h := NewHandler(store, publisher, page, logger)

	mux := chi.NewRouter()
	RegisterRouters(mux, h, config.AllowedOrigins)

	srv := &http.Server{
		Addr:           config.ListenAddr,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting server", "addr", config.ListenAddr, "db_host", config.DB.Host, "db_name", config.DB.Name)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-stopped
	logger.Info("Server stopped")
}
