// Package main is the entry point for the usersettings-server application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/CreativeUnicorns/usersettings"
	"github.com/CreativeUnicorns/usersettings/api"
	"github.com/CreativeUnicorns/usersettings/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		usersettings.NewDefaultLogger().Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := usersettings.LogLevelInfo
	if cfg.Debug {
		level = usersettings.LogLevelDebug
	}
	logger := usersettings.NewLogger(os.Stderr, level)
	logger.Info("Usersettings server starting up...", "backend", cfg.Store.Backend)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.ConnectTimeout)
	coll, err := openCollection(ctx, cfg)
	if err != nil {
		cancel()
		logger.Error("Failed to connect to document store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}

	notifier, closers, err := buildNotifier(ctx, cfg, logger)
	if err != nil {
		cancel()
		logger.Error("Failed to set up log channel", "error", err)
		os.Exit(1)
	}

	store, err := usersettings.New(ctx,
		usersettings.WithCollection(coll),
		usersettings.WithNotifier(notifier),
		usersettings.WithLogger(logger),
		usersettings.WithDefaults(cfg.SettingsDefaults()),
	)
	cancel()
	if err != nil {
		logger.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}

	var apiServer *api.Server
	if cfg.HTTP.Addr != "" {
		apiServer, err = api.NewServer(api.Config{
			ListenAddress:   cfg.HTTP.Addr,
			Store:           store,
			Logger:          logger,
			ReadTimeout:     cfg.HTTP.ReadTimeout,
			WriteTimeout:    cfg.HTTP.WriteTimeout,
			IdleTimeout:     cfg.HTTP.IdleTimeout,
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		})
		if err != nil {
			logger.Error("Failed to create API server", "error", err)
			os.Exit(1)
		}

		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("API server error", "error", err)
				os.Exit(1)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if apiServer != nil {
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
	}
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Error("Failed to close log channel client", "error", err)
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("Failed to close document store", "error", err)
	}

	logger.Info("Server exited gracefully")
}
