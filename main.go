// Package main implements the live playlist generator.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savid/iptv-livegen/config"
	"github.com/savid/iptv-livegen/handlers"
	"github.com/savid/iptv-livegen/internal/history"
	"github.com/savid/iptv-livegen/internal/metrics"
	"github.com/savid/iptv-livegen/pkg/data"
	"github.com/sirupsen/logrus"
)

func main() {
	// Configure logrus
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := run(os.Args[1:]); err != nil {
		logrus.WithError(err).Fatal("Playlist generator failed")
	}
}

// run owns every resource of the process so that its deferred cleanup happens
// before main exits.
func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set log level based on config
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	logrus.SetLevel(level)

	logger := logrus.StandardLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var runs *history.Store
	if cfg.HistoryDriver != "" {
		runs, err = history.Open(ctx, cfg.HistoryDriver, cfg.HistoryDSN)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer func() {
			if err := runs.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close run history")
			}
		}()
	}

	recorder := metrics.New()

	gen, err := newGenerator(cfg, runs, recorder, logger)
	if err != nil {
		return fmt.Errorf("failed to set up generator: %w", err)
	}

	if !cfg.Serve {
		if _, err := gen.run(ctx); err != nil {
			return fmt.Errorf("failed to generate playlist: %w", err)
		}
		return nil
	}

	return serve(ctx, cfg, gen, runs, recorder, logger)
}

func serve(ctx context.Context, cfg *config.Config, gen *generator, runs *history.Store, recorder *metrics.Recorder, logger *logrus.Logger) error {
	store := data.NewStore()
	refresher := data.NewRefresher(store, gen, cfg.RefreshInterval, logger)

	// Perform initial generation (blocking)
	logger.Info("Generating initial playlist...")
	if err := refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to generate initial playlist: %w", err)
	}

	go refresher.Start(ctx)

	var lister handlers.RunLister
	if runs != nil {
		lister = runs
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handlers.NewRouter(store, lister, recorder, logger),
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to gracefully shutdown")
		}
	}()

	logger.WithField("port", cfg.Port).Info("Starting playlist server")
	logger.WithField("endpoint", fmt.Sprintf("http://localhost:%d/live.m3u", cfg.Port)).Info("Playlist endpoint")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-ctx.Done()
	logger.Info("Server stopped")
	return nil
}
