package data

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Generator produces a playlist and its encoded statistics.
type Generator interface {
	Generate(ctx context.Context) (playlist, stats []byte, err error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context) ([]byte, []byte, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context) ([]byte, []byte, error) {
	return f(ctx)
}

// Refresher manages periodic regeneration in the background.
type Refresher struct {
	store     *Store
	generator Generator
	interval  time.Duration
	logger    *logrus.Logger
}

// NewRefresher creates a new refresh manager.
func NewRefresher(store *Store, generator Generator, interval time.Duration, logger *logrus.Logger) *Refresher {
	return &Refresher{
		store:     store,
		generator: generator,
		interval:  interval,
		logger:    logger,
	}
}

// Start begins the refresh cycle, stopping when the context is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Refresh manager shutting down")
			return
		case <-ticker.C:
			err := r.Refresh(ctx)
			ticker.Reset(r.scheduleNextRefresh(err))
		}
	}
}

// Refresh generates once and stores the result on success. The store keeps the
// previous playlist when generation fails.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.logger.Info("Starting playlist refresh")

	playlist, stats, err := r.generator.Generate(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Failed to refresh playlist")
		return err
	}

	r.store.SetPlaylist(playlist, stats)

	r.logger.Info("Playlist refresh completed successfully")
	return nil
}

func (r *Refresher) scheduleNextRefresh(lastError error) time.Duration {
	if lastError == nil {
		return r.interval
	}

	// Retry sooner after a failure, at most 5 minutes later.
	backoffDuration := r.interval / 2
	if backoffDuration > 5*time.Minute {
		backoffDuration = 5 * time.Minute
	}

	r.logger.WithField("interval", backoffDuration).Warn("Using backoff interval due to refresh error")
	return backoffDuration
}
