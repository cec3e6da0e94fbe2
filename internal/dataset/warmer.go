package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher reloads a cache.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Warmer refreshes the cache on a cron schedule so queries rarely wait for
// the upstream.
type Warmer struct {
	scheduler *cron.Cron
	target    Refresher
	timeout   time.Duration
	logger    *slog.Logger
}

// NewWarmer schedules refreshes of target. schedule is a standard cron
// expression or descriptor such as "@every 55m". Each run is bounded by timeout.
func NewWarmer(schedule string, target Refresher, timeout time.Duration, logger *slog.Logger) (*Warmer, error) {
	w := &Warmer{
		scheduler: cron.New(),
		target:    target,
		timeout:   timeout,
		logger:    logger,
	}
	if _, err := w.scheduler.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("schedule cache warmer %q: %w", schedule, err)
	}
	return w, nil
}

// Start begins running scheduled refreshes in the background.
func (w *Warmer) Start() {
	w.scheduler.Start()
	w.logger.Info("cache warmer started")
}

// Stop prevents new runs and waits for a running refresh to finish or ctx to end.
func (w *Warmer) Stop(ctx context.Context) error {
	done := w.scheduler.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	w.logger.Debug("cache warmer triggered")
	if err := w.target.Refresh(ctx); err != nil {
		w.logger.Warn("scheduled cache refresh failed", "error", err)
	}
}
