package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// ticker is the periodic work the scheduler drives.
type ticker interface {
	Run(ctx context.Context)
}

// tickScheduler drives the planner on a fixed interval. Singleton mode
// skips a run while the previous one is still going.
type tickScheduler struct {
	scheduler *gocron.Scheduler
	ticker    ticker
	interval  time.Duration
	logger    *slog.Logger
}

func newTickScheduler(t ticker, interval time.Duration, logger *slog.Logger) *tickScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &tickScheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		ticker:    t,
		interval:  interval,
		logger:    logger.With(slog.String("component", "tick_scheduler")),
	}
}

// Start schedules the ticker and returns immediately. Runs receive ctx, so
// canceling it aborts an in-flight tick.
func (s *tickScheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		s.ticker.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule planner: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("planner scheduled", slog.Duration("interval", s.interval))
	return nil
}

// Stop stops scheduling new runs.
func (s *tickScheduler) Stop() {
	if s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
