package usecase

import (
	"context"
	"log/slog"
	"time"

	"EnergyDigest/internal/ports"
)

// Scheduler wires the interval driver with the digest cycle.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring cycles.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the digest cycle with the provided scheduler. A failed
// cycle is logged; the next tick tries again with the same unsent articles.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		report, err := s.pipeline.RunCycle(ctx, trigger)
		if err != nil {
			s.logger.Error("digest cycle failed", "run_id", report.RunID, "error", err)
			return
		}
		s.logger.Info("digest cycle finished",
			"run_id", report.RunID,
			"delivered", report.Delivered,
			"articles", report.Digest.Total(),
		)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
