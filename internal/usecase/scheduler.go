package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsSpider/internal/domain"
	"NewsSpider/internal/ports"
)

// Scheduler wires the cron driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	listings []domain.Listing
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring crawls over listings.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, listings []domain.Listing, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, listings: listings, logger: logger}
}

// Start registers the pipeline with the provided scheduler. A failed run is logged and
// the next tick tries again.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	})
}

// RunOnce executes one crawl over all listings and logs its outcome.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	s.logger.Info("scheduled crawl started", "trigger", trigger.Format(time.RFC3339))
	summary, err := s.pipeline.Run(ctx, s.listings)
	if err != nil {
		s.logger.Error("scheduled crawl failed", "error", err)
		return
	}
	s.logger.Info("scheduled crawl finished",
		"accepted", summary[domain.StateAccepted],
		"duplicates", summary[domain.StateSkippedDuplicate],
		"too_old", summary[domain.StateRejectedOld],
		"too_small", summary[domain.StateRejectedSmall],
		"extraction_failed", summary[domain.StateSkippedExtraction])
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
