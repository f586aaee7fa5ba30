// Package scheduler owns the cron runner that triggers the weekly
// recommendation batch. The scheduler is an explicit object created and
// stopped by main; nothing here is process-global.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shhmatch/backend/internal/config"
	"github.com/shhmatch/backend/internal/service/recommend"
	"github.com/shhmatch/backend/internal/utils/week"
)

// Scheduler runs the weekly recommendation job on a cron cadence.
type Scheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	recs   *recommend.Service
	logger *slog.Logger
}

// New builds a scheduler with the weekly job registered but not
// started. Registration is idempotent by construction: the job is added
// exactly once per Scheduler instance.
func New(cfg *config.Config, recs *recommend.Service, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Batch.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid batch timezone %q: %w", cfg.Batch.Timezone, err)
	}

	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		loc:    loc,
		recs:   recs,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(cfg.Batch.Schedule, s.runWeekly); err != nil {
		return nil, fmt.Errorf("invalid batch schedule %q: %w", cfg.Batch.Schedule, err)
	}

	logger.Info("scheduler configured",
		"schedule", cfg.Batch.Schedule, "timezone", cfg.Batch.Timezone)
	return s, nil
}

// Start begins running registered jobs in a background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// runWeekly labels the batch with the current ISO week in the batch
// timezone and runs it. Run never panics or returns an error, so a bad
// week can't kill the cron runner.
func (s *Scheduler) runWeekly() {
	label := week.Current(s.loc)
	s.logger.Info("starting weekly recommendation job", "week", label)

	summary := s.recs.Run(context.Background(), label)

	s.logger.Info("weekly recommendation job finished",
		"week", label,
		"users_processed", summary.UsersProcessed,
		"recommendations_created", summary.RecommendationsCreated,
		"errors_count", len(summary.Errors))
}
