package retention

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"genoscope-hq/callisto/pkg/config"
	"genoscope-hq/callisto/pkg/evidence"
)

// Scheduler runs retention pruning on a cron schedule.
type Scheduler struct {
	pruner   *Pruner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewScheduler validates the cron expression and prepares a scheduler. The
// expression uses the standard five-field format, e.g. "0 3 * * *".
func NewScheduler(storage evidence.Storage, cfg config.RetentionConfig) (*Scheduler, error) {
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", cfg.Schedule, err)
	}
	return &Scheduler{
		pruner:   NewPruner(storage, cfg),
		schedule: cfg.Schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "evidence.retention"),
	}, nil
}

// Start begins scheduled pruning. The scheduler stops when ctx is cancelled
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		deleted, err := s.pruner.Prune(ctx)
		if err != nil {
			s.logger.Error("retention prune failed", "error", err)
			return
		}
		s.logger.Debug("retention prune complete", "deleted", deleted)
	})
	if err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("retention scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule. A prune already running completes.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// PruneNow runs a single prune outside the schedule.
func (s *Scheduler) PruneNow(ctx context.Context) (int64, error) {
	return s.pruner.Prune(ctx)
}
