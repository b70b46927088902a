// Package retention prunes old evidence records on a cron schedule. Pruning
// runs in two phases: an age cutoff removes records older than the configured
// number of days, then a count cap removes the oldest records above the
// configured maximum.
package retention

import (
	"context"
	"log/slog"
	"time"

	"genoscope-hq/callisto/pkg/config"
	"genoscope-hq/callisto/pkg/evidence"
)

// Pruner applies the retention policy to an evidence store.
type Pruner struct {
	storage evidence.Storage
	cfg     config.RetentionConfig
	logger  *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewPruner creates a pruner for the given storage and policy.
func NewPruner(storage evidence.Storage, cfg config.RetentionConfig) *Pruner {
	return &Pruner{
		storage: storage,
		cfg:     cfg,
		logger:  slog.Default().With("component", "evidence.retention"),
		now:     time.Now,
	}
}

// Prune runs one retention pass and returns the number of records removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.cfg.Days > 0 {
		cutoff := p.now().Add(-time.Duration(p.cfg.Days) * 24 * time.Hour)
		deleted, err := p.storage.Delete(ctx, &evidence.Query{EndTime: &cutoff})
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted > 0 {
			p.logger.Info("pruned expired evidence records",
				"deleted", deleted,
				"cutoff", cutoff,
			)
		}
	}

	if p.cfg.MaxRecords > 0 {
		count, err := p.storage.Count(ctx, nil)
		if err != nil {
			return total, err
		}
		excess := count - int64(p.cfg.MaxRecords)
		if excess > 0 {
			deleted, err := p.storage.DeleteOldest(ctx, excess)
			if err != nil {
				return total, err
			}
			total += deleted
			p.logger.Info("pruned evidence records over count cap",
				"deleted", deleted,
				"max_records", p.cfg.MaxRecords,
			)
		}
	}

	return total, nil
}
