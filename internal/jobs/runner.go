package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vehicle-ticket-service/internal/service"
)

type Comparer interface {
	CompareAll(ctx context.Context, day time.Time, trigger string) ([]*service.Comparison, error)
}

type CaptureCleaner interface {
	CleanupOldEntries(ctx context.Context, days int) (int64, error)
}

type RunnerConfig struct {
	RetentionDays int
	// Timeout bounds a single job run.
	Timeout time.Duration
}

type Runner struct {
	comparer Comparer
	cleaner  CaptureCleaner
	cfg      RunnerConfig
	now      func() time.Time
	log      zerolog.Logger
}

func NewRunner(comparer Comparer, cleaner CaptureCleaner, cfg RunnerConfig, log zerolog.Logger) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Runner{comparer: comparer, cleaner: cleaner, cfg: cfg, now: time.Now, log: log}
}

// CompareYesterday builds the comparison of the previous day for every
// active location and logs the findings.
func (r *Runner) CompareYesterday() {
	r.runWithRecovery("compare_yesterday", func(ctx context.Context) {
		day := r.now().AddDate(0, 0, -1)
		comparisons, err := r.comparer.CompareAll(ctx, day, "schedule")
		if err != nil {
			r.log.Error().Err(err).Msg("failed to run scheduled comparison")
			return
		}
		for _, c := range comparisons {
			for _, w := range c.Warnings {
				r.log.Warn().
					Str("location_id", c.LocationID.String()).
					Str("date", c.Date).
					Str("kind", string(w.Kind)).
					Strs("refs", w.Refs).
					Msg(w.Message)
			}
		}
		r.log.Info().Int("locations", len(comparisons)).Msg("scheduled comparison finished")
	})
}

// CleanupCaptures drops auto-captured entries past the retention period.
func (r *Runner) CleanupCaptures() {
	if r.cfg.RetentionDays <= 0 {
		return
	}
	r.runWithRecovery("cleanup_captures", func(ctx context.Context) {
		if _, err := r.cleaner.CleanupOldEntries(ctx, r.cfg.RetentionDays); err != nil {
			r.log.Error().Err(err).Msg("failed to cleanup captures")
		}
	})
}

func (r *Runner) runWithRecovery(job string, fn func(ctx context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("job", job).Interface("panic", rec).Msg("job panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	r.log.Info().Str("job", job).Msg("starting job")
	fn(ctx)
	r.log.Info().Str("job", job).Dur("took", time.Since(start)).Msg("job completed")
}
