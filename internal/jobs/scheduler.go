package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs the runner's jobs on cron schedules with seconds precision.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

type Schedules struct {
	Compare string
	Cleanup string
}

func NewScheduler(runner *Runner, schedules Schedules, loc *time.Location, log zerolog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
	)
	s := &Scheduler{cron: c, log: log}

	if schedules.Compare != "" {
		if _, err := c.AddFunc(schedules.Compare, runner.CompareYesterday); err != nil {
			return nil, fmt.Errorf("register comparison job: %w", err)
		}
	}
	if schedules.Cleanup != "" {
		if _, err := c.AddFunc(schedules.Cleanup, runner.CleanupCaptures); err != nil {
			return nil, fmt.Errorf("register cleanup job: %w", err)
		}
	}
	log.Info().Int("jobs", len(c.Entries())).Msg("cron jobs registered")
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info().Msg("starting cron scheduler")
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.log.Info().Msg("stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("cron scheduler stopped")
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
