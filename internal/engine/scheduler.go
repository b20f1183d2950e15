package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the periodic snapshot refresh task.
type Scheduler struct {
	cron     *cron.Cron
	snapshot *Snapshot
	log      *slog.Logger
}

// NewScheduler creates a Scheduler that refreshes snapshot gauges on a fixed
// interval.
func NewScheduler(
	snapshot *Snapshot,
	interval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:     c,
		snapshot: snapshot,
		log:      log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.runSnapshot); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runSnapshot() {
	ctx := context.Background()
	if err := s.snapshot.Refresh(ctx); err != nil {
		s.log.Error("scheduled snapshot refresh failed", "error", err)
	}
}
