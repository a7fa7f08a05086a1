package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"salesdash/internal/log"
)

// refreshTimeout bounds one scheduled refresh.
const refreshTimeout = time.Minute

// Scheduler runs periodic snapshot refreshes on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	worker *SaleWorker
}

// NewScheduler registers the refresh job. spec accepts standard five-field
// expressions and descriptors such as "@every 15m".
func NewScheduler(w *SaleWorker, spec string) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	s := &Scheduler{cron: c, worker: w}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("schedule snapshot refresh %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.worker.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Scheduled snapshot refresh failed",
			log.FieldComponent, log.ComponentWorker,
			log.FieldOperation, log.OpRefresh,
			log.FieldError, err)
	}
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for
// a running refresh to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	slog.InfoContext(ctx, "Snapshot scheduler started",
		log.FieldComponent, log.ComponentWorker,
		"entries", len(s.cron.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// Next reports when the refresh job fires next; zero before Run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
