// Package jobs runs the broker's periodic housekeeping.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Purger drops expired refresh tokens and reports how many went.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New schedules the refresh token purge on spec (standard cron syntax or a
// descriptor such as "@hourly").
func New(spec string, p Purger, log *slog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s := &Scheduler{cron: c, log: log}
	if _, err := c.AddFunc(spec, func() { PurgeOnce(context.Background(), p, log) }); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func PurgeOnce(ctx context.Context, p Purger, log *slog.Logger) {
	n, err := p.PurgeExpired(ctx)
	if err != nil {
		log.ErrorContext(ctx, "refresh token purge failed", "err", err)
		return
	}
	if n > 0 {
		log.InfoContext(ctx, "purged expired refresh tokens", "count", n)
	}
}
