package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Runner is a job the scheduler triggers once per day.
type Runner interface {
	Run(ctx context.Context) (Report, error)
}

// Scheduler triggers a Runner daily at a fixed wall-clock time in a time
// zone. Runs never overlap; a run that overshoots the next slot delays it.
type Scheduler struct {
	runner Runner
	hour   int
	minute int
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
}

// NewScheduler parses at as HH:MM and timezone as an IANA zone name.
func NewScheduler(runner Runner, at, timezone string, logger *slog.Logger) (*Scheduler, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("parse sweep time %q: %w", at, err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", timezone, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner: runner,
		hour:   t.Hour(),
		minute: t.Minute(),
		loc:    loc,
		logger: logger,
		now:    time.Now,
		after:  time.After,
	}, nil
}

// NextRun returns the first scheduled instant strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.loc)
	}
	return next
}

// Start blocks, running the job at each scheduled time until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	for {
		next := s.NextRun(s.now())
		s.logger.InfoContext(ctx, "deadline sweep scheduled", "next_run", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(next.Sub(s.now())):
		}

		if _, err := s.runner.Run(ctx); err != nil {
			s.logger.ErrorContext(ctx, "deadline sweep failed", "error", err)
		}
	}
}
