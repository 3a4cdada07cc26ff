// Package jobs runs periodic maintenance: forgetting stale login failures,
// idle rate limit buckets and expired refresh tokens.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/pkg/metrics"
)

// Job is one maintenance task. Run returns how many entries it removed.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) (int64, error)
}

// Scheduler runs jobs on their cron schedules
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration
}

// NewScheduler creates a stopped scheduler. Each run gets timeout to finish.
func NewScheduler(logger zerolog.Logger, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	lgr := logger.With().Str("component", "jobs").Logger()
	cl := cronLogger{logger: lgr}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:  lgr,
		timeout: timeout,
	}
}

// Add schedules job. Schedules use the standard five fields or descriptors such as "@every 5m".
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no run function", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Schedule, func() { s.run(job) }); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name, err)
	}
	s.logger.Info().Str("job", job.Name).Str("schedule", job.Schedule).Msg("Job scheduled")
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	removed, err := job.Run(ctx)
	if err != nil {
		metrics.MaintenanceRuns.WithLabelValues(job.Name, "error").Inc()
		s.logger.Error().Err(err).Str("job", job.Name).Msg("Job failed")
		return
	}

	metrics.MaintenanceRuns.WithLabelValues(job.Name, "success").Inc()
	metrics.MaintenanceRemoved.WithLabelValues(job.Name).Add(float64(removed))
	s.logger.Debug().
		Str("job", job.Name).
		Int64("removed", removed).
		Dur("took", time.Since(start)).
		Msg("Job finished")
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
