// Package schedule runs detection passes periodically with gocron.
package schedule

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/logging"
)

// Task is one scheduled unit of work.
type Task func(ctx context.Context) error

// Scheduler wraps a gocron scheduler. Jobs run in singleton mode: a tick
// that arrives while the previous run is still going is skipped.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// New creates a stopped scheduler.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapResource("create", "scheduler", "", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Every schedules task at a fixed interval, starting immediately.
func (s *Scheduler) Every(ctx context.Context, interval time.Duration, name string, task Task) (string, error) {
	if interval <= 0 {
		return "", &errors.ValidationError{Field: "interval", Value: interval, Message: "must be positive"}
	}
	return s.add(ctx, gocron.DurationJob(interval), name, task, gocron.WithStartAt(gocron.WithStartImmediately()))
}

// Cron schedules task with a standard five-field cron expression.
func (s *Scheduler) Cron(ctx context.Context, expr, name string, task Task) (string, error) {
	return s.add(ctx, gocron.CronJob(expr, false), name, task)
}

func (s *Scheduler) add(ctx context.Context, def gocron.JobDefinition, name string, task Task, extra ...gocron.JobOption) (string, error) {
	opts := append([]gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}, extra...)

	job, err := s.scheduler.NewJob(def, gocron.NewTask(func() { s.execute(ctx, name, task) }), opts...)
	if err != nil {
		return "", errors.NewConfigError("schedule", "invalid job definition for "+name, err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) execute(ctx context.Context, name string, task Task) {
	if ctx.Err() != nil {
		return
	}
	logger := logging.Ctx(ctx)
	logger.Debug().Str("job", name).Msg("Executing scheduled job")

	if err := task(ctx); err != nil {
		logger.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
	}
}

// NextRun returns when the named job runs next.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	for _, job := range s.scheduler.Jobs() {
		if job.Name() != name {
			continue
		}
		next, err := job.NextRun()
		return next, err == nil
	}
	return time.Time{}, false
}

// Start begins executing jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
