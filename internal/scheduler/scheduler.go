// Package scheduler runs the recurring maintenance jobs on a cron schedule.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"complaintdesk/backend/internal/logging"

	"github.com/go-co-op/gocron/v2"
)

const slowThreshold = 5 * time.Second

// Scheduler wraps gocron with UTC schedules and slog logging.
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *slog.Logger
}

func New() (*Scheduler, error) {
	log := logging.Component("scheduler")
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logging.NewGocronLogger(slog.Default())),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, log: log}, nil
}

// AddJob schedules job under a five-field cron expression. At most one run of
// a job is active at a time; a tick that lands during a run is skipped.
func (s *Scheduler) AddJob(name, cronExpr string, job func()) error {
	if name == "" {
		return errors.New("empty job name")
	}
	if cronExpr == "" {
		return errors.New("empty cron expression")
	}
	if job == nil {
		return errors.New("nil job function")
	}

	wrapped := func() {
		start := time.Now()
		job()
		if d := time.Since(start); d > slowThreshold {
			s.log.Warn("slow scheduled job execution", "job_name", name, "duration_ms", d.Milliseconds())
		}
	}

	j, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(wrapped),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	attrs := []any{"job_name", name, "cron", cronExpr}
	if next, err := j.NextRun(); err == nil {
		attrs = append(attrs, "next_run", next.Format(time.RFC3339))
	}
	s.log.Info("job scheduled", attrs...)
	return nil
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.log.Debug("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() error {
	s.log.Debug("stopping scheduler", "active_jobs", len(s.scheduler.Jobs()))
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}
