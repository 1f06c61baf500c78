// Package retention purges resolved complaints once they have stayed resolved
// for the retention window.
package retention

import (
	"context"
	"log/slog"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/observability"
)

type Store interface {
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) ([]models.Complaint, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent)
}

// Result describes one sweep.
type Result struct {
	Deleted int       `json:"deleted"`
	IDs     []string  `json:"ids"`
	Cutoff  time.Time `json:"cutoff"`
}

type Sweeper struct {
	Storage Store
	Events  Publisher
	Window  time.Duration
	Now     func() time.Time

	log *slog.Logger
}

func NewSweeper(s Store, events Publisher, window time.Duration) *Sweeper {
	if window <= 0 {
		window = config.DefaultRetentionWindow
	}
	return &Sweeper{
		Storage: s,
		Events:  events,
		Window:  window,
		Now:     time.Now,
		log:     logging.Component("retention"),
	}
}

// Run deletes every complaint with status resolved and resolved_at <= now-Window.
// Messages go with them through the foreign key cascade. A failed run changes
// nothing and the next run retries the same criteria.
func (s *Sweeper) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	now := s.Now().UTC()
	cutoff := now.Add(-s.Window)

	deleted, err := s.Storage.DeleteResolvedBefore(ctx, cutoff)
	observability.SweepDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.SweepRuns.WithLabelValues("error").Inc()
		s.log.ErrorContext(ctx, "retention sweep failed", "cutoff", cutoff, "error", err)
		return Result{Cutoff: cutoff}, apperr.Internal("Failed to clean up resolved complaints", err)
	}

	res := Result{Deleted: len(deleted), IDs: make([]string, 0, len(deleted)), Cutoff: cutoff}
	for i := range deleted {
		res.IDs = append(res.IDs, deleted[i].ID)
		s.Events.Publish(ctx, models.ComplaintChanged(models.ChangeDelete, &deleted[i], now))
	}

	observability.SweepRuns.WithLabelValues("ok").Inc()
	observability.ComplaintsPurged.Add(float64(res.Deleted))
	s.log.InfoContext(ctx, "retention sweep finished", "deleted", res.Deleted, "cutoff", cutoff)
	return res, nil
}

// Task adapts Run for the scheduler, which has no caller to report to.
func (s *Sweeper) Task(ctx context.Context) func() {
	return func() {
		_, _ = s.Run(ctx)
	}
}
