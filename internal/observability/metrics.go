// Package observability holds the Prometheus metrics exported on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "complaintdesk"

var (
	// ComplaintsCreated counts new complaints by category and initial status
	ComplaintsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "complaints",
		Name:      "created_total",
		Help:      "Complaints created by category and initial status",
	}, []string{"category", "status"})

	// StatusTransitions counts admin status updates by target status
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "complaints",
		Name:      "status_transitions_total",
		Help:      "Complaint status updates by target status",
	}, []string{"status"})

	MessagesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "messages",
		Name:      "posted_total",
		Help:      "Messages posted by sender role",
	}, []string{"role"})

	MessagesRead = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "messages",
		Name:      "read_total",
		Help:      "Messages transitioned from unread to read",
	})

	NotificationsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "opened_total",
		Help:      "Notifications opened from the bell",
	})

	// SweepRuns counts retention sweeps by result (ok, error)
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "sweep_runs_total",
		Help:      "Retention sweep runs by result",
	}, []string{"result"})

	ComplaintsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "complaints_purged_total",
		Help:      "Resolved complaints deleted by the retention sweep",
	})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "retention",
		Name:      "sweep_duration_seconds",
		Help:      "Retention sweep duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "subscribers",
		Help:      "Currently registered live subscribers",
	})

	// LiveDropped counts subscribers dropped because their buffer was full
	LiveDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "dropped_subscribers_total",
		Help:      "Live subscribers dropped for a full buffer",
	})

	LiveEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "live",
		Name:      "events_total",
		Help:      "Change events dispatched by table and type",
	}, []string{"table", "type"})
)
