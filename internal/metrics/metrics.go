package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// FeedbackSubmitted counts accepted reviewer submissions by status.
	FeedbackSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signoff_feedback_submitted_total",
			Help: "Reviewer feedback submissions accepted, by approval status",
		},
		[]string{"status"},
	)

	// AccessDenied counts failed token checks by entry point.
	AccessDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signoff_access_denied_total",
			Help: "Guest requests rejected by the token check",
		},
		[]string{"op"},
	)

	ReviewSessionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signoff_review_sessions_opened_total",
			Help: "Review sessions successfully opened",
		},
	)

	SnapshotLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signoff_snapshot_lookups_total",
			Help: "Review projection cache lookups, by result",
		},
		[]string{"result"},
	)
)

//nolint:gochecknoinits // collectors must be registered once per process
func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		FeedbackSubmitted,
		AccessDenied,
		ReviewSessionsOpened,
		SnapshotLookups,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
