package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Handlers accept a
// nil *Metrics so unit tests don't fight the default registry.
type Metrics struct {
	SignupsTotal      prometheus.Counter
	AuthFailures      prometheus.Counter
	PreferencesSaved  *prometheus.CounterVec
	FeedbackSubmitted prometheus.Counter
	AuditDropped      prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SignupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buslink_signups_total",
			Help: "Total number of identities created through signup",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buslink_auth_failures_total",
			Help: "Total number of rejected bearer credentials",
		}),
		PreferencesSaved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "buslink_preferences_saved_total",
			Help: "Per-user preference writes by kind",
		}, []string{"kind"}),
		FeedbackSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buslink_feedback_submitted_total",
			Help: "Total number of driver feedback records written",
		}),
		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "buslink_audit_events_dropped_total",
			Help: "Audit events dropped because the worker buffer was full",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "buslink_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveRequest records one served request. No-op on a nil receiver.
func (m *Metrics) ObserveRequest(route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, status).Observe(elapsed.Seconds())
}

// IncSignups increments the signup counter. No-op on a nil receiver.
func (m *Metrics) IncSignups() {
	if m == nil {
		return
	}
	m.SignupsTotal.Inc()
}

// IncAuthFailures increments the rejected-credential counter.
func (m *Metrics) IncAuthFailures() {
	if m == nil {
		return
	}
	m.AuthFailures.Inc()
}

// IncPreferencesSaved increments the preference write counter for a kind.
func (m *Metrics) IncPreferencesSaved(kind string) {
	if m == nil {
		return
	}
	m.PreferencesSaved.WithLabelValues(kind).Inc()
}

// IncFeedbackSubmitted increments the feedback counter.
func (m *Metrics) IncFeedbackSubmitted() {
	if m == nil {
		return
	}
	m.FeedbackSubmitted.Inc()
}

// IncAuditDropped increments the dropped audit event counter.
func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}
