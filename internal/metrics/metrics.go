// Package metrics defines the Prometheus metrics exposed by the chatbot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Routing metrics
	RouteDecisionsTotal *prometheus.CounterVec
	RoutingDuration     *prometheus.HistogramVec

	// Completion metrics
	CompletionDuration    prometheus.Histogram
	CompletionErrorsTotal *prometheus.CounterVec

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Transcript archive metrics
	TranscriptWriteErrors prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		RouteDecisionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_route_decisions_total",
				Help: "Total number of routed messages by decision",
			},
			[]string{"route"}, // route: faq_hit, course_hit, llm_fallback
		),

		RoutingDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edubot_routing_duration_seconds",
				Help:    "Message resolution duration in seconds by decision",
				Buckets: []float64{0.0005, 0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"route"},
		),

		CompletionDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edubot_completion_duration_seconds",
				Help:    "External completion call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),

		CompletionErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_completion_errors_total",
				Help: "Total number of failed completion calls by reason",
			},
			[]string{"reason"}, // reason: timeout, canceled, api_error
		),

		SessionsActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "edubot_sessions_active",
				Help: "Number of conversation sessions currently held in memory",
			},
		),

		SessionsCreated: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "edubot_sessions_created_total",
				Help: "Total number of conversation sessions created",
			},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: bad_request, completion_failed, not_found
		),

		TranscriptWriteErrors: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "edubot_transcript_write_errors_total",
				Help: "Total number of failed transcript archive writes",
			},
		),
	}
}
