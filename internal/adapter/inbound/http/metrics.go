package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for npmgate.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	ActiveSessions    prometheus.Gauge
	OAuthTokensIssued *prometheus.CounterVec
	AuthFailures      *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "npmgate",
				Name:      "requests_total",
				Help:      "Total number of MCP requests processed",
			},
			[]string{"method", "status"}, // method=POST, status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "npmgate",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		ActiveSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "npmgate",
				Name:      "active_sessions",
				Help:      "Number of active MCP sessions",
			},
		),
		OAuthTokensIssued: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "npmgate",
				Name:      "oauth_tokens_issued_total",
				Help:      "Total OAuth access tokens issued",
			},
			[]string{"grant_type"},
		),
		AuthFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "npmgate",
				Name:      "auth_failures_total",
				Help:      "Total rejected MCP requests by failure reason",
			},
			[]string{"reason"},
		),
	}
}
