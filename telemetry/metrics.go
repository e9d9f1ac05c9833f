// Package telemetry holds the Prometheus metrics exported by the API.
//
// Metrics are registered against the default registry and served by the
// side server started in cmd/server on METRICS_PORT:
//
//	GET http://<host>:<METRICS_PORT>/metrics
//
// HTTP metrics are labelled by chi route pattern, never the raw URL, so
// campaign and content ids do not inflate label cardinality.
package telemetry

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// HTTP metrics, labelled by method, route pattern and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// Verdicts recorded by RBACDecisionsTotal.
const (
	VerdictAllowed    = "allowed"
	VerdictForbidden  = "forbidden"
	VerdictUnresolved = "unresolved"
	VerdictError      = "error"
)

// RBACDecisionsTotal counts request gate outcomes. A spike in "error" means
// the membership store is unreachable and requests are failing closed.
//
//	sum by (action) (rate(rbac_decisions_total{verdict="forbidden"}[5m]))
var RBACDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rbac_decisions_total",
		Help: "Total number of permission decisions, by scope, action, and verdict.",
	},
	[]string{"scope", "action", "verdict"},
)

// Workflow metrics.
var (
	// ContentTransitionsTotal has result "ok", "conflict" or "error".
	ContentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_transitions_total",
			Help: "Total number of content workflow transitions attempted, by transition and result.",
		},
		[]string{"transition", "result"},
	)

	ScheduledPublishesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_scheduled_publishes_total",
			Help: "Total number of content items published by the scheduler.",
		},
	)

	FeedbackIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_ingested_total",
			Help: "Total number of feedback entries stored, by sentiment label.",
		},
		[]string{"sentiment"},
	)
)

// DBOpenConnections is sampled by StartDBStatsCollector.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector samples pool statistics every interval until ctx is
// cancelled.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration, logger *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Debug("db stats collector stopped")
				return
			case <-ticker.C:
				DBOpenConnections.Set(float64(db.Stats().OpenConnections))
			}
		}
	}()
}
