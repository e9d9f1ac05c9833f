package telemetry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics_AllRegistered(t *testing.T) {
	cases := []struct {
		name string
		c    prometheus.Collector
	}{
		{"http_requests_total", HTTPRequestsTotal},
		{"http_request_duration_seconds", HTTPRequestDuration},
		{"rbac_decisions_total", RBACDecisionsTotal},
		{"content_transitions_total", ContentTransitionsTotal},
		{"content_scheduled_publishes_total", ScheduledPublishesTotal},
		{"feedback_ingested_total", FeedbackIngestedTotal},
		{"db_open_connections", DBOpenConnections},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch := make(chan *prometheus.Desc, 10)
			tc.c.Describe(ch)
			close(ch)

			found := false
			for desc := range ch {
				if strings.Contains(desc.String(), `"`+tc.name+`"`) {
					found = true
				}
			}
			assert.True(t, found, "metric %s not described", tc.name)
		})
	}
}

func TestRBACDecisionsTotal_Labels(t *testing.T) {
	counter := RBACDecisionsTotal.WithLabelValues("campaign", "APPROVE_CONTENT", VerdictForbidden)
	before := testutil.ToFloat64(counter)

	counter.Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestStartDBStatsCollector(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	DBOpenConnections.Set(-1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartDBStatsCollector(ctx, db, 10*time.Millisecond, zap.NewNop())

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(DBOpenConnections) >= 0
	}, time.Second, 10*time.Millisecond)
}
