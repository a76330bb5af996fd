package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.PickCommitted()
		m.PickFailed("NOT_YOUR_TURN")
		m.SetActiveTimers(3)
		m.SubscriberAdded()
		m.SubscriberRemoved()
		m.EventPublished("PickMade")
		m.RecordEventProcessed("PickMade", true, time.Millisecond)
		m.RecordBatchProcessed(2, time.Millisecond)
		m.RecordPublishAttempt("PickMade", 1, false)
	})
}

func TestCollectors(t *testing.T) {
	m := NewMetrics("roulettedraft", prometheus.NewRegistry())

	m.PickCommitted()
	m.PickFailed("NOT_YOUR_TURN")
	m.PickFailed("NOT_YOUR_TURN")
	m.SubscriberAdded()
	m.SubscriberAdded()
	m.SubscriberRemoved()
	m.RecordEventProcessed("PickMade", false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PicksCommitted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PickFailures.WithLabelValues("NOT_YOUR_TURN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Subscribers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEvents.WithLabelValues("PickMade", "failure")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics("roulettedraft", prometheus.NewRegistry())
	m.PickCommitted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "roulettedraft_picks_committed_total 1")
}
