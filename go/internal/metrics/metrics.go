// Package metrics holds the prometheus collectors of the draft service. A nil *Metrics is valid
// and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	PicksCommitted  prometheus.Counter
	PickFailures    *prometheus.CounterVec
	ActiveTimers    prometheus.Gauge
	Subscribers     prometheus.Gauge
	EventsPublished *prometheus.CounterVec
	OutboxEvents    *prometheus.CounterVec
	OutboxDuration  *prometheus.HistogramVec
	OutboxBatchSize prometheus.Histogram
	PublishAttempts *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		PicksCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picks_committed_total",
			Help:      "Number of committed picks",
		}),
		PickFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pick_failures_total",
			Help:      "Rejected pick attempts by reason",
		}, []string{"reason"}),
		ActiveTimers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_timers",
			Help:      "Rooms with a running turn countdown",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_subscribers",
			Help:      "Connection subscriptions across all rooms",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events fanned out to room subscribers by type",
		}, []string{"type"}),
		OutboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox events relayed by type and result",
		}, []string{"event_type", "status"}),
		OutboxDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_publish_seconds",
			Help:      "Outbox publish latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}, []string{"event_type"}),
		OutboxBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_batch_size",
			Help:      "Unsent events fetched per relay pass",
			Buckets:   prometheus.LinearBuckets(0, 10, 10),
		}),
		PublishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_publish_attempts_total",
			Help:      "Outbox publish attempts by type, attempt number and result",
		}, []string{"event_type", "attempt", "status"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.PicksCommitted,
		m.PickFailures,
		m.ActiveTimers,
		m.Subscribers,
		m.EventsPublished,
		m.OutboxEvents,
		m.OutboxDuration,
		m.OutboxBatchSize,
		m.PublishAttempts,
	)

	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) PickCommitted() {
	if m == nil {
		return
	}
	m.PicksCommitted.Inc()
}

func (m *Metrics) PickFailed(reason string) {
	if m == nil {
		return
	}
	m.PickFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetActiveTimers(n int) {
	if m == nil {
		return
	}
	m.ActiveTimers.Set(float64(n))
}

func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.Subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.Subscribers.Dec()
}

func (m *Metrics) EventPublished(eventType string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

func (m *Metrics) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.OutboxEvents.WithLabelValues(eventType, status(success)).Inc()
	m.OutboxDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (m *Metrics) RecordBatchProcessed(count int, _ time.Duration) {
	if m == nil {
		return
	}
	m.OutboxBatchSize.Observe(float64(count))
}

func (m *Metrics) RecordPublishAttempt(eventType string, attempt int, success bool) {
	if m == nil {
		return
	}
	m.PublishAttempts.WithLabelValues(eventType, strconv.Itoa(attempt), status(success)).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
