// Package metrics exposes Prometheus metrics for the lead queue service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadqueue"

// Metrics holds all application collectors, registered on a private registry
type Metrics struct {
	Registry *prometheus.Registry

	// Queue metrics
	leadsWaiting   prometheus.Gauge
	leadsByLevel   *prometheus.GaugeVec
	leadsSLAAtRisk prometheus.Gauge
	leadsRejected  prometheus.Counter
	outcomesTotal  *prometheus.CounterVec
	ticksTotal     prometheus.Counter
	rankDuration   prometheus.Histogram

	// WebSocket metrics
	activeConnections prometheus.Gauge
	connectionsTotal  prometheus.Counter
	messagesTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	broadcastsTotal   prometheus.Counter

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates a Metrics instance on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		leadsWaiting: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leads_waiting",
			Help:      "Number of leads currently in the queue",
		}),
		leadsByLevel: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leads_by_level",
			Help:      "Queued leads broken down by priority level",
		}, []string{"level"}),
		leadsSLAAtRisk: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leads_sla_at_risk",
			Help:      "Queued leads with less than 15 minutes left on their SLA",
		}),
		leadsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_rejected_total",
			Help:      "Leads that failed validation while ranking",
		}),
		outcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Leads leaving the queue by outcome",
		}, []string{"outcome"}),
		ticksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulated clock ticks applied to the queue",
		}),
		rankDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_duration_seconds",
			Help:      "Time taken to rank the queue",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_active_connections",
			Help:      "Dashboard clients currently connected",
		}),
		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_connections_total",
			Help:      "Dashboard connections accepted since startup",
		}),
		messagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_messages_total",
			Help:      "Messages received from dashboard clients",
		}),
		errorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_errors_total",
			Help:      "WebSocket read, write and protocol errors",
		}),
		broadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Queue snapshots published to the hub",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status",
		}, []string{"endpoint", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// UpdateQueueStats sets the queue gauges from a freshly ranked snapshot
func (m *Metrics) UpdateQueueStats(stats types.QueueStats) {
	m.leadsWaiting.Set(float64(stats.Total))
	m.leadsSLAAtRisk.Set(float64(stats.SLAAtRisk))
	for _, level := range types.AllLevels {
		m.leadsByLevel.WithLabelValues(string(level)).Set(float64(stats.LevelBreakdown[level]))
	}
}

// RecordRank records one ranking pass
func (m *Metrics) RecordRank(duration time.Duration, rejected int) {
	m.rankDuration.Observe(duration.Seconds())
	if rejected > 0 {
		m.leadsRejected.Add(float64(rejected))
	}
}

// RecordOutcome counts a lead leaving the queue
func (m *Metrics) RecordOutcome(kind types.OutcomeKind) {
	m.outcomesTotal.WithLabelValues(string(kind)).Inc()
}

// RecordTick counts one applied clock tick
func (m *Metrics) RecordTick() {
	m.ticksTotal.Inc()
}

// RecordBroadcast counts one snapshot publication
func (m *Metrics) RecordBroadcast() {
	m.broadcastsTotal.Inc()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.connectionsTotal.Inc()
	m.activeConnections.Inc()
}

// RecordWebSocketDisconnect decrements the active connection gauge
func (m *Metrics) RecordWebSocketDisconnect() {
	m.activeConnections.Dec()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.messagesTotal.Inc()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.errorsTotal.Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
