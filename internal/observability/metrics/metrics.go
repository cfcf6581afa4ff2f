package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics instruments inbound HTTP traffic.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP instruments on the default registry.
func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "splitpay_http_requests_total",
			Help: "Inbound HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "splitpay_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Metrics exposes application-level instruments.
type Metrics struct {
	captures      *prometheus.CounterVec
	ledgerEntries prometheus.Counter
	outboxEvents  prometheus.Counter
}

// New registers the domain instruments on the default registry.
func New() *Metrics {
	return &Metrics{
		captures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "splitpay_captures_total",
			Help: "Capture attempts by payment method and result.",
		}, []string{"method", "result"}),
		ledgerEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitpay_ledger_entries_total",
			Help: "Ledger entries written.",
		}),
		outboxEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "splitpay_outbox_events_total",
			Help: "Outbox events written with status pending.",
		}),
	}
}

// RecordCapture increments capture counts.
func (m *Metrics) RecordCapture(method, result string) {
	if m == nil {
		return
	}
	m.captures.WithLabelValues(strings.ToLower(strings.TrimSpace(method)), result).Inc()
}

// RecordLedgerEntries increments the ledger entry count.
func (m *Metrics) RecordLedgerEntries(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ledgerEntries.Add(float64(n))
}

// RecordOutboxEvent increments the pending outbox event count.
func (m *Metrics) RecordOutboxEvent() {
	if m == nil {
		return
	}
	m.outboxEvents.Inc()
}
