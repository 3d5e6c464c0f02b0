package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	Requests         *prometheus.CounterVec
	LatencyMS        *prometheus.HistogramVec
	Checkouts        *prometheus.CounterVec
	GatewayLatencyMS *prometheus.HistogramVec
	Notifications    *prometheus.CounterVec
	Restocks         *prometheus.CounterVec
	OutboxPublished  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. Tests pass a fresh
// prometheus.NewRegistry() so collectors never collide.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "steps_total",
			Help:      "Checkout initialize/verify outcomes.",
		}, []string{"step", "result"}),
		GatewayLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "call_duration_ms",
			Help:      "Payment gateway call latency in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000},
		}, []string{"op", "result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Notification emails by recipient kind and result.",
		}, []string{"recipient", "result"}),
		Restocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fulfillment",
			Name:      "restock_lines_total",
			Help:      "Inventory credits applied during fulfillment.",
		}, []string{"result"}),
		OutboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "published_total",
			Help:      "Outbox events relayed to the broker.",
		}, []string{"topic", "result"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.Requests, m.LatencyMS, m.Checkouts, m.GatewayLatencyMS,
		m.Notifications, m.Restocks, m.OutboxPublished,
	)
	return m
}

// NewNop is a Metrics on its own throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCheckout(step string, result string) {
	m.Checkouts.WithLabelValues(step, result).Inc()
}

func (m *Metrics) ObserveGateway(op string, result string, started time.Time) {
	m.GatewayLatencyMS.WithLabelValues(op, result).Observe(float64(time.Since(started).Milliseconds()))
}

func (m *Metrics) ObserveNotification(recipient string, ok bool) {
	m.Notifications.WithLabelValues(recipient, resultLabel(ok)).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
