// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/pharma-papers/internal/paper"
)

const namespace = "pharma_papers"

// Metrics holds the application's collectors on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	records      *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Bibliographic records processed, by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.Registry.MustRegister(m.records, m.httpRequests, m.httpDuration)
	return m
}

// ObserveRecord implements paper.Observer.
func (m *Metrics) ObserveRecord(o paper.Outcome) {
	m.records.WithLabelValues(string(o)).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, status int, seconds float64) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(seconds)
}

var _ paper.Observer = (*Metrics)(nil)
