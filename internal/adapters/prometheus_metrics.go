package adapters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"domverify/internal/ports"
	"domverify/internal/types"
)

// PrometheusMetrics records engine activity on its own registry.
type PrometheusMetrics struct {
	Registry *prometheus.Registry

	// Mutation outcomes by operation and status code
	Mutations *prometheus.CounterVec

	// Domains per takeover outcome: granted, blocked, ignored
	TakeoverDomains *prometheus.CounterVec

	// Owners returned per lookup
	OwnerLookups prometheus.Histogram
}

var _ ports.MetricsPort = (*PrometheusMetrics)(nil)

func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &PrometheusMetrics{
		Registry: registry,
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domverify_mutations_total",
			Help: "Total gateway mutations by operation and status code",
		}, []string{"operation", "code"}),
		TakeoverDomains: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "domverify_takeover_domains_total",
			Help: "Domains processed by selection takeovers by outcome",
		}, []string{"outcome"}),
		OwnerLookups: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "domverify_owner_lookup_owners",
			Help:    "Number of owners returned per domain owner lookup",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		}),
	}
}

func (m *PrometheusMetrics) ObserveMutation(operation string, code types.StatusCode) {
	if m != nil {
		m.Mutations.WithLabelValues(operation, code.String()).Inc()
	}
}

func (m *PrometheusMetrics) ObserveTakeover(outcome string, domains int) {
	if m != nil {
		m.TakeoverDomains.WithLabelValues(outcome).Add(float64(domains))
	}
}

func (m *PrometheusMetrics) ObserveOwnerLookup(owners int) {
	if m != nil {
		m.OwnerLookups.Observe(float64(owners))
	}
}
