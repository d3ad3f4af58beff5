// Package metrics exposes ledger counters to Prometheus.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the ledger collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Imports         *prometheus.CounterVec
	PaymentsWritten *prometheus.CounterVec
	Reversals       *prometheus.CounterVec
	Recategorized   prometheus.Counter
	RunDuration     *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
}

// New creates and registers the ledger collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "budget_imports_total",
			Help: "Import runs by account and outcome",
		}, []string{"account", "outcome"}),
		PaymentsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "budget_payments_imported_total",
			Help: "Payments committed by import runs",
		}, []string{"account"}),
		Reversals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "budget_reversals_total",
			Help: "Import reversals by outcome",
		}, []string{"outcome"}),
		Recategorized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "budget_transactions_recategorized_total",
			Help: "Transactions moved out of UNASSIGNED by recategorization",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "budget_run_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "budget_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(m.Imports, m.PaymentsWritten, m.Reversals, m.Recategorized, m.RunDuration, m.HTTPRequests)
	return m
}

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the collectors to path for a node_exporter textfile
// collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
