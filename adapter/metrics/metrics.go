// Package metrics contains [domain.Metrics] implementations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

const (
	namespace = "godm"
	subsystem = "datastore"
)

// Metrics implements [domain.Metrics] with Prometheus counters. It is also a
// [prometheus.Collector], so it can be registered as is.
type Metrics struct {
	Commands    *prometheus.CounterVec
	Validations *prometheus.CounterVec
}

// NewMetrics returns new Prometheus backed metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Total number of issued commands.",
			},
			[]string{"command", "error"},
		),
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_failures_total",
				Help:      "Total number of operator validation failures.",
			},
			[]string{"operator"},
		),
	}
}

// CommandIssued implements [domain.Metrics].
func (m *Metrics) CommandIssued(name string, err error) {
	res := "ok"
	if err != nil {
		res = "failed"
	}
	m.Commands.WithLabelValues(name, res).Inc()
}

// ValidationFailed implements [domain.Metrics].
func (m *Metrics) ValidationFailed(op domain.Operator, count int) {
	if count <= 0 {
		return
	}
	m.Validations.WithLabelValues(op.String()).Add(float64(count))
}

// Describe implements [prometheus.Collector].
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.Commands.Describe(ch)
	m.Validations.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.Commands.Collect(ch)
	m.Validations.Collect(ch)
}

// Nop drops every measure.
type Nop struct{}

// NewNop returns metrics that record nothing.
func NewNop() domain.Metrics {
	return Nop{}
}

// CommandIssued implements [domain.Metrics].
func (Nop) CommandIssued(string, error) {}

// ValidationFailed implements [domain.Metrics].
func (Nop) ValidationFailed(domain.Operator, int) {}

// check interfaces
var (
	_ domain.Metrics       = (*Metrics)(nil)
	_ prometheus.Collector = (*Metrics)(nil)
)
