package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(
		Observer.prometheus.Evaluations,
		Observer.prometheus.Splits,
		Observer.prometheus.Fits,
	)
}

type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
}

// IncrementEvaluations counts one full evaluation run for the dataset and scheme.
func (m *Metrics) IncrementEvaluations(dataset, scheme string) {
	m.prometheus.Evaluations.WithLabelValues(dataset, scheme).Inc()
}

// IncrementSplits counts one train/test split evaluation for the dataset and scheme.
func (m *Metrics) IncrementSplits(dataset, scheme string) {
	m.prometheus.Splits.WithLabelValues(dataset, scheme).Inc()
}

// IncrementFits counts one classifier fit for the given model kind.
func (m *Metrics) IncrementFits(model string) {
	m.prometheus.Fits.WithLabelValues(model).Inc()
}
