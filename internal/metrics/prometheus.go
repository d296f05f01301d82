package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Evaluations *prometheus.CounterVec
	Splits      *prometheus.CounterVec
	Fits        *prometheus.CounterVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "embed",
				Name:      "evaluations",
			}, []string{"dataset", "scheme"}),
		Splits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "embed",
				Name:      "splits",
			}, []string{"dataset", "scheme"}),
		Fits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "embed",
				Name:      "fits",
			}, []string{"model"}),
	}
}
