// SPDX-License-Identifier: MIT

package fit

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts objective evaluations.
type Metrics struct {
	evaluations *prometheus.CounterVec // by outcome: finite|infinite
	failures    *prometheus.CounterVec // by dataset
	duration    prometheus.Histogram
	best        prometheus.Gauge
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saftgamma",
			Subsystem: "fit",
			Name:      "evaluations_total",
			Help:      "Objective evaluations by outcome.",
		}, []string{"outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saftgamma",
			Subsystem: "fit",
			Name:      "dataset_failures_total",
			Help:      "Dataset scores that were infinite.",
		}, []string{"dataset"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "saftgamma",
			Subsystem: "fit",
			Name:      "evaluation_seconds",
			Help:      "Wall time of one objective evaluation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		best: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "saftgamma",
			Subsystem: "fit",
			Name:      "best_objective",
			Help:      "Lowest finite objective seen in this process.",
		}),
	}
	for _, c := range []prometheus.Collector{m.evaluations, m.failures, m.duration, m.best} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(e Evaluation, names []string, elapsed time.Duration, improved bool) {
	if m == nil {
		return
	}
	outcome := "finite"
	if math.IsInf(e.Score, 1) {
		outcome = "infinite"
	}
	m.evaluations.WithLabelValues(outcome).Inc()
	for i, s := range e.Datasets {
		if math.IsInf(s, 1) {
			m.failures.WithLabelValues(names[i]).Inc()
		}
	}
	m.duration.Observe(elapsed.Seconds())
	if improved {
		m.best.Set(e.Score)
	}
}

// Evaluations returns the counter for outcome "finite" or "infinite".
func (m *Metrics) Evaluations(outcome string) prometheus.Counter {
	return m.evaluations.WithLabelValues(outcome)
}

// Failures returns the infinite-score counter of one dataset.
func (m *Metrics) Failures(dataset string) prometheus.Counter {
	return m.failures.WithLabelValues(dataset)
}
