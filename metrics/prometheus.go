package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements termstructure.Recorder using Prometheus.
type Recorder struct {
	runs       *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	duration   *prometheus.HistogramVec
}

// New registers the bootstrap metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curvekit_bootstrap_total",
				Help: "Total number of curve bootstraps by outcome",
			},
			[]string{"curve", "method", "outcome"},
		),
		iterations: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curvekit_bootstrap_iterations",
				Help:    "Outer passes (iterative) or minimizer iterations (local) per bootstrap",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"curve", "method"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curvekit_bootstrap_duration_seconds",
				Help:    "Duration of curve bootstraps in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"curve", "method"},
		),
	}
}

// RecordBootstrap records one bootstrap run.
func (r *Recorder) RecordBootstrap(curve, method, outcome string, iterations int, elapsed time.Duration) {
	r.runs.WithLabelValues(curve, method, outcome).Inc()
	r.iterations.WithLabelValues(curve, method).Observe(float64(iterations))
	r.duration.WithLabelValues(curve, method).Observe(elapsed.Seconds())
}
