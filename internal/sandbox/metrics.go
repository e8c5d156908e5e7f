package sandbox

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/copyleftdev/swarmlab/internal/optimization/algorithm"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
)

const namespace = "swarmlab"

// Metrics holds the Prometheus collectors shared by all sessions of a
// process. A nil *Metrics records nothing.
type Metrics struct {
	Generations    *prometheus.CounterVec
	BestFitness    *prometheus.GaugeVec
	StepDuration   *prometheus.HistogramVec
	Resets         *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	labels := []string{"algorithm", "landscape"}
	m := &Metrics{
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generations stepped.",
		}, labels),
		BestFitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Best fitness of the most recently stepped run.",
		}, labels),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Time spent in one algorithm step.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, labels),
		Resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Runs started.",
		}, labels),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open sandbox sessions.",
		}),
	}
	reg.MustRegister(m.Generations, m.BestFitness, m.StepDuration, m.Resets, m.ActiveSessions)
	return m
}

func (m *Metrics) step(a algorithm.ID, l landscape.ID, best float64, d time.Duration) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(string(a), string(l)).Inc()
	m.BestFitness.WithLabelValues(string(a), string(l)).Set(best)
	m.StepDuration.WithLabelValues(string(a), string(l)).Observe(d.Seconds())
}

func (m *Metrics) reset(a algorithm.ID, l landscape.ID) {
	if m == nil {
		return
	}
	m.Resets.WithLabelValues(string(a), string(l)).Inc()
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}
