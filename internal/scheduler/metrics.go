package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics encapsulates the Prometheus collectors the search phases update
// on every iteration. A nil *Metrics is safe to call into: every method
// guards against it so wiring metrics is optional for callers that only
// want the engine, not the gateway.
type Metrics struct {
	esIterations  prometheus.Counter
	saIterations  prometheus.Counter
	hardCostGauge prometheus.Gauge
	softCostGauge prometheus.Gauge
	unscheduled   prometheus.Gauge
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// NewMetrics registers the scheduler's collectors against registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		esIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_es_iterations_total",
			Help: "Total (1+1) evolution strategy offspring evaluated.",
		}),
		saIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_sa_iterations_total",
			Help: "Total simulated annealing steps evaluated.",
		}),
		hardCostGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_hard_cost",
			Help: "Hard-constraint cost of the best timetable found so far in the current run.",
		}),
		softCostGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_soft_cost",
			Help: "Soft-constraint cost of the best timetable found so far in the current run.",
		}),
		unscheduled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_unscheduled_periods",
			Help: "Count of periods the current best timetable failed to place.",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_runs_total",
			Help: "Completed Generate calls by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_run_duration_seconds",
			Help:    "Wall-clock duration of a Generate call.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if registry != nil {
		registry.MustRegister(m.esIterations, m.saIterations, m.hardCostGauge, m.softCostGauge, m.unscheduled, m.runsTotal, m.runDuration)
	}
	return m
}

func (m *Metrics) incES() {
	if m == nil {
		return
	}
	m.esIterations.Inc()
}

func (m *Metrics) incSA() {
	if m == nil {
		return
	}
	m.saIterations.Inc()
}

func (m *Metrics) observeBest(hard, soft, unscheduled int) {
	if m == nil {
		return
	}
	m.hardCostGauge.Set(float64(hard))
	m.softCostGauge.Set(float64(soft))
	m.unscheduled.Set(float64(unscheduled))
}

// ObserveRun records one completed Generate call's outcome and duration.
// Exported for internal/runqueue, which owns the run's start/end timing.
func (m *Metrics) ObserveRun(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(seconds)
}
