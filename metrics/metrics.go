// Package metrics exports solver activity as Prometheus metrics.
//
// Collector implements routing.Observer; attach it with routing.WithObserver
// and every solve of the model is counted:
//
//	lvroute_solves_total{status,strategy}
//	lvroute_local_search_moves_total{operator}
//	lvroute_local_search_iterations_total
//	lvroute_solve_duration_seconds{strategy}
//	lvroute_last_objective
//	lvroute_last_improvement
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/katalvlaran/lvroute/routing"
)

const namespace = "lvroute"

// Collector holds the solver metrics.
type Collector struct {
	solves      *prometheus.CounterVec
	moves       *prometheus.CounterVec
	iterations  prometheus.Counter
	duration    *prometheus.HistogramVec
	objective   prometheus.Gauge
	improvement prometheus.Gauge
}

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "solves_total",
			Help: "Solves by final status and first solution strategy.",
		}, []string{"status", "strategy"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "local_search_moves_total",
			Help: "Accepted local search moves by operator.",
		}, []string{"operator"}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "local_search_iterations_total",
			Help: "Evaluated local search neighbors.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "solve_duration_seconds",
			Help:    "Wall time of a solve in seconds.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30, 60},
		}, []string{"strategy"}),
		objective: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_objective",
			Help: "Objective of the last solve that produced a solution.",
		}),
		improvement: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_improvement",
			Help: "First solution objective minus final objective of the last successful solve.",
		}),
	}
	for _, m := range []prometheus.Collector{c.solves, c.moves, c.iterations, c.duration, c.objective, c.improvement} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return c, nil
}

// ObserveSolve records one solve report.
func (c *Collector) ObserveSolve(r routing.SolveReport) {
	strategy := r.FirstSolutionStrategy.String()
	c.solves.WithLabelValues(r.Status.String(), strategy).Inc()
	c.duration.WithLabelValues(strategy).Observe(r.Duration.Seconds())
	c.iterations.Add(float64(r.Iterations))
	for op, n := range r.Moves {
		c.moves.WithLabelValues(op).Add(float64(n))
	}
	if r.Status.HasSolution() {
		c.objective.Set(float64(r.Objective))
		c.improvement.Set(float64(r.FirstSolutionObjective - r.Objective))
	}
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
