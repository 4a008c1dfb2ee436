package metrics

import (
	coremetrics "github.com/h2steel/flexbatch/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records build and solve events in Prometheus metrics.
type PromSink struct {
	buildDuration *prometheus.HistogramVec
	modelSize     *prometheus.GaugeVec
	solveDuration *prometheus.HistogramVec
	solveStatus   *prometheus.CounterVec
	objective     *prometheus.GaugeVec
	solveNodes    *prometheus.GaugeVec
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// StartPromServer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buildDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_build_duration_seconds",
		Help:    "Time spent constructing the scheduling problem",
		Buckets: prometheus.DefBuckets,
	}, []string{"objective"})
	modelSize := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_model_size",
		Help: "Number of variables and constraints in the last built problem",
	}, []string{"objective", "dimension"})
	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_solve_duration_seconds",
		Help:    "Time spent solving the scheduling problem",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"objective"})
	solveStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_solve_total",
		Help: "Total number of solves by outcome",
	}, []string{"objective", "status"})
	objective := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_objective_value",
		Help: "Objective value of the last solve",
	}, []string{"objective"})
	solveNodes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_solve_nodes",
		Help: "Branch and bound nodes explored by the last solve",
	}, []string{"objective"})

	if err := register(reg, buildDuration, &buildDuration); err != nil {
		return nil, err
	}
	if err := register(reg, modelSize, &modelSize); err != nil {
		return nil, err
	}
	if err := register(reg, solveDuration, &solveDuration); err != nil {
		return nil, err
	}
	if err := register(reg, solveStatus, &solveStatus); err != nil {
		return nil, err
	}
	if err := register(reg, objective, &objective); err != nil {
		return nil, err
	}
	if err := register(reg, solveNodes, &solveNodes); err != nil {
		return nil, err
	}

	return &PromSink{
		buildDuration: buildDuration,
		modelSize:     modelSize,
		solveDuration: solveDuration,
		solveStatus:   solveStatus,
		objective:     objective,
		solveNodes:    solveNodes,
	}, nil
}

// register adds c to the registerer, adopting the already registered
// collector when one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, out *C) error {
	if err := reg.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := are.ExistingCollector.(C)
		if !ok {
			return err
		}
		*out = existing
	}
	return nil
}

// RecordBuild records the duration and size of a model construction.
func (s *PromSink) RecordBuild(ev coremetrics.BuildEvent) error {
	s.buildDuration.WithLabelValues(ev.Objective).Observe(ev.Duration.Seconds())
	s.modelSize.WithLabelValues(ev.Objective, "variables").Set(float64(ev.Variables))
	s.modelSize.WithLabelValues(ev.Objective, "constraints").Set(float64(ev.Constraints))
	return nil
}

// RecordSolve records the outcome of an in-process solve.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solveDuration.WithLabelValues(ev.Objective).Observe(ev.Duration.Seconds())
	s.solveStatus.WithLabelValues(ev.Objective, ev.Status).Inc()
	s.objective.WithLabelValues(ev.Objective).Set(ev.ObjectiveValue)
	s.solveNodes.WithLabelValues(ev.Objective).Set(float64(ev.Nodes))
	return nil
}
