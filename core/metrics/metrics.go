// Package metrics defines the observability events emitted while building
// and solving scheduling problems, decoupled from the Prometheus backend.
package metrics

import "time"

// BuildEvent captures one model construction.
type BuildEvent struct {
	Objective   string
	Variables   int
	Constraints int
	Horizon     int
	Duration    time.Duration
}

// SolveEvent captures one in-process solve.
type SolveEvent struct {
	Objective      string
	Status         string
	ObjectiveValue float64
	Nodes          int
	Duration       time.Duration
}

// Sink records build and solve events for observability purposes.
type Sink interface {
	RecordBuild(ev BuildEvent) error
	RecordSolve(ev SolveEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordBuild(BuildEvent) error { return nil }
func (NopSink) RecordSolve(SolveEvent) error { return nil }
