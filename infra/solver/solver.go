// Package solver solves the scheduling MILP in-process: the LP relaxation
// goes through the gonum simplex and integrality is recovered by
// branch and bound on the binary variables. It serves the scenario-sized
// problems the test corpus exercises; annual horizons are exported to an
// external MILP solver through the same model surface.
package solver

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/h2steel/flexbatch/core/logger"
	"github.com/h2steel/flexbatch/core/mip"
)

// Status classifies the outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	// StatusLimit means a node, time or cancellation limit was hit; the
	// result carries the incumbent if one was found.
	StatusLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusLimit:
		return "limit"
	}
	return "unknown"
}

// Options tune the branch-and-bound search. The zero value uses defaults.
type Options struct {
	// TimeLimit bounds the wall-clock search time; zero means unlimited.
	TimeLimit time.Duration
	// AbsGap prunes nodes whose relaxation is within this absolute
	// distance of the incumbent.
	AbsGap float64
	// MaxNodes bounds the number of explored nodes; zero means
	// unlimited.
	MaxNodes int
	// IntTol is the integrality tolerance, default 1e-6.
	IntTol float64
	// LPTol is the simplex tolerance, default 1e-7.
	LPTol float64

	Log logger.Logger
}

// Result is the outcome of one solve.
type Result struct {
	Status    Status
	Objective float64
	X         mip.Assignment
	Nodes     int
	Runtime   time.Duration
}

type node struct {
	lo, hi []float64
}

// Solve runs branch and bound over the model's binary variables. The
// context cancels the search; a cancelled search returns StatusLimit with
// the incumbent found so far.
func Solve(ctx context.Context, m *mip.Model, opts Options) (*Result, error) {
	if opts.IntTol == 0 {
		opts.IntTol = 1e-6
	}
	if opts.LPTol == 0 {
		opts.LPTol = 1e-7
	}
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}

	obj, sense := m.Objective()
	sign := 1.0
	if sense == mip.Maximize {
		sign = -1
	}
	cmin := make([]float64, m.NumVars())
	for _, t := range obj.Terms {
		cmin[t.Var] += sign * t.Coef
	}

	rootLo := make([]float64, m.NumVars())
	rootHi := make([]float64, m.NumVars())
	for i := 0; i < m.NumVars(); i++ {
		rootLo[i], rootHi[i] = m.Bounds(mip.Var(i))
	}

	start := time.Now()
	var deadline time.Time
	if opts.TimeLimit > 0 {
		deadline = start.Add(opts.TimeLimit)
	}

	stack := []node{{lo: rootLo, hi: rootHi}}
	var bestX mip.Assignment
	bestObj := math.Inf(1) // internal minimization space
	nodes := 0
	limited := false
	unbounded := false

	for len(stack) > 0 {
		if ctx.Err() != nil {
			limited = true
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			limited = true
			break
		}
		if opts.MaxNodes > 0 && nodes >= opts.MaxNodes {
			limited = true
			break
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		x, err := solveRelaxation(m, nd.lo, nd.hi, cmin, opts.LPTol)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case errors.Is(err, lp.ErrUnbounded):
			if bestX == nil {
				unbounded = true
			}
			continue
		case err != nil:
			return nil, err
		}

		relaxObj := sign * m.ObjectiveValue(x)
		if bestX != nil && relaxObj >= bestObj-opts.AbsGap-1e-9 {
			continue
		}

		branch := mostFractionalBinary(m, x, opts.IntTol)
		if branch < 0 {
			bestObj = relaxObj
			bestX = roundBinaries(m, x)
			log.Debugw("incumbent", map[string]any{
				"objective": m.ObjectiveValue(bestX),
				"nodes":     nodes,
			})
			continue
		}

		// Explore the rounded side first.
		down := node{lo: cloneBounds(nd.lo), hi: cloneBounds(nd.hi)}
		down.hi[branch] = 0
		up := node{lo: cloneBounds(nd.lo), hi: cloneBounds(nd.hi)}
		up.lo[branch] = 1
		if x[branch] >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	res := &Result{Nodes: nodes, Runtime: time.Since(start)}
	switch {
	case bestX != nil:
		res.X = bestX
		res.Objective = m.ObjectiveValue(bestX)
		if limited {
			res.Status = StatusLimit
		} else {
			res.Status = StatusOptimal
		}
	case unbounded:
		res.Status = StatusUnbounded
	case limited:
		res.Status = StatusLimit
	default:
		res.Status = StatusInfeasible
	}
	log.Infof("solve finished: status=%s nodes=%d runtime=%s", res.Status, res.Nodes, res.Runtime)
	return res, nil
}

func mostFractionalBinary(m *mip.Model, x mip.Assignment, tol float64) int {
	best := -1
	bestFrac := tol
	for i := range x {
		if m.Kind(mip.Var(i)) != mip.Binary {
			continue
		}
		frac := math.Abs(x[i] - math.Round(x[i]))
		if frac > bestFrac {
			bestFrac = frac
			best = i
		}
	}
	return best
}

func roundBinaries(m *mip.Model, x mip.Assignment) mip.Assignment {
	out := make(mip.Assignment, len(x))
	copy(out, x)
	for i := range out {
		if m.Kind(mip.Var(i)) == mip.Binary {
			out[i] = math.Round(out[i])
		}
	}
	return out
}

func cloneBounds(b []float64) []float64 {
	out := make([]float64, len(b))
	copy(out, b)
	return out
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
