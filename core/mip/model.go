// Package mip holds a solver-agnostic mixed-integer linear program:
// variables with bounds and integrality, sparse linear constraints and a
// linear objective. Construction code populates a Model; solver adapters
// and reporting consume it through the accessors.
package mip

import (
	"fmt"
	"math"
)

// Var is a handle to a model variable. Handles are dense indices assigned
// in creation order, so two builds that create variables in the same
// sequence produce identical handles.
type Var int

// VarKind distinguishes continuous from binary variables.
type VarKind int

const (
	Continuous VarKind = iota
	Binary
)

// Sense is the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// Constraint is a named row lo <= expr <= hi. Equality rows have lo == hi.
type Constraint struct {
	Name string
	Expr Expr
	Lo   float64
	Hi   float64
}

type varDef struct {
	name string
	lo   float64
	hi   float64
	kind VarKind
}

// Model is a mutable MILP under construction. It is not safe for
// concurrent mutation; independent models may be built in parallel.
type Model struct {
	vars   []varDef
	byName map[string]Var
	cons   []Constraint

	obj   Expr
	sense Sense
}

// New returns an empty model.
func New() *Model {
	return &Model{byName: make(map[string]Var)}
}

// NewVar registers a variable with the given domain. Names must be unique
// within the model; reusing one panics since it indicates a construction
// bug, never bad user input.
func (m *Model) NewVar(name string, lo, hi float64, kind VarKind) Var {
	if _, ok := m.byName[name]; ok {
		panic(fmt.Sprintf("mip: duplicate variable %q", name))
	}
	v := Var(len(m.vars))
	m.vars = append(m.vars, varDef{name: name, lo: lo, hi: hi, kind: kind})
	m.byName[name] = v
	return v
}

// NewContinuous registers a continuous variable with bounds [lo, hi].
func (m *Model) NewContinuous(name string, lo, hi float64) Var {
	return m.NewVar(name, lo, hi, Continuous)
}

// NewNonNeg registers a continuous variable with bounds [0, +inf).
func (m *Model) NewNonNeg(name string) Var {
	return m.NewVar(name, 0, math.Inf(1), Continuous)
}

// NewFree registers an unbounded continuous variable.
func (m *Model) NewFree(name string) Var {
	return m.NewVar(name, math.Inf(-1), math.Inf(1), Continuous)
}

// NewBinary registers a {0,1} variable.
func (m *Model) NewBinary(name string) Var {
	return m.NewVar(name, 0, 1, Binary)
}

// FixZero pins a variable to zero by collapsing its domain.
func (m *Model) FixZero(v Var) {
	m.vars[v].lo = 0
	m.vars[v].hi = 0
}

// Bounds returns the domain of v.
func (m *Model) Bounds(v Var) (lo, hi float64) {
	return m.vars[v].lo, m.vars[v].hi
}

// Kind returns the integrality of v.
func (m *Model) Kind(v Var) VarKind { return m.vars[v].kind }

// Name returns the registered name of v.
func (m *Model) Name(v Var) string { return m.vars[v].name }

// VarByName looks a variable up by its registered name.
func (m *Model) VarByName(name string) (Var, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// NumVars returns the number of registered variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of registered constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }

// AddRange registers the row lo <= expr <= hi.
func (m *Model) AddRange(name string, e Expr, lo, hi float64) {
	m.cons = append(m.cons, Constraint{Name: name, Expr: e, Lo: lo, Hi: hi})
}

// AddEq registers the row expr == rhs.
func (m *Model) AddEq(name string, e Expr, rhs float64) {
	m.AddRange(name, e, rhs, rhs)
}

// AddLe registers the row expr <= rhs.
func (m *Model) AddLe(name string, e Expr, rhs float64) {
	m.AddRange(name, e, math.Inf(-1), rhs)
}

// AddGe registers the row expr >= rhs.
func (m *Model) AddGe(name string, e Expr, rhs float64) {
	m.AddRange(name, e, rhs, math.Inf(1))
}

// Constraint returns the i-th registered row.
func (m *Model) Constraint(i int) Constraint { return m.cons[i] }

// ConstraintByName returns the first row with the given name.
func (m *Model) ConstraintByName(name string) (Constraint, bool) {
	for _, c := range m.cons {
		if c.Name == name {
			return c, true
		}
	}
	return Constraint{}, false
}

// SetObjective installs the objective expression and direction.
func (m *Model) SetObjective(e Expr, sense Sense) {
	m.obj = e
	m.sense = sense
}

// Objective returns the installed objective.
func (m *Model) Objective() (Expr, Sense) { return m.obj, m.sense }

// ObjectiveValue evaluates the objective under x.
func (m *Model) ObjectiveValue(x Assignment) float64 { return m.obj.Value(x) }
