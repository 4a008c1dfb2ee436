package mip

import (
	"fmt"
	"math"
)

// Assignment maps variable handles to values. Its length must equal the
// model's NumVars when evaluated.
type Assignment []float64

// Violation reports one broken bound, integrality or row condition.
type Violation struct {
	// Kind is "bound", "integrality" or "row".
	Kind string
	// Name is the variable or constraint name.
	Name string
	// Amount is the magnitude of the violation.
	Amount float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s violated by %g", v.Kind, v.Name, v.Amount)
}

// Violations evaluates x against every variable domain and constraint row
// and returns each condition broken by more than tol. A nil result means
// the assignment is feasible.
func (m *Model) Violations(x Assignment, tol float64) []Violation {
	if len(x) != len(m.vars) {
		return []Violation{{Kind: "bound", Name: "assignment", Amount: math.Abs(float64(len(m.vars) - len(x)))}}
	}
	var out []Violation
	for i, d := range m.vars {
		val := x[i]
		if val < d.lo-tol {
			out = append(out, Violation{Kind: "bound", Name: d.name, Amount: d.lo - val})
		}
		if val > d.hi+tol {
			out = append(out, Violation{Kind: "bound", Name: d.name, Amount: val - d.hi})
		}
		if d.kind == Binary {
			if frac := math.Abs(val - math.Round(val)); frac > tol {
				out = append(out, Violation{Kind: "integrality", Name: d.name, Amount: frac})
			}
		}
	}
	for _, c := range m.cons {
		val := c.Expr.Value(x)
		if val < c.Lo-tol {
			out = append(out, Violation{Kind: "row", Name: c.Name, Amount: c.Lo - val})
		}
		if val > c.Hi+tol {
			out = append(out, Violation{Kind: "row", Name: c.Name, Amount: val - c.Hi})
		}
	}
	return out
}

// Feasible reports whether x satisfies every domain and row within tol.
func (m *Model) Feasible(x Assignment, tol float64) bool {
	return len(m.Violations(x, tol)) == 0
}

// Value returns the assigned value of the named variable.
func (x Assignment) Value(m *Model, name string) (float64, bool) {
	v, ok := m.VarByName(name)
	if !ok {
		return 0, false
	}
	return x[v], true
}
