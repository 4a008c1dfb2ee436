package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/h2steel/flexbatch/core/mip"
)

// solveRelaxation solves the LP relaxation of the model under the given
// per-node variable bounds. The model is translated into simplex standard
// form: finite-lower-bounded variables are shifted to non-negative space,
// free variables are split into positive and negative parts, upper bounds
// and inequality rows receive slack columns. cmin is the minimization
// objective over the original variables.
func solveRelaxation(m *mip.Model, lo, hi, cmin []float64, tol float64) (mip.Assignment, error) {
	n := m.NumVars()

	pos := make([]int, n)
	neg := make([]int, n)
	cols := 0
	for i := 0; i < n; i++ {
		pos[i] = cols
		if math.IsInf(lo[i], -1) {
			neg[i] = cols + 1
			cols += 2
		} else {
			neg[i] = -1
			cols++
		}
	}

	type row struct {
		coef map[int]float64
		rhs  float64
	}
	var eqs, ineqs []row

	// addVar folds coefficient a on original variable i into the row,
	// accounting for the shift or split of that variable.
	addVar := func(r *row, i int, a float64) {
		if a == 0 {
			return
		}
		r.coef[pos[i]] += a
		if neg[i] >= 0 {
			r.coef[neg[i]] -= a
		} else {
			r.rhs -= a * lo[i]
		}
	}

	// Upper bounds become inequality rows in shifted space.
	for i := 0; i < n; i++ {
		if math.IsInf(hi[i], 1) {
			continue
		}
		r := row{coef: make(map[int]float64)}
		r.rhs = hi[i]
		addVar(&r, i, 1)
		ineqs = append(ineqs, r)
	}

	for ci := 0; ci < m.NumConstraints(); ci++ {
		c := m.Constraint(ci)
		if c.Lo == c.Hi {
			r := row{coef: make(map[int]float64)}
			r.rhs = c.Lo - c.Expr.Const
			for _, t := range c.Expr.Terms {
				addVar(&r, int(t.Var), t.Coef)
			}
			if len(r.coef) == 0 || allZero(r.coef) {
				if math.Abs(r.rhs) > tol {
					return nil, lp.ErrInfeasible
				}
				continue
			}
			eqs = append(eqs, r)
			continue
		}
		if !math.IsInf(c.Hi, 1) {
			r := row{coef: make(map[int]float64)}
			r.rhs = c.Hi - c.Expr.Const
			for _, t := range c.Expr.Terms {
				addVar(&r, int(t.Var), t.Coef)
			}
			if len(r.coef) == 0 || allZero(r.coef) {
				if r.rhs < -tol {
					return nil, lp.ErrInfeasible
				}
			} else {
				ineqs = append(ineqs, r)
			}
		}
		if !math.IsInf(c.Lo, -1) {
			r := row{coef: make(map[int]float64)}
			r.rhs = -(c.Lo - c.Expr.Const)
			for _, t := range c.Expr.Terms {
				addVar(&r, int(t.Var), -t.Coef)
			}
			if len(r.coef) == 0 || allZero(r.coef) {
				if r.rhs < -tol {
					return nil, lp.ErrInfeasible
				}
			} else {
				ineqs = append(ineqs, r)
			}
		}
	}

	nRows := len(eqs) + len(ineqs)
	nCols := cols + len(ineqs)
	if nRows == 0 || nCols == 0 {
		// Nothing binds beyond the variable domains.
		out := make(mip.Assignment, n)
		for i := range out {
			if !math.IsInf(lo[i], -1) {
				out[i] = lo[i]
			}
		}
		return out, nil
	}

	A := mat.NewDense(nRows, nCols, nil)
	bvec := make([]float64, nRows)
	for r, e := range eqs {
		for col, a := range e.coef {
			A.Set(r, col, a)
		}
		bvec[r] = e.rhs
	}
	for j, e := range ineqs {
		r := len(eqs) + j
		for col, a := range e.coef {
			A.Set(r, col, a)
		}
		A.Set(r, cols+j, 1) // slack
		bvec[r] = e.rhs
	}

	cvec := make([]float64, nCols)
	for i := 0; i < n; i++ {
		if cmin[i] == 0 {
			continue
		}
		cvec[pos[i]] += cmin[i]
		if neg[i] >= 0 {
			cvec[neg[i]] -= cmin[i]
		}
	}

	_, y, err := lp.Simplex(cvec, A, bvec, tol, nil)
	if err != nil {
		return nil, err
	}

	out := make(mip.Assignment, n)
	for i := 0; i < n; i++ {
		if neg[i] >= 0 {
			out[i] = y[pos[i]] - y[neg[i]]
		} else {
			out[i] = lo[i] + y[pos[i]]
		}
	}
	return out, nil
}

func allZero(coef map[int]float64) bool {
	for _, a := range coef {
		if a != 0 {
			return false
		}
	}
	return true
}
