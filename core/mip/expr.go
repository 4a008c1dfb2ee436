package mip

// Term is a single coefficient on a variable inside a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a sparse linear expression: sum of terms plus a constant.
// The zero value is ready to use.
type Expr struct {
	Terms []Term
	Const float64
}

// Add appends coef*v to the expression and returns the expression for
// chaining. Zero coefficients are dropped.
func (e *Expr) Add(v Var, coef float64) *Expr {
	if coef != 0 {
		e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	}
	return e
}

// AddConst adds a constant offset to the expression.
func (e *Expr) AddConst(c float64) *Expr {
	e.Const += c
	return e
}

// AddExpr appends scale*o to the expression.
func (e *Expr) AddExpr(o Expr, scale float64) *Expr {
	if scale == 0 {
		return e
	}
	for _, t := range o.Terms {
		e.Add(t.Var, scale*t.Coef)
	}
	e.Const += scale * o.Const
	return e
}

// Value evaluates the expression under the given assignment.
func (e Expr) Value(x Assignment) float64 {
	v := e.Const
	for _, t := range e.Terms {
		v += t.Coef * x[t.Var]
	}
	return v
}
