package export

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/h2steel/flexbatch/core/mip"
)

// WriteLP writes the model to w in CPLEX LP format so horizons too large
// for the in-process solver can be handed to an external MILP solver.
func WriteLP(w io.Writer, m *mip.Model) error {
	bw := bufio.NewWriter(w)

	obj, sense := m.Objective()
	if sense == mip.Maximize {
		fmt.Fprintln(bw, "Maximize")
	} else {
		fmt.Fprintln(bw, "Minimize")
	}
	fmt.Fprint(bw, " obj:")
	writeExpr(bw, m, obj)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for i := 0; i < m.NumConstraints(); i++ {
		c := m.Constraint(i)
		rhsShift := c.Expr.Const
		switch {
		case c.Lo == c.Hi:
			fmt.Fprintf(bw, " %s:", c.Name)
			writeTerms(bw, m, c.Expr)
			fmt.Fprintf(bw, " = %s\n", num(c.Lo-rhsShift))
		case math.IsInf(c.Lo, -1):
			fmt.Fprintf(bw, " %s:", c.Name)
			writeTerms(bw, m, c.Expr)
			fmt.Fprintf(bw, " <= %s\n", num(c.Hi-rhsShift))
		case math.IsInf(c.Hi, 1):
			fmt.Fprintf(bw, " %s:", c.Name)
			writeTerms(bw, m, c.Expr)
			fmt.Fprintf(bw, " >= %s\n", num(c.Lo-rhsShift))
		default:
			fmt.Fprintf(bw, " %s_lo:", c.Name)
			writeTerms(bw, m, c.Expr)
			fmt.Fprintf(bw, " >= %s\n", num(c.Lo-rhsShift))
			fmt.Fprintf(bw, " %s_hi:", c.Name)
			writeTerms(bw, m, c.Expr)
			fmt.Fprintf(bw, " <= %s\n", num(c.Hi-rhsShift))
		}
	}

	fmt.Fprintln(bw, "Bounds")
	for i := 0; i < m.NumVars(); i++ {
		v := mip.Var(i)
		if m.Kind(v) == mip.Binary {
			continue
		}
		lo, hi := m.Bounds(v)
		switch {
		case math.IsInf(lo, -1) && math.IsInf(hi, 1):
			fmt.Fprintf(bw, " %s free\n", m.Name(v))
		case math.IsInf(hi, 1):
			if lo != 0 {
				fmt.Fprintf(bw, " %s >= %s\n", m.Name(v), num(lo))
			}
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", num(lo), m.Name(v), num(hi))
		}
	}

	wroteHeader := false
	for i := 0; i < m.NumVars(); i++ {
		v := mip.Var(i)
		if m.Kind(v) != mip.Binary {
			continue
		}
		if !wroteHeader {
			fmt.Fprintln(bw, "Binary")
			wroteHeader = true
		}
		fmt.Fprintf(bw, " %s\n", m.Name(v))
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func writeExpr(bw *bufio.Writer, m *mip.Model, e mip.Expr) {
	writeTerms(bw, m, e)
	if e.Const != 0 {
		fmt.Fprintf(bw, " %s", signedNum(e.Const))
	}
}

func writeTerms(bw *bufio.Writer, m *mip.Model, e mip.Expr) {
	for _, t := range e.Terms {
		if t.Coef == 0 {
			continue
		}
		fmt.Fprintf(bw, " %s %s", signedNum(t.Coef), m.Name(t.Var))
	}
}

func num(f float64) string {
	return fmt.Sprintf("%g", f)
}

func signedNum(f float64) string {
	if f >= 0 {
		return "+ " + num(f)
	}
	return "- " + num(-f)
}
