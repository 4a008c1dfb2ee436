package schedule

import (
	"fmt"

	"github.com/h2steel/flexbatch/core/mip"
)

// ObjectiveKind selects one of the optimization strategies.
type ObjectiveKind string

const (
	// MaxProfit maximizes market revenue minus purchase cost and grid
	// charges.
	MaxProfit ObjectiveKind = "max_profit"
	// Stability minimizes the mean deviation of the grid exchange from
	// the goal load.
	Stability ObjectiveKind = "stability"
	// MinLoadJumps minimizes step-to-step exchange changes, weighted by
	// the optional penalty bands. Experimental: kept for completeness,
	// not exercised by the reference scenarios.
	MinLoadJumps ObjectiveKind = "min_load_jumps"
)

func (k ObjectiveKind) known() bool {
	switch k {
	case MaxProfit, Stability, MinLoadJumps:
		return true
	}
	return false
}

// ParseObjective maps a configuration string onto an ObjectiveKind.
func ParseObjective(s string) (ObjectiveKind, error) {
	k := ObjectiveKind(s)
	if !k.known() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedObjective, s)
	}
	return k, nil
}

// ObjectiveFor builds the objective expression for kind from variables the
// problem already carries. It is a pure function of the problem structure.
func ObjectiveFor(p *Problem, kind ObjectiveKind) (mip.Expr, mip.Sense, error) {
	idx := p.Vars
	var e mip.Expr
	switch kind {
	case MaxProfit:
		for t := 0; t < p.Horizon; t++ {
			e.Add(idx.MarketProfit[t], 1)
			if p.Params.DrawFromGrid {
				e.Add(idx.MarketCost[t], -1)
			}
		}
		if p.Params.DrawFromGrid {
			e.Add(idx.GridPowerCharge, -1)
		}
		return e, mip.Maximize, nil

	case Stability:
		w := 1 / float64(p.Horizon)
		for t := 0; t < p.Horizon; t++ {
			e.Add(idx.DevAbove[t], w)
			e.Add(idx.DevBelow[t], w)
		}
		return e, mip.Minimize, nil

	case MinLoadJumps:
		for t := 0; t < p.Horizon; t++ {
			e.Add(idx.LoadJumpUp[t], 1)
			e.Add(idx.LoadJumpDown[t], 1)
		}
		for _, band := range p.Params.PenaltyBands {
			over := idx.JumpOvershoot[band.ID]
			for t := 0; t < p.Horizon; t++ {
				e.Add(over[t], band.Penalty)
			}
		}
		return e, mip.Minimize, nil
	}
	return mip.Expr{}, mip.Minimize, fmt.Errorf("%w: %q", ErrUnsupportedObjective, kind)
}
