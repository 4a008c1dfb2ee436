package schedule

import (
	"fmt"

	"github.com/h2steel/flexbatch/core/mip"
)

// powerBalance adds the plant-wide electricity accounting: per-step
// balance, net grid exchange, the mean exchange and the linearized
// deviation split used by the stability objective.
func (b *builder) powerBalance() {
	p, m, idx := b.p, b.m, b.idx

	for t := 0; t < b.T; t++ {
		// Generation, fuel cell and grid purchases cover every load; the
		// residual is sold. Renewable generation enters as the constant
		// side of the row.
		var bal mip.Expr
		bal.Add(idx.FuelCell[t], 1)
		if p.DrawFromGrid {
			bal.Add(idx.PowerBuy[t], 1)
		}
		for i := range p.Units {
			uv := idx.Units[p.Units[i].ID]
			bal.Add(uv.Load[t], -1)
			bal.Add(uv.RollingLoad[t], -1)
		}
		bal.Add(idx.ElectrolyserLoad[t], -1)
		bal.Add(idx.PowerSell[t], -1)
		m.AddEq(fmt.Sprintf("power_balance[%d]", t), bal, -p.GenerationMW[t])

		// Net exchange is positive towards the grid.
		var exch mip.Expr
		exch.Add(idx.PowerExchange[t], 1)
		exch.Add(idx.PowerSell[t], -1)
		if p.DrawFromGrid {
			exch.Add(idx.PowerBuy[t], 1)
		}
		m.AddEq(fmt.Sprintf("power_exchange[%d]", t), exch, 0)
	}

	if !p.GivenGoalLoad {
		var mean mip.Expr
		mean.Add(idx.MeanExchange, float64(b.T))
		for t := 0; t < b.T; t++ {
			mean.Add(idx.PowerExchange[t], -1)
		}
		m.AddEq("mean_exchange", mean, 0)
	}

	// Deviation from the goal load cannot appear as an absolute value in
	// a linear model; the signed deviation is pinned to the difference of
	// two non-negative parts. Minimization pressure from the objective
	// keeps at most one part non-zero at the optimum.
	for t := 0; t < b.T; t++ {
		var split mip.Expr
		split.Add(idx.DevAbove[t], 1)
		split.Add(idx.DevBelow[t], -1)
		split.Add(idx.PowerExchange[t], -1)
		rhs := 0.0
		if p.GivenGoalLoad {
			rhs = -p.GoalLoadMW
		} else {
			split.Add(idx.MeanExchange, 1)
		}
		m.AddEq(fmt.Sprintf("deviation_split[%d]", t), split, rhs)
	}
}

// economics adds the market profit and cost rows plus the grid tariff
// accounting.
func (b *builder) economics() {
	p, m, idx := b.p, b.m, b.idx

	for t := 0; t < b.T; t++ {
		var profit mip.Expr
		profit.Add(idx.MarketProfit[t], 1)
		profit.Add(idx.PowerSell[t], -b.dt*p.PriceEURPerMWh[t])
		m.AddEq(fmt.Sprintf("market_profit[%d]", t), profit, 0)
	}
	if !p.DrawFromGrid {
		return
	}
	for t := 0; t < b.T; t++ {
		// Buying pays the market price plus the energy grid charge per
		// MWh drawn.
		var cost mip.Expr
		cost.Add(idx.MarketCost[t], 1)
		cost.Add(idx.PowerBuy[t], -b.dt*(p.PriceEURPerMWh[t]+p.GridEnergyPrice))
		m.AddEq(fmt.Sprintf("market_cost[%d]", t), cost, 0)

		var draw mip.Expr
		draw.Add(idx.MaxGridDraw, 1)
		draw.Add(idx.PowerBuy[t], -1)
		m.AddGe(fmt.Sprintf("max_grid_draw[%d]", t), draw, 0)
	}
	// The demand-rate charge applies once to the maximum drawn power.
	var charge mip.Expr
	charge.Add(idx.GridPowerCharge, 1)
	charge.Add(idx.MaxGridDraw, -p.GridPowerPrice)
	m.AddEq("grid_power_charge", charge, 0)
}

// loadJumps adds the step-to-step exchange change accounting used by the
// experimental load-jump objective, including the optional penalty bands.
func (b *builder) loadJumps() {
	p, m, idx := b.p, b.m, b.idx

	for t := 0; t < b.T; t++ {
		var jump mip.Expr
		jump.Add(idx.LoadJump[t], 1)
		if t > 0 {
			jump.Add(idx.PowerExchange[t-1], -1)
			jump.Add(idx.PowerExchange[t], 1)
		}
		m.AddEq(fmt.Sprintf("load_jump[%d]", t), jump, 0)

		var split mip.Expr
		split.Add(idx.LoadJump[t], 1)
		split.Add(idx.LoadJumpUp[t], -1)
		split.Add(idx.LoadJumpDown[t], 1)
		m.AddEq(fmt.Sprintf("load_jump_split[%d]", t), split, 0)
	}

	for _, band := range p.PenaltyBands {
		over := idx.JumpOvershoot[band.ID]
		for t := 0; t < b.T; t++ {
			var o mip.Expr
			o.Add(over[t], 1)
			o.Add(idx.LoadJumpUp[t], -1)
			o.Add(idx.LoadJumpDown[t], -1)
			m.AddGe(fmt.Sprintf("jump_overshoot.%s[%d]", band.ID, t), o, -band.LimitMW)
		}
	}
}
