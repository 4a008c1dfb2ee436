package schedule

import (
	"fmt"

	"github.com/h2steel/flexbatch/core/mip"
)

// reductionUnit adds the electrolyser, hydrogen-tank and DRI-storage
// constraints.
func (b *builder) reductionUnit() {
	p, m, idx := b.p, b.m, b.idx

	for t := 0; t < b.T; t++ {
		// Electrolyser load is semi-continuous: zero when off, inside
		// [min, max] capacity when on.
		var up mip.Expr
		up.Add(idx.ElectrolyserLoad[t], 1)
		up.Add(idx.ElectrolyserOn[t], -p.ElectrolyserMaxMW)
		m.AddLe(fmt.Sprintf("electrolyser_max[%d]", t), up, 0)

		var lo mip.Expr
		lo.Add(idx.ElectrolyserLoad[t], 1)
		lo.Add(idx.ElectrolyserOn[t], -p.ElectrolyserMinMW)
		m.AddGe(fmt.Sprintf("electrolyser_min[%d]", t), lo, 0)

		// Hydrogen produced in the step either reduces iron ore directly
		// or flows into the tank; negative flow draws from the tank.
		var flow mip.Expr
		flow.Add(idx.ElectrolyserLoad[t], p.ElectrolyserEfficiency*b.dt)
		flow.Add(idx.H2ToDRI[t], -1)
		flow.Add(idx.TankFlow[t], -1)
		m.AddEq(fmt.Sprintf("h2_flow[%d]", t), flow, 0)

		// DRI inventory: previous content plus production minus the
		// demand of every batch starting at t.
		var dri mip.Expr
		dri.Add(idx.DRIContent[t], 1)
		dri.Add(idx.H2ToDRI[t], -1/p.H2PerDRITon)
		for i := range p.Units {
			u := &p.Units[i]
			for j := range u.Modes {
				v := &u.Modes[j]
				dri.Add(idx.Units[u.ID].Modes[v.ID].Start[t], v.DRITonsPerBatch)
			}
		}
		rhs := 0.0
		if t == 0 {
			rhs = p.InitialDRITons
		} else {
			dri.Add(idx.DRIContent[t-1], -1)
		}
		m.AddEq(fmt.Sprintf("dri_content[%d]", t), dri, rhs)

		// Tank inventory: previous content plus flow minus the hydrogen
		// the fuel cell converts back to electricity. The nominal
		// capacity cap is part of the variable domain.
		var tank mip.Expr
		tank.Add(idx.TankContent[t], 1)
		tank.Add(idx.TankFlow[t], -1)
		tank.Add(idx.FuelCell[t], b.dt/p.FuelCellEfficiency)
		rhs = 0.0
		if t == 0 {
			rhs = p.TankInitialFilling * p.TankCapacityMWh
		} else {
			tank.Add(idx.TankContent[t-1], -1)
		}
		m.AddEq(fmt.Sprintf("tank_content[%d]", t), tank, rhs)
	}

	if p.UseStorageGoals {
		var tank mip.Expr
		tank.Add(idx.TankContent[b.T-1], 1)
		m.AddGe("goal_tank", tank, p.GoalTankMWh)

		var dri mip.Expr
		dri.Add(idx.DRIContent[b.T-1], 1)
		m.AddGe("goal_dri", dri, p.GoalDRITons)
	}
}
