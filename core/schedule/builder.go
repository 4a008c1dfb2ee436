package schedule

import (
	"fmt"

	"github.com/h2steel/flexbatch/core/mip"
	"github.com/h2steel/flexbatch/core/plant"
)

// Build translates the plant description into a fully specified MILP under
// the chosen objective. It fails before creating any variable when the
// description is inconsistent, the objective kind is unknown, or no batch
// can ever be scheduled inside the horizon; a partial model is never
// returned. The call is deterministic and free of side effects, so
// independent scenarios may be built concurrently.
func Build(p *plant.Params, kind ObjectiveKind) (*Problem, error) {
	if !kind.known() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedObjective, kind)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkHorizon(p); err != nil {
		return nil, err
	}

	b := &builder{
		p:  p,
		m:  mip.New(),
		T:  p.Horizon(),
		dt: p.DeltaHours(),
		idx: &Index{
			MeanExchange:    None,
			MaxGridDraw:     None,
			GridPowerCharge: None,
		},
	}
	b.variables()
	b.reductionUnit()
	b.steelMaking()
	b.rolling()
	b.powerBalance()
	b.economics()
	b.loadJumps()

	prob := &Problem{
		Model:      b.m,
		Vars:       b.idx,
		Params:     p,
		Horizon:    b.T,
		DeltaHours: b.dt,
		Objective:  kind,
	}
	expr, sense, err := ObjectiveFor(prob, kind)
	if err != nil {
		return nil, err
	}
	b.m.SetObjective(expr, sense)
	return prob, nil
}

// latestStart is the last step a batch of mode v on unit u may begin and
// still finish both its own duration and the rolling stage inside a
// horizon of T steps. Negative means no start is possible at all.
func latestStart(T int, u *plant.Unit, v *plant.Mode) int {
	return T - v.DurationSteps - u.RollingDurationSteps
}

func checkHorizon(p *plant.Params) error {
	T := p.Horizon()
	for i := range p.Units {
		u := &p.Units[i]
		for j := range u.Modes {
			if latestStart(T, u, &u.Modes[j]) >= 0 {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: horizon of %d steps", ErrInfeasibleHorizon, T)
}

type builder struct {
	p   *plant.Params
	m   *mip.Model
	T   int
	dt  float64
	idx *Index
}

func (b *builder) binarySeries(name string) []mip.Var {
	vs := make([]mip.Var, b.T)
	for t := range vs {
		vs[t] = b.m.NewBinary(fmt.Sprintf("%s[%d]", name, t))
	}
	return vs
}

func (b *builder) nonnegSeries(name string) []mip.Var {
	vs := make([]mip.Var, b.T)
	for t := range vs {
		vs[t] = b.m.NewNonNeg(fmt.Sprintf("%s[%d]", name, t))
	}
	return vs
}

func (b *builder) freeSeries(name string) []mip.Var {
	vs := make([]mip.Var, b.T)
	for t := range vs {
		vs[t] = b.m.NewFree(fmt.Sprintf("%s[%d]", name, t))
	}
	return vs
}

func (b *builder) boundedSeries(name string, lo, hi float64) []mip.Var {
	vs := make([]mip.Var, b.T)
	for t := range vs {
		vs[t] = b.m.NewContinuous(fmt.Sprintf("%s[%d]", name, t), lo, hi)
	}
	return vs
}

// variables registers every variable family in a fixed order so that two
// builds of the same parameter set yield identical handles and names.
func (b *builder) variables() {
	p, idx := b.p, b.idx

	idx.Units = make(map[string]*UnitVars, len(p.Units))
	for i := range p.Units {
		u := &p.Units[i]
		uv := &UnitVars{Modes: make(map[string]*ModeVars, len(u.Modes))}
		for j := range u.Modes {
			v := &u.Modes[j]
			uv.Modes[v.ID] = &ModeVars{
				Start:   b.binarySeries(fmt.Sprintf("batch_start.%s.%s", u.ID, v.ID)),
				Running: b.binarySeries(fmt.Sprintf("mode_running.%s.%s", u.ID, v.ID)),
				Store:   b.nonnegSeries(fmt.Sprintf("intermediate_store.%s.%s", u.ID, v.ID)),
			}
		}
		uv.Running = b.binarySeries(fmt.Sprintf("unit_running.%s", u.ID))
		uv.Load = b.nonnegSeries(fmt.Sprintf("unit_load.%s", u.ID))
		uv.RollingRunning = b.binarySeries(fmt.Sprintf("rolling_running.%s", u.ID))
		uv.RollingLoad = b.nonnegSeries(fmt.Sprintf("rolling_load.%s", u.ID))
		uv.SteelCum = b.nonnegSeries(fmt.Sprintf("steel_cum.%s", u.ID))
		idx.Units[u.ID] = uv
	}

	idx.ElectrolyserOn = b.binarySeries("electrolyser_on")
	idx.ElectrolyserLoad = b.nonnegSeries("electrolyser_load")
	// The reduction unit can process at most the hydrogen the
	// electrolysers deliver at full utilisation, so the cap is part of
	// the variable domain.
	idx.H2ToDRI = b.boundedSeries("h2_to_dri", 0, p.ElectrolyserMaxMW*b.dt*p.ElectrolyserEfficiency)
	idx.TankFlow = b.freeSeries("tank_flow")
	idx.TankContent = b.boundedSeries("tank_content", 0, p.TankCapacityMWh)
	idx.DRIContent = b.nonnegSeries("dri_content")
	idx.FuelCell = b.boundedSeries("fuel_cell", 0, p.FuelCellCapacityMW)

	idx.PowerSell = b.nonnegSeries("power_sell")
	if p.DrawFromGrid {
		idx.PowerBuy = b.nonnegSeries("power_buy")
	}
	idx.PowerExchange = b.freeSeries("power_exchange")
	if !p.GivenGoalLoad {
		idx.MeanExchange = b.m.NewFree("mean_exchange")
	}
	idx.DevAbove = b.nonnegSeries("dev_above")
	idx.DevBelow = b.nonnegSeries("dev_below")
	idx.LoadJump = b.freeSeries("load_jump")
	idx.LoadJumpUp = b.nonnegSeries("load_jump_up")
	idx.LoadJumpDown = b.nonnegSeries("load_jump_down")

	idx.JumpOvershoot = make(map[string][]mip.Var, len(p.PenaltyBands))
	for _, band := range p.PenaltyBands {
		idx.JumpOvershoot[band.ID] = b.nonnegSeries(fmt.Sprintf("jump_overshoot.%s", band.ID))
	}

	idx.MarketProfit = b.freeSeries("market_profit")
	if p.DrawFromGrid {
		idx.MarketCost = b.freeSeries("market_cost")
		idx.MaxGridDraw = b.m.NewNonNeg("max_grid_draw")
		idx.GridPowerCharge = b.m.NewNonNeg("grid_power_charge")
	}
}
