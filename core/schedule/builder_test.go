package schedule

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h2steel/flexbatch/core/mip"
	"github.com/h2steel/flexbatch/core/plant"
)

const tol = 1e-9

// quietPlant returns a plant whose batches draw no power and move no
// mass, so scheduling decisions can be checked in isolation: the idle
// assignment stays feasible under any start pattern that respects the
// occupancy rules.
func quietPlant(horizon, duration, pause, rolling int) *plant.Params {
	gen := make([]float64, horizon)
	price := make([]float64, horizon)
	for t := range gen {
		gen[t] = 10
		price[t] = 40
	}
	return &plant.Params{
		MinutesPerStep:         60,
		ElectrolyserMaxMW:      50,
		ElectrolyserMinMW:      5,
		ElectrolyserEfficiency: 0.7,
		TankCapacityMWh:        40,
		TankInitialFilling:     0.5,
		InitialDRITons:         100,
		H2PerDRITon:            2.5,
		FuelCellCapacityMW:     10,
		FuelCellEfficiency:     0.6,
		Units: []plant.Unit{{
			ID:                    "eaf",
			PauseSteps:            pause,
			RollingDurationSteps:  rolling,
			RollingMassEfficiency: 1,
			Modes: []plant.Mode{{
				ID:            "std",
				LoadProfile:   make([]float64, duration),
				DurationSteps: duration,
			}},
		}},
		PriceEURPerMWh: price,
		GenerationMW:   gen,
	}
}

// idleAssignment satisfies every constraint with all production off: the
// tank and DRI inventories hold their initial level and all generation is
// sold.
func idleAssignment(t *testing.T, prob *Problem) mip.Assignment {
	t.Helper()
	p := prob.Params
	x := make(mip.Assignment, prob.Model.NumVars())
	set := func(name string, val float64) {
		t.Helper()
		v, ok := prob.Model.VarByName(name)
		require.True(t, ok, "unknown variable %s", name)
		x[v] = val
	}
	at := func(name string, step int) string { return fmt.Sprintf("%s[%d]", name, step) }

	exch := make([]float64, prob.Horizon)
	sum := 0.0
	for ts := 0; ts < prob.Horizon; ts++ {
		set(at("tank_content", ts), p.TankInitialFilling*p.TankCapacityMWh)
		set(at("dri_content", ts), p.InitialDRITons)

		g := p.GenerationMW[ts]
		sell, buy := g, 0.0
		if g < 0 {
			sell, buy = 0, -g
		}
		set(at("power_sell", ts), sell)
		if p.DrawFromGrid {
			set(at("power_buy", ts), buy)
			set(at("market_cost", ts), buy*prob.DeltaHours*(p.PriceEURPerMWh[ts]+p.GridEnergyPrice))
		}
		exch[ts] = sell - buy
		sum += exch[ts]
		set(at("power_exchange", ts), exch[ts])
		set(at("market_profit", ts), sell*prob.DeltaHours*p.PriceEURPerMWh[ts])
	}

	goal := p.GoalLoadMW
	if !p.GivenGoalLoad {
		goal = sum / float64(prob.Horizon)
		set("mean_exchange", goal)
	}
	for ts := 0; ts < prob.Horizon; ts++ {
		if d := exch[ts] - goal; d >= 0 {
			set(at("dev_above", ts), d)
		} else {
			set(at("dev_below", ts), -d)
		}
		jump := 0.0
		if ts > 0 {
			jump = exch[ts-1] - exch[ts]
		}
		set(at("load_jump", ts), jump)
		up, down := jump, 0.0
		if jump < 0 {
			up, down = 0, -jump
		}
		set(at("load_jump_up", ts), up)
		set(at("load_jump_down", ts), down)
		for _, band := range p.PenaltyBands {
			set(at("jump_overshoot."+band.ID, ts), math.Max(0, up+down-band.LimitMW))
		}
	}
	if p.DrawFromGrid {
		maxBuy := 0.0
		for ts := 0; ts < prob.Horizon; ts++ {
			maxBuy = math.Max(maxBuy, -math.Min(exch[ts], 0))
		}
		set("max_grid_draw", maxBuy)
		set("grid_power_charge", p.GridPowerPrice*maxBuy)
	}
	return x
}

func setVar(t *testing.T, prob *Problem, x mip.Assignment, name string, val float64) {
	t.Helper()
	v, ok := prob.Model.VarByName(name)
	require.True(t, ok, "unknown variable %s", name)
	x[v] = val
}

func violatedNames(prob *Problem, x mip.Assignment) map[string]bool {
	out := map[string]bool{}
	for _, v := range prob.Model.Violations(x, tol) {
		out[v.Name] = true
	}
	return out
}

func TestBuildIdleIsFeasible(t *testing.T) {
	prob, err := Build(quietPlant(4, 2, 1, 0), MaxProfit)
	require.NoError(t, err)
	x := idleAssignment(t, prob)
	assert.Empty(t, prob.Model.Violations(x, tol))
}

func TestBuildRejectsUnknownObjective(t *testing.T) {
	_, err := Build(quietPlant(4, 2, 0, 0), ObjectiveKind("cheapest"))
	assert.ErrorIs(t, err, ErrUnsupportedObjective)
}

func TestBuildRejectsInvalidPlant(t *testing.T) {
	p := quietPlant(4, 2, 0, 0)
	p.MinutesPerStep = 0
	_, err := Build(p, MaxProfit)
	var ce *plant.ConfigError
	assert.ErrorAs(t, err, &ce)
}

// A horizon too short for every mode of every unit fails the build up
// front.
func TestBuildRejectsInfeasibleHorizon(t *testing.T) {
	_, err := Build(quietPlant(2, 5, 0, 0), MaxProfit)
	assert.ErrorIs(t, err, ErrInfeasibleHorizon)
}

// A single mode that cannot complete within the horizon has its start
// variables pinned to zero while the rest of the model builds normally.
func TestBuildPinsInfeasibleModeStarts(t *testing.T) {
	p := quietPlant(4, 2, 0, 0)
	p.Units[0].Modes = append(p.Units[0].Modes, plant.Mode{
		ID:            "long",
		LoadProfile:   make([]float64, 9),
		DurationSteps: 9,
	})
	prob, err := Build(p, MaxProfit)
	require.NoError(t, err)

	for ts := 0; ts < prob.Horizon; ts++ {
		lo, hi := prob.Model.Bounds(prob.Vars.Units["eaf"].Modes["long"].Start[ts])
		assert.Equal(t, 0.0, lo)
		assert.Equal(t, 0.0, hi, "start at %d should be pinned", ts)
	}
	// The short mode keeps its feasible window.
	_, hi := prob.Model.Bounds(prob.Vars.Units["eaf"].Modes["std"].Start[0])
	assert.Equal(t, 1.0, hi)
}

// Starts late enough to push the batch or its rolling stage past the end
// of the horizon are excluded from the domain.
func TestBuildPinsStartsBeyondLatest(t *testing.T) {
	prob, err := Build(quietPlant(4, 2, 0, 1), MaxProfit)
	require.NoError(t, err)

	start := prob.Vars.Units["eaf"].Modes["std"].Start
	for ts := 0; ts < prob.Horizon; ts++ {
		_, hi := prob.Model.Bounds(start[ts])
		if ts <= 1 {
			assert.Equal(t, 1.0, hi, "start at %d should stay open", ts)
		} else {
			assert.Equal(t, 0.0, hi, "start at %d should be pinned", ts)
		}
	}
}

// Overlapping batches of the same mode cannot be represented: the
// occupancy indicator would have to exceed its binary domain.
func TestNoOverlappingBatches(t *testing.T) {
	prob, err := Build(quietPlant(6, 2, 0, 0), MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	setVar(t, prob, x, "batch_start.eaf.std[0]", 1)
	setVar(t, prob, x, "batch_start.eaf.std[1]", 1)
	setVar(t, prob, x, "mode_running.eaf.std[0]", 1)
	setVar(t, prob, x, "mode_running.eaf.std[1]", 1)
	setVar(t, prob, x, "unit_running.eaf[0]", 1)
	setVar(t, prob, x, "unit_running.eaf[1]", 1)
	assert.NotEmpty(t, prob.Model.Violations(x, tol),
		"two starts inside one batch window must be infeasible")

	// Back to back batches are fine.
	x = idleAssignment(t, prob)
	for _, ts := range []int{0, 2} {
		setVar(t, prob, x, fmt.Sprintf("batch_start.eaf.std[%d]", ts), 1)
	}
	for ts := 0; ts < 4; ts++ {
		setVar(t, prob, x, fmt.Sprintf("mode_running.eaf.std[%d]", ts), 1)
		setVar(t, prob, x, fmt.Sprintf("unit_running.eaf[%d]", ts), 1)
	}
	assert.Empty(t, prob.Model.Violations(x, tol))
}

// At most one operating mode may occupy a unit at a time.
func TestModeMutualExclusion(t *testing.T) {
	p := quietPlant(4, 2, 0, 0)
	p.Units[0].Modes = append(p.Units[0].Modes, plant.Mode{
		ID:            "fast",
		LoadProfile:   make([]float64, 1),
		DurationSteps: 1,
	})
	prob, err := Build(p, MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	setVar(t, prob, x, "batch_start.eaf.std[0]", 1)
	setVar(t, prob, x, "mode_running.eaf.std[0]", 1)
	setVar(t, prob, x, "batch_start.eaf.fast[0]", 1)
	setVar(t, prob, x, "mode_running.eaf.fast[0]", 1)
	setVar(t, prob, x, "unit_running.eaf[0]", 1)
	assert.NotEmpty(t, prob.Model.Violations(x, tol))
}

// Reference scenario: three steps, one-step batches, one-step pause. A
// batch at step 0 forbids the next start at step 1 but permits step 2.
func TestMinimumDowntime(t *testing.T) {
	prob, err := Build(quietPlant(3, 1, 1, 0), MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	setVar(t, prob, x, "batch_start.eaf.std[0]", 1)
	setVar(t, prob, x, "mode_running.eaf.std[0]", 1)
	setVar(t, prob, x, "unit_running.eaf[0]", 1)
	setVar(t, prob, x, "batch_start.eaf.std[1]", 1)
	setVar(t, prob, x, "mode_running.eaf.std[1]", 1)
	setVar(t, prob, x, "unit_running.eaf[1]", 1)
	names := violatedNames(prob, x)
	assert.True(t, names["downtime.eaf.std[1]"], "start directly after a batch must break the pause rule")

	x = idleAssignment(t, prob)
	setVar(t, prob, x, "batch_start.eaf.std[0]", 1)
	setVar(t, prob, x, "mode_running.eaf.std[0]", 1)
	setVar(t, prob, x, "unit_running.eaf[0]", 1)
	setVar(t, prob, x, "batch_start.eaf.std[2]", 1)
	setVar(t, prob, x, "mode_running.eaf.std[2]", 1)
	setVar(t, prob, x, "unit_running.eaf[2]", 1)
	assert.Empty(t, prob.Model.Violations(x, tol))
}

// Reference scenario: a half-full 10 MWh tank with no flow holds 5 MWh
// at every step; anything else breaks the inventory balance or the
// capacity bound.
func TestTankInventory(t *testing.T) {
	p := quietPlant(4, 2, 0, 0)
	p.TankCapacityMWh = 10
	p.TankInitialFilling = 0.5
	prob, err := Build(p, MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	for ts := 0; ts < prob.Horizon; ts++ {
		v, ok := x.Value(prob.Model, fmt.Sprintf("tank_content[%d]", ts))
		require.True(t, ok)
		assert.InDelta(t, 5.0, v, tol)
	}
	assert.Empty(t, prob.Model.Violations(x, tol))

	setVar(t, prob, x, "tank_content[1]", 6)
	names := violatedNames(prob, x)
	assert.True(t, names["tank_content[1]"] || names["tank_content[2]"])

	x = idleAssignment(t, prob)
	setVar(t, prob, x, "tank_content[2]", 11)
	vio := prob.Model.Violations(x, tol)
	assert.NotEmpty(t, vio)
}

// Reference scenario: stability against a fixed zero goal load with a
// net exchange of [2, -2] splits into D_above=[2,0], D_below=[0,2].
func TestDeviationSplit(t *testing.T) {
	p := quietPlant(2, 1, 0, 0)
	p.DrawFromGrid = true
	p.GivenGoalLoad = true
	p.GoalLoadMW = 0
	p.GenerationMW = []float64{2, -2}
	p.PriceEURPerMWh = []float64{40, 40}
	prob, err := Build(p, Stability)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	above0, _ := x.Value(prob.Model, "dev_above[0]")
	below0, _ := x.Value(prob.Model, "dev_below[0]")
	above1, _ := x.Value(prob.Model, "dev_above[1]")
	below1, _ := x.Value(prob.Model, "dev_below[1]")
	assert.Equal(t, []float64{2, 0, 0, 2}, []float64{above0, below0, above1, below1})
	assert.Empty(t, prob.Model.Violations(x, tol))

	// The mean deviation objective values the minimal split at 2 MW; a
	// slack split stays feasible but costs more, so minimization drives
	// the parts to the absolute deviation.
	assert.InDelta(t, 2.0, prob.Model.ObjectiveValue(x), tol)
	setVar(t, prob, x, "dev_above[0]", 2.5)
	setVar(t, prob, x, "dev_below[0]", 0.5)
	assert.Empty(t, prob.Model.Violations(x, tol))
	assert.InDelta(t, 2.5, prob.Model.ObjectiveValue(x), tol)
}

// The net exchange variable always equals sales minus purchases.
func TestExchangeRoundTrip(t *testing.T) {
	p := quietPlant(2, 1, 0, 0)
	p.DrawFromGrid = true
	prob, err := Build(p, MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	assert.Empty(t, prob.Model.Violations(x, tol))

	setVar(t, prob, x, "power_exchange[0]", 3)
	names := violatedNames(prob, x)
	assert.True(t, names["power_exchange[0]"])
}

// Unused generation must be sold: the balance row pins the residual.
func TestPowerBalance(t *testing.T) {
	prob, err := Build(quietPlant(3, 1, 0, 0), MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	for ts := 0; ts < prob.Horizon; ts++ {
		v, ok := x.Value(prob.Model, fmt.Sprintf("power_sell[%d]", ts))
		require.True(t, ok)
		assert.InDelta(t, prob.Params.GenerationMW[ts], v, tol)
	}

	setVar(t, prob, x, "power_sell[1]", 0)
	names := violatedNames(prob, x)
	assert.True(t, names["power_balance[1]"])
}

// Two builds of the same description are interchangeable: identical
// variable names, handles and row counts.
func TestBuildIsDeterministic(t *testing.T) {
	p := quietPlant(5, 2, 1, 1)
	p.PenaltyBands = []plant.PenaltyBand{{ID: "soft", LimitMW: 5, Penalty: 2}}

	a, err := Build(p, Stability)
	require.NoError(t, err)
	b, err := Build(p, Stability)
	require.NoError(t, err)

	require.Equal(t, a.Model.NumVars(), b.Model.NumVars())
	require.Equal(t, a.Model.NumConstraints(), b.Model.NumConstraints())
	for i := 0; i < a.Model.NumVars(); i++ {
		assert.Equal(t, a.Model.Name(mip.Var(i)), b.Model.Name(mip.Var(i)))
	}
	for i := 0; i < a.Model.NumConstraints(); i++ {
		assert.Equal(t, a.Model.Constraint(i).Name, b.Model.Constraint(i).Name)
	}
}

// Optional variable families only exist when their feature is on.
func TestOptionalFamilies(t *testing.T) {
	prob, err := Build(quietPlant(3, 1, 0, 0), MaxProfit)
	require.NoError(t, err)
	assert.Nil(t, prob.Vars.PowerBuy)
	assert.Nil(t, prob.Vars.MarketCost)
	assert.Equal(t, None, prob.Vars.MaxGridDraw)
	assert.NotEqual(t, None, prob.Vars.MeanExchange)
	_, ok := prob.Model.ConstraintByName("mean_exchange")
	assert.True(t, ok)

	p := quietPlant(3, 1, 0, 0)
	p.DrawFromGrid = true
	p.GivenGoalLoad = true
	prob, err = Build(p, MaxProfit)
	require.NoError(t, err)
	assert.NotNil(t, prob.Vars.PowerBuy)
	assert.NotEqual(t, None, prob.Vars.GridPowerCharge)
	assert.Equal(t, None, prob.Vars.MeanExchange)
	_, ok = prob.Model.ConstraintByName("mean_exchange")
	assert.False(t, ok)
}

// End of horizon storage goals only appear when requested.
func TestStorageGoalRows(t *testing.T) {
	p := quietPlant(3, 1, 0, 0)
	prob, err := Build(p, MaxProfit)
	require.NoError(t, err)
	_, ok := prob.Model.ConstraintByName("goal_tank")
	assert.False(t, ok)

	p.UseStorageGoals = true
	p.GoalTankMWh = 30
	p.GoalDRITons = 50
	prob, err = Build(p, MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	// Initial levels (20 MWh, 100 t) miss the tank goal.
	names := violatedNames(prob, x)
	assert.True(t, names["goal_tank"])
	assert.False(t, names["goal_dri"])
}

// The electrolyser band is semi-continuous: off means zero, on means at
// least the minimum stable load.
func TestElectrolyserBand(t *testing.T) {
	prob, err := Build(quietPlant(3, 1, 0, 0), MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	setVar(t, prob, x, "electrolyser_load[0]", 3)
	names := violatedNames(prob, x)
	assert.True(t, names["electrolyser_max[0]"], "load while off must be rejected")

	// On at minimum load: hydrogen flows to the tank.
	x = idleAssignment(t, prob)
	p := prob.Params
	h2 := p.ElectrolyserMinMW * p.ElectrolyserEfficiency * prob.DeltaHours
	setVar(t, prob, x, "electrolyser_on[0]", 1)
	setVar(t, prob, x, "electrolyser_load[0]", p.ElectrolyserMinMW)
	setVar(t, prob, x, "tank_flow[0]", h2)
	base := p.TankInitialFilling * p.TankCapacityMWh
	for ts := 0; ts < prob.Horizon; ts++ {
		setVar(t, prob, x, fmt.Sprintf("tank_content[%d]", ts), base+h2)
	}
	// The consumed power reduces what is sold.
	sell := p.GenerationMW[0] - p.ElectrolyserMinMW
	setVar(t, prob, x, "power_sell[0]", sell)
	setVar(t, prob, x, "power_exchange[0]", sell)
	setVar(t, prob, x, "market_profit[0]", sell*prob.DeltaHours*p.PriceEURPerMWh[0])
	fixDerived(t, prob, x)
	assert.Empty(t, prob.Model.Violations(x, tol))

	// Below minimum stable load while on.
	setVar(t, prob, x, "electrolyser_load[0]", 1)
	names = violatedNames(prob, x)
	assert.True(t, names["electrolyser_min[0]"])
}

// fixDerived recomputes mean exchange, deviation and jump variables after
// a test perturbed the exchange profile.
func fixDerived(t *testing.T, prob *Problem, x mip.Assignment) {
	t.Helper()
	p := prob.Params
	sum := 0.0
	exch := make([]float64, prob.Horizon)
	for ts := 0; ts < prob.Horizon; ts++ {
		v, ok := x.Value(prob.Model, fmt.Sprintf("power_exchange[%d]", ts))
		require.True(t, ok)
		exch[ts] = v
		sum += v
	}
	goal := p.GoalLoadMW
	if !p.GivenGoalLoad {
		goal = sum / float64(prob.Horizon)
		setVar(t, prob, x, "mean_exchange", goal)
	}
	for ts := 0; ts < prob.Horizon; ts++ {
		above, below := 0.0, 0.0
		if d := exch[ts] - goal; d >= 0 {
			above = d
		} else {
			below = -d
		}
		setVar(t, prob, x, fmt.Sprintf("dev_above[%d]", ts), above)
		setVar(t, prob, x, fmt.Sprintf("dev_below[%d]", ts), below)
		jump := 0.0
		if ts > 0 {
			jump = exch[ts-1] - exch[ts]
		}
		setVar(t, prob, x, fmt.Sprintf("load_jump[%d]", ts), jump)
		up, down := jump, 0.0
		if jump < 0 {
			up, down = 0, -jump
		}
		setVar(t, prob, x, fmt.Sprintf("load_jump_up[%d]", ts), up)
		setVar(t, prob, x, fmt.Sprintf("load_jump_down[%d]", ts), down)
		for _, band := range p.PenaltyBands {
			setVar(t, prob, x, fmt.Sprintf("jump_overshoot.%s[%d]", band.ID, ts), math.Max(0, up+down-band.LimitMW))
		}
	}
}

// A full production cycle: batch, store credit, rolling drain and the
// cumulative steel account meeting demand.
func TestProductionCycle(t *testing.T) {
	p := quietPlant(6, 2, 0, 2)
	mode := &p.Units[0].Modes[0]
	mode.SteelTonsPerBatch = 10
	p.Units[0].RollingMassEfficiency = 0.9
	p.SteelDemandTons = 9

	prob, err := Build(p, MaxProfit)
	require.NoError(t, err)

	x := idleAssignment(t, prob)
	setVar(t, prob, x, "batch_start.eaf.std[0]", 1)
	for ts := 0; ts < 2; ts++ {
		setVar(t, prob, x, fmt.Sprintf("mode_running.eaf.std[%d]", ts), 1)
		setVar(t, prob, x, fmt.Sprintf("unit_running.eaf[%d]", ts), 1)
	}
	// The store holds the batch output over the rolling window.
	setVar(t, prob, x, "intermediate_store.eaf.std[2]", 10)
	setVar(t, prob, x, "intermediate_store.eaf.std[3]", 10)
	for _, ts := range []int{2, 3} {
		setVar(t, prob, x, fmt.Sprintf("rolling_running.eaf[%d]", ts), 1)
	}
	// Steel accrues in equal shares of the store while rolling runs.
	setVar(t, prob, x, "steel_cum.eaf[2]", 4.5)
	for ts := 3; ts < 6; ts++ {
		setVar(t, prob, x, fmt.Sprintf("steel_cum.eaf[%d]", ts), 9)
	}
	assert.Empty(t, prob.Model.Violations(x, tol))

	// Without the batch the demand row fails.
	idle := idleAssignment(t, prob)
	names := violatedNames(prob, idle)
	assert.True(t, names["steel_demand"])
}
