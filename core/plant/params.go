// Package plant describes the hydrogen-based steel plant handed to the
// schedule builder: one reduction unit (electrolysers, hydrogen tank, fuel
// cell), several independently scheduled steel-making units each with
// mutually exclusive operating modes, one rolling stage per unit and one
// grid connection.
package plant

// Mode is one operating mode of a steel-making unit. A batch in a mode
// commits the unit for DurationSteps consecutive steps and draws the load
// profile over those steps.
type Mode struct {
	ID string `json:"id"`
	// LoadProfile is the electric load template of one batch, MW per
	// in-batch step. Its length must equal DurationSteps.
	LoadProfile []float64 `json:"load_profile"`
	// DurationSteps is the fixed batch duration in time steps.
	DurationSteps int `json:"duration_steps"`
	// DRITonsPerBatch is debited from DRI storage when a batch starts.
	DRITonsPerBatch float64 `json:"dri_tons_per_batch"`
	// SteelTonsPerBatch is credited to the intermediate store when the
	// batch completes.
	SteelTonsPerBatch float64 `json:"steel_tons_per_batch"`
}

// Unit is one steel-making unit together with its dedicated rolling stage.
type Unit struct {
	ID string `json:"id"`
	// PauseSteps is the minimum idle time after a batch completes before
	// the next batch of any mode may start.
	PauseSteps int `json:"pause_steps"`
	// RollingDurationSteps is how long rolling runs after each batch.
	RollingDurationSteps int `json:"rolling_duration_steps"`
	// RollingLoadMW is drawn while rolling runs.
	RollingLoadMW float64 `json:"rolling_load_mw"`
	// RollingMassEfficiency converts intermediate product mass into
	// finished steel mass, in (0,1].
	RollingMassEfficiency float64 `json:"rolling_mass_efficiency"`

	Modes []Mode `json:"modes"`
}

// PenaltyBand weights load jumps beyond a limit in the experimental
// load-jump objective.
type PenaltyBand struct {
	ID      string  `json:"id"`
	LimitMW float64 `json:"limit_mw"`
	Penalty float64 `json:"penalty"`
}

// Params is the complete immutable input of one model build.
type Params struct {
	// MinutesPerStep fixes the step length; delta-t hours is this over 60.
	MinutesPerStep float64 `json:"minutes_per_step"`
	// SteelDemandTons must be met by cumulative finished steel at the
	// final step.
	SteelDemandTons float64 `json:"steel_demand_tons"`

	// Reduction unit.
	ElectrolyserMaxMW      float64 `json:"electrolyser_max_mw"`
	ElectrolyserMinMW      float64 `json:"electrolyser_min_mw"`
	ElectrolyserEfficiency float64 `json:"electrolyser_efficiency"`
	TankCapacityMWh        float64 `json:"tank_capacity_mwh"`
	// TankInitialFilling is a fraction of TankCapacityMWh in [0,1].
	TankInitialFilling float64 `json:"tank_initial_filling"`
	InitialDRITons     float64 `json:"initial_dri_tons"`
	// H2PerDRITon is MWh of hydrogen consumed per ton of DRI produced.
	H2PerDRITon float64 `json:"h2_per_dri_ton"`

	FuelCellCapacityMW float64 `json:"fuel_cell_capacity_mw"`
	FuelCellEfficiency float64 `json:"fuel_cell_efficiency"`

	Units []Unit `json:"units"`

	// Grid connection and tariffs.
	DrawFromGrid bool `json:"draw_from_grid"`
	// GridEnergyPrice is the charge per MWh bought, on top of the market
	// price. Only read when DrawFromGrid is set.
	GridEnergyPrice float64 `json:"grid_energy_price"`
	// GridPowerPrice is the demand-rate charge applied once to the
	// maximum power drawn over the horizon.
	GridPowerPrice float64 `json:"grid_power_price"`

	// Optional end-of-horizon storage goals.
	UseStorageGoals bool    `json:"use_storage_goals"`
	GoalTankMWh     float64 `json:"goal_tank_mwh"`
	GoalDRITons     float64 `json:"goal_dri_tons"`

	// GivenGoalLoad switches the stability deviation to a fixed target
	// instead of the model's own mean exchange.
	GivenGoalLoad bool    `json:"given_goal_load"`
	GoalLoadMW    float64 `json:"goal_load_mw"`

	// Time series over the full horizon, one entry per step.
	PriceEURPerMWh []float64 `json:"price_eur_per_mwh"`
	GenerationMW   []float64 `json:"generation_mw"`

	// PenaltyBands may be empty; it only feeds the experimental
	// load-jump objective.
	PenaltyBands []PenaltyBand `json:"penalty_bands"`
}

// Horizon returns the number of time steps.
func (p *Params) Horizon() int { return len(p.GenerationMW) }

// DeltaHours returns the step length in hours.
func (p *Params) DeltaHours() float64 { return p.MinutesPerStep / 60 }
