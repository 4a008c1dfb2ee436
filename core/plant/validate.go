package plant

import "fmt"

// ConfigError reports a structurally invalid plant description. It is
// returned before any model construction side effect.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("plant config: %s: %s", e.Field, e.Reason)
}

func errf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the description for completeness and internal
// consistency. The first problem found is returned; a nil result means the
// builder may rely on every shape invariant documented on Params.
func (p *Params) Validate() error {
	if p.MinutesPerStep <= 0 {
		return errf("minutes_per_step", "must be positive, got %g", p.MinutesPerStep)
	}
	T := p.Horizon()
	if T < 1 {
		return errf("generation_mw", "empty generation series")
	}
	if len(p.PriceEURPerMWh) != T {
		return errf("price_eur_per_mwh", "length %d does not match horizon %d", len(p.PriceEURPerMWh), T)
	}
	if p.SteelDemandTons < 0 {
		return errf("steel_demand_tons", "must not be negative")
	}

	if p.ElectrolyserMaxMW < 0 {
		return errf("electrolyser_max_mw", "must not be negative")
	}
	if p.ElectrolyserMinMW < 0 || p.ElectrolyserMinMW > p.ElectrolyserMaxMW {
		return errf("electrolyser_min_mw", "must lie in [0, max capacity]")
	}
	if p.ElectrolyserEfficiency <= 0 || p.ElectrolyserEfficiency > 1 {
		return errf("electrolyser_efficiency", "must lie in (0, 1], got %g", p.ElectrolyserEfficiency)
	}
	if p.TankCapacityMWh < 0 {
		return errf("tank_capacity_mwh", "must not be negative")
	}
	if p.TankInitialFilling < 0 || p.TankInitialFilling > 1 {
		return errf("tank_initial_filling", "must lie in [0, 1], got %g", p.TankInitialFilling)
	}
	if p.InitialDRITons < 0 {
		return errf("initial_dri_tons", "must not be negative")
	}
	if p.H2PerDRITon <= 0 {
		return errf("h2_per_dri_ton", "must be positive, got %g", p.H2PerDRITon)
	}
	if p.FuelCellCapacityMW < 0 {
		return errf("fuel_cell_capacity_mw", "must not be negative")
	}
	if p.FuelCellEfficiency <= 0 || p.FuelCellEfficiency > 1 {
		return errf("fuel_cell_efficiency", "must lie in (0, 1], got %g", p.FuelCellEfficiency)
	}

	if len(p.Units) == 0 {
		return errf("units", "at least one steel-making unit required")
	}
	seenU := make(map[string]bool, len(p.Units))
	for i := range p.Units {
		u := &p.Units[i]
		if u.ID == "" {
			return errf("units", "unit with empty id")
		}
		if seenU[u.ID] {
			return errf("units", "duplicate unit id %q", u.ID)
		}
		seenU[u.ID] = true
		if err := u.validate(); err != nil {
			return err
		}
	}

	if p.DrawFromGrid {
		if p.GridEnergyPrice < 0 {
			return errf("grid_energy_price", "must not be negative")
		}
		if p.GridPowerPrice < 0 {
			return errf("grid_power_price", "must not be negative")
		}
	}
	if p.UseStorageGoals {
		if p.GoalTankMWh < 0 || p.GoalTankMWh > p.TankCapacityMWh {
			return errf("goal_tank_mwh", "must lie in [0, tank capacity]")
		}
		if p.GoalDRITons < 0 {
			return errf("goal_dri_tons", "must not be negative")
		}
	}
	for _, b := range p.PenaltyBands {
		if b.ID == "" {
			return errf("penalty_bands", "band with empty id")
		}
		if b.LimitMW < 0 {
			return errf("penalty_bands", "band %q: limit must not be negative", b.ID)
		}
	}
	return nil
}

func (u *Unit) validate() error {
	field := fmt.Sprintf("units[%s]", u.ID)
	if u.PauseSteps < 0 {
		return errf(field, "pause_steps must not be negative")
	}
	if u.RollingDurationSteps < 0 {
		return errf(field, "rolling_duration_steps must not be negative")
	}
	if u.RollingLoadMW < 0 {
		return errf(field, "rolling_load_mw must not be negative")
	}
	if u.RollingMassEfficiency <= 0 || u.RollingMassEfficiency > 1 {
		return errf(field, "rolling_mass_efficiency must lie in (0, 1], got %g", u.RollingMassEfficiency)
	}
	if len(u.Modes) == 0 {
		return errf(field, "at least one operating mode required")
	}
	seenV := make(map[string]bool, len(u.Modes))
	for i := range u.Modes {
		v := &u.Modes[i]
		if v.ID == "" {
			return errf(field, "mode with empty id")
		}
		if seenV[v.ID] {
			return errf(field, "duplicate mode id %q", v.ID)
		}
		seenV[v.ID] = true
		mf := fmt.Sprintf("%s.modes[%s]", field, v.ID)
		if v.DurationSteps < 1 {
			return errf(mf, "duration_steps must be at least 1")
		}
		if len(v.LoadProfile) != v.DurationSteps {
			return errf(mf, "load profile length %d does not match duration %d", len(v.LoadProfile), v.DurationSteps)
		}
		for z, l := range v.LoadProfile {
			if l < 0 {
				return errf(mf, "load profile step %d is negative", z)
			}
		}
		if v.DRITonsPerBatch < 0 {
			return errf(mf, "dri_tons_per_batch must not be negative")
		}
		if v.SteelTonsPerBatch < 0 {
			return errf(mf, "steel_tons_per_batch must not be negative")
		}
	}
	return nil
}
