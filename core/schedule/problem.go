// Package schedule builds the batch-production scheduling MILP for a
// plant description: sets, decision variables, linear constraints and one
// of the selectable objectives. It performs no solving; the returned
// problem is handed to a solver adapter and read back by reporting code.
package schedule

import (
	"github.com/h2steel/flexbatch/core/mip"
	"github.com/h2steel/flexbatch/core/plant"
)

// None marks an absent optional variable handle in the index.
const None mip.Var = -1

// ModeVars groups the per-time-step variables of one operating mode.
type ModeVars struct {
	// Start is 1 when a batch of this mode begins at t.
	Start []mip.Var
	// Running is the occupancy indicator derived from Start over the
	// trailing batch-duration window.
	Running []mip.Var
	// Store is the intermediate product inventory fed by finished
	// batches and drained by rolling.
	Store []mip.Var
}

// UnitVars groups the per-time-step variables of one steel-making unit.
type UnitVars struct {
	Modes map[string]*ModeVars
	// Running sums the mode occupancy indicators; its binary domain is
	// the mutual-exclusion rule.
	Running []mip.Var
	// Load is the realized electric load from all active batches.
	Load []mip.Var
	// RollingRunning and RollingLoad describe the rolling stage.
	RollingRunning []mip.Var
	RollingLoad    []mip.Var
	// SteelCum is cumulative finished steel.
	SteelCum []mip.Var
}

// Index exposes every variable family by the identifiers external
// reporting uses. Slices are indexed by time step.
type Index struct {
	ElectrolyserOn   []mip.Var
	ElectrolyserLoad []mip.Var
	H2ToDRI          []mip.Var
	TankFlow         []mip.Var
	TankContent      []mip.Var
	DRIContent       []mip.Var
	FuelCell         []mip.Var

	Units map[string]*UnitVars

	PowerSell     []mip.Var
	PowerBuy      []mip.Var // nil unless grid draw is enabled
	PowerExchange []mip.Var
	DevAbove      []mip.Var
	DevBelow      []mip.Var
	LoadJump      []mip.Var
	LoadJumpUp    []mip.Var
	LoadJumpDown  []mip.Var

	MarketProfit []mip.Var
	MarketCost   []mip.Var // nil unless grid draw is enabled

	// MeanExchange is None when the goal load is given as a parameter.
	MeanExchange mip.Var
	// MaxGridDraw and GridPowerCharge are None unless grid draw is
	// enabled.
	MaxGridDraw     mip.Var
	GridPowerCharge mip.Var

	// JumpOvershoot is keyed by penalty band id; empty when no bands are
	// declared.
	JumpOvershoot map[string][]mip.Var
}

// Problem is the solver-ready output of one build: the MILP itself plus
// the typed variable index and the derived run facts reporting needs.
type Problem struct {
	Model  *mip.Model
	Vars   *Index
	Params *plant.Params

	// Horizon is the number of time steps, DeltaHours the step length.
	Horizon    int
	DeltaHours float64

	// Objective records which strategy the model was built with.
	Objective ObjectiveKind
}
