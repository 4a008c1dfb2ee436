package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h2steel/flexbatch/config"
	"github.com/h2steel/flexbatch/pkg/export"
)

const testPlant = `minutes_per_step: 60
steel_demand_tons: 0
electrolyser_max_mw: 50
electrolyser_min_mw: 5
electrolyser_efficiency: 0.7
tank_capacity_mwh: 40
tank_initial_filling: 0
initial_dri_tons: 100
h2_per_dri_ton: 2.5
fuel_cell_capacity_mw: 0
fuel_cell_efficiency: 0.6
units:
  - id: "eaf"
    rolling_mass_efficiency: 1
    modes:
      - id: "std"
        load_profile: [0]
        duration_steps: 1
price_eur_per_mwh: [40, 40]
generation_mw: [10, 10]
`

func writeRun(t *testing.T, dir string, solve bool) *config.Config {
	t.Helper()
	plantPath := filepath.Join(dir, "plant.yaml")
	require.NoError(t, os.WriteFile(plantPath, []byte(testPlant), 0o644))
	cfg := &config.Config{
		PlantFile: plantPath,
		Objective: "max_profit",
		Output: config.OutputConfig{
			Dir:       filepath.Join(dir, "out"),
			ModelFile: "model.lp",
		},
	}
	cfg.Solver.Enabled = solve
	cfg.Solver.MaxNodes = 10000
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServiceRunSolves(t *testing.T) {
	dir := t.TempDir()
	cfg := writeRun(t, dir, true)

	svc, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "summary.json"))
	require.NoError(t, err)
	var s export.Summary
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "optimal", s.Status)
	assert.InDelta(t, 800.0, s.ObjectiveValue, 1e-4)
	assert.NotEmpty(t, s.RunID)

	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "schedule.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "model.lp"))
	assert.NoError(t, err)
}

func TestServiceRunBuildOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := writeRun(t, dir, false)

	svc, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Run(context.Background()))

	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "model.lp"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "schedule.csv"))
	assert.True(t, os.IsNotExist(err), "no schedule without a solve")
}

func TestServiceRejectsUnknownObjective(t *testing.T) {
	dir := t.TempDir()
	cfg := writeRun(t, dir, false)
	cfg.Objective = "cheapest"

	svc, err := New(cfg)
	require.NoError(t, err)
	assert.Error(t, svc.Run(context.Background()))
}
