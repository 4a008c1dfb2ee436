package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	plantPath := filepath.Join(dir, "plant.yaml")
	require.NoError(t, os.WriteFile(plantPath, []byte(`minutes_per_step: 60
electrolyser_max_mw: 50
electrolyser_min_mw: 5
electrolyser_efficiency: 0.7
tank_capacity_mwh: 40
tank_initial_filling: 0.5
initial_dri_tons: 100
h2_per_dri_ton: 2.5
fuel_cell_capacity_mw: 10
fuel_cell_efficiency: 0.6
units:
  - id: "eaf"
    rolling_mass_efficiency: 1
    modes:
      - id: "std"
        load_profile: [0, 0]
        duration_steps: 2
price_eur_per_mwh: [40, 45, 50]
generation_mw: [60, 55, 70]
`), 0o644))
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("plant_file: \""+plantPath+"\"\n"), 0o644))

	old := cfgPath
	cfgPath = cfgFile
	defer func() { cfgPath = old }()

	var buf bytes.Buffer
	inspectCmd.SetOut(&buf)
	require.NoError(t, inspect(inspectCmd, nil))

	out := buf.String()
	assert.Contains(t, out, "objective:   max_profit")
	assert.Contains(t, out, "horizon:     3 steps")
	assert.Contains(t, out, "units:       1")
}
