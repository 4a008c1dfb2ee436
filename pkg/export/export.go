// Package export persists solved schedules as CSV time series and JSON
// run summaries.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/h2steel/flexbatch/core/mip"
	"github.com/h2steel/flexbatch/core/schedule"
)

// Summary describes one solved run for programmatic use.
type Summary struct {
	RunID          string    `json:"run_id"`
	Objective      string    `json:"objective"`
	Status         string    `json:"status"`
	ObjectiveValue float64   `json:"objective_value"`
	Variables      int       `json:"variables"`
	Constraints    int       `json:"constraints"`
	Horizon        int       `json:"horizon"`
	DeltaHours     float64   `json:"delta_hours"`
	Nodes          int       `json:"nodes,omitempty"`
	RuntimeSeconds float64   `json:"runtime_seconds,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewSummary assembles a run summary with a fresh run ID.
func NewSummary(p *schedule.Problem, status string, objective float64, nodes int, runtime time.Duration) Summary {
	return Summary{
		RunID:          uuid.NewString(),
		Objective:      string(p.Objective),
		Status:         status,
		ObjectiveValue: objective,
		Variables:      p.Model.NumVars(),
		Constraints:    p.Model.NumConstraints(),
		Horizon:        p.Horizon,
		DeltaHours:     p.DeltaHours,
		Nodes:          nodes,
		RuntimeSeconds: runtime.Seconds(),
		CreatedAt:      time.Now().UTC(),
	}
}

// WriteJSON writes the run summary to w in JSON format.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// column pairs a CSV header with the per-step variable handles behind it.
type column struct {
	name string
	vars []mip.Var
}

// WriteCSV writes the solved schedule to w, one row per time step and one
// column per decision-variable family. Per-unit and per-mode families get
// one column each; optional families absent from the problem are skipped.
func WriteCSV(w io.Writer, p *schedule.Problem, x mip.Assignment) error {
	cols := scheduleColumns(p)

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(cols)+1)
	header = append(header, "step")
	for _, c := range cols {
		header = append(header, c.name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(header))
	for t := 0; t < p.Horizon; t++ {
		rec[0] = strconv.Itoa(t)
		for i, c := range cols {
			rec[i+1] = strconv.FormatFloat(x[c.vars[t]], 'f', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func scheduleColumns(p *schedule.Problem) []column {
	v := p.Vars
	cols := []column{
		{"electrolyser_on", v.ElectrolyserOn},
		{"electrolyser_load_mw", v.ElectrolyserLoad},
		{"h2_to_dri_mwh", v.H2ToDRI},
		{"tank_flow_mwh", v.TankFlow},
		{"tank_content_mwh", v.TankContent},
		{"dri_content_t", v.DRIContent},
		{"fuel_cell_mw", v.FuelCell},
	}

	unitIDs := make([]string, 0, len(v.Units))
	for id := range v.Units {
		unitIDs = append(unitIDs, id)
	}
	sort.Strings(unitIDs)
	for _, uid := range unitIDs {
		uv := v.Units[uid]
		modeIDs := make([]string, 0, len(uv.Modes))
		for id := range uv.Modes {
			modeIDs = append(modeIDs, id)
		}
		sort.Strings(modeIDs)
		for _, mid := range modeIDs {
			mv := uv.Modes[mid]
			cols = append(cols,
				column{uid + "." + mid + ".start", mv.Start},
				column{uid + "." + mid + ".running", mv.Running},
				column{uid + "." + mid + ".store_t", mv.Store},
			)
		}
		cols = append(cols,
			column{uid + ".running", uv.Running},
			column{uid + ".load_mw", uv.Load},
			column{uid + ".rolling_running", uv.RollingRunning},
			column{uid + ".rolling_load_mw", uv.RollingLoad},
			column{uid + ".steel_cum_t", uv.SteelCum},
		)
	}

	cols = append(cols, column{"power_sell_mw", v.PowerSell})
	if v.PowerBuy != nil {
		cols = append(cols, column{"power_buy_mw", v.PowerBuy})
	}
	cols = append(cols,
		column{"power_exchange_mw", v.PowerExchange},
		column{"dev_above_mw", v.DevAbove},
		column{"dev_below_mw", v.DevBelow},
		column{"load_jump_mw", v.LoadJump},
		column{"load_jump_up_mw", v.LoadJumpUp},
		column{"load_jump_down_mw", v.LoadJumpDown},
		column{"market_profit", v.MarketProfit},
	)
	if v.MarketCost != nil {
		cols = append(cols, column{"market_cost", v.MarketCost})
	}

	bandIDs := make([]string, 0, len(v.JumpOvershoot))
	for id := range v.JumpOvershoot {
		bandIDs = append(bandIDs, id)
	}
	sort.Strings(bandIDs)
	for _, bid := range bandIDs {
		cols = append(cols, column{"jump_overshoot." + bid + "_mw", v.JumpOvershoot[bid]})
	}
	return cols
}
