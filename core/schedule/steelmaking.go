package schedule

import (
	"fmt"

	"github.com/h2steel/flexbatch/core/mip"
)

// steelMaking adds the batch-scheduling constraints: trailing-window
// occupancy, mutual exclusion across operating modes, the feasible start
// horizon, minimum downtime, load aggregation and the intermediate
// product store.
func (b *builder) steelMaking() {
	p, m := b.p, b.m

	for i := range p.Units {
		u := &p.Units[i]
		uv := b.idx.Units[u.ID]

		for j := range u.Modes {
			v := &u.Modes[j]
			mv := uv.Modes[v.ID]

			// Starts too late to finish batch plus rolling inside the
			// horizon are excluded from the domain, not penalized.
			for t := latestStart(b.T, u, v) + 1; t < b.T; t++ {
				if t >= 0 {
					m.FixZero(mv.Start[t])
				}
			}

			for t := 0; t < b.T; t++ {
				// Occupancy is defined, not enforced: the running
				// indicator equals the sum of starts in the trailing
				// batch-duration window.
				var occ mip.Expr
				occ.Add(mv.Running[t], 1)
				for z := 0; z < v.DurationSteps && z <= t; z++ {
					occ.Add(mv.Start[t-z], -1)
				}
				m.AddEq(fmt.Sprintf("occupancy.%s.%s[%d]", u.ID, v.ID, t), occ, 0)
			}
		}

		for t := 0; t < b.T; t++ {
			// Unit occupancy sums the mode indicators. The binary domain
			// of the unit indicator is the mutual-exclusion rule: at
			// most one mode, one batch, at a time.
			var run mip.Expr
			run.Add(uv.Running[t], 1)
			for j := range u.Modes {
				run.Add(uv.Modes[u.Modes[j].ID].Running[t], -1)
			}
			m.AddEq(fmt.Sprintf("unit_running.%s[%d]", u.ID, t), run, 0)

			// Realized unit load is the convolution of start indicators
			// with each mode's batch load template.
			var load mip.Expr
			load.Add(uv.Load[t], 1)
			for j := range u.Modes {
				v := &u.Modes[j]
				mv := uv.Modes[v.ID]
				for z := 0; z < v.DurationSteps && z <= t; z++ {
					load.Add(mv.Start[t-z], -v.LoadProfile[z])
				}
			}
			m.AddEq(fmt.Sprintf("unit_load.%s[%d]", u.ID, t), load, 0)
		}

		// Minimum downtime, measured from batch completion: a start at t
		// is allowed only when the unit was idle over the preceding
		// pause window. Occupancy covers a batch through its final step,
		// so a trailing occupancy sum of zero means the last batch ended
		// at least PauseSteps ago.
		if u.PauseSteps > 0 {
			for j := range u.Modes {
				v := &u.Modes[j]
				mv := uv.Modes[v.ID]
				for t := 0; t < b.T; t++ {
					var pause mip.Expr
					pause.Add(mv.Start[t], float64(u.PauseSteps))
					for k := 1; k <= u.PauseSteps && k <= t; k++ {
						pause.Add(uv.Running[t-k], 1)
					}
					m.AddLe(fmt.Sprintf("downtime.%s.%s[%d]", u.ID, v.ID, t), pause, float64(u.PauseSteps))
				}
			}
		}

		// Intermediate product store per mode: credited with the batch
		// output exactly DurationSteps after a start, debited the same
		// amount RollingDurationSteps after the credit.
		for j := range u.Modes {
			v := &u.Modes[j]
			mv := uv.Modes[v.ID]
			for t := 0; t < b.T; t++ {
				var store mip.Expr
				store.Add(mv.Store[t], 1)
				if t >= v.DurationSteps {
					store.Add(mv.Start[t-v.DurationSteps], -v.SteelTonsPerBatch)
				}
				if t >= v.DurationSteps+u.RollingDurationSteps {
					store.Add(mv.Start[t-v.DurationSteps-u.RollingDurationSteps], v.SteelTonsPerBatch)
				}
				if t > 0 {
					store.Add(mv.Store[t-1], -1)
				}
				m.AddEq(fmt.Sprintf("store.%s.%s[%d]", u.ID, v.ID, t), store, 0)
			}
		}
	}
}
