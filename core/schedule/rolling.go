package schedule

import (
	"fmt"

	"github.com/h2steel/flexbatch/core/mip"
)

// rolling adds the rolling-stage constraints and the cumulative finished
// steel accounting, including the total production goal.
func (b *builder) rolling() {
	p, m := b.p, b.m

	for i := range p.Units {
		u := &p.Units[i]
		uv := b.idx.Units[u.ID]

		for t := 0; t < b.T; t++ {
			// Rolling runs for RollingDurationSteps directly after a
			// batch completes: offsets [d, d+rol) behind the start.
			var run mip.Expr
			run.Add(uv.RollingRunning[t], 1)
			for j := range u.Modes {
				v := &u.Modes[j]
				mv := uv.Modes[v.ID]
				for k := v.DurationSteps; k < v.DurationSteps+u.RollingDurationSteps && k <= t; k++ {
					run.Add(mv.Start[t-k], -1)
				}
			}
			m.AddEq(fmt.Sprintf("rolling_running.%s[%d]", u.ID, t), run, 0)

			var load mip.Expr
			load.Add(uv.RollingLoad[t], 1)
			load.Add(uv.RollingRunning[t], -u.RollingLoadMW)
			m.AddEq(fmt.Sprintf("rolling_load.%s[%d]", u.ID, t), load, 0)

			// Finished steel accumulates while the intermediate store
			// holds a batch under rolling, spreading the batch output
			// evenly over the rolling window. With an instantaneous
			// rolling stage the output lands in full on the completion
			// step.
			var steel mip.Expr
			steel.Add(uv.SteelCum[t], 1)
			if t > 0 {
				steel.Add(uv.SteelCum[t-1], -1)
				if u.RollingDurationSteps > 0 {
					share := u.RollingMassEfficiency / float64(u.RollingDurationSteps)
					for j := range u.Modes {
						steel.Add(uv.Modes[u.Modes[j].ID].Store[t], -share)
					}
				} else {
					for j := range u.Modes {
						v := &u.Modes[j]
						if t >= v.DurationSteps {
							steel.Add(uv.Modes[v.ID].Start[t-v.DurationSteps], -u.RollingMassEfficiency*v.SteelTonsPerBatch)
						}
					}
				}
			}
			m.AddEq(fmt.Sprintf("steel_cum.%s[%d]", u.ID, t), steel, 0)
		}
	}

	var total mip.Expr
	for i := range p.Units {
		total.Add(b.idx.Units[p.Units[i].ID].SteelCum[b.T-1], 1)
	}
	m.AddGe("steel_demand", total, p.SteelDemandTons)
}
