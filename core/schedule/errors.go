package schedule

import "errors"

// ErrUnsupportedObjective indicates an objective kind outside the three
// documented strategies.
var ErrUnsupportedObjective = errors.New("unsupported objective")

// ErrInfeasibleHorizon indicates that no operating mode of any unit can
// complete a batch plus its rolling stage within the horizon, so no valid
// start exists anywhere. A single infeasible mode does not trigger this;
// its start variables are fixed to zero instead.
var ErrInfeasibleHorizon = errors.New("no feasible batch start within horizon")
