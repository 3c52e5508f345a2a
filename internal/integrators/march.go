package integrators

import (
	"context"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// stepFunc computes grid point n+1 given the points accepted so far. The
// returned info carries the new state, the mode used and solver statistics;
// Step and Time are filled in by march.
type stepFunc func(n int, tr *dynamo.Trajectory) (dynamo.StepInfo, error)

// march drives the fixed grid t_n = A + n*h for n in [0, N). Every scheme in
// this package shares it; they differ only in step.
func march(ctx context.Context, cfg dynamo.Config, obs dynamo.Observer, step stepFunc) (*dynamo.Trajectory, error) {
	tr := dynamo.NewTrajectory(cfg.N)
	tr.Append(cfg.A, cfg.X0)
	notify(obs, dynamo.StepInfo{Step: 0, Time: cfg.A, State: cfg.X0, Mode: dynamo.ModeInitial})

	for n := 0; n+1 < cfg.N; n++ {
		select {
		case <-ctx.Done():
			return tr, ctx.Err()
		default:
		}

		info, err := step(n, tr)
		info.Step = n + 1
		info.Time = cfg.TimeAt(n + 1)

		if err != nil {
			return tr, stepError(info, err)
		}
		if diverged(info.State) {
			return tr, stepError(info, dynamo.ErrNumericOverflow)
		}

		tr.Append(info.Time, info.State)
		notify(obs, info)
	}

	return tr, nil
}

func notify(obs dynamo.Observer, info dynamo.StepInfo) {
	if obs != nil {
		obs.OnStep(info)
	}
}

func diverged(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) > dynamo.DivergenceBound
}

func stepError(info dynamo.StepInfo, err error) *dynamo.StepError {
	return &dynamo.StepError{
		Step:       info.Step,
		Time:       info.Time,
		State:      info.State,
		Residual:   info.Residual,
		Iterations: info.Iterations,
		Wrapped:    err,
	}
}
