package integrators

import (
	"context"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// increment returns x_{n+1} - x_n for one explicit step of size h from (x, t).
type increment func(f dynamo.Func, x, t, h float64) float64

func integrateExplicit(ctx context.Context, f dynamo.Func, cfg dynamo.Config, obs dynamo.Observer, inc increment) (*dynamo.Trajectory, error) {
	if err := cfg.Validate(1); err != nil {
		return nil, err
	}

	h := cfg.StepSize()
	return march(ctx, cfg, obs, func(n int, tr *dynamo.Trajectory) (dynamo.StepInfo, error) {
		x := tr.Last()
		return dynamo.StepInfo{
			State: x + inc(f, x, cfg.TimeAt(n), h),
			Mode:  dynamo.ModeExplicit,
		}, nil
	})
}
