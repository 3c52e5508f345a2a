package integrators

import (
	"context"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// AB2 is the explicit two-step Adams-Bashforth scheme
//
//	x_{n+1} = x_n + h*(3/2*f(x_n, t_n) - 1/2*f(x_{n-1}, t_{n-1}))
//
// bootstrapped with one explicit Euler step. It is the non-stiff branch of
// Switching.
type AB2 struct{}

func NewAB2() *AB2 {
	return &AB2{}
}

func (a *AB2) Name() string { return "ab2" }

func (a *AB2) Integrate(ctx context.Context, f dynamo.Func, cfg dynamo.Config, obs dynamo.Observer) (*dynamo.Trajectory, error) {
	if err := cfg.Validate(2); err != nil {
		return nil, err
	}

	h := cfg.StepSize()
	var hist *history

	return march(ctx, cfg, obs, func(n int, _ *dynamo.Trajectory) (dynamo.StepInfo, error) {
		if n == 0 {
			var info dynamo.StepInfo
			info, hist = bootstrap(f, cfg)
			return info, nil
		}

		fCurr := f(hist.curr, cfg.TimeAt(n))
		fPrev := f(hist.prev, cfg.TimeAt(n-1))
		x := adamsBashforth2(hist.curr, fCurr, fPrev, h)
		hist.push(x)
		return dynamo.StepInfo{State: x, Mode: dynamo.ModeExplicit}, nil
	})
}
