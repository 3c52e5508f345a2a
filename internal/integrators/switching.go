package integrators

import (
	"context"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/rootfind"
)

// Switching chooses between AB2 and BDF2 on every step after the Euler
// bootstrap, in the spirit of LSODA. The stiffness estimate is
//
//	|f(x_n, t_n) - f(x_{n-1}, t_{n-1})| / h
//
// and the explicit formula is used while it stays below cfg.Tol. The choice
// is re-evaluated independently each step, so the mode may alternate between
// adjacent steps.
//
// The estimate is a finite difference of the derivative, not a Jacobian
// eigenvalue bound; cfg.Tol is its only tuning knob.
type Switching struct {
	solver rootfind.Solver
}

// NewSwitching returns a Switching integrator. A nil solver selects
// rootfind.NewNewton.
func NewSwitching(solver rootfind.Solver) *Switching {
	return &Switching{solver: orDefault(solver)}
}

func (s *Switching) Name() string { return "lsoda" }

func (s *Switching) Integrate(ctx context.Context, f dynamo.Func, cfg dynamo.Config, obs dynamo.Observer) (*dynamo.Trajectory, error) {
	if err := cfg.ValidateTolerance(2); err != nil {
		return nil, err
	}

	h := cfg.StepSize()
	implicit := &BDF2{solver: s.solver}
	var hist *history

	return march(ctx, cfg, obs, func(n int, _ *dynamo.Trajectory) (dynamo.StepInfo, error) {
		if n == 0 {
			var info dynamo.StepInfo
			info, hist = bootstrap(f, cfg)
			return info, nil
		}

		fCurr := f(hist.curr, cfg.TimeAt(n))
		fPrev := f(hist.prev, cfg.TimeAt(n-1))
		stiffness := math.Abs(fCurr-fPrev) / h

		if stiffness < cfg.Tol {
			x := adamsBashforth2(hist.curr, fCurr, fPrev, h)
			hist.push(x)
			return dynamo.StepInfo{State: x, Mode: dynamo.ModeExplicit, Stiffness: stiffness}, nil
		}

		info, err := implicit.step(f, hist, h, cfg.TimeAt(n+1))
		info.Stiffness = stiffness
		if err == nil {
			hist.push(info.State)
		}
		return info, err
	})
}
