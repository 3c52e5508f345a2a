package integrators

import (
	"context"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/rootfind"
)

// BDF2 is the two-step backward differentiation formula
//
//	x_{n+1} - 4/3*x_n + 1/3*x_{n-1} = 2/3*h*f(x_{n+1}, t_{n+1})
//
// The first step is taken with explicit Euler to seed the history.
type BDF2 struct {
	solver rootfind.Solver
}

// NewBDF2 returns a BDF2 integrator. A nil solver selects rootfind.NewNewton.
func NewBDF2(solver rootfind.Solver) *BDF2 {
	return &BDF2{solver: orDefault(solver)}
}

func (b *BDF2) Name() string { return "bdf2" }

func (b *BDF2) Integrate(ctx context.Context, f dynamo.Func, cfg dynamo.Config, obs dynamo.Observer) (*dynamo.Trajectory, error) {
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

		info, err := b.step(f, hist, h, cfg.TimeAt(n+1))
		if err == nil {
			hist.push(info.State)
		}
		return info, err
	})
}

func (b *BDF2) step(f dynamo.Func, hist *history, h, t float64) (dynamo.StepInfo, error) {
	s := bdf2Step{f: f, curr: hist.curr, prev: hist.prev, h: h, t: t}
	return solveImplicit(b.solver, s.residual, s.curr)
}
