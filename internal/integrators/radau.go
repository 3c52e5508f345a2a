package integrators

import (
	"context"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/rootfind"
)

// Radau is the single-stage Radau IIA scheme (backward Euler): each step
// solves y = x_n + h*f(y, t_n + h) with x_n as the initial guess.
//
// A step whose solve does not converge aborts the run; there is no fallback
// to an explicit step.
type Radau struct {
	solver rootfind.Solver
}

// NewRadau returns a Radau integrator. A nil solver selects rootfind.NewNewton.
func NewRadau(solver rootfind.Solver) *Radau {
	return &Radau{solver: orDefault(solver)}
}

func (r *Radau) Name() string { return "radau" }

func (r *Radau) Integrate(ctx context.Context, f dynamo.Func, cfg dynamo.Config, obs dynamo.Observer) (*dynamo.Trajectory, error) {
	if err := cfg.Validate(1); err != nil {
		return nil, err
	}

	h := cfg.StepSize()
	return march(ctx, cfg, obs, func(n int, tr *dynamo.Trajectory) (dynamo.StepInfo, error) {
		s := backwardStep{f: f, prev: tr.Last(), h: h, t: cfg.TimeAt(n) + h}
		return solveImplicit(r.solver, s.residual, s.prev)
	})
}
