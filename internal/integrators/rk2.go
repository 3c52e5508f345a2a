package integrators

import (
	"context"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// RK2 is the second-order midpoint Runge-Kutta scheme.
type RK2 struct{}

func NewRK2() *RK2 {
	return &RK2{}
}

func (r *RK2) Name() string { return "rk2" }

func (r *RK2) Integrate(ctx context.Context, f dynamo.Func, cfg dynamo.Config, obs dynamo.Observer) (*dynamo.Trajectory, error) {
	return integrateExplicit(ctx, f, cfg, obs, midpointIncrement)
}

func midpointIncrement(f dynamo.Func, x, t, h float64) float64 {
	k1 := h * f(x, t)
	k2 := h * f(x+0.5*k1, t+0.5*h)
	return k2
}
