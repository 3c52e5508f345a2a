package integrators

import (
	"context"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// RK4 is the classical four-stage Runge-Kutta scheme.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Integrate(ctx context.Context, f dynamo.Func, cfg dynamo.Config, obs dynamo.Observer) (*dynamo.Trajectory, error) {
	return integrateExplicit(ctx, f, cfg, obs, rk4Increment)
}

func rk4Increment(f dynamo.Func, x, t, h float64) float64 {
	k1 := h * f(x, t)
	k2 := h * f(x+0.5*k1, t+0.5*h)
	k3 := h * f(x+0.5*k2, t+0.5*h)
	k4 := h * f(x+k3, t+h)
	return (k1 + 2*k2 + 2*k3 + k4) / 6
}
