package integrators

import (
	"context"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// Euler is the first-order forward Euler scheme x_{n+1} = x_n + h*f(x_n, t_n).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Integrate(ctx context.Context, f dynamo.Func, cfg dynamo.Config, obs dynamo.Observer) (*dynamo.Trajectory, error) {
	return integrateExplicit(ctx, f, cfg, obs, eulerIncrement)
}

func eulerIncrement(f dynamo.Func, x, t, h float64) float64 {
	return h * f(x, t)
}
