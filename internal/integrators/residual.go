package integrators

import (
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/rootfind"
)

// backwardStep holds the known quantities of one single-stage implicit step
// ending at time t.
type backwardStep struct {
	f    dynamo.Func
	prev float64
	h    float64
	t    float64
}

// residual is y - x_n - h*f(y, t_{n+1}).
func (s backwardStep) residual(y float64) float64 {
	return y - s.prev - s.h*s.f(y, s.t)
}

// bdf2Step holds the known quantities of one two-step backward
// differentiation step ending at time t.
type bdf2Step struct {
	f    dynamo.Func
	curr float64 // x_n
	prev float64 // x_{n-1}
	h    float64
	t    float64
}

// residual is 3y - 4x_n + x_{n-1} - 2h*f(y, t_{n+1}), the BDF2 formula
// scaled by 3 so that every coefficient is exact in binary.
func (s bdf2Step) residual(y float64) float64 {
	return 3*y - 4*s.curr + s.prev - 2*s.h*s.f(y, s.t)
}

// solveImplicit runs the solver from guess and reports the outcome as a step.
// On failure the info still carries the last iterate and residual.
func solveImplicit(solver rootfind.Solver, g func(float64) float64, guess float64) (dynamo.StepInfo, error) {
	res, err := solver.Solve(g, guess)
	return dynamo.StepInfo{
		State:      res.Root,
		Mode:       dynamo.ModeImplicit,
		Iterations: res.Iterations,
		Residual:   res.Residual,
	}, err
}

// adamsBashforth2 is the explicit two-step formula
// x_n + h*(3/2*f_n - 1/2*f_{n-1}).
func adamsBashforth2(curr, fCurr, fPrev, h float64) float64 {
	return curr + h*(1.5*fCurr-0.5*fPrev)
}

// bootstrap takes the explicit Euler seed step that gives two-step schemes
// their first history entry.
func bootstrap(f dynamo.Func, cfg dynamo.Config) (dynamo.StepInfo, *history) {
	x1 := cfg.X0 + eulerIncrement(f, cfg.X0, cfg.A, cfg.StepSize())
	return dynamo.StepInfo{State: x1, Mode: dynamo.ModeBootstrap}, newHistory(cfg.X0, x1)
}

func orDefault(solver rootfind.Solver) rootfind.Solver {
	if solver == nil {
		return rootfind.NewNewton()
	}
	return solver
}
