// Package rootfind solves scalar nonlinear equations g(x) = 0 for the
// implicit integrators. The residuals it is given reference the right-hand
// side f(x, t) of an ODE, so no closed-form derivative is assumed: the slope
// is estimated by central finite differences.
package rootfind

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/san-kum/stiffode/internal/dynamo"
)

const (
	DefaultTol     = 1e-12
	DefaultMaxIter = 50

	// relative step used for the central difference slope
	slopeStep = 6e-6
)

type Solver interface {
	Solve(g func(float64) float64, guess float64) (Result, error)
}

type Result struct {
	Root       float64
	Residual   float64
	Iterations int
}

// Error reports a solve that did not converge. It unwraps to
// dynamo.ErrConvergence.
type Error struct {
	Reason     string
	Last       float64
	Residual   float64
	Iterations int
}

func (e *Error) Error() string {
	return fmt.Sprintf("rootfind: %s after %d iterations (x=%g, residual=%g)", e.Reason, e.Iterations, e.Last, e.Residual)
}

func (e *Error) Unwrap() error {
	return dynamo.ErrConvergence
}

// Newton iterates x <- x - g(x)/g'(x) with g' from a central difference.
// A solve converges once |g(x)| <= Tol*max(1, |x|), or once the Newton
// correction falls below the same relative bound. A converged iterate with a
// nonzero residual gets one more correction with the last slope, kept only if
// it does not increase |g|; that pushes exactly solvable residuals down to
// rounding level.
type Newton struct {
	Tol     float64
	MaxIter int
}

func NewNewton() *Newton {
	return &Newton{
		Tol:     DefaultTol,
		MaxIter: DefaultMaxIter,
	}
}

func (n *Newton) Solve(g func(float64) float64, guess float64) (Result, error) {
	tol, maxIter := n.Tol, n.MaxIter
	if tol <= 0 {
		tol = DefaultTol
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	x := guess
	r := g(x)
	settings := &fd.Settings{Formula: fd.Central}
	var slope float64

	for iter := 0; ; iter++ {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return Result{Root: x, Residual: r, Iterations: iter}, &Error{Reason: "non-finite residual", Last: x, Residual: r, Iterations: iter}
		}
		scale := math.Max(1, math.Abs(x))
		if math.Abs(r) <= tol*scale {
			x, r = polish(g, x, r, slope)
			return Result{Root: x, Residual: r, Iterations: iter}, nil
		}
		if iter == maxIter {
			return Result{Root: x, Residual: r, Iterations: iter}, &Error{Reason: "iteration budget exhausted", Last: x, Residual: r, Iterations: iter}
		}

		settings.Step = slopeStep * scale
		slope = fd.Derivative(g, x, settings)
		if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
			return Result{Root: x, Residual: r, Iterations: iter}, &Error{Reason: "degenerate slope", Last: x, Residual: r, Iterations: iter}
		}

		dx := r / slope
		x -= dx
		r = g(x)

		if math.Abs(dx) <= tol*math.Max(1, math.Abs(x)) && !math.IsNaN(r) && !math.IsInf(r, 0) {
			x, r = polish(g, x, r, slope)
			return Result{Root: x, Residual: r, Iterations: iter + 1}, nil
		}
	}
}

// polish applies one extra correction with a known slope. The corrected
// point is returned only when its residual is finite and no larger.
func polish(g func(float64) float64, x, r, slope float64) (float64, float64) {
	if r == 0 || slope == 0 {
		return x, r
	}
	xp := x - r/slope
	rp := g(xp)
	if math.IsNaN(rp) || math.IsInf(rp, 0) || math.Abs(rp) > math.Abs(r) {
		return x, r
	}
	return xp, rp
}
