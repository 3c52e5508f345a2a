// Package analysis measures trajectories against closed-form solutions.
package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// Exact samples a closed-form solution on the trajectory's time grid.
func Exact(tr *dynamo.Trajectory, solution func(t float64) float64) []float64 {
	out := make([]float64, len(tr.Times))
	for i, t := range tr.Times {
		out[i] = solution(t)
	}
	return out
}

// MaxAbsError is the maximum absolute deviation from the exact solution over
// the whole trajectory.
func MaxAbsError(tr *dynamo.Trajectory, solution func(t float64) float64) float64 {
	if tr.Len() == 0 {
		return 0
	}
	return floats.Distance(tr.States, Exact(tr, solution), math.Inf(1))
}

// RMSError is the root-mean-square deviation from the exact solution.
func RMSError(tr *dynamo.Trajectory, solution func(t float64) float64) float64 {
	if tr.Len() == 0 {
		return 0
	}
	return floats.Distance(tr.States, Exact(tr, solution), 2) / math.Sqrt(float64(tr.Len()))
}

// ObservedOrder estimates p from errors measured at step sizes h and h/ratio,
// assuming err ~ C*h^p.
func ObservedOrder(coarse, fine, ratio float64) float64 {
	if coarse <= 0 || fine <= 0 || ratio <= 1 {
		return math.NaN()
	}
	return math.Log(coarse/fine) / math.Log(ratio)
}

// Level is one refinement in a convergence study.
type Level struct {
	N      int
	H      float64
	MaxErr float64
	Order  float64 // NaN on the first level
}

// Convergence runs integ at cfg.N, 2*cfg.N, ... (levels runs in total) and
// reports the max error and observed order at each refinement.
func Convergence(ctx context.Context, integ dynamo.Integrator, f dynamo.Func, solution func(t float64) float64, cfg dynamo.Config, levels int) ([]Level, error) {
	out := make([]Level, 0, levels)
	run := cfg
	for i := 0; i < levels; i++ {
		tr, err := integ.Integrate(ctx, f, run, nil)
		if err != nil {
			return out, fmt.Errorf("level %d (N=%d): %w", i, run.N, err)
		}

		lvl := Level{N: run.N, H: run.StepSize(), MaxErr: MaxAbsError(tr, solution), Order: math.NaN()}
		if i > 0 {
			lvl.Order = ObservedOrder(out[i-1].MaxErr, lvl.MaxErr, 2)
		}
		out = append(out, lvl)
		run.N *= 2
	}
	return out, nil
}
