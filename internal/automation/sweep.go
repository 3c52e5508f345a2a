package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/experiment"
)

// ParameterSweep varies one config field or problem parameter across a
// range. Param uses the YAML names accepted by config.Config.Set.
type ParameterSweep struct {
	Base   *config.Config
	Param  string
	Min    float64
	Max    float64
	Points int
	// Log spaces the values geometrically, which suits tolerances.
	Log bool
}

type SweepResult struct {
	Value         float64
	Final         float64
	MaxError      float64
	Evaluations   int
	ImplicitShare float64
	Err           error
}

// Values returns the swept parameter values, Min and Max included.
func (s *ParameterSweep) Values() ([]float64, error) {
	if s.Points < 1 {
		return nil, fmt.Errorf("sweep needs at least one point, got %d", s.Points)
	}
	if s.Max < s.Min {
		return nil, fmt.Errorf("sweep range [%g, %g] is reversed", s.Min, s.Max)
	}
	if s.Log && s.Min <= 0 {
		return nil, errors.New("log sweep needs a positive range")
	}
	if s.Points == 1 {
		return []float64{s.Min}, nil
	}

	values := make([]float64, s.Points)
	for i := range values {
		frac := float64(i) / float64(s.Points-1)
		if s.Log {
			values[i] = s.Min * math.Pow(s.Max/s.Min, frac)
		} else {
			values[i] = s.Min + frac*(s.Max-s.Min)
		}
	}
	values[len(values)-1] = s.Max
	return values, nil
}

// RunSweep runs one experiment per value. A value whose run fails is kept
// with its error so the caller can see where a method breaks down.
func RunSweep(ctx context.Context, sweep *ParameterSweep, reg *experiment.Registry, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, len(values))
	for i, v := range values {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg := sweep.Base.Clone()
		if err := cfg.Set(sweep.Param, v); err != nil {
			return nil, err
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}

		res, runErr := exp.Run(ctx)
		point := SweepResult{
			Value:    v,
			Final:    math.NaN(),
			MaxError: math.NaN(),
			Err:      runErr,
		}
		if res != nil && res.Trajectory.Len() > 0 {
			point.Final = res.Trajectory.Last()
			point.Evaluations = res.Evaluations
			point.ImplicitShare = res.Metrics["implicit_share"]
			if sol := exp.Solution(); sol != nil {
				point.MaxError = analysis.MaxAbsError(res.Trajectory, sol)
			}
		}

		results = append(results, point)

		logger.Debug("sweep point",
			"i", i+1,
			"of", len(values),
			sweep.Param, v,
			"max_err", point.MaxError,
			"err", runErr,
		)
	}

	return results, nil
}
