package automation

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/experiment"
)

// MonteCarloConfig perturbs the initial state of Base uniformly within
// ±Perturbation and checks whether each run stays bounded.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	Trials       int
	Seed         int64
	// Bound is the largest final magnitude counted as stable. Zero means 1e6.
	Bound float64
}

type MonteCarloResult struct {
	Trial  int
	X0     float64
	Final  float64
	Stable bool
	Err    error
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, reg *experiment.Registry, logger *slog.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	bound := mc.Bound
	if bound == 0 {
		bound = 1e6
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, mc.Trials)
	for trial := 0; trial < mc.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg := mc.Base.Clone()
		cfg.X0 = mc.Base.X0 + (rng.Float64()-0.5)*2*mc.Perturbation

		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}

		res, err := exp.Run(ctx)
		r := MonteCarloResult{Trial: trial, X0: cfg.X0, Final: math.NaN(), Err: err}
		if res != nil && res.Trajectory.Len() > 0 {
			r.Final = res.Trajectory.Last()
		}
		r.Stable = err == nil && math.Abs(r.Final) <= bound

		results = append(results, r)

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "of", mc.Trials)
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
