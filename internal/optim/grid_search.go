package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/experiment"
)

// Builder turns one grid point into a ready-to-run experiment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// Trial records one evaluated grid point. Err is set when the run or the
// objective failed; such points never win.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type SearchResult struct {
	Best   map[string]float64
	Value  float64
	Trials []Trial
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// ConfigBuilder applies each grid value to a copy of base with
// config.Config.Set and sets the experiment up against reg.
func ConfigBuilder(base *config.Config, reg *experiment.Registry) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.Set(name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

// Search evaluates every combination of the grid and returns the point with
// the lowest objective. Ties keep the first point in grid order.
func (g *GridSearch) Search(ctx context.Context, build Builder, objective Objective) (*SearchResult, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	res := &SearchResult{Value: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, objective, res); err != nil {
		return res, err
	}

	if res.Best == nil {
		return res, errors.New("optim: no grid point produced a usable run")
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	objective Objective,
	res *SearchResult,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: maps.Clone(current), Value: math.NaN()}
		trial.Value, trial.Err = evaluate(ctx, build, objective, current)
		res.Trials = append(res.Trials, trial)

		if trial.Err == nil && trial.Value < res.Value {
			res.Value = trial.Value
			res.Best = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, objective, res); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, build Builder, objective Objective, params map[string]float64) (float64, error) {
	exp, err := build(params)
	if err != nil {
		return math.NaN(), err
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return math.NaN(), err
	}

	v, err := objective(exp, result)
	if err != nil {
		return math.NaN(), err
	}
	if math.IsNaN(v) {
		return v, errors.New("optim: objective is NaN")
	}
	return v, nil
}
