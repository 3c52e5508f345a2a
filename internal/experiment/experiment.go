package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/dynamo"
)

type Experiment struct {
	cfg       *config.Config
	system    dynamo.System
	simulator *dynamo.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup resolves the problem and integrator named in the config, applies
// problem parameters and attaches the registry's default metrics.
func (e *Experiment) Setup(r *Registry) error {
	sys, err := r.GetProblem(e.cfg.Problem)
	if err != nil {
		return err
	}
	if len(e.cfg.Params) > 0 {
		tunable, ok := sys.(dynamo.Configurable)
		if !ok {
			return fmt.Errorf("problem %s has no parameters", e.cfg.Problem)
		}
		for k, v := range e.cfg.Params {
			if err := tunable.SetParam(k, v); err != nil {
				return err
			}
		}
	}

	integ, err := r.GetIntegrator(e.cfg.Integrator, e.cfg.NewSolver())
	if err != nil {
		return err
	}

	e.system = sys
	e.simulator = dynamo.New(integ)
	for _, m := range r.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.system.Derive, e.cfg.Run())
}

// Solution returns the closed-form solution through the configured initial
// condition, or nil when the problem has none.
func (e *Experiment) Solution() func(t float64) float64 {
	sol, ok := e.system.(dynamo.Solvable)
	if !ok {
		return nil
	}
	a, x0 := e.cfg.Start, e.cfg.X0
	return func(t float64) float64 { return sol.Solution(t, a, x0) }
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) System() dynamo.System { return e.system }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}
