package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/dynamo"
)

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{"ab2", "bdf2", "euler", "lsoda", "radau", "rk2", "rk4"}, r.ListIntegrators())
	assert.Equal(t, []string{"constant", "cosine", "decay", "growth", "quadratic", "stiff"}, r.ListProblems())

	for _, name := range r.ListIntegrators() {
		integ, err := r.GetIntegrator(name, nil)
		require.NoError(t, err)
		assert.Equal(t, name, integ.Name())
	}
	for _, name := range r.ListProblems() {
		sys, err := r.GetProblem(name)
		require.NoError(t, err)
		assert.Equal(t, name, sys.Name())
	}

	_, err := r.GetIntegrator("rk45", nil)
	assert.Error(t, err)
	_, err = r.GetProblem("pendulum")
	assert.Error(t, err)
}

func TestExperimentRun(t *testing.T) {
	cfg := config.DefaultConfig()
	exp := New(cfg)
	require.NoError(t, exp.Setup(NewRegistry()))

	res, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rk4", res.Integrator)
	assert.Equal(t, cfg.Steps, res.Trajectory.Len())
	assert.Equal(t, 4*(cfg.Steps-1), res.Evaluations)
	assert.Contains(t, res.Metrics, "implicit_share")

	sol := exp.Solution()
	require.NotNil(t, sol)
	assert.Less(t, analysis.MaxAbsError(res.Trajectory, sol), 1e-4)
}

func TestExperimentParams(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Problem = "stiff"
	cfg.Integrator = "bdf2"
	cfg.X0 = 1
	cfg.Params = map[string]float64{"rate": 10, "gain": 10}

	exp := New(cfg)
	require.NoError(t, exp.Setup(NewRegistry()))
	assert.Equal(t, 10.0, exp.System().(dynamo.Configurable).GetParams()["rate"])

	cfg.Params = map[string]float64{"mass": 1}
	assert.Error(t, New(cfg).Setup(NewRegistry()))

	cfg.Problem = "quadratic"
	cfg.Params = map[string]float64{"rate": 1}
	assert.Error(t, New(cfg).Setup(NewRegistry()))
}

func TestExperimentNotSetup(t *testing.T) {
	_, err := New(config.DefaultConfig()).Run(context.Background())
	assert.Error(t, err)
}

func TestExperimentInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = 0
	exp := New(cfg)
	require.NoError(t, exp.Setup(NewRegistry()))

	res, err := exp.Run(context.Background())
	require.ErrorIs(t, err, dynamo.ErrInvalidConfig)
	assert.Nil(t, res)
}
