package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/problems"
)

func TestStability(t *testing.T) {
	m := NewStability(10)
	assert.Equal(t, 1.0, m.Value())

	m.Observe(dynamo.StepInfo{State: 1})
	m.Observe(dynamo.StepInfo{State: -11})
	assert.Equal(t, 0.5, m.Value())

	m.Reset()
	assert.Equal(t, 1.0, m.Value())

	m.Observe(dynamo.StepInfo{State: 10})
	m.Observe(dynamo.StepInfo{State: math.NaN()})
	m.Observe(dynamo.StepInfo{State: math.Inf(-1)})
	assert.InDelta(t, 1.0/3, m.Value(), 1e-15)
}

func TestStabilityBoundFallback(t *testing.T) {
	assert.Equal(t, dynamo.DivergenceBound, NewStability(0).Bound())
	assert.Equal(t, dynamo.DivergenceBound, NewStability(math.NaN()).Bound())
	assert.Equal(t, DefaultBound, NewStability(DefaultBound).Bound())

	m := NewStability(0)
	m.Observe(dynamo.StepInfo{State: 1e149})
	assert.Equal(t, 1.0, m.Value())
}

// An AB2 run on the stiff problem outside its stability region grows past
// the report bound well before the divergence guard stops it.
func TestStabilityFlagsUnstableExplicitRun(t *testing.T) {
	p := problems.NewStiff()
	cfg := dynamo.Config{A: 0, B: 5, N: 200, X0: 1, Tol: 1e-3}

	sim := dynamo.New(integrators.NewAB2())
	sim.AddMetric(NewStability(DefaultBound))
	res, err := sim.Run(context.Background(), p.Derive, cfg)
	require.NoError(t, err)
	assert.Less(t, res.Metrics["stability"], 1.0)
	assert.Greater(t, res.Metrics["stability"], 0.0)
}

func TestImplicitShare(t *testing.T) {
	m := NewImplicitShare()
	for _, mode := range []dynamo.Mode{dynamo.ModeInitial, dynamo.ModeBootstrap, dynamo.ModeExplicit, dynamo.ModeImplicit, dynamo.ModeImplicit, dynamo.ModeImplicit} {
		m.Observe(dynamo.StepInfo{Mode: mode})
	}
	assert.Equal(t, 0.75, m.Value())
	m.Reset()
	assert.Zero(t, m.Value())
}

func TestSolverMetrics(t *testing.T) {
	it := NewRootIterations()
	peak := NewPeakStiffness()
	for i, s := range []float64{0.5, 4, 2} {
		info := dynamo.StepInfo{Iterations: i + 1, Stiffness: s}
		it.Observe(info)
		peak.Observe(info)
	}
	assert.Equal(t, 6.0, it.Value())
	assert.Equal(t, 4.0, peak.Value())
}

func TestSimulatorMetrics(t *testing.T) {
	p := problems.NewCosine()
	cfg := dynamo.Config{A: 0, B: 5, N: 100, Tol: 1e12}

	sim := dynamo.New(integrators.NewSwitching(nil))
	for _, m := range Defaults() {
		sim.AddMetric(m)
	}

	res, err := sim.Run(context.Background(), p.Derive, cfg)
	require.NoError(t, err)
	assert.Zero(t, res.Metrics["implicit_share"])
	assert.Zero(t, res.Metrics["root_iterations"])
	assert.Equal(t, 1.0, res.Metrics["stability"])

	cfg.Tol = 1e-300
	res, err = sim.Run(context.Background(), p.Derive, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Metrics["implicit_share"])
	assert.Positive(t, res.Metrics["root_iterations"])
	assert.Positive(t, res.Metrics["peak_stiffness"])
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	p := problems.NewCosine()
	cfg := dynamo.Config{A: 0, B: 5, N: 50}

	integ := integrators.NewBDF2(nil)
	_, err := integ.Integrate(context.Background(), p.Derive, cfg, c.For(integ.Name()))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.steps.WithLabelValues("bdf2", "initial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.steps.WithLabelValues("bdf2", "bootstrap")))
	assert.Equal(t, 48.0, testutil.ToFloat64(c.steps.WithLabelValues("bdf2", "implicit")))

	samples, err := c.Snapshot()
	require.NoError(t, err)

	var count float64
	for _, s := range samples {
		if s.Name == "stiffode_rootfind_iterations_count" && s.Labels["integrator"] == "bdf2" {
			count = s.Value
		}
	}
	assert.Equal(t, 48.0, count)
}
