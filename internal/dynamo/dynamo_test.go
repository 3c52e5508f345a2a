package dynamo

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIntegrator is forward Euler without the shared marching loop.
type testIntegrator struct {
	name    string
	failAt  int
	failErr error
}

func (ti *testIntegrator) Name() string { return ti.name }

func (ti *testIntegrator) Integrate(ctx context.Context, f Func, cfg Config, obs Observer) (*Trajectory, error) {
	if err := cfg.Validate(1); err != nil {
		return nil, err
	}
	h := cfg.StepSize()
	tr := NewTrajectory(cfg.N)
	tr.Append(cfg.A, cfg.X0)
	obs.OnStep(StepInfo{Step: 0, Time: cfg.A, State: cfg.X0, Mode: ModeInitial})
	for n := 1; n < cfg.N; n++ {
		if n == ti.failAt {
			return tr, &StepError{Step: n, Time: cfg.TimeAt(n), Wrapped: ti.failErr}
		}
		x := tr.Last() + h*f(tr.Last(), cfg.TimeAt(n-1))
		tr.Append(cfg.TimeAt(n), x)
		obs.OnStep(StepInfo{Step: n, Time: cfg.TimeAt(n), State: x, Mode: ModeExplicit})
	}
	return tr, nil
}

type countMetric struct{ n int }

func (c *countMetric) Name() string          { return "count" }
func (c *countMetric) Observe(info StepInfo) { c.n++ }
func (c *countMetric) Value() float64        { return float64(c.n) }
func (c *countMetric) Reset()                { c.n = 0 }

func TestConfigGrid(t *testing.T) {
	cfg := Config{A: 1, B: 3, N: 8}
	assert.Equal(t, 0.25, cfg.StepSize())
	assert.Equal(t, 1.0, cfg.TimeAt(0))
	assert.Equal(t, 2.75, cfg.TimeAt(7))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		min     int
		wantErr bool
	}{
		{"valid", Config{A: 0, B: 1, N: 1}, 1, false},
		{"zero steps", Config{A: 0, B: 1, N: 0}, 1, true},
		{"below multistep minimum", Config{A: 0, B: 1, N: 1}, 2, true},
		{"reversed", Config{A: 1, B: 0, N: 10}, 1, true},
		{"empty", Config{A: 1, B: 1, N: 10}, 1, true},
		{"nan start", Config{A: math.NaN(), B: 1, N: 10}, 1, true},
		{"inf x0", Config{A: 0, B: 1, N: 10, X0: math.Inf(-1)}, 1, true},
		{"step below float spacing", Config{A: 1, B: 1 + 1e-13, N: 1000}, 1, true},
		{"interval overflows", Config{A: -1.7e308, B: 1.7e308, N: 4}, 1, true},
		{"narrow but representable", Config{A: 1, B: 1 + 1e-12, N: 10}, 1, false},
		{"large offset", Config{A: 1e16, B: 1e16 + 64, N: 8}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.min)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateTolerance(t *testing.T) {
	base := Config{A: 0, B: 1, N: 4}
	for _, tol := range []float64{0, -1e-3, math.NaN()} {
		cfg := base
		cfg.Tol = tol
		assert.ErrorIs(t, cfg.ValidateTolerance(2), ErrInvalidConfig, "tol=%g", tol)
	}
	for _, tol := range []float64{1e-300, 1e-3, math.Inf(1)} {
		cfg := base
		cfg.Tol = tol
		assert.NoError(t, cfg.ValidateTolerance(2), "tol=%g", tol)
	}
	assert.NoError(t, DefaultConfig().ValidateTolerance(2))
}

func TestStepErrorUnwrap(t *testing.T) {
	err := error(&StepError{Step: 3, Time: 0.3, State: 1.5, Wrapped: ErrConvergence})
	assert.True(t, errors.Is(err, ErrConvergence))
	assert.False(t, errors.Is(err, ErrNumericOverflow))
	assert.Contains(t, err.Error(), "step 3")
}

func TestTrajectory(t *testing.T) {
	tr := NewTrajectory(2)
	tr.Append(0, 1)
	tr.Append(0.5, 2)
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, 2.0, tr.Last())
	assert.True(t, tr.IsValid())

	c := tr.Clone()
	c.States[0] = math.NaN()
	assert.Equal(t, 1.0, tr.States[0])
	assert.False(t, c.IsValid())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "bootstrap", ModeBootstrap.String())
	assert.Equal(t, "implicit", ModeImplicit.String())
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestSimulatorRun(t *testing.T) {
	m := &countMetric{}
	var seen []int
	sim := New(&testIntegrator{name: "test"})
	sim.AddMetric(m)
	sim.AddObserver(ObserverFunc(func(info StepInfo) { seen = append(seen, info.Step) }))

	f := func(x, t float64) float64 { return -x }
	cfg := Config{A: 0, B: 1, N: 11, X0: 1}

	res, err := sim.Run(context.Background(), f, cfg)
	require.NoError(t, err)
	assert.Equal(t, "test", res.Integrator)
	assert.Equal(t, 11, res.Trajectory.Len())
	assert.Equal(t, 10, res.Evaluations)
	assert.Equal(t, 11.0, res.Metrics["count"])
	assert.Len(t, seen, 11)

	// metrics reset between runs
	res, err = sim.Run(context.Background(), f, cfg)
	require.NoError(t, err)
	assert.Equal(t, 11.0, res.Metrics["count"])
}

func TestSimulatorPartialResult(t *testing.T) {
	sim := New(&testIntegrator{name: "test", failAt: 4, failErr: ErrConvergence})
	res, err := sim.Run(context.Background(), func(x, t float64) float64 { return 1 }, Config{A: 0, B: 1, N: 10})
	require.ErrorIs(t, err, ErrConvergence)
	require.NotNil(t, res)
	assert.Equal(t, 4, res.Trajectory.Len())
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&testIntegrator{name: "test"})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero steps", Config{A: 0, B: 1, N: 0}},
		{"negative steps", Config{A: 0, B: 1, N: -1}},
		{"reversed interval", Config{A: 1, B: 0, N: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := sim.Run(context.Background(), func(x, t float64) float64 { return x }, tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, res)
		})
	}
}

func TestCompare(t *testing.T) {
	sims := []*Simulator{
		New(&testIntegrator{name: "a"}),
		New(&testIntegrator{name: "b", failAt: 2, failErr: ErrNumericOverflow}),
		New(&testIntegrator{name: "c"}),
	}
	f := func(x, t float64) float64 { return x }

	outcomes := Compare(context.Background(), f, Config{A: 0, B: 1, N: 5, X0: 1}, sims...)
	require.Len(t, outcomes, 3)

	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, "a", outcomes[0].Result.Integrator)
	assert.ErrorIs(t, outcomes[1].Err, ErrNumericOverflow)
	assert.Equal(t, 2, outcomes[1].Result.Trajectory.Len())
	assert.Equal(t, outcomes[0].Result.Trajectory.States, outcomes[2].Result.Trajectory.States)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	obs := Observers{LogObserver(logger, "bdf2")}
	obs.OnStep(StepInfo{Step: 2, Time: 0.1, State: 0.5, Mode: ModeImplicit, Iterations: 3})

	out := buf.String()
	assert.True(t, strings.Contains(out, "integrator=bdf2"), out)
	assert.Contains(t, out, "mode=implicit")
	assert.Contains(t, out, "iterations=3")

	buf.Reset()
	quiet := LogObserver(slog.New(slog.NewTextHandler(&buf, nil)), "bdf2")
	quiet.OnStep(StepInfo{Step: 1})
	assert.Empty(t, buf.String())
}
