package dynamo

import (
	"context"
	"math"
	"time"
)

// DivergenceBound is the largest state magnitude accepted before a run is
// aborted with ErrNumericOverflow.
const DivergenceBound = 1e150

// DefaultTolerance is the stiffness threshold used when none is configured.
const DefaultTolerance = 1e-3

// Func is the right-hand side of dx/dt = f(x, t). It must be deterministic
// and free of side effects; implicit solvers call it many times per step.
type Func func(x, t float64) float64

type Mode int

const (
	ModeInitial Mode = iota
	ModeBootstrap
	ModeExplicit
	ModeImplicit
)

func (m Mode) String() string {
	switch m {
	case ModeInitial:
		return "initial"
	case ModeBootstrap:
		return "bootstrap"
	case ModeExplicit:
		return "explicit"
	case ModeImplicit:
		return "implicit"
	default:
		return "unknown"
	}
}

// Config describes a fixed-step run over [A, B) with N grid points.
// Tol is only read by stiffness-switching integrators.
type Config struct {
	A   float64
	B   float64
	N   int
	X0  float64
	Tol float64
}

func DefaultConfig() Config {
	return Config{
		A:   0,
		B:   10,
		N:   100,
		X0:  0,
		Tol: DefaultTolerance,
	}
}

// StepSize returns h = (B-A)/N.
func (c Config) StepSize() float64 {
	return (c.B - c.A) / float64(c.N)
}

// TimeAt returns the n-th grid time A + n*h.
func (c Config) TimeAt(n int) float64 {
	return c.A + float64(n)*c.StepSize()
}

// Validate checks the interval, the step count against minSteps, the
// initial state and that the grid times are finite and strictly increasing.
func (c Config) Validate(minSteps int) error {
	if math.IsNaN(c.A) || math.IsInf(c.A, 0) || math.IsNaN(c.B) || math.IsInf(c.B, 0) {
		return invalidf("interval bounds must be finite, got [%g, %g)", c.A, c.B)
	}
	if c.A >= c.B {
		return invalidf("interval start %g must be below end %g", c.A, c.B)
	}
	if c.N < minSteps {
		return invalidf("step count %d below minimum %d", c.N, minSteps)
	}
	if math.IsNaN(c.X0) || math.IsInf(c.X0, 0) {
		return invalidf("initial state must be finite, got %g", c.X0)
	}
	if h := c.StepSize(); math.IsInf(h, 0) || math.IsNaN(h) {
		return invalidf("step size of [%g, %g) with %d steps is not finite", c.A, c.B, c.N)
	}
	for n := 1; n < c.N; n++ {
		if !(c.TimeAt(n) > c.TimeAt(n-1)) {
			return invalidf("step size %g does not advance time at t=%g", c.StepSize(), c.TimeAt(n-1))
		}
	}
	return nil
}

// ValidateTolerance additionally requires a positive Tol. +Inf is accepted
// and forces the explicit branch everywhere.
func (c Config) ValidateTolerance(minSteps int) error {
	if err := c.Validate(minSteps); err != nil {
		return err
	}
	if !(c.Tol > 0) {
		return invalidf("stiffness tolerance must be positive, got %g", c.Tol)
	}
	return nil
}

// Trajectory is the ordered (time, state) sequence produced by a run.
// Times and States always have the same length.
type Trajectory struct {
	Times  []float64
	States []float64
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times:  make([]float64, 0, capacity),
		States: make([]float64, 0, capacity),
	}
}

func (tr *Trajectory) Append(t, x float64) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, x)
}

func (tr *Trajectory) Len() int {
	return len(tr.States)
}

// Last returns the most recent state.
func (tr *Trajectory) Last() float64 {
	return tr.States[len(tr.States)-1]
}

func (tr *Trajectory) Clone() *Trajectory {
	c := &Trajectory{
		Times:  make([]float64, len(tr.Times)),
		States: make([]float64, len(tr.States)),
	}
	copy(c.Times, tr.Times)
	copy(c.States, tr.States)
	return c
}

// IsValid reports whether every state is finite.
func (tr *Trajectory) IsValid() bool {
	for _, v := range tr.States {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// StepInfo describes one accepted grid point.
type StepInfo struct {
	Step       int
	Time       float64
	State      float64
	Mode       Mode
	Iterations int
	Residual   float64
	Stiffness  float64
}

type Observer interface {
	OnStep(info StepInfo)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(info StepInfo)

func (f ObserverFunc) OnStep(info StepInfo) { f(info) }

type Integrator interface {
	Name() string
	// Integrate produces cfg.N grid points starting at (cfg.A, cfg.X0).
	// On failure the prefix produced so far is returned with the error.
	Integrate(ctx context.Context, f Func, cfg Config, obs Observer) (*Trajectory, error)
}

// Metric accumulates a scalar over the steps of one run.
type Metric interface {
	Name() string
	Observe(info StepInfo)
	Value() float64
	Reset()
}

type Result struct {
	Integrator  string
	Trajectory  *Trajectory
	Metrics     map[string]float64
	Evaluations int
	Elapsed     time.Duration
}

// System is a named right-hand side. Derive has the Func signature so a
// system's method value can be passed to any integrator.
type System interface {
	Name() string
	Derive(x, t float64) float64
	DefaultState() float64
}

// Solvable is implemented by systems with a closed-form solution through
// (a, x0).
type Solvable interface {
	Solution(t, a, x0 float64) float64
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
