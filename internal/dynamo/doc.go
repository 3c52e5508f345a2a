// Package dynamo provides the core primitives for integrating scalar
// first-order ODEs of the form dx/dt = f(x, t).
//
// The package defines the types shared by every solver:
//
//   - [Func]: the right-hand side f(x, t)
//   - [Config]: interval, step count, initial state and stiffness tolerance
//   - [Trajectory]: the (time, state) sequence produced by a run
//   - [Integrator]: a fixed-step solver over a [Config]
//   - [Observer]: receives one [StepInfo] per accepted step
//   - [Simulator]: runs an integrator with observers and metrics attached
//
// # Example
//
//	f := func(x, t float64) float64 { return -2*x + math.Cos(t) }
//	sim := dynamo.New(integrators.NewRK4())
//	result, err := sim.Run(ctx, f, dynamo.Config{A: 0, B: 5, N: 100})
//
// # Thread Safety
//
// Integrators hold no per-run state, so a single instance may be shared by
// concurrent runs. Simulator instances are NOT thread-safe because their
// metrics accumulate; [Compare] builds one simulator per run.
package dynamo
