package dynamo

import (
	"context"
	"time"
)

type Simulator struct {
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(integrator Integrator) *Simulator {
	return &Simulator{
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Integrator() Integrator { return s.integrator }

// Run integrates f over cfg. When the integrator fails part-way, the result
// holds the trajectory prefix and the error is returned alongside it. A nil
// result means the configuration was rejected before stepping.
func (s *Simulator) Run(ctx context.Context, f Func, cfg Config) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}

	evals := 0
	counted := func(x, t float64) float64 {
		evals++
		return f(x, t)
	}

	start := time.Now()
	tr, err := s.integrator.Integrate(ctx, counted, cfg, ObserverFunc(s.observe))
	if tr == nil {
		return nil, err
	}

	result := &Result{
		Integrator:  s.integrator.Name(),
		Trajectory:  tr,
		Metrics:     make(map[string]float64, len(s.metrics)),
		Evaluations: evals,
		Elapsed:     time.Since(start),
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, err
}

func (s *Simulator) observe(info StepInfo) {
	for _, m := range s.metrics {
		m.Observe(info)
	}
	for _, obs := range s.observers {
		obs.OnStep(info)
	}
}
