package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// Collector exports step events as prometheus series. It produces
// one dynamo.Observer per integrator name via For.
type Collector struct {
	registry   *prometheus.Registry
	steps      *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	stiffness  *prometheus.GaugeVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stiffode",
			Name:      "steps_total",
			Help:      "Accepted grid points by integrator and step mode.",
		}, []string{"integrator", "mode"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stiffode",
			Name:      "rootfind_iterations",
			Help:      "Root-finder iterations per implicit step.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 20, 50},
		}, []string{"integrator"}),
		stiffness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "stiffode",
			Name:      "stiffness_estimate",
			Help:      "Most recent stiffness estimate of a switching integrator.",
		}, []string{"integrator"}),
	}
	c.registry.MustRegister(c.steps, c.iterations, c.stiffness)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// For returns an observer that labels every step with integrator.
func (c *Collector) For(integrator string) dynamo.Observer {
	return dynamo.ObserverFunc(func(info dynamo.StepInfo) {
		c.steps.WithLabelValues(integrator, info.Mode.String()).Inc()
		if info.Mode == dynamo.ModeImplicit {
			c.iterations.WithLabelValues(integrator).Observe(float64(info.Iterations))
		}
		if info.Stiffness > 0 {
			c.stiffness.WithLabelValues(integrator).Set(info.Stiffness)
		}
	})
}

// Sample is one flattened series value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers counters and gauges; histograms are reported as their
// sample count and sum.
func (c *Collector) Snapshot() ([]Sample, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				out = append(out, Sample{Name: mf.GetName(), Labels: labels, Value: m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				out = append(out, Sample{Name: mf.GetName(), Labels: labels, Value: m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				out = append(out,
					Sample{Name: mf.GetName() + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: mf.GetName() + "_sum", Labels: labels, Value: h.GetSampleSum()},
				)
			}
		}
	}
	return out, nil
}
