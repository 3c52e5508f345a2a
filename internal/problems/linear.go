package problems

import (
	"fmt"
	"math"
)

// Linear is dx/dt = lambda*x. A negative lambda gives exponential decay.
type Linear struct {
	lambda float64
}

func NewDecay() *Linear {
	return &Linear{lambda: -1}
}

func (p *Linear) Name() string {
	if p.lambda < 0 {
		return "decay"
	}
	return "linear"
}

func (p *Linear) DefaultState() float64             { return 1 }
func (p *Linear) Derive(x, _ float64) float64       { return p.lambda * x }
func (p *Linear) Solution(t, a, x0 float64) float64 { return x0 * math.Exp(p.lambda*(t-a)) }

func (p *Linear) GetParams() map[string]float64 {
	return map[string]float64{"lambda": p.lambda}
}

func (p *Linear) SetParam(name string, value float64) error {
	if name != "lambda" {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	p.lambda = value
	return nil
}

// Constant is dx/dt = rate. Every consistent scheme reproduces it exactly.
type Constant struct {
	rate float64
}

func NewConstant() *Constant {
	return &Constant{rate: 1}
}

func (p *Constant) Name() string                      { return "constant" }
func (p *Constant) DefaultState() float64             { return 0 }
func (p *Constant) Derive(_, _ float64) float64       { return p.rate }
func (p *Constant) Solution(t, a, x0 float64) float64 { return x0 + p.rate*(t-a) }

func (p *Constant) GetParams() map[string]float64 {
	return map[string]float64{"rate": p.rate}
}

func (p *Constant) SetParam(name string, value float64) error {
	if name != "rate" {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	p.rate = value
	return nil
}
