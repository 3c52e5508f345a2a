package problems

import (
	"fmt"
	"math"
)

// Forced implements the linearly damped, cosine-driven equation
//
//	dx/dt = -rate*x + gain*cos(t)
//
// With rate 2 and gain 1 it is the classic comparison problem; with a large
// rate and gain = rate it is stiff: the solution tracks cos(t) closely and
// any departure decays like exp(-rate*t).
type Forced struct {
	name string
	rate float64
	gain float64
}

func NewCosine() *Forced {
	return &Forced{name: "cosine", rate: 2, gain: 1}
}

func NewStiff() *Forced {
	return &Forced{name: "stiff", rate: 50, gain: 50}
}

func (p *Forced) Name() string          { return p.name }
func (p *Forced) DefaultState() float64 { return 0 }

func (p *Forced) Derive(x, t float64) float64 {
	return -p.rate*x + p.gain*math.Cos(t)
}

func (p *Forced) Solution(t, a, x0 float64) float64 {
	particular := func(t float64) float64 {
		d := 1 + p.rate*p.rate
		return p.gain * (p.rate*math.Cos(t) + math.Sin(t)) / d
	}
	return particular(t) + (x0-particular(a))*math.Exp(-p.rate*(t-a))
}

// GetParams implements dynamo.Configurable
func (p *Forced) GetParams() map[string]float64 {
	return map[string]float64{
		"rate": p.rate,
		"gain": p.gain,
	}
}

// SetParam implements dynamo.Configurable
func (p *Forced) SetParam(name string, value float64) error {
	switch name {
	case "rate":
		p.rate = value
	case "gain":
		p.gain = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
