package problems

import "math"

// Quadratic is dx/dt = -x^2 with solution x0 / (1 + x0*(t-a)). The solution
// blows up in finite time for negative x0, so it is a useful divergence test.
type Quadratic struct{}

func NewQuadratic() *Quadratic { return &Quadratic{} }

func (p *Quadratic) Name() string          { return "quadratic" }
func (p *Quadratic) DefaultState() float64 { return 1 }

func (p *Quadratic) Derive(x, _ float64) float64 {
	return -x * x
}

func (p *Quadratic) Solution(t, a, x0 float64) float64 {
	return x0 / (1 + x0*(t-a))
}

// Growth is dx/dt = x + t, whose solution grows like exp(t).
type Growth struct{}

func NewGrowth() *Growth { return &Growth{} }

func (p *Growth) Name() string          { return "growth" }
func (p *Growth) DefaultState() float64 { return 0 }

func (p *Growth) Derive(x, t float64) float64 {
	return x + t
}

func (p *Growth) Solution(t, a, x0 float64) float64 {
	return -t - 1 + (x0+a+1)*math.Exp(t-a)
}
