package metrics

import (
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// RootIterations totals the root-finder iterations spent by implicit steps.
type RootIterations struct {
	total int
}

func NewRootIterations() *RootIterations {
	return &RootIterations{}
}

func (r *RootIterations) Name() string { return "root_iterations" }

func (r *RootIterations) Observe(info dynamo.StepInfo) {
	r.total += info.Iterations
}

func (r *RootIterations) Value() float64 { return float64(r.total) }

func (r *RootIterations) Reset() { r.total = 0 }

// ImplicitShare is the fraction of post-bootstrap steps taken implicitly.
// Purely explicit schemes report 0.
type ImplicitShare struct {
	implicit int
	stepped  int
}

func NewImplicitShare() *ImplicitShare {
	return &ImplicitShare{}
}

func (m *ImplicitShare) Name() string { return "implicit_share" }

func (m *ImplicitShare) Observe(info dynamo.StepInfo) {
	switch info.Mode {
	case dynamo.ModeImplicit:
		m.implicit++
		m.stepped++
	case dynamo.ModeExplicit:
		m.stepped++
	}
}

func (m *ImplicitShare) Value() float64 {
	if m.stepped == 0 {
		return 0
	}
	return float64(m.implicit) / float64(m.stepped)
}

func (m *ImplicitShare) Reset() {
	m.implicit = 0
	m.stepped = 0
}

// PeakStiffness is the largest stiffness estimate reported by a switching
// integrator.
type PeakStiffness struct {
	peak float64
}

func NewPeakStiffness() *PeakStiffness {
	return &PeakStiffness{}
}

func (p *PeakStiffness) Name() string { return "peak_stiffness" }

func (p *PeakStiffness) Observe(info dynamo.StepInfo) {
	p.peak = math.Max(p.peak, info.Stiffness)
}

func (p *PeakStiffness) Value() float64 { return p.peak }

func (p *PeakStiffness) Reset() { p.peak = 0 }

// Defaults returns the metrics attached to every CLI run.
func Defaults() []dynamo.Metric {
	return []dynamo.Metric{
		NewStability(DefaultBound),
		NewRootIterations(),
		NewImplicitShare(),
		NewPeakStiffness(),
	}
}
