package metrics

import (
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// DefaultBound is the magnitude above which a state counts as blown up for
// the CLI's stability report. It sits far below dynamo.DivergenceBound so
// that an unstable explicit run shows up here long before the integrator
// aborts it.
const DefaultBound = 1e6

// Stability is the share of accepted grid points with |x| <= bound. The
// initial point counts. A run stopped by the divergence guard is scored
// on its prefix only, so its value can still be 1 when the guard tripped
// on the first out-of-range state. Non-finite states always count as
// unbounded.
type Stability struct {
	bound    float64
	bounded  int
	observed int
}

// NewStability returns a Stability metric. A bound that is not positive
// falls back to dynamo.DivergenceBound.
func NewStability(bound float64) *Stability {
	if !(bound > 0) {
		bound = dynamo.DivergenceBound
	}
	return &Stability{bound: bound}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Bound() float64 { return s.bound }

func (s *Stability) Observe(info dynamo.StepInfo) {
	s.observed++
	if !math.IsNaN(info.State) && math.Abs(info.State) <= s.bound {
		s.bounded++
	}
}

// Value is 1 for a run with no observed points.
func (s *Stability) Value() float64 {
	if s.observed == 0 {
		return 1
	}
	return float64(s.bounded) / float64(s.observed)
}

func (s *Stability) Reset() {
	s.bounded = 0
	s.observed = 0
}
