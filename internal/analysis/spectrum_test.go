package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/problems"
	"github.com/san-kum/stiffode/internal/rootfind"
)

func sine(n, cycles int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(cycles*i) / float64(n))
	}
	return out
}

func TestPowerSpectrumPeak(t *testing.T) {
	ps := PowerSpectrum(sine(64, 5))
	require.Len(t, ps, 33)

	freq, bin := PeakFrequency(sine(64, 5), 0.1)
	assert.Equal(t, 5, bin)
	assert.InDelta(t, 5/6.4, freq, 1e-12)
	assert.InDelta(t, 16.0, ps[5], 1e-9)

	assert.Nil(t, PowerSpectrum(nil))
}

func TestPowerSpectrumOddLength(t *testing.T) {
	ps := PowerSpectrum(sine(45, 4))
	require.Len(t, ps, 23)

	_, bin := PeakFrequency(sine(45, 4), 1)
	assert.Equal(t, 4, bin)
}

func TestHighFrequencyShare(t *testing.T) {
	alt := make([]float64, 64)
	for i := range alt {
		alt[i] = 1 - 2*float64(i%2)
	}
	assert.InDelta(t, 1.0, HighFrequencyShare(alt), 1e-9)
	assert.InDelta(t, 0.0, HighFrequencyShare(sine(64, 3)), 1e-9)
	assert.Zero(t, HighFrequencyShare(make([]float64, 16)))
	assert.Zero(t, HighFrequencyShare([]float64{1, 2}))
}

func TestResiduals(t *testing.T) {
	tr := &dynamo.Trajectory{Times: []float64{0, 1, 2}, States: []float64{1, 1, 1}}
	assert.Equal(t, []float64{1, 0, -1}, Residuals(tr, func(t float64) float64 { return t }))
}

// An explicit two-step run outside its stability region leaves a
// sign-alternating residual; the implicit run on the same grid does not.
func TestHighFrequencyShareFlagsParasiticRoot(t *testing.T) {
	p := problems.NewStiff()
	cfg := dynamo.Config{A: 0, B: 5, N: 200, X0: 1, Tol: 1e-3}
	exact := func(t float64) float64 { return p.Solution(t, cfg.A, cfg.X0) }

	ab2, err := integrators.NewAB2().Integrate(context.Background(), p.Derive, cfg, nil)
	require.NoError(t, err)
	bdf2, err := integrators.NewBDF2(rootfind.NewNewton()).Integrate(context.Background(), p.Derive, cfg, nil)
	require.NoError(t, err)

	assert.Greater(t, HighFrequencyShare(Residuals(ab2, exact)), 0.8)
	assert.Less(t, HighFrequencyShare(Residuals(bdf2, exact)), 0.3)
}
