package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/stiffode/internal/dynamo"
)

// Residuals returns the pointwise deviation of tr from the exact solution.
func Residuals(tr *dynamo.Trajectory, solution func(t float64) float64) []float64 {
	out := make([]float64, tr.Len())
	floats.SubTo(out, tr.States, Exact(tr, solution))
	return out
}

// PowerSpectrum returns |X_k|^2/n for k = 0..n/2 of a real signal of any
// length.
func PowerSpectrum(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	coeffs := fft.FFTReal(values)
	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(coeffs[k])
		ps[k] = a * a / float64(n)
	}
	return ps
}

// HighFrequencyShare is the fraction of non-DC power in the upper half of
// the spectrum. A step-to-step sign alternation, the signature of a
// parasitic root of an unstable multistep formula, drives it towards 1;
// smooth error stays near 0.
func HighFrequencyShare(values []float64) float64 {
	ps := PowerSpectrum(values)
	if len(ps) < 3 {
		return 0
	}

	total := floats.Sum(ps[1:])
	if total == 0 {
		return 0
	}
	return floats.Sum(ps[len(ps)/2+1:]) / total
}

// PeakFrequency returns the non-DC bin with the most power, converted to
// cycles per unit time for grid spacing h.
func PeakFrequency(values []float64, h float64) (freq float64, bin int) {
	ps := PowerSpectrum(values)
	if len(ps) < 2 {
		return 0, 0
	}
	bin = 1 + floats.MaxIdx(ps[1:])
	return float64(bin) / (float64(len(values)) * h), bin
}
