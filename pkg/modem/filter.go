package modem

import (
	"fmt"
	"math"
	"slices"
)

// samples of odd extension on each side of the input to FiltFilt, three
// times the number of filter coefficients
const filtfiltPad = 3 * 2

// FirstOrder is a first-order IIR section
//
//	y[n] = B0*x[n] + B1*x[n-1] - A1*y[n-1]
type FirstOrder struct {
	B0, B1 float64
	A1     float64
}

// LowPass designs a first-order Butterworth low-pass filter by bilinear
// transform.
func LowPass(cutoff, sampleRate float64) (FirstOrder, error) {
	if sampleRate <= 0 {
		return FirstOrder{}, ErrInvalidSampleRate
	}
	if cutoff <= 0 {
		return FirstOrder{}, fmt.Errorf("%w: cutoff %v Hz", ErrInvalidFrequency, cutoff)
	}
	if cutoff >= sampleRate/2 {
		return FirstOrder{}, fmt.Errorf("%w: %v Hz at %v S/s", ErrCutoffTooHigh, cutoff, sampleRate)
	}

	k := math.Tan(math.Pi * cutoff / sampleRate)
	return FirstOrder{
		B0: k / (1 + k),
		B1: k / (1 + k),
		A1: (k - 1) / (k + 1),
	}, nil
}

// steadyState is the filter state after a long run of unit input.
func (f FirstOrder) steadyState() float64 {
	return (f.B1 - f.A1*f.B0) / (1 + f.A1)
}

// Filter runs the filter over x starting from state z.
func (f FirstOrder) Filter(x []float64, z float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = f.B0*v + z
		z = f.B1*v - f.A1*y[i]
	}
	return y
}

// FiltFilt applies the filter forward and then backward, which cancels the
// phase response. The input is padded with its odd extension and each pass
// starts from the steady state scaled by its first sample, so the edges do
// not ring.
func (f FirstOrder) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	pad := min(filtfiltPad, n-1)

	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}

	zi := f.steadyState()
	y := f.Filter(ext, zi*ext[0])
	slices.Reverse(y)
	y = f.Filter(y, zi*y[0])
	slices.Reverse(y)

	return y[pad : pad+n]
}
