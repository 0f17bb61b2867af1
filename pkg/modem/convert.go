package modem

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ToComplex converts interleaved signed 8-bit I/Q values into complex
// samples. The mean of each rail is removed separately before pairing.
func ToComplex(buf []int8) ([]complex128, error) {
	if len(buf)%2 != 0 {
		return nil, fmt.Errorf("%w: %d values", ErrOddLength, len(buf))
	}

	n := len(buf) / 2
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range n {
		re[i] = float64(buf[2*i])
		im[i] = float64(buf[2*i+1])
	}

	if n > 0 {
		floats.AddConst(-stat.Mean(re, nil), re)
		floats.AddConst(-stat.Mean(im, nil), im)
	}

	signal := make([]complex128, n)
	for i := range signal {
		signal[i] = complex(re[i], im[i])
	}
	return signal, nil
}

// Magnitude returns |s| for every sample.
func Magnitude(signal []complex128) []float64 {
	out := make([]float64, len(signal))
	for i, s := range signal {
		out[i] = cmplx.Abs(s)
	}
	return out
}
