package modem

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PeakFrequency returns the frequency in Hz of the strongest FFT bin of
// signal, negative below the center frequency.
func PeakFrequency(signal []complex128, sampleRate float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	fft := fourier.NewCmplxFFT(len(signal))
	coeff := fft.Coefficients(nil, signal)

	peak, power := 0, -1.0
	for i, c := range coeff {
		if p := cmplx.Abs(c); p > power {
			peak, power = i, p
		}
	}
	return fft.Freq(peak) * sampleRate
}
