package modem

import (
	"fmt"
	"math"
	"math/cmplx"
)

// phase offset of the first carrier sample
const carrierPhase = math.Pi / 2

type CarrierConfig struct {
	SampleRate float64
	Freq       float64
	Amplitude  float64
}

// Carrier holds one period of the complex carrier as interleaved I/Q values.
type Carrier []int8

// New computes round(SampleRate/Freq) samples of
// Amplitude * exp(-j(2*pi*i*Freq/SampleRate + pi/2)), each rounded to the
// nearest integer.
func (p CarrierConfig) New() (Carrier, error) {
	if p.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if p.Freq <= 0 {
		return nil, ErrInvalidFrequency
	}
	if p.Amplitude < 0 || p.Amplitude > math.MaxInt8 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmplitude, p.Amplitude)
	}

	size := int(math.RoundToEven(p.SampleRate / p.Freq))
	if size == 0 {
		return nil, fmt.Errorf("%w: %v Hz at %v S/s", ErrEmptyCarrier, p.Freq, p.SampleRate)
	}

	carrier := make(Carrier, 0, 2*size)
	for i := 0; i < size; i++ {
		phi := 2*math.Pi*float64(i)*p.Freq/p.SampleRate + carrierPhase
		s := complex(p.Amplitude, 0) * cmplx.Exp(complex(0, -phi))
		carrier = append(carrier, roundInt8(real(s)), roundInt8(imag(s)))
	}
	return carrier, nil
}

// Len returns the number of complex samples in one carrier period.
func (c Carrier) Len() int {
	return len(c) / 2
}

func roundInt8(v float64) int8 {
	return int8(math.RoundToEven(v))
}
