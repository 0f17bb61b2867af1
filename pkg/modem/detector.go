package modem

import (
	"fmt"
	"math"
	"slices"

	"github.com/charmbracelet/log"
)

const (
	// low-pass cutoff in multiples of the symbol rate
	cutoffPerSymbolRate = 8

	// the threshold ignores this fraction of samples at each extreme
	percentileDivisor = 32
)

type DetectorConfig struct {
	SampleRate   float64
	SymbolLength int     // nominal samples per symbol
	MinThreshold float64 // smallest threshold accepted as a real signal

	Logger *log.Logger
}

// Detector turns a complex signal into one on/off flag per sample.
type Detector struct {
	cfg    DetectorConfig
	filter FirstOrder
	logger *log.Logger
}

func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.SymbolLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSymbolLength, cfg.SymbolLength)
	}
	if cfg.MinThreshold < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, cfg.MinThreshold)
	}

	cutoff := cutoffPerSymbolRate * cfg.SampleRate / float64(cfg.SymbolLength)
	filter, err := LowPass(cutoff, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("symbol length %d: %w", cfg.SymbolLength, err)
	}

	return &Detector{
		cfg:    cfg,
		filter: filter,
		logger: loggerOr(cfg.Logger, "demodulation"),
	}, nil
}

func (d *Detector) SymbolLength() int {
	return d.cfg.SymbolLength
}

func (d *Detector) SampleRate() float64 {
	return d.cfg.SampleRate
}

type Detection struct {
	Symbols   []uint8   // one flag per input sample, empty on insufficient signal
	Threshold float64   // detected threshold, reported even when rejected
	Filtered  []float64 // low-passed magnitude
}

// Detect low-passes the magnitude of signal, estimates a threshold from it
// and binarizes. A threshold below the configured minimum yields an empty
// detection and ErrInsufficientSignal, meaning more samples are needed.
func (d *Detector) Detect(signal []complex128) (Detection, error) {
	filtered := d.filter.FiltFilt(Magnitude(signal))
	det := Detection{
		Threshold: EstimateThreshold(filtered),
		Filtered:  filtered,
	}

	if len(filtered) == 0 || det.Threshold < d.cfg.MinThreshold {
		d.logger.Debug("insufficient signal", "threshold", det.Threshold, "min", d.cfg.MinThreshold)
		return det, ErrInsufficientSignal
	}

	d.logger.Debug("signal", "threshold", det.Threshold, "samples", len(filtered))
	det.Symbols = Binarize(filtered, det.Threshold)
	return det, nil
}

// EstimateThreshold returns half the spread between the values at the 1/32
// and 31/32 positions of the sorted input.
func EstimateThreshold(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	lo := sorted[n/percentileDivisor]
	hi := sorted[n-(n+percentileDivisor-1)/percentileDivisor]
	return (hi - lo) / 2
}

func Binarize(values []float64, threshold float64) []uint8 {
	out := make([]uint8, len(values))
	for i, v := range values {
		if math.Abs(v) > threshold {
			out[i] = 1
		}
	}
	return out
}
