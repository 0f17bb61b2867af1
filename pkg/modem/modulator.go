package modem

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
)

const DefaultAmplitude = 127

// Packet alphabet understood by Modulator.Generate.
const (
	SymbolOne   = '1'
	SymbolZero  = '0'
	SymbolPause = 'p'
	SymbolSkip  = ' '
)

type ModulatorConfig struct {
	SampleRate   float64
	CarrierFreq  float64
	Amplitude    float64 // zero selects DefaultAmplitude
	SymbolLength int     // complex samples per '1' or '0'
	PauseLength  int     // complex samples per 'p'

	Logger *log.Logger
}

// Modulator turns packets over {'1', '0', 'p'} into interleaved IQ samples.
// All waveform segments are computed once by NewModulator and never change.
type Modulator struct {
	carrier Carrier
	symbols map[rune][]int8
	logger  *log.Logger
}

func NewModulator(cfg ModulatorConfig) (*Modulator, error) {
	if cfg.SymbolLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSymbolLength, cfg.SymbolLength)
	}
	if cfg.PauseLength < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPauseLength, cfg.PauseLength)
	}

	amplitude := cfg.Amplitude
	if amplitude == 0 {
		amplitude = DefaultAmplitude
	}

	carrier, err := CarrierConfig{
		SampleRate: cfg.SampleRate,
		Freq:       cfg.CarrierFreq,
		Amplitude:  amplitude,
	}.New()
	if err != nil {
		return nil, err
	}

	if cfg.SymbolLength%carrier.Len() != 0 {
		return nil, fmt.Errorf("%w: symbol length %d, carrier length %d",
			ErrSymbolNotMultiple, cfg.SymbolLength, carrier.Len())
	}

	return &Modulator{
		carrier: carrier,
		symbols: map[rune][]int8{
			SymbolOne:   tile(carrier, cfg.SymbolLength/carrier.Len()),
			SymbolZero:  make([]int8, 2*cfg.SymbolLength),
			SymbolPause: make([]int8, 2*cfg.PauseLength),
		},
		logger: loggerOr(cfg.Logger, "modulation"),
	}, nil
}

// Carrier returns a copy of the carrier lookup table.
func (m *Modulator) Carrier() Carrier {
	return slices.Clone(m.carrier)
}

// Symbol returns a copy of the waveform segment for r.
func (m *Modulator) Symbol(r rune) ([]int8, bool) {
	segment, ok := m.symbols[r]
	if !ok {
		return nil, false
	}
	return slices.Clone(segment), true
}

// Duration returns the number of IQ values Generate emits for packet.
func (m *Modulator) Duration(packet string) int {
	n := 0
	for _, r := range packet {
		n += len(m.symbols[r])
	}
	return n
}

// Generate concatenates the waveform of every symbol in packet. Spaces are
// skipped silently. Any other unknown character is skipped too, and reported
// as an *UnknownSymbolError in the returned error; the waveform is still
// complete for the supported symbols, so a non-nil error is not fatal.
func (m *Modulator) Generate(packet string) ([]int8, error) {
	payload := make([]int8, 0, m.Duration(packet))

	var errs []error
	for i, r := range packet {
		if segment, ok := m.symbols[r]; ok {
			payload = append(payload, segment...)
			continue
		}
		if r == SymbolSkip {
			continue
		}
		m.logger.Warn("unknown symbol", "symbol", string(r), "index", i)
		errs = append(errs, &UnknownSymbolError{Symbol: r, Index: i})
	}

	return payload, errors.Join(errs...)
}
