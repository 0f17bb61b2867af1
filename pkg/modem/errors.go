package modem

import (
	"errors"
	"fmt"
)

// Configuration errors. These are returned by constructors and are never
// recoverable by retrying with more samples.
var (
	ErrInvalidSampleRate   = errors.New("sample rate must be positive")
	ErrInvalidFrequency    = errors.New("carrier frequency must be positive")
	ErrInvalidAmplitude    = errors.New("amplitude must be within [0, 127]")
	ErrEmptyCarrier        = errors.New("carrier table has zero length")
	ErrInvalidSymbolLength = errors.New("symbol length must be positive")
	ErrInvalidPauseLength  = errors.New("pause length must not be negative")
	ErrSymbolNotMultiple   = errors.New("symbol length is not a multiple of the carrier length")
	ErrInvalidThreshold    = errors.New("minimum threshold must not be negative")
	ErrCutoffTooHigh       = errors.New("low-pass cutoff must be below the Nyquist frequency")
	ErrInvalidAlphabet     = errors.New("alphabet size and subsequence length must be positive")
	ErrSequenceTooLong     = errors.New("de Bruijn sequence length overflows int")

	ErrEmptyKey        = errors.New("code table key is empty")
	ErrEmptyValue      = errors.New("code table value is empty")
	ErrDuplicateKey    = errors.New("duplicate code table key")
	ErrInvalidCodeword = errors.New("codeword must only contain '0' and '1'")
	ErrEmptySync       = errors.New("synchronization pattern is empty")

	ErrOddLength = errors.New("IQ buffer has odd length")
)

// Soft failures. The result that comes with them is valid but empty and the
// caller is expected to keep buffering or give up on the capture.
var (
	ErrInsufficientSignal = errors.New("insufficient signal")
	ErrPreambleNotFound   = errors.New("preamble not found")
)

// UnknownSymbolError reports a packet character that has no waveform.
type UnknownSymbolError struct {
	Symbol rune
	Index  int
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q at index %d", e.Symbol, e.Index)
}
