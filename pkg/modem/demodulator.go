package modem

import (
	"errors"

	"github.com/charmbracelet/log"
)

// Demodulator chains the receive pipeline: IQ conversion, envelope
// detection, run-length bit recovery, synchronization and decoding.
type Demodulator struct {
	Detector *Detector
	Sync     string     // synchronization pattern, e.g. "100000000"
	Table    *CodeTable // decode table, codeword -> symbol

	Logger *log.Logger
}

type Result struct {
	Detection
	Bits  string
	Frame Frame
}

// Demodulate returns as much of the result as could be computed. Soft
// failures (ErrInsufficientSignal, ErrPreambleNotFound) are returned as is so
// callers can test them with errors.Is and keep buffering; Bits is filled in
// whenever a signal was detected, even if the preamble was not.
func (d *Demodulator) Demodulate(iq []int8) (Result, error) {
	res := Result{Frame: Frame{Start: -1}}

	signal, err := ToComplex(iq)
	if err != nil {
		return res, err
	}

	res.Detection, err = d.Detector.Detect(signal)
	if err != nil {
		return res, err
	}

	res.Bits = RecoverBits(res.Symbols, d.Detector.SymbolLength())

	res.Frame, err = Synchronize(res.Bits, d.Sync, d.Table)
	if errors.Is(err, ErrPreambleNotFound) {
		loggerOr(d.Logger, "demodulation").Debug("preamble not found", "bits", len(res.Bits))
	}
	return res, err
}
