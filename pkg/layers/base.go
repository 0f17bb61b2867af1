package layers

import (
	"context"
	"errors"
)

var (
	ErrClosed               = errors.New("layer closed")
	ErrNotOpen              = errors.New("layer not open")
	ErrNoDevice             = errors.New("no device")
	ErrNoDemodulator        = errors.New("no demodulator")
	ErrNoModulator          = errors.New("no modulator, the layer is receive only")
	ErrInvalidCaptureLength = errors.New("capture length must be a positive even number")
)

// Transmitter sends packets over {'1', '0', 'p'}.
type Transmitter interface {
	Send(packet string) error
}

// Receiver hands out decoded packets.
type Receiver interface {
	Receive(ctx context.Context) (Packet, error)
}

var (
	_ Transmitter = (*PhysicalLayer)(nil)
	_ Receiver    = (*PhysicalLayer)(nil)
)
