package modem

// Encoder produces the transmit waveform for a packet.
type Encoder interface {
	Generate(packet string) ([]int8, error)
}

// Decoder runs the receive pipeline over a captured IQ buffer.
type Decoder interface {
	Demodulate(iq []int8) (Result, error)
}

var (
	_ Encoder = (*Modulator)(nil)
	_ Decoder = (*Demodulator)(nil)
)
