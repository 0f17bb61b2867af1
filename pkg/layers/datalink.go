package layers

import (
	"context"
	"fmt"

	"ookmodem/pkg/modem"
)

// DataLinkLayer frames messages for the physical layer: each message is
// encoded with Encoding and sent between pauses behind the synchronization
// pattern the demodulator looks for.
type DataLinkLayer struct {
	*PhysicalLayer
	Encoding *modem.CodeTable
}

// Frame returns the packet carrying message.
func (l *DataLinkLayer) Frame(message string) string {
	return Frame(l.Demodulator.Sync, message, l.Encoding)
}

// Frame encodes message and puts it between pauses behind sync. The zero
// after the payload closes the last token even when pauses are shorter than
// a symbol.
func Frame(sync, message string, encoding *modem.CodeTable) string {
	return string(modem.SymbolPause) +
		sync +
		modem.Encode(message, encoding) +
		string(modem.SymbolZero) +
		string(modem.SymbolPause)
}

func (l *DataLinkLayer) SendAsync(message string) (<-chan struct{}, error) {
	return l.PhysicalLayer.SendAsync(l.Frame(message))
}

func (l *DataLinkLayer) Send(message string) error {
	return l.PhysicalLayer.Send(l.Frame(message))
}

// Receive returns the message of the next packet.
func (l *DataLinkLayer) Receive(ctx context.Context) (string, error) {
	pkt, err := l.PhysicalLayer.Receive(ctx)
	if err != nil {
		return "", err
	}
	msg, ok := Message(pkt)
	if !ok {
		return "", fmt.Errorf("packet %s: no tokens", pkt.ID)
	}
	return msg, nil
}

// Message returns the longest token of pkt, the first one on ties. Shorter
// tokens are fragments of the synchronization pattern or noise.
func Message(pkt Packet) (string, bool) {
	best := -1
	for i, t := range pkt.Tokens {
		if best < 0 || len(t) > len(pkt.Tokens[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return pkt.Tokens[best], true
}
