package capture

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/gopacket"
	gplayers "github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/lestrrat-go/strftime"

	"ookmodem/pkg/layers"
	"ookmodem/pkg/modem"
)

// LinkTypeOOK is DLT_USER0, reserved by pcap for private link layers.
const LinkTypeOOK = gplayers.LinkType(147)

const snapLen = 65535

// PcapWriter stores decoded packets in a pcap file, one record per token.
// Tokens made of '0' and '1' are packed MSB first, anything else is written
// as is.
type PcapWriter struct {
	w      *pcapgo.Writer
	closer io.Closer
	name   string
}

func NewPcapWriter(w io.Writer) (*PcapWriter, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, LinkTypeOOK); err != nil {
		return nil, fmt.Errorf("pcap header: %w", err)
	}
	return &PcapWriter{w: pw}, nil
}

// OpenPcapFile creates a pcap file whose name is the strftime pattern
// formatted at t, e.g. "ook-%Y%m%d-%H%M%S.pcap".
func OpenPcapFile(pattern string, t time.Time) (*PcapWriter, error) {
	name, err := strftime.Format(pattern, t)
	if err != nil {
		return nil, fmt.Errorf("pcap file pattern %q: %w", pattern, err)
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	pw, err := NewPcapWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	pw.closer = f
	pw.name = name
	return pw, nil
}

// Name is the file name chosen by OpenPcapFile.
func (p *PcapWriter) Name() string {
	return p.name
}

func (p *PcapWriter) WritePacket(pkt layers.Packet) error {
	for i, token := range pkt.Tokens {
		data := tokenBytes(token)
		ci := gopacket.CaptureInfo{
			Timestamp:     pkt.Time,
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := p.w.WritePacket(ci, data); err != nil {
			return fmt.Errorf("packet %s token %d: %w", pkt.ID, i, err)
		}
	}
	return nil
}

func (p *PcapWriter) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

func tokenBytes(token string) []byte {
	if strings.Trim(token, "01") == "" {
		return modem.PackBits(token)
	}
	return []byte(token)
}
