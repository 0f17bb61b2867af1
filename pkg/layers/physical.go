package layers

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"ookmodem/pkg/device"
	"ookmodem/pkg/modem"
)

const (
	DefaultMinTokenLength = 4
	DefaultQueueSize      = 16
)

// Packet is a frame the receiver accepted.
type Packet struct {
	ID        uuid.UUID
	Time      time.Time // when the capture was decoded
	Start     int       // index of the synchronization pattern in Bits
	Threshold float64
	Tokens    []string
	Bits      string
}

// PhysicalLayer runs the modem over a streaming device.
//
// While idle every received block is checked on its own and the first block
// holding a '1' starts a capture, seeded with the block before it. Blocks are
// then accumulated until CaptureLength values are buffered and the whole
// capture is decoded. The capture is always filtered from scratch; the
// pipeline keeps no state between calls.
//
// Packets queued with Send are written into the device's output blocks, the
// rest of each block is silence.
type PhysicalLayer struct {
	Device      device.Device
	Modulator   *modem.Modulator // nil for a receive only layer
	Demodulator *modem.Demodulator

	CaptureLength  int           // IQ values decoded per capture
	MinTokenLength int           // a frame is kept when a token is longer, 0 selects DefaultMinTokenLength
	Timeout        time.Duration // bound on every Receive, 0 waits forever
	QueueSize      int           // packets buffered each way, 0 selects DefaultQueueSize

	Logger  *log.Logger
	Metrics *Metrics

	logger  *log.Logger
	blocks  chan []int8
	packets chan Packet
	outputs chan *transmission
	flush   chan chan struct{}
	current *transmission
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup

	// receive loop state
	prev, capture []int8
}

type transmission struct {
	samples []int8
	sent    chan struct{}
}

func (p *PhysicalLayer) Open() error {
	switch {
	case p.Device == nil:
		return ErrNoDevice
	case p.Demodulator == nil || p.Demodulator.Detector == nil:
		return ErrNoDemodulator
	case p.CaptureLength <= 0 || p.CaptureLength%2 != 0:
		return ErrInvalidCaptureLength
	}

	if p.MinTokenLength == 0 {
		p.MinTokenLength = DefaultMinTokenLength
	}
	if p.QueueSize == 0 {
		p.QueueSize = DefaultQueueSize
	}
	if p.Metrics == nil {
		p.Metrics = NewMetrics(nil)
	}
	p.logger = p.Logger
	if p.logger == nil {
		p.logger = log.Default().WithPrefix("physical")
	}

	p.blocks = make(chan []int8, p.QueueSize)
	p.packets = make(chan Packet, p.QueueSize)
	p.outputs = make(chan *transmission, p.QueueSize)
	p.flush = make(chan chan struct{})
	p.done = make(chan struct{})

	p.wg.Add(1)
	go p.receiveLoop()

	if err := p.Device.Start(p.callback); err != nil {
		close(p.done)
		p.wg.Wait()
		p.done = nil
		return err
	}
	return nil
}

// Close stops the device and the receiver. Pending transmissions are
// abandoned.
func (p *PhysicalLayer) Close() {
	if p.done == nil {
		return
	}
	p.once.Do(func() {
		close(p.done)
		p.Device.Stop()
		p.wg.Wait()
	})
}

// SendAsync generates the waveform of packet and queues it. The returned
// channel is closed once the last sample has been handed to the device.
// Unknown symbols are skipped: the packet is still queued and the returned
// error lists them.
func (p *PhysicalLayer) SendAsync(packet string) (<-chan struct{}, error) {
	if p.done == nil {
		return nil, ErrNotOpen
	}
	if p.Modulator == nil {
		return nil, ErrNoModulator
	}
	select {
	case <-p.done:
		return nil, ErrClosed
	default:
	}

	samples, diag := p.Modulator.Generate(packet)
	if n := countUnknown(diag); n > 0 {
		p.Metrics.UnknownSymbols.Add(float64(n))
	}

	tx := &transmission{samples: samples, sent: make(chan struct{})}
	select {
	case p.outputs <- tx:
		return tx.sent, diag
	case <-p.done:
		return nil, ErrClosed
	}
}

// Send queues packet and waits until it has been transmitted.
func (p *PhysicalLayer) Send(packet string) error {
	sent, err := p.SendAsync(packet)
	if sent == nil {
		return err
	}
	select {
	case <-sent:
		return err
	case <-p.done:
		return ErrClosed
	}
}

// ReceiveAsync returns the channel accepted packets are delivered on.
func (p *PhysicalLayer) ReceiveAsync() <-chan Packet {
	return p.packets
}

// Receive waits for the next packet, ctx or Timeout, whichever ends first.
func (p *PhysicalLayer) Receive(ctx context.Context) (Packet, error) {
	if p.done == nil {
		return Packet{}, ErrNotOpen
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	select {
	case pkt := <-p.packets:
		return pkt, nil
	case <-ctx.Done():
		return Packet{}, ctx.Err()
	case <-p.done:
		return Packet{}, ErrClosed
	}
}

func (p *PhysicalLayer) callback(in, out []int8) {
	select {
	case p.blocks <- slices.Clone(in):
	case <-p.done:
	}
	p.write(out)
}

// write drains the transmit queue into out and zero-fills the rest.
func (p *PhysicalLayer) write(out []int8) {
	i := 0
	for i < len(out) {
		if p.current == nil {
			select {
			case p.current = <-p.outputs:
			default:
			}
			if p.current == nil {
				break
			}
		}

		n := copy(out[i:], p.current.samples)
		p.current.samples = p.current.samples[n:]
		i += n

		if len(p.current.samples) == 0 {
			close(p.current.sent)
			p.current = nil
		}
	}
	clear(out[i:])
}

// Flush waits until every block the device has delivered so far has been
// processed. Use it once the device has stopped producing, e.g. after
// device.File.Done, before draining ReceiveAsync.
func (p *PhysicalLayer) Flush(ctx context.Context) error {
	if p.done == nil {
		return ErrNotOpen
	}

	ack := make(chan struct{})
	select {
	case p.flush <- ack:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrClosed
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrClosed
	}
}

func (p *PhysicalLayer) receiveLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			return
		case block := <-p.blocks:
			p.process(block)
		case ack := <-p.flush:
			for pending := true; pending; {
				select {
				case block := <-p.blocks:
					p.process(block)
				default:
					pending = false
				}
			}
			close(ack)
		}
	}
}

func (p *PhysicalLayer) process(block []int8) {
	p.Metrics.Blocks.Inc()

	if p.capture == nil {
		triggered := p.triggered(block)
		if triggered {
			p.Metrics.Triggers.Inc()
			p.logger.Debug("triggered", "pretrigger", len(p.prev))
			p.capture = make([]int8, 0, p.CaptureLength+len(block))
			p.capture = append(p.capture, p.prev...)
		}
		p.prev = block
		if !triggered {
			return
		}
	}

	p.capture = append(p.capture, block...)
	p.prev = block
	if len(p.capture) >= p.CaptureLength {
		p.decode(p.capture)
		p.capture = nil
	}
}

// triggered reports whether block alone demodulates to at least one '1'.
func (p *PhysicalLayer) triggered(block []int8) bool {
	signal, err := modem.ToComplex(block)
	if err != nil {
		p.logger.Warn("dropping block", "err", err)
		return false
	}

	det, err := p.Demodulator.Detector.Detect(signal)
	if err != nil {
		p.Metrics.InsufficientSignal.Inc()
		return false
	}

	bits := modem.RecoverBits(det.Symbols, p.Demodulator.Detector.SymbolLength())
	return strings.ContainsRune(bits, modem.SymbolOne)
}

func (p *PhysicalLayer) decode(capture []int8) {
	p.Metrics.Captures.Inc()

	res, err := p.Demodulator.Demodulate(capture)
	p.Metrics.Threshold.Set(res.Threshold)
	switch {
	case errors.Is(err, modem.ErrInsufficientSignal):
		p.Metrics.InsufficientSignal.Inc()
		p.logger.Debug("capture dropped", "threshold", res.Threshold)
		return
	case errors.Is(err, modem.ErrPreambleNotFound):
		p.Metrics.PreambleMisses.Inc()
		p.logger.Info("preamble not found", "bits", len(res.Bits))
		return
	case err != nil:
		p.logger.Error("demodulate", "err", err)
		return
	}

	if !p.accepted(res.Frame.Tokens) {
		p.logger.Debug("frame rejected", "tokens", res.Frame.Tokens)
		return
	}

	if p.logger.GetLevel() <= log.DebugLevel {
		if signal, err := modem.ToComplex(capture); err == nil {
			p.logger.Debug("carrier", "offset", modem.PeakFrequency(signal, p.Demodulator.Detector.SampleRate()))
		}
	}

	pkt := Packet{
		ID:        uuid.New(),
		Time:      time.Now(),
		Start:     res.Frame.Start,
		Threshold: res.Threshold,
		Tokens:    res.Frame.Tokens,
		Bits:      res.Bits,
	}
	p.Metrics.Packets.Inc()
	p.logger.Info("packet", "id", pkt.ID, "threshold", pkt.Threshold, "tokens", len(pkt.Tokens))

	select {
	case p.packets <- pkt:
	default:
		p.logger.Warn("receive queue full, dropping packet", "id", pkt.ID)
	}
}

func (p *PhysicalLayer) accepted(tokens []string) bool {
	return slices.ContainsFunc(tokens, func(t string) bool {
		return len(t) > p.MinTokenLength
	})
}

func countUnknown(err error) int {
	if err == nil {
		return 0
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	n := 0
	for _, e := range errs {
		var unknown *modem.UnknownSymbolError
		if errors.As(e, &unknown) {
			n++
		}
	}
	return n
}
