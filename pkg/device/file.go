package device

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

// File replays a recording as the received signal and records everything
// transmitted. Recordings are raw interleaved int8 I/Q as written by
// hackrf_transfer, zstd compressed when the name ends in ".zst".
type File struct {
	Input      string  // recording to replay, empty for silence
	Output     string  // recording to write, empty to discard
	SampleRate float64 // complex samples per second, 0 means no limit
	BlockSize  int     // IQ values per block, 0 selects BufferSize
	Trailer    int     // silent blocks delivered after the recording ends

	Logger *log.Logger

	in   io.ReadCloser
	out  io.WriteCloser
	done chan struct{}
	eof  chan struct{}
	wg   sync.WaitGroup

	mu        sync.Mutex
	streamErr error
	closeErr  error
}

func (d *File) Start(callback func(in, out []int8)) error {
	if d.done != nil {
		return ErrAlreadyStarted
	}
	size, err := blockSize(d.BlockSize)
	if err != nil {
		return err
	}
	logger := d.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("device")
	}

	d.in, d.out = nil, nil
	d.mu.Lock()
	d.streamErr, d.closeErr = nil, nil
	d.mu.Unlock()
	if d.Input != "" {
		if d.in, err = openIQ(d.Input); err != nil {
			return err
		}
	}
	if d.Output != "" {
		if d.out, err = createIQ(d.Output); err != nil {
			if d.in != nil {
				d.in.Close()
			}
			return err
		}
	}

	d.done = make(chan struct{})
	d.eof = make(chan struct{})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(d.eof)

		in := make([]int8, size)
		out := make([]int8, size)
		raw := make([]byte, size)
		trailer := d.Trailer
		exhausted := false

		run(d.done, blockInterval(d.SampleRate, size), func() bool {
			clear(in)
			if d.in != nil && !exhausted {
				n, err := io.ReadFull(d.in, raw)
				switch {
				case err == nil:
				case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
					exhausted = true
				default:
					logger.Error("read recording", "file", d.Input, "err", err)
					d.fail(fmt.Errorf("read %s: %w", d.Input, err))
					return false
				}
				n -= n % 2
				for i := range n {
					in[i] = int8(raw[i])
				}
				if n == 0 && exhausted {
					if trailer == 0 {
						return false
					}
					trailer--
				}
			} else if exhausted {
				if trailer == 0 {
					return false
				}
				trailer--
			}

			clear(out)
			callback(in, out)

			if d.out != nil {
				for i, v := range out {
					raw[i] = byte(v)
				}
				if _, err := d.out.Write(raw); err != nil {
					logger.Error("write recording", "file", d.Output, "err", err)
					d.fail(fmt.Errorf("write %s: %w", d.Output, err))
					return false
				}
			}
			return true
		})
		logger.Debug("stream ended", "input", d.Input)
	}()
	return nil
}

// Done is closed once the recording and its trailer have been delivered, or
// the device stopped.
func (d *File) Done() <-chan struct{} {
	return d.eof
}

// Stop halts the stream and closes both recordings.
func (d *File) Stop() {
	if d.done == nil {
		return
	}
	close(d.done)
	d.wg.Wait()
	d.done = nil

	var errs []error
	if d.in != nil {
		errs = append(errs, d.in.Close())
	}
	if d.out != nil {
		errs = append(errs, d.out.Close())
	}
	d.mu.Lock()
	d.closeErr = errors.Join(errs...)
	d.mu.Unlock()
}

// Err reports why the stream ended early, once Done is closed, together with
// any error from closing the recordings in the last Stop.
func (d *File) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Join(d.streamErr, d.closeErr)
}

func (d *File) fail(err error) {
	d.mu.Lock()
	d.streamErr = err
	d.mu.Unlock()
}

// ReadIQ loads a whole recording.
func ReadIQ(name string) ([]int8, error) {
	r, err := openIQ(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	iq := make([]int8, len(raw))
	for i, b := range raw {
		iq[i] = int8(b)
	}
	return iq, nil
}

// WriteIQ stores iq as a recording.
func WriteIQ(name string, iq []int8) error {
	w, err := createIQ(name)
	if err != nil {
		return err
	}

	raw := make([]byte, len(iq))
	for i, v := range iq {
		raw[i] = byte(v)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return w.Close()
}

func compressed(name string) bool {
	return strings.HasSuffix(name, ".zst")
}

type stream struct {
	io.Reader
	io.Writer
	close func() error
}

func (s stream) Close() error {
	return s.close()
}

func openIQ(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !compressed(name) {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return stream{Reader: dec, close: func() error {
		dec.Close()
		return f.Close()
	}}, nil
}

func createIQ(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if !compressed(name) {
		return f, nil
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return stream{Writer: enc, close: func() error {
		return errors.Join(enc.Close(), f.Close())
	}}, nil
}
