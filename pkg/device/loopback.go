package device

import (
	"sync"

	"golang.org/x/exp/rand"
)

// Loopback feeds every output block back as the next input block.
type Loopback struct {
	SampleRate float64 // complex samples per second, 0 means no limit
	BlockSize  int     // IQ values per block, 0 selects BufferSize
	Noise      int     // amplitude of uniform noise added to each input block
	Seed       uint64

	done chan struct{}
	wg   sync.WaitGroup
}

func (d *Loopback) Start(callback func(in, out []int8)) error {
	if d.done != nil {
		return ErrAlreadyStarted
	}
	size, err := blockSize(d.BlockSize)
	if err != nil {
		return err
	}

	d.done = make(chan struct{})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		r := rand.New(rand.NewSource(d.Seed))
		buf := [2][]int8{make([]int8, size), make([]int8, size)}

		swap := true
		run(d.done, blockInterval(d.SampleRate, size), func() bool {
			in, out := buf[0], buf[1]
			if !swap {
				in, out = out, in
			}
			swap = !swap

			addNoise(r, in, d.Noise)
			callback(in, out)
			return true
		})
	}()
	return nil
}

// Stop returns once the callback has returned for the last time.
func (d *Loopback) Stop() {
	if d.done == nil {
		return
	}
	close(d.done)
	d.wg.Wait()
	d.done = nil
}
