package device

import (
	"sync"

	"golang.org/x/exp/rand"
)

// NetworkConfig lists, per node, the buffer the node receives from and the
// buffer its output is mixed into.
type NetworkConfig[ID comparable] []struct {
	In  ID
	Out ID
}

// Network simulates a shared medium. Every update each started node is
// called back with its input buffer, then all outputs are summed, with int8
// saturation, into their output buffers for the next update.
type Network[ID comparable] struct {
	SampleRate float64 // complex samples per second, 0 means no limit
	BlockSize  int     // IQ values per block, 0 selects BufferSize
	Noise      int     // amplitude of uniform noise added to every buffer
	Seed       uint64
	Config     NetworkConfig[ID]
	LateUpdate func() // called after every update

	mu      sync.Mutex
	rand    *rand.Rand
	buffers map[ID][]int8
	nodes   []*networkNode[ID]
	running int
	done    chan struct{}
	wg      sync.WaitGroup
}

type networkNode[ID comparable] struct {
	*Network[ID]
	input    []int8
	output   []int8
	callback func(in, out []int8)
}

// Build allocates the buffers and returns one Device per Config entry.
func (n *Network[ID]) Build() ([]Device, error) {
	size, err := blockSize(n.BlockSize)
	if err != nil {
		return nil, err
	}

	n.buffers = make(map[ID][]int8)
	n.rand = rand.New(rand.NewSource(n.Seed))
	n.nodes = n.nodes[:0]
	devices := make([]Device, 0, len(n.Config))
	for _, c := range n.Config {
		node := &networkNode[ID]{
			Network: n,
			input:   n.buffer(c.In, size),
			output:  make([]int8, size),
		}
		n.buffer(c.Out, size)
		n.nodes = append(n.nodes, node)
		devices = append(devices, node)
	}
	return devices, nil
}

// Buffer returns a shared buffer. It is only stable inside node callbacks
// and LateUpdate, which run with the network locked.
func (n *Network[ID]) Buffer(id ID) []int8 {
	return n.buffers[id]
}

// Join blocks until every started node has been stopped.
func (n *Network[ID]) Join() {
	n.mu.Lock()
	done := n.done
	n.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (n *Network[ID]) buffer(id ID, size int) []int8 {
	buf, ok := n.buffers[id]
	if !ok {
		buf = make([]int8, size)
		n.buffers[id] = buf
	}
	return buf
}

func (n *Network[ID]) update() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, d := range n.nodes {
		if d.callback != nil {
			d.callback(d.input, d.output)
		} else {
			clear(d.output)
		}
	}

	for _, buf := range n.buffers {
		clear(buf)
	}
	for i, c := range n.Config {
		buf := n.buffers[c.Out]
		addSaturate(buf, buf, n.nodes[i].output)
	}
	for _, buf := range n.buffers {
		addNoise(n.rand, buf, n.Noise)
	}

	if n.LateUpdate != nil {
		n.LateUpdate()
	}
	return true
}

func (d *networkNode[ID]) Start(callback func(in, out []int8)) error {
	n := d.Network
	n.mu.Lock()
	defer n.mu.Unlock()

	if d.callback != nil {
		return ErrAlreadyStarted
	}
	d.callback = callback
	n.running++

	if n.running == 1 {
		n.done = make(chan struct{})
		interval := blockInterval(n.SampleRate, len(d.output))
		done := n.done
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			run(done, interval, n.update)
		}()
	}
	return nil
}

// Stop detaches the node. The last node to stop halts the network.
func (d *networkNode[ID]) Stop() {
	n := d.Network
	n.mu.Lock()
	if d.callback == nil {
		n.mu.Unlock()
		return
	}
	d.callback = nil
	n.running--
	last := n.running == 0
	if last {
		close(n.done)
	}
	n.mu.Unlock()

	if last {
		n.wg.Wait()
	}
}
