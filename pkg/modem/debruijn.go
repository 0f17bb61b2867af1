package modem

import (
	"fmt"
	"math"
	"strings"
)

// DeBruijn yields the de Bruijn sequence B(k, n) one symbol at a time: k^n
// symbols in [0, k) in which every length-n word over the alphabet occurs
// exactly once when the sequence is read cyclically.
//
// The classic recursive construction is run on an explicit stack, so
// large orders do not grow the goroutine stack. The iterator is finite and
// cannot be restarted.
type DeBruijn struct {
	k, n  int
	a     []int
	stack []dbFrame

	// pending output a[emit:emitEnd]
	emit, emitEnd int
}

type dbFrame struct {
	t, p    int
	next    int // next candidate symbol for a[t]
	started bool
}

func NewDeBruijn(k, n int) (*DeBruijn, error) {
	if k < 1 || n < 1 {
		return nil, fmt.Errorf("%w: k=%d n=%d", ErrInvalidAlphabet, k, n)
	}
	return &DeBruijn{
		k:     k,
		n:     n,
		a:     make([]int, max(k*n, n+1)),
		stack: []dbFrame{{t: 1, p: 1}},
	}, nil
}

// Len returns k^n, the total number of symbols. It reports false when k^n
// does not fit in an int; Next still walks such a sequence.
func (g *DeBruijn) Len() (int, bool) {
	total := 1
	for range g.n {
		if total > math.MaxInt/g.k {
			return 0, false
		}
		total *= g.k
	}
	return total, true
}

// Next returns the next symbol, or false once the sequence is exhausted.
func (g *DeBruijn) Next() (int, bool) {
	for {
		if g.emit < g.emitEnd {
			s := g.a[g.emit]
			g.emit++
			return s, true
		}
		if len(g.stack) == 0 {
			return 0, false
		}

		top := len(g.stack) - 1
		f := g.stack[top]

		if f.t > g.n {
			g.stack = g.stack[:top]
			if g.n%f.p == 0 {
				g.emit, g.emitEnd = 1, f.p+1
			}
			continue
		}

		if !f.started {
			g.a[f.t] = g.a[f.t-f.p]
			g.stack[top].started = true
			g.stack[top].next = g.a[f.t-f.p] + 1
			g.stack = append(g.stack, dbFrame{t: f.t + 1, p: f.p})
			continue
		}

		if f.next < g.k {
			g.a[f.t] = f.next
			g.stack[top].next++
			g.stack = append(g.stack, dbFrame{t: f.t + 1, p: f.t})
			continue
		}

		g.stack = g.stack[:top]
	}
}

// DeBruijnString renders B(len(alphabet), n) over the runes of alphabet,
// e.g. DeBruijnString("01", 8) gives every 8-bit code exactly once.
func DeBruijnString(alphabet string, n int) (string, error) {
	symbols := []rune(alphabet)
	g, err := NewDeBruijn(len(symbols), n)
	if err != nil {
		return "", err
	}
	if _, ok := g.Len(); !ok {
		return "", fmt.Errorf("%w: %d^%d symbols", ErrSequenceTooLong, len(symbols), n)
	}

	var sb strings.Builder
	for s, ok := g.Next(); ok; s, ok = g.Next() {
		sb.WriteRune(symbols[s])
	}
	return sb.String(), nil
}
