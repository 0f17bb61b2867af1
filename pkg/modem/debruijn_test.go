package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func collect(t testing.TB, k, n int) []int {
	t.Helper()
	g, err := NewDeBruijn(k, n)
	require.NoError(t, err)

	var out []int
	for s, ok := g.Next(); ok; s, ok = g.Next() {
		out = append(out, s)
	}
	return out
}

// windows counts every cyclic length-n word of seq.
func windows(seq []int, k, n int) map[int]int {
	seen := make(map[int]int)
	for i := range seq {
		w := 0
		for j := range n {
			w = w*k + seq[(i+j)%len(seq)]
		}
		seen[w]++
	}
	return seen
}

func TestDeBruijn(t *testing.T) {
	tests := []struct {
		k, n     int
		expected []int
	}{
		{2, 3, []int{0, 0, 0, 1, 0, 1, 1, 1}},
		{3, 2, []int{0, 0, 1, 0, 2, 1, 1, 2, 2}},
		{5, 1, []int{0, 1, 2, 3, 4}},
		{1, 3, []int{0}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, collect(t, tt.k, tt.n), "k=%d n=%d", tt.k, tt.n)
	}
}

func TestDeBruijnExhausted(t *testing.T) {
	g, err := NewDeBruijn(2, 2)
	require.NoError(t, err)

	total, ok := g.Len()
	require.True(t, ok)
	for range total {
		_, ok := g.Next()
		require.True(t, ok)
	}
	_, ok = g.Next()
	assert.False(t, ok)
	_, ok = g.Next()
	assert.False(t, ok)
}

func TestDeBruijnEveryWordOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(2, 5).Draw(t, "k")
		n := rapid.IntRange(1, 4).Draw(t, "n")

		g, err := NewDeBruijn(k, n)
		if err != nil {
			t.Fatal(err)
		}
		var seq []int
		for s, ok := g.Next(); ok; s, ok = g.Next() {
			seq = append(seq, s)
		}

		total, ok := g.Len()
		if !ok {
			t.Fatalf("length of B(%d, %d) overflows", k, n)
		}
		if len(seq) != total {
			t.Fatalf("length %d, expected %d", len(seq), total)
		}
		seen := windows(seq, k, n)
		if len(seen) != total {
			t.Fatalf("%d distinct words, expected %d", len(seen), total)
		}
		for w, c := range seen {
			if c != 1 {
				t.Fatalf("word %d seen %d times", w, c)
			}
		}
	})
}

func TestDeBruijnString(t *testing.T) {
	s, err := DeBruijnString("01", 3)
	require.NoError(t, err)
	assert.Equal(t, "00010111", s)

	s, err = DeBruijnString("01", 8)
	require.NoError(t, err)
	assert.Len(t, s, 256)
}

func TestDeBruijnErrors(t *testing.T) {
	_, err := NewDeBruijn(0, 3)
	assert.ErrorIs(t, err, ErrInvalidAlphabet)
	_, err = NewDeBruijn(2, 0)
	assert.ErrorIs(t, err, ErrInvalidAlphabet)
	_, err = DeBruijnString("", 2)
	assert.ErrorIs(t, err, ErrInvalidAlphabet)
}

func TestDeBruijnLen(t *testing.T) {
	tests := []struct {
		k, n     int
		expected int
		ok       bool
	}{
		{2, 8, 256, true},
		{1, 1000, 1, true},
		{10, 18, 1_000_000_000_000_000_000, true},
		{2, 63, 0, false},
		{10, 19, 0, false},
		{256, 8, 0, false},
	}

	for _, tt := range tests {
		g, err := NewDeBruijn(tt.k, tt.n)
		require.NoError(t, err)
		total, ok := g.Len()
		assert.Equal(t, tt.ok, ok, "k=%d n=%d", tt.k, tt.n)
		assert.Equal(t, tt.expected, total, "k=%d n=%d", tt.k, tt.n)
	}

	// the iterator still runs when the length does not fit
	g, err := NewDeBruijn(2, 64)
	require.NoError(t, err)
	for range 1000 {
		_, ok := g.Next()
		require.True(t, ok)
	}

	_, err = DeBruijnString("01", 64)
	assert.ErrorIs(t, err, ErrSequenceTooLong)
}
