package modem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func runs(length int, values ...uint8) []uint8 {
	var out []uint8
	for _, v := range values {
		for range length {
			out = append(out, v)
		}
	}
	return out
}

func TestRecoverBits(t *testing.T) {
	const l = 10

	tests := []struct {
		name     string
		symbols  []uint8
		expected string
	}{
		{"empty", nil, ""},
		{"three symbols", runs(3*l, 1), "111"},
		{"glitch dropped", runs(l-1, 1), ""},
		{"alternating", runs(l, 1, 0, 1, 1), "1011"},
		{"rounds down", runs(l+l/2-1, 0), "0"},
		{"half to even", runs(l+l/2, 0), "00"},
		{"two and a half", runs(2*l+l/2, 1), "11"},
		{"glitch between runs", append(append(runs(l, 1), 0, 0), runs(l, 1)...), "11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RecoverBits(tt.symbols, l))
		})
	}
}

func TestRecoverBitsRuns(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(17, 200).Draw(t, "length")
		counts := rapid.SliceOfN(rapid.IntRange(1, 5), 1, 20).Draw(t, "counts")

		var (
			symbols  []uint8
			expected strings.Builder
		)
		for i, c := range counts {
			v := uint8(i % 2)
			symbols = append(symbols, runs(c*length, v)...)
			expected.WriteString(strings.Repeat(string('0'+rune(v)), c))
		}

		if got := RecoverBits(symbols, length); got != expected.String() {
			t.Fatalf("recovered %q, expected %q", got, expected.String())
		}
	})
}

func TestPackBits(t *testing.T) {
	assert.Empty(t, PackBits(""))
	assert.Equal(t, []byte{0xa0}, PackBits("101"))
	assert.Equal(t, []byte{0x80, 0x00}, PackBits("100000000"))
	assert.Equal(t, []byte{0xff, 0x80}, PackBits("111111111"))
}
