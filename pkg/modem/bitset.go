package modem

import (
	"math"
	"strings"
)

// RecoverBits collapses runs of identical symbols into logical bits. A run
// of n >= symbolLength samples yields round(n/symbolLength) bits of its
// value; shorter runs are glitches and yield nothing.
func RecoverBits(symbols []uint8, symbolLength int) string {
	if symbolLength <= 0 {
		return ""
	}

	var sb strings.Builder
	for i := 0; i < len(symbols); {
		j := i + 1
		for j < len(symbols) && symbols[j] == symbols[i] {
			j++
		}

		if n := j - i; n >= symbolLength {
			bit := byte('0')
			if symbols[i] != 0 {
				bit = '1'
			}
			count := int(math.RoundToEven(float64(n) / float64(symbolLength)))
			for range count {
				sb.WriteByte(bit)
			}
		}
		i = j
	}
	return sb.String()
}

// PackBits packs a string of '0' and '1' MSB first. The last byte is padded
// with zero bits; any other character counts as '0'.
func PackBits(bits string) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i := 0; i < len(bits); i++ {
		if bits[i] == '1' {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}
