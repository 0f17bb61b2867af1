package modem

import "strings"

// Frame is the result of locating the synchronization pattern in a bit
// string and decoding from there.
type Frame struct {
	Start  int // index of the pattern in the bit string, -1 if absent
	Tokens []string
}

// Synchronize finds the first occurrence of sync in bits and decodes from
// that index on, so the pattern itself is part of the decoded span. When the
// pattern is absent it returns ErrPreambleNotFound and an empty frame.
func Synchronize(bits, sync string, table *CodeTable) (Frame, error) {
	if sync == "" {
		return Frame{Start: -1}, ErrEmptySync
	}

	start := strings.Index(bits, sync)
	if start < 0 {
		return Frame{Start: -1}, ErrPreambleNotFound
	}

	return Frame{
		Start:  start,
		Tokens: Decode(bits, table, start),
	}, nil
}
