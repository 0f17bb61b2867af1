package modem

import "strings"

// Encode replaces every character of message that has an entry in table
// with its codeword. Characters without an entry are copied unchanged.
func Encode(message string, table *CodeTable) string {
	var sb strings.Builder
	for _, r := range message {
		if codeword, ok := table.Lookup(string(r)); ok {
			sb.WriteString(codeword)
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Decode greedily matches codewords of table against bits, starting at
// start. Consecutive matches are accumulated into one token; a position where
// nothing matches is skipped and closes the current token. A token still open
// when the input ends is dropped.
func Decode(bits string, table *CodeTable, start int) []string {
	var (
		decoded []string
		token   strings.Builder
	)

	for i := min(max(start, 0), len(bits)); i < len(bits); {
		if key, ok := table.match(bits[i:]); ok {
			value, _ := table.Lookup(key)
			token.WriteString(value)
			i += len(key)
			continue
		}

		i++
		if token.Len() > 0 {
			decoded = append(decoded, token.String())
			token.Reset()
		}
	}

	return decoded
}
