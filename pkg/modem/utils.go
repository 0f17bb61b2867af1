package modem

import "github.com/charmbracelet/log"

func loggerOr(l *log.Logger, prefix string) *log.Logger {
	if l != nil {
		return l
	}
	return log.Default().WithPrefix(prefix)
}

// tile repeats block n times.
func tile[T any](block []T, n int) []T {
	out := make([]T, 0, len(block)*n)
	for range n {
		out = append(out, block...)
	}
	return out
}
