package device

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
)

func blockSize(n int) (int, error) {
	if n == 0 {
		return BufferSize, nil
	}
	if n < 0 || n%2 != 0 {
		return 0, fmt.Errorf("%w: %d", ErrOddBlockSize, n)
	}
	return n, nil
}

// blockInterval is the time one block of size IQ values lasts at sampleRate
// complex samples per second. Zero means no pacing.
func blockInterval(sampleRate float64, size int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(size/2) / sampleRate * float64(time.Second))
}

// run calls update until done is closed, paced by interval when positive.
func run(done <-chan struct{}, interval time.Duration, update func() bool) {
	if interval <= 0 {
		for {
			select {
			case <-done:
				return
			default:
				if !update() {
					return
				}
			}
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !update() {
				return
			}
		}
	}
}

// addSaturate stores a+b in dst, clipped to the int8 range.
func addSaturate(dst, a, b []int8) {
	for i := range dst {
		s := int(a[i]) + int(b[i])
		dst[i] = int8(min(max(s, math.MinInt8), math.MaxInt8))
	}
}

// addNoise adds uniform noise in [-amplitude, amplitude] to buf, saturating.
func addNoise(r *rand.Rand, buf []int8, amplitude int) {
	if amplitude <= 0 {
		return
	}
	for i, v := range buf {
		s := int(v) + r.Intn(2*amplitude+1) - amplitude
		buf[i] = int8(min(max(s, math.MinInt8), math.MaxInt8))
	}
}
