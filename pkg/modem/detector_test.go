package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareWave builds a complex envelope with one run of length samples per
// character of pattern.
func squareWave(pattern string, length int, level float64) []complex128 {
	out := make([]complex128, 0, len(pattern)*length)
	for _, c := range pattern {
		v := complex(0, 0)
		if c == '1' {
			v = complex(level, 0)
		}
		for range length {
			out = append(out, v)
		}
	}
	return out
}

func newTestDetector(t testing.TB, minThreshold float64) *Detector {
	t.Helper()
	d, err := NewDetector(DetectorConfig{
		SampleRate:   testSampleRate,
		SymbolLength: testSymbolLength,
		MinThreshold: minThreshold,
	})
	require.NoError(t, err)
	return d
}

func TestEstimateThreshold(t *testing.T) {
	values := make([]float64, 0, 1000)
	for range 500 {
		values = append(values, 0)
	}
	for range 490 {
		values = append(values, 10)
	}
	// fewer outliers than the ignored fraction
	for range 10 {
		values = append(values, 1e6)
	}

	assert.Equal(t, 5.0, EstimateThreshold(values))
	assert.Zero(t, EstimateThreshold(nil))
	assert.Zero(t, EstimateThreshold([]float64{7}))
}

func TestThresholdSeparatesClusters(t *testing.T) {
	var values []float64
	var expected []uint8
	for i := range 640 {
		if (i/40)%2 == 0 {
			values = append(values, 2+float64(i%3))
			expected = append(expected, 0)
		} else {
			values = append(values, 50-float64(i%5))
			expected = append(expected, 1)
		}
	}

	threshold := EstimateThreshold(values)
	assert.Greater(t, threshold, 4.0)
	assert.Less(t, threshold, 46.0)
	assert.Equal(t, expected, Binarize(values, threshold))
}

func TestBinarizeStrict(t *testing.T) {
	assert.Equal(t, []uint8{0, 1, 0, 1}, Binarize([]float64{1, 1.5, -1, -2}, 1))
}

func TestDetect(t *testing.T) {
	d := newTestDetector(t, 1)
	pattern := "0101100110"

	det, err := d.Detect(squareWave(pattern, testSymbolLength, 50))
	require.NoError(t, err)
	assert.InDelta(t, 25, det.Threshold, 1)
	assert.Len(t, det.Symbols, len(pattern)*testSymbolLength)
	assert.Equal(t, pattern, RecoverBits(det.Symbols, testSymbolLength))
}

func TestDetectInsufficientSignal(t *testing.T) {
	d := newTestDetector(t, 1)

	det, err := d.Detect(make([]complex128, 1000))
	assert.ErrorIs(t, err, ErrInsufficientSignal)
	assert.Zero(t, det.Threshold)
	assert.Empty(t, det.Symbols)

	det, err = d.Detect(nil)
	assert.ErrorIs(t, err, ErrInsufficientSignal)
	assert.Empty(t, det.Symbols)
}

func TestDetectReportsRejectedThreshold(t *testing.T) {
	d := newTestDetector(t, 100)

	det, err := d.Detect(squareWave("0110", testSymbolLength, 50))
	assert.ErrorIs(t, err, ErrInsufficientSignal)
	assert.InDelta(t, 25, det.Threshold, 1)
	assert.Empty(t, det.Symbols)
}

func TestNewDetectorErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  DetectorConfig
		err  error
	}{
		{"zero sample rate", DetectorConfig{SymbolLength: 100}, ErrInvalidSampleRate},
		{"zero symbol length", DetectorConfig{SampleRate: 1e6}, ErrInvalidSymbolLength},
		{"negative threshold", DetectorConfig{SampleRate: 1e6, SymbolLength: 100, MinThreshold: -1}, ErrInvalidThreshold},
		// cutoff 8*Fs/16 is exactly Nyquist
		{"short symbols", DetectorConfig{SampleRate: 1e6, SymbolLength: 16}, ErrCutoffTooHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDetector(tt.cfg)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func BenchmarkDetect(b *testing.B) {
	d := newTestDetector(b, 1)
	signal := squareWave("0101100110111000", testSymbolLength, 50)

	b.ResetTimer()
	for range b.N {
		_, _ = d.Detect(signal)
	}
}
