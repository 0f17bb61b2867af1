package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowPass(t *testing.T) {
	f, err := LowPass(80e3, 1e6)
	require.NoError(t, err)

	assert.Equal(t, f.B0, f.B1)
	// unity gain at DC
	assert.InDelta(t, 1, (f.B0+f.B1)/(1+f.A1), 1e-12)
	assert.Greater(t, f.A1, -1.0)
	assert.Less(t, f.A1, 0.0)
}

func TestLowPassErrors(t *testing.T) {
	tests := []struct {
		name       string
		cutoff     float64
		sampleRate float64
		err        error
	}{
		{"zero sample rate", 1, 0, ErrInvalidSampleRate},
		{"zero cutoff", 0, 1e6, ErrInvalidFrequency},
		{"at nyquist", 5e5, 1e6, ErrCutoffTooHigh},
		{"above nyquist", 8e5, 1e6, ErrCutoffTooHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LowPass(tt.cutoff, tt.sampleRate)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFiltFiltConstant(t *testing.T) {
	f, err := LowPass(80e3, 1e6)
	require.NoError(t, err)

	x := make([]float64, 50)
	for i := range x {
		x[i] = 42
	}

	y := f.FiltFilt(x)
	require.Len(t, y, len(x))
	for _, v := range y {
		assert.InDelta(t, 42, v, 1e-9)
	}
}

func TestFiltFiltZeroPhase(t *testing.T) {
	f, err := LowPass(80e3, 1e6)
	require.NoError(t, err)

	const n, center = 201, 100
	x := make([]float64, n)
	x[center] = 1

	y := f.FiltFilt(x)
	for i := 1; i < 50; i++ {
		assert.InDelta(t, y[center-i], y[center+i], 1e-9, "offset %d", i)
	}
	for i := range y {
		assert.LessOrEqual(t, y[i], y[center])
	}
}

func TestFiltFiltShortInput(t *testing.T) {
	f, err := LowPass(80e3, 1e6)
	require.NoError(t, err)

	assert.Nil(t, f.FiltFilt(nil))
	assert.Len(t, f.FiltFilt([]float64{1}), 1)
	assert.Len(t, f.FiltFilt([]float64{1, 2}), 2)
	assert.Len(t, f.FiltFilt([]float64{1, 2, 3, 4}), 4)
}

func TestFiltFiltReference(t *testing.T) {
	f, err := LowPass(80e3, 1e6)
	require.NoError(t, err)

	x := []float64{0, 0, 10, 10, 10, 0, 0, 0, 10, 10, 0, 0, 0, 0, 10, 10, 10, 10, 0, 5}
	// scipy.signal.filtfilt(*butter(1, 80e3, fs=1e6), x)
	expected := []float64{
		0.069382485333, 2.169224247206, 4.175686027035, 5.243674002528, 4.968922576808,
		3.979632789871, 3.408052227942, 3.798585282760, 4.555716763743, 4.481659400277,
		3.555506353781, 2.927329091578, 3.125554416934, 4.206142529972, 5.768384928335,
		6.841781989835, 7.023595135068, 6.365151307117, 5.386332875919, 4.869461045347,
	}

	assert.InDeltaSlice(t, expected, f.FiltFilt(x), 1e-9)
}
