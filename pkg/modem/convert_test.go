package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToComplex(t *testing.T) {
	signal, err := ToComplex([]int8{10, 20, 12, 22})
	require.NoError(t, err)
	assert.Equal(t, []complex128{complex(-1, -1), complex(1, 1)}, signal)
}

func TestToComplexRemovesOffsetPerRail(t *testing.T) {
	buf := []int8{5, -3, 5, -3, 5, -3}

	signal, err := ToComplex(buf)
	require.NoError(t, err)
	for _, s := range signal {
		assert.Zero(t, s)
	}
}

func TestToComplexEdgeCases(t *testing.T) {
	signal, err := ToComplex(nil)
	require.NoError(t, err)
	assert.Empty(t, signal)

	_, err = ToComplex([]int8{1, 2, 3})
	assert.ErrorIs(t, err, ErrOddLength)
}

func TestMagnitude(t *testing.T) {
	assert.Equal(t,
		[]float64{5, 0, 1},
		Magnitude([]complex128{complex(3, -4), 0, complex(0, 1)}),
	)
}
