package modem

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSampleRate   = 1e6
	testCarrierFreq  = 100e3
	testSymbolLength = 100
	testPauseLength  = 300
)

func newTestModulator(t testing.TB) *Modulator {
	t.Helper()
	m, err := NewModulator(ModulatorConfig{
		SampleRate:   testSampleRate,
		CarrierFreq:  testCarrierFreq,
		SymbolLength: testSymbolLength,
		PauseLength:  testPauseLength,
	})
	require.NoError(t, err)
	return m
}

func TestModulatorSymbols(t *testing.T) {
	m := newTestModulator(t)
	carrier := m.Carrier()
	require.Equal(t, 10, carrier.Len())

	one, ok := m.Symbol(SymbolOne)
	require.True(t, ok)
	require.Len(t, one, 2*testSymbolLength)
	for i := 0; i < len(one); i += len(carrier) {
		assert.Equal(t, []int8(carrier), one[i:i+len(carrier)])
	}

	zero, ok := m.Symbol(SymbolZero)
	require.True(t, ok)
	assert.Equal(t, make([]int8, 2*testSymbolLength), zero)

	pause, ok := m.Symbol(SymbolPause)
	require.True(t, ok)
	assert.Equal(t, make([]int8, 2*testPauseLength), pause)

	_, ok = m.Symbol('x')
	assert.False(t, ok)
}

func TestModulatorSymbolIsCopy(t *testing.T) {
	m := newTestModulator(t)

	one, _ := m.Symbol(SymbolOne)
	clear(one)

	again, _ := m.Symbol(SymbolOne)
	assert.NotEqual(t, one, again)
}

func TestGenerate(t *testing.T) {
	m := newTestModulator(t)
	one, _ := m.Symbol(SymbolOne)

	tests := []struct {
		name     string
		packet   string
		expected []int8
	}{
		{"empty", "", []int8{}},
		{"three ones", "111", slices.Concat(one, one, one)},
		{"one zero", "10", slices.Concat(one, make([]int8, 2*testSymbolLength))},
		{"pause", "p1", slices.Concat(make([]int8, 2*testPauseLength), one)},
		{"spaces skipped", "1 1", slices.Concat(one, one)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := m.Generate(tt.packet)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
			assert.Equal(t, len(out), m.Duration(tt.packet))
		})
	}
}

func TestGenerateUnknownSymbol(t *testing.T) {
	m := newTestModulator(t)

	clean, err := m.Generate("1001")
	require.NoError(t, err)

	out, err := m.Generate("10x01")
	require.Error(t, err)
	assert.Equal(t, clean, out)

	var unknown *UnknownSymbolError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, 'x', unknown.Symbol)
	assert.Equal(t, 2, unknown.Index)
}

func TestGenerateReportsEveryUnknownSymbol(t *testing.T) {
	m := newTestModulator(t)

	_, err := m.Generate("a1b")
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 2)
}

func TestNewModulatorErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  ModulatorConfig
		err  error
	}{
		{"zero symbol length", ModulatorConfig{SampleRate: 1e6, CarrierFreq: 1e5}, ErrInvalidSymbolLength},
		{"negative pause", ModulatorConfig{SampleRate: 1e6, CarrierFreq: 1e5, SymbolLength: 10, PauseLength: -1}, ErrInvalidPauseLength},
		{"not a multiple", ModulatorConfig{SampleRate: 1e6, CarrierFreq: 1e5, SymbolLength: 15}, ErrSymbolNotMultiple},
		{"bad carrier", ModulatorConfig{CarrierFreq: 1e5, SymbolLength: 10}, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModulator(tt.cfg)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	m := newTestModulator(b)
	packet := "p100000000" + "1110100011101110" + "0000p"

	b.ResetTimer()
	for range b.N {
		_, _ = m.Generate(packet)
	}
}
