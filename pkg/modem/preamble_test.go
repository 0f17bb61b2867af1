package modem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSync = "100000000"

func TestSynchronize(t *testing.T) {
	encode, decode := newTestTables(t)
	bits := strings.Repeat("0", 12) + testSync + Encode("1101", encode) + "0000"

	frame, err := Synchronize(bits, testSync, decode)
	require.NoError(t, err)
	assert.Equal(t, 12, frame.Start)
	assert.Equal(t, []string{"0", "1101"}, frame.Tokens)
	assert.Equal(t, Decode(bits, decode, 12), frame.Tokens)
}

func TestSynchronizeFirstOccurrence(t *testing.T) {
	_, decode := newTestTables(t)
	bits := "01" + testSync + testSync

	frame, err := Synchronize(bits, testSync, decode)
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Start)
}

func TestSynchronizeNotFound(t *testing.T) {
	_, decode := newTestTables(t)

	frame, err := Synchronize("1110100011101000", testSync, decode)
	assert.ErrorIs(t, err, ErrPreambleNotFound)
	assert.Equal(t, -1, frame.Start)
	assert.Empty(t, frame.Tokens)
}

func TestSynchronizeEmptyPattern(t *testing.T) {
	_, decode := newTestTables(t)

	_, err := Synchronize("1000", "", decode)
	assert.ErrorIs(t, err, ErrEmptySync)
}
