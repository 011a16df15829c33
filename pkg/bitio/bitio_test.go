package bitio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteBitsReadBits(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteBits(0b101, 3))
	require.NoError(t, w.WriteBits(0xABCD, 16))
	require.NoError(t, w.WriteBit(true))
	require.NoError(t, w.Flush())

	r := NewReader(&buf)
	require.Equal(t, uint32(0b101), r.ReadBits(3))
	require.Equal(t, uint32(0xABCD), r.ReadBits(16))
	require.True(t, r.ReadBit())
}

func TestFlushIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteBits(0x3, 4))
	require.NoError(t, w.Flush())
	firstLen := buf.Len()
	require.NoError(t, w.Flush())
	require.Equal(t, firstLen, buf.Len())
}

func TestReadPastEOFReturnsZero(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	require.Equal(t, uint32(0), r.ReadBits(32))
	require.False(t, r.ReadBit())
	require.True(t, r.AtEOF())
}

func TestCloseFlushes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteBit(true))
	require.NoError(t, w.Close())
	require.Equal(t, 1, buf.Len())
	require.Equal(t, byte(0x80), buf.Bytes()[0])
}
