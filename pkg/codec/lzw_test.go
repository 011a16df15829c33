package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLZWRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("banana banana banana bandana "), 400)
	var compressed bytes.Buffer
	require.NoError(t, (lzwCodec{}).Compress(&compressed, bytes.NewReader(data), 0))
	require.Less(t, compressed.Len(), len(data))

	var out bytes.Buffer
	require.NoError(t, (lzwCodec{}).Decompress(&out, &compressed))
	require.Equal(t, data, out.Bytes())
}

func TestLZWSingleByte(t *testing.T) {
	var compressed bytes.Buffer
	require.NoError(t, (lzwCodec{}).Compress(&compressed, bytes.NewReader([]byte{42}), 0))

	var out bytes.Buffer
	require.NoError(t, (lzwCodec{}).Decompress(&out, &compressed))
	require.Equal(t, []byte{42}, out.Bytes())
}

// Every dictionary hit extends cur past one byte (see the cur = next
// branch in encodeLZW), so any input with a repeated 2+-byte sequence
// forces the encoder to look up a multi-byte cur at least once.
func TestLZWRepeatedRunsEmitMultiByteCodes(t *testing.T) {
	for _, data := range [][]byte{
		bytes.Repeat([]byte{0}, 4096),
		bytes.Repeat([]byte("AB"), 4096),
	} {
		var compressed bytes.Buffer
		require.NoError(t, (lzwCodec{}).Compress(&compressed, bytes.NewReader(data), 0))

		var out bytes.Buffer
		require.NoError(t, (lzwCodec{}).Decompress(&out, &compressed))
		require.Equal(t, data, out.Bytes())
	}
}

func TestLZWLargeVariedInput(t *testing.T) {
	// Exercises width growth over a large, low-repetition input.
	data := make([]byte, 1<<17)
	for i := range data {
		data[i] = byte(i * 7 % 256)
	}
	var compressed bytes.Buffer
	require.NoError(t, (lzwCodec{}).Compress(&compressed, bytes.NewReader(data), 0))

	var out bytes.Buffer
	require.NoError(t, (lzwCodec{}).Decompress(&out, &compressed))
	require.Equal(t, data, out.Bytes())
}
