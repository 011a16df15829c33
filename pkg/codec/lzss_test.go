package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLZSSRoundTripWithFlagByteLiteral(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0x01, 0x02, 0xFF}
	var compressed bytes.Buffer
	require.NoError(t, (lzssCodec{}).Compress(&compressed, bytes.NewReader(data), 0))

	var out bytes.Buffer
	require.NoError(t, (lzssCodec{}).Decompress(&out, &compressed))
	require.Equal(t, data, out.Bytes())
}

func TestLZSSFindsRepeatedRun(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 1000)
	var compressed bytes.Buffer
	require.NoError(t, (lzssCodec{}).Compress(&compressed, bytes.NewReader(data), 0))
	require.Less(t, compressed.Len(), len(data)/2)

	var out bytes.Buffer
	require.NoError(t, (lzssCodec{}).Decompress(&out, &compressed))
	require.Equal(t, data, out.Bytes())
}

func TestLZSSMaxMatchLength(t *testing.T) {
	require.Equal(t, 18, lzssMaxMatch)
}
