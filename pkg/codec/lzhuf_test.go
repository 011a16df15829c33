package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLZHUFRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("mississippi river "), 300)
	var compressed bytes.Buffer
	require.NoError(t, (lzhufCodec{}).Compress(&compressed, bytes.NewReader(data), 0))

	var out bytes.Buffer
	require.NoError(t, (lzhufCodec{}).Decompress(&out, &compressed))
	require.Equal(t, data, out.Bytes())
}

func TestLZHUFEscapesReservedLiteralBytes(t *testing.T) {
	data := []byte{253, 254, 255, 254, 255, 253, 0, 1}
	var compressed bytes.Buffer
	require.NoError(t, (lzhufCodec{}).Compress(&compressed, bytes.NewReader(data), 0))

	var out bytes.Buffer
	require.NoError(t, (lzhufCodec{}).Decompress(&out, &compressed))
	require.Equal(t, data, out.Bytes())
}

func TestLZHUFEmptyInput(t *testing.T) {
	var compressed bytes.Buffer
	require.NoError(t, (lzhufCodec{}).Compress(&compressed, bytes.NewReader(nil), 0))

	var out bytes.Buffer
	require.NoError(t, (lzhufCodec{}).Decompress(&out, &compressed))
	require.Empty(t, out.Bytes())
}

func TestHuffmanModelRebuildsOnSchedule(t *testing.T) {
	m := newHuffmanModel()
	for i := 0; i < huffmanRebuildInterval; i++ {
		m.update(0)
	}
	require.Equal(t, 0, m.sinceRebuild)
	require.Equal(t, huffmanRebuildInterval+1, m.freq[0])
}
