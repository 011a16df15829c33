package codec

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLZ77RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 500)
	var compressed bytes.Buffer
	require.NoError(t, (lz77Codec{}).Compress(&compressed, bytes.NewReader(data), 0))
	require.Less(t, compressed.Len(), len(data))

	var out bytes.Buffer
	require.NoError(t, (lz77Codec{}).Decompress(&out, &compressed))
	require.Equal(t, data, out.Bytes())
}

func TestLZ77PracticalMaxMatch(t *testing.T) {
	// The length-bias byte is 8 bits wide, so the largest length the
	// framing can encode is 255 + lz77MinMatch.
	require.Equal(t, 257, lz77MaxMatch)
}

// An out-of-range match distance is clamped to 1 rather than rejected,
// per spec.md's forward-progress requirement: corruption is left for the
// CRC check to catch, not treated as a fatal decode error.
func TestLZ77OutOfRangeDistanceClamps(t *testing.T) {
	block := make([]byte, 5)
	block[0] = 0b00000010 // token 0 literal, token 1 match
	block[1] = 'A'
	binary.LittleEndian.PutUint16(block[2:4], 9999) // distance far past len(out)==1
	block[4] = 0                                    // length byte 0 -> length = lz77MinMatch

	out, err := decodeLZ77Block(block)
	require.NoError(t, err)
	require.Equal(t, []byte("AAA"), out)
}

// A match token as the very first token has no prior output to clamp
// against, so it is still a hard decode error.
func TestLZ77OutOfRangeDistanceAtEmptyOutputErrors(t *testing.T) {
	block := make([]byte, 4)
	block[0] = 0b00000001 // token 0 match
	binary.LittleEndian.PutUint16(block[1:3], 9999)
	block[3] = 0

	_, err := decodeLZ77Block(block)
	require.Error(t, err)
}

func TestLZ77LiteralOnlyInput(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	var compressed bytes.Buffer
	require.NoError(t, (lz77Codec{}).Compress(&compressed, bytes.NewReader(data), 0))

	var out bytes.Buffer
	require.NoError(t, (lz77Codec{}).Decompress(&out, &compressed))
	require.Equal(t, data, out.Bytes())
}
