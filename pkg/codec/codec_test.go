package codec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func boundarySequences() map[string][]byte {
	zeros := make([]byte, 1<<16)

	abab := make([]byte, 1<<16)
	for i := range abab {
		if i%2 == 0 {
			abab[i] = 'A'
		} else {
			abab[i] = 'B'
		}
	}

	random := make([]byte, 1<<16)
	rand.New(rand.NewSource(1)).Read(random)

	return map[string][]byte{
		"empty":  {},
		"1byte":  {0x42},
		"zeros":  zeros,
		"abab":   abab,
		"random": random,
	}
}

func TestAllCodecsRoundTrip(t *testing.T) {
	methods := []Method{Store, LZSS, LZHUF, Deflate, LZW, LZ77}
	seqs := boundarySequences()

	for _, m := range methods {
		for name, data := range seqs {
			compressed, err := CompressBuffer(m, 6, data)
			require.NoErrorf(t, err, "method %d compress %s", m, name)

			decompressed, err := DecompressBuffer(m, compressed, int64(len(data)), 1000)
			require.NoErrorf(t, err, "method %d decompress %s", m, name)

			require.Equalf(t, data, decompressed, "method %d round-trip %s", m, name)
		}
	}
}

func TestMethodValid(t *testing.T) {
	require.True(t, Store.Valid())
	require.True(t, LZ77.Valid())
	require.False(t, Method(6).Valid())
}

func TestLookupUnknownMethod(t *testing.T) {
	_, err := Lookup(Method(200))
	require.Error(t, err)
}

func TestExpansionGuardRejectsBomb(t *testing.T) {
	compressed, err := CompressBuffer(Store, 0, bytes.Repeat([]byte{0}, 10))
	require.NoError(t, err)

	_, err = DecompressBuffer(Store, compressed, 1, 1)
	require.Error(t, err)
}
