package checksum

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRC32KnownValues(t *testing.T) {
	require.Equal(t, uint32(0x8F92322D), CRC32([]byte("Hello, World!\n")))

	seq := make([]byte, 256)
	for i := range seq {
		seq[i] = byte(i)
	}
	require.Equal(t, uint32(0x29058C73), CRC32(seq))
}

func TestCRC32Reader(t *testing.T) {
	data := []byte("some streamed content for checksum verification")
	tr, sum := CRC32Reader(bytes.NewReader(data))
	written, err := io.ReadAll(tr)
	require.NoError(t, err)
	require.Equal(t, data, written)
	require.Equal(t, CRC32(data), sum())
}

func TestAdler32(t *testing.T) {
	require.Equal(t, uint32(1), Adler32(nil))
	require.NotEqual(t, uint32(0), Adler32([]byte("abc")))
}
