package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterTracksBytes(t *testing.T) {
	SetTestMode(true)
	Init(10)
	defer Stop()

	var buf bytes.Buffer
	pw := &Writer{W: &buf}
	n, err := pw.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, uint64(5), totalBytesProcessed.Load())
}

func TestInitIsIdempotentWhileRunning(t *testing.T) {
	SetTestMode(true)
	Init(100)
	defer Stop()
	Init(999) // no-op: already running
	require.Equal(t, uint64(100), totalSize)
}
