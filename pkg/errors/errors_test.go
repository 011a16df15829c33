package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeExtraction(t *testing.T) {
	cause := fmt.Errorf("underlying")

	fe := NewFormatError(InvalidSignature, "bad magic", cause)
	require.Equal(t, InvalidSignature, Code(fe))
	require.ErrorContains(t, fe, "bad magic")

	ie := NewIoError(ArchiveNotFound, "missing file", nil)
	require.Equal(t, ArchiveNotFound, Code(ie))

	ae := NewArchiveError(ArchiveNameNotSet, "no name set")
	require.Equal(t, ArchiveNameNotSet, Code(ae))

	ce := NewCompressionError(3, "bad stream", cause)
	require.Equal(t, 0, Code(ce))
	require.Contains(t, ce.Error(), "method 3")
}
