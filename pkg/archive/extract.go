package archive

import (
	"io"

	"lark/pkg/checksum"
	"lark/pkg/codec"
	lerrors "lark/pkg/errors"
)

// Extract decompresses the entry named name into sink. A CRC-32 mismatch
// is reported only after the decompressed bytes have already been
// written to sink, per spec.md §4.1, to aid postmortem comparison.
func (a *Archive) Extract(name string, sink io.Writer) error {
	e := a.findEntry(name)
	if e == nil {
		return lerrors.NewArchiveError(lerrors.EntryNotFound, "no entry named "+name)
	}

	compressed, err := a.entryPayload(e)
	if err != nil {
		return err
	}

	decompressed, err := codec.DecompressBuffer(e.CompressionMethod, compressed, e.OriginalSize, ExpansionCap)
	if err != nil {
		return err
	}

	if _, err := sink.Write(decompressed); err != nil {
		return lerrors.NewIoError(lerrors.FileNotFound, "writing extracted bytes", err)
	}

	if checksum.CRC32(decompressed) != e.CRC32 {
		return lerrors.NewFormatError(lerrors.CRC32Mismatch, "CRC-32 mismatch for "+name, nil)
	}
	return nil
}

// TestIntegrity runs the Extract pipeline for every entry against a
// discard sink, returning the per-entry errors (nil for entries that
// passed) in directory order.
func (a *Archive) TestIntegrity() []error {
	results := make([]error, len(a.entries))
	for i, e := range a.entries {
		results[i] = a.Extract(e.FileName, io.Discard)
	}
	return results
}

// entryPayload returns the compressed bytes for e, either from its
// in-memory CompressedData (set since the last Save) or by reading
// CompressedSize bytes from the previously opened file at FileOffset.
func (a *Archive) entryPayload(e *Entry) ([]byte, error) {
	if e.CompressedData != nil {
		return e.CompressedData, nil
	}
	if a.sourceFile == nil {
		return nil, lerrors.NewFormatError(lerrors.NoCompressedData, "no compressed data available for "+e.FileName, nil)
	}
	buf := make([]byte, e.CompressedSize)
	if _, err := a.sourceFile.ReadAt(buf, e.FileOffset); err != nil {
		return nil, lerrors.NewIoError(lerrors.FileNotFound, "reading entry payload", err)
	}
	return buf, nil
}
