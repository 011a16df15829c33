package archive

import (
	"bytes"
	"encoding/binary"
	"io"

	"lark/pkg/codec"
	lerrors "lark/pkg/errors"
)

const (
	// DirectorySignaturePrimary is written by this implementation.
	DirectorySignaturePrimary uint32 = 0x444B524C
	// DirectorySignatureLegacy is accepted on Open.
	DirectorySignatureLegacy uint32 = 0x4C415244

	directoryTailScanWindow = 4096
	directoryByteScanLimit  = 65536
)

func isValidDirectorySignature(sig uint32) bool {
	return sig == DirectorySignaturePrimary || sig == DirectorySignatureLegacy
}

// locateDirectory scans backward from end-of-file for a directory
// signature: the last directoryTailScanWindow bytes first, byte-aligned;
// if not found there, one byte at a time up to directoryByteScanLimit
// bytes back, never before HeaderSize. Returns the absolute offset of
// the signature.
func locateDirectory(r io.ReaderAt, fileSize int64) (int64, error) {
	if fileSize < HeaderSize+4 {
		return 0, lerrors.NewFormatError(lerrors.DirectoryNotFound, "archive too small for a directory", nil)
	}

	if off, ok := scanForSignature(r, fileSize, directoryTailScanWindow, true); ok {
		return off, nil
	}
	if off, ok := scanForSignature(r, fileSize, directoryByteScanLimit, false); ok {
		return off, nil
	}
	return 0, lerrors.NewFormatError(lerrors.DirectoryNotFound, "directory signature not found", nil)
}

// scanForSignature searches the last window bytes of the file (clamped
// to not go before HeaderSize) for either accepted directory signature.
// aligned restricts candidates to every fourth offset counting back from
// the end of the file (fileSize-4, fileSize-8, ...), the "byte-aligned"
// first pass; the fallback pass checks every offset.
func scanForSignature(r io.ReaderAt, fileSize int64, window int64, aligned bool) (int64, bool) {
	start := fileSize - window
	if start < HeaderSize {
		start = HeaderSize
	}
	length := fileSize - start
	if length < 4 {
		return 0, false
	}
	buf := make([]byte, length)
	if _, err := r.ReadAt(buf, start); err != nil && err != io.EOF {
		return 0, false
	}

	step := 1
	if aligned {
		step = 4
	}
	for off := int64(len(buf)) - 4; off >= 0; off -= int64(step) {
		sig := binary.LittleEndian.Uint32(buf[off : off+4])
		if isValidDirectorySignature(sig) {
			return start + off, true
		}
	}
	return 0, false
}

// readDirectory parses the central directory starting at dirOffset,
// including the signature itself, returning the parsed entries and the
// signature that was present (so Save can preserve it, see header.go).
func readDirectory(r io.ReaderAt, dirOffset int64) (uint32, []*Entry, error) {
	var sigBuf [4]byte
	if _, err := r.ReadAt(sigBuf[:], dirOffset); err != nil {
		return 0, nil, lerrors.NewFormatError(lerrors.DirectoryNotFound, "reading directory signature", err)
	}
	sig := binary.LittleEndian.Uint32(sigBuf[:])
	if !isValidDirectorySignature(sig) {
		return 0, nil, lerrors.NewFormatError(lerrors.DirectoryNotFound, "invalid directory signature", nil)
	}

	var countBuf [4]byte
	if _, err := r.ReadAt(countBuf[:], dirOffset+4); err != nil {
		return 0, nil, lerrors.NewFormatError(lerrors.DirectoryNotFound, "reading directory entry count", err)
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	entries := make([]*Entry, 0, count)
	pos := dirOffset + 8
	for i := uint32(0); i < count; i++ {
		e, next, err := readDirectoryEntry(r, pos)
		if err != nil {
			return 0, nil, lerrors.NewFormatError(lerrors.InvalidFileCount, "parsing directory entry", err)
		}
		entries = append(entries, e)
		pos = next
	}
	return sig, entries, nil
}

func readDirectoryEntry(r io.ReaderAt, pos int64) (*Entry, int64, error) {
	fixed := make([]byte, directoryEntryFixedSize)
	if _, err := r.ReadAt(fixed, pos); err != nil {
		return nil, 0, err
	}

	e := &Entry{}
	b := fixed
	e.FileOffset = int64(binary.LittleEndian.Uint64(b[0:8]))
	e.OriginalSize = int64(binary.LittleEndian.Uint64(b[8:16]))
	e.CompressedSize = binary.LittleEndian.Uint32(b[16:20])
	e.CRC32 = binary.LittleEndian.Uint32(b[20:24])
	e.ModificationTime = int64(binary.LittleEndian.Uint64(b[24:32]))
	e.CompressionMethod = codec.Method(b[32])
	e.CompressionLevel = b[33]
	e.FileAttributes = binary.LittleEndian.Uint32(b[34:38])
	nameLen := binary.LittleEndian.Uint16(b[38:40])

	nameBuf := make([]byte, nameLen)
	if nameLen > 0 {
		if _, err := r.ReadAt(nameBuf, pos+directoryEntryFixedSize); err != nil {
			return nil, 0, err
		}
	}
	e.FileName, e.rawNameBytes = decodeEntryName(nameBuf)

	return e, pos + directoryEntryFixedSize + int64(nameLen), nil
}

// writeDirectory writes the directory signature, entry count, and every
// entry record to w, in the given order, assuming FileOffset has already
// been assigned by the caller (Save).
func writeDirectory(w io.Writer, signature uint32, entries []*Entry) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], signature)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(entries)))
	if _, err := w.Write(hdr[:]); err != nil {
		return lerrors.NewIoError(lerrors.FileNotFound, "writing directory header", err)
	}

	for _, e := range entries {
		rec, err := encodeDirectoryEntry(e)
		if err != nil {
			return err
		}
		if _, err := w.Write(rec); err != nil {
			return lerrors.NewIoError(lerrors.FileNotFound, "writing directory entry", err)
		}
	}
	return nil
}

func encodeDirectoryEntry(e *Entry) ([]byte, error) {
	nameBytes := e.rawNameBytes
	if nameBytes == nil {
		nameBytes = encodeEntryName(e.FileName)
	}
	if len(nameBytes) == 0 || len(nameBytes) > 260 {
		return nil, lerrors.NewFormatError(lerrors.InvalidFileName, "name length out of range", nil)
	}

	var buf bytes.Buffer
	buf.Grow(directoryEntryFixedSize + len(nameBytes))

	var fixed [directoryEntryFixedSize]byte
	binary.LittleEndian.PutUint64(fixed[0:8], uint64(e.FileOffset))
	binary.LittleEndian.PutUint64(fixed[8:16], uint64(e.OriginalSize))
	binary.LittleEndian.PutUint32(fixed[16:20], e.CompressedSize)
	binary.LittleEndian.PutUint32(fixed[20:24], e.CRC32)
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(e.ModificationTime))
	fixed[32] = byte(e.CompressionMethod)
	fixed[33] = e.CompressionLevel
	binary.LittleEndian.PutUint32(fixed[34:38], e.FileAttributes)
	binary.LittleEndian.PutUint16(fixed[38:40], uint16(len(nameBytes)))

	buf.Write(fixed[:])
	buf.Write(nameBytes)
	return buf.Bytes(), nil
}
