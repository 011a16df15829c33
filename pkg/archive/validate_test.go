package archive

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lark/pkg/checksum"
	"lark/pkg/codec"
	lerrors "lark/pkg/errors"
	"lark/pkg/filetime"
)

// buildRawArchive assembles a container byte-for-byte from a header,
// payload, and directory entries, bypassing Archive/Save entirely, so
// tests can construct otherwise-unreachable on-disk states.
func buildRawArchive(t *testing.T, h *Header, payload []byte, entries []*Entry, dirSig uint32) string {
	var buf bytes.Buffer

	hdrBuf, err := packHeader(h)
	require.NoError(t, err)
	buf.Write(hdrBuf)
	buf.Write(payload)

	require.NoError(t, writeDirectory(&buf, dirSig, entries))

	path := filepath.Join(t.TempDir(), "raw.ark")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func baseHeader(fileCount uint32) *Header {
	now := filetime.Now()
	return &Header{
		Signature:               SignaturePrimary,
		FormatVersion:           FormatVersion,
		MinUnpackVersion:        FormatVersion,
		BlockSize:               DefaultBlockSize,
		DefaultCompressionLevel: 6,
		CreationTime:            now,
		LastUpdateTime:          now,
		FileCount:               fileCount,
	}
}

// Scenario 5: a directory entry declaring an OriginalSize/CompressedSize
// ratio past the expansion guard is rejected on Open.
func TestOpenRejectsExpansionGuardViolation(t *testing.T) {
	payload := make([]byte, 100)
	entries := []*Entry{{
		FileName:       "bomb.bin",
		FileOffset:     HeaderSize,
		OriginalSize:   1_000_000_000,
		CompressedSize: 100,
		CRC32:          checksum.CRC32(payload),
		CompressionMethod: codec.Store,
	}}
	path := buildRawArchive(t, baseHeader(1), payload, entries, DirectorySignaturePrimary)

	_, err := Open(path)
	require.Error(t, err)
	require.Equal(t, lerrors.InvalidSizes, lerrors.Code(err))
}

// Scenario 6: two entries whose payload ranges overlap by one byte are
// rejected on Open.
func TestOpenRejectsOverlappingPayloadRanges(t *testing.T) {
	payload := make([]byte, 19)
	entries := []*Entry{
		{
			FileName:          "a",
			FileOffset:        HeaderSize,
			OriginalSize:      10,
			CompressedSize:    10,
			CRC32:             checksum.CRC32(payload[0:10]),
			CompressionMethod: codec.Store,
		},
		{
			FileName:          "b",
			FileOffset:        HeaderSize + 9,
			OriginalSize:      10,
			CompressedSize:    10,
			CRC32:             checksum.CRC32(payload[9:19]),
			CompressionMethod: codec.Store,
		},
	}
	path := buildRawArchive(t, baseHeader(2), payload, entries, DirectorySignaturePrimary)

	_, err := Open(path)
	require.Error(t, err)
	require.Equal(t, lerrors.InvalidFileOffset, lerrors.Code(err))
}

func TestOpenRejectsFileOffsetBeforeHeader(t *testing.T) {
	payload := make([]byte, 10)
	entries := []*Entry{{
		FileName:          "a",
		FileOffset:        HeaderSize - 1,
		OriginalSize:      10,
		CompressedSize:    10,
		CRC32:             checksum.CRC32(payload),
		CompressionMethod: codec.Store,
	}}
	path := buildRawArchive(t, baseHeader(1), payload, entries, DirectorySignaturePrimary)

	_, err := Open(path)
	require.Error(t, err)
	require.Equal(t, lerrors.InvalidFileOffset, lerrors.Code(err))
}

// A legacy (non-UTF-8, rawNameBytes-carrying) name past the 260-byte
// bound must be rejected exactly like a UTF-8 one, independently of
// whatever validNameLength(e.FileName) would say about its decoded form.
func TestOpenRejectsOverlongLegacyName(t *testing.T) {
	payload := make([]byte, 10)
	e := &Entry{
		FileName:          "short",
		rawNameBytes:      bytes.Repeat([]byte{0xE9}, 260),
		FileOffset:        HeaderSize,
		OriginalSize:      10,
		CompressedSize:    10,
		CRC32:             checksum.CRC32(payload),
		CompressionMethod: codec.Store,
	}
	// writeDirectory refuses a 261-byte name, so the record is encoded at
	// the 260-byte bound and then grown to 261 bytes by hand.
	rec, err := encodeDirectoryEntry(e)
	require.NoError(t, err)
	rec = append(rec, 0xE9)
	binary.LittleEndian.PutUint16(rec[directoryEntryFixedSize-2:directoryEntryFixedSize], 261)

	hdrBuf, err := packHeader(baseHeader(1))
	require.NoError(t, err)
	var dirHdr [8]byte
	binary.LittleEndian.PutUint32(dirHdr[0:4], DirectorySignaturePrimary)
	binary.LittleEndian.PutUint32(dirHdr[4:8], 1)
	var buf bytes.Buffer
	buf.Write(hdrBuf)
	buf.Write(payload)
	buf.Write(dirHdr[:])
	buf.Write(rec)
	path := filepath.Join(t.TempDir(), "raw.ark")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = Open(path)
	require.Error(t, err)
	require.Equal(t, lerrors.InvalidFileName, lerrors.Code(err))
}

func TestOpenRejectsMismatchedFileCount(t *testing.T) {
	payload := make([]byte, 10)
	entries := []*Entry{{
		FileName:          "a",
		FileOffset:        HeaderSize,
		OriginalSize:      10,
		CompressedSize:    10,
		CRC32:             checksum.CRC32(payload),
		CompressionMethod: codec.Store,
	}}
	// Header claims two entries but only one is present in the directory.
	path := buildRawArchive(t, baseHeader(2), payload, entries, DirectorySignaturePrimary)

	_, err := Open(path)
	require.Error(t, err)
	require.Equal(t, lerrors.InvalidFileCount, lerrors.Code(err))
}

func TestOpenRejectsUnknownSignature(t *testing.T) {
	h := baseHeader(0)
	h.Signature = 0xDEADBEEF
	path := buildRawArchive(t, h, nil, nil, DirectorySignaturePrimary)

	_, err := Open(path)
	require.Error(t, err)
	require.Equal(t, lerrors.InvalidSignature, lerrors.Code(err))
}

func TestOpenAcceptsLegacySignaturePair(t *testing.T) {
	h := baseHeader(0)
	h.Signature = SignatureLegacy
	path := buildRawArchive(t, h, nil, nil, DirectorySignatureLegacy)

	opened, err := Open(path)
	require.NoError(t, err)
	defer opened.Close()
	require.Equal(t, SignatureLegacy, opened.header.Signature)
	require.Equal(t, DirectorySignatureLegacy, opened.directorySignature)
}

func TestOpenRejectsArchiveShorterThanHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.ark")
	require.NoError(t, os.WriteFile(path, make([]byte, HeaderSize-1), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	require.Equal(t, lerrors.ArchiveTooSmall, lerrors.Code(err))
}

func TestOpenRejectsMissingDirectory(t *testing.T) {
	h := baseHeader(0)
	hdrBuf, err := packHeader(h)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "nodir.ark")
	require.NoError(t, os.WriteFile(path, append(hdrBuf, make([]byte, 16)...), 0o644))

	_, err = Open(path)
	require.Error(t, err)
	require.Equal(t, lerrors.DirectoryNotFound, lerrors.Code(err))
}
