package archive

import (
	"lark/pkg/codec"
)

// Entry is one stored file, in memory and (minus CompressedData) in the
// central directory (spec.md §3). FileName is treated as opaque bytes
// with a length prefix: names.go handles the UTF-8/legacy-encoding
// concern at the Add/List boundary, not here.
type Entry struct {
	FileName          string
	OriginalSize       int64
	CompressedSize     uint32
	CRC32              uint32
	ModificationTime   int64
	FileOffset         int64
	CompressionMethod  codec.Method
	CompressionLevel   byte
	FileAttributes     uint32

	// CompressedData holds the payload for entries added or updated since
	// the archive was last saved. nil for entries carried over unchanged
	// from a previously opened file, which Save range-copies instead.
	CompressedData []byte

	// rawNameBytes holds the exact bytes a name was read from on disk,
	// when those bytes weren't valid UTF-8 (a legacy, single-byte-encoded
	// name). Save writes these back verbatim for an unmodified entry
	// instead of re-encoding the best-effort-decoded FileName as UTF-8,
	// so a legacy name's on-disk bytes survive an unrelated Save.
	rawNameBytes []byte
}

// directoryEntryFixedSize is the fixed-width portion of one central
// directory record, before the variable-length NameBytes tail: FileOffset
// i64 + OriginalSize i64 + CompressedSize u32 + CRC32 u32 +
// ModificationTime i64 + CompressionMethod u8 + CompressionLevel u8 +
// FileAttributes u32 (added, see SPEC_FULL.md) + NameLength u16.
const directoryEntryFixedSize = 8 + 8 + 4 + 4 + 8 + 1 + 1 + 4 + 2

// ratio returns OriginalSize / max(CompressedSize, 1), the figure the
// expansion guard (spec.md §3 invariant 6) and List's per-entry
// compression ratio both derive from.
func (e *Entry) ratio() float64 {
	denom := e.CompressedSize
	if denom == 0 {
		denom = 1
	}
	return float64(e.OriginalSize) / float64(denom)
}
