package archive

import (
	"sort"

	lerrors "lark/pkg/errors"
)

// ExpansionCap is the default maximum OriginalSize/CompressedSize ratio
// tolerated before an entry is treated as a decompression bomb
// (spec.md §3 invariant 6 and §4.11).
const ExpansionCap = 1000

// validateHeader checks invariants 1, 2, and 7 against h and the parsed
// directory entry count.
func validateHeader(h *Header, directoryEntryCount int) error {
	if !isValidSignature(h.Signature) {
		return lerrors.NewFormatError(lerrors.InvalidSignature, "unrecognised archive signature", nil)
	}
	if h.FormatVersion != FormatVersion {
		return lerrors.NewFormatError(lerrors.UnsupportedVersion, "unsupported format version", nil)
	}
	if int(h.FileCount) != directoryEntryCount {
		return lerrors.NewFormatError(lerrors.InvalidFileCount, "header FileCount disagrees with directory", nil)
	}
	return nil
}

// validateEntries checks invariants 3, 4, 5, and 6 across all entries,
// in directory order, so a FormatError can be attributed to the first
// offending index.
func validateEntries(entries []*Entry, directoryOffset int64) error {
	type span struct {
		start, end int64
		index      int
	}
	spans := make([]span, 0, len(entries))

	for i, e := range entries {
		if e.OriginalSize < 0 {
			return lerrors.NewFormatError(lerrors.InvalidSizes, "negative OriginalSize", nil)
		}
		if len(e.rawNameBytes) > 0 {
			if len(e.rawNameBytes) > 260 {
				return lerrors.NewFormatError(lerrors.InvalidFileName, "name length out of range", nil)
			}
		} else if !validNameLength(e.FileName) {
			return lerrors.NewFormatError(lerrors.InvalidFileName, "name length out of range", nil)
		}
		if !e.CompressionMethod.Valid() {
			return lerrors.NewFormatError(lerrors.InvalidCompressionMethod, "unknown compression method", nil)
		}
		if e.FileOffset < HeaderSize {
			return lerrors.NewFormatError(lerrors.InvalidFileOffset, "file offset before header", nil)
		}
		end := e.FileOffset + int64(e.CompressedSize)
		if end > directoryOffset {
			return lerrors.NewFormatError(lerrors.InvalidFileOffset, "entry payload extends past directory", nil)
		}
		if err := checkExpansionGuard(e); err != nil {
			return err
		}
		spans = append(spans, span{start: e.FileOffset, end: end, index: i})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return lerrors.NewFormatError(lerrors.InvalidFileOffset, "overlapping entry payload ranges", nil)
		}
	}
	return nil
}

// checkExpansionGuard enforces invariant 6: OriginalSize / max(CompressedSize,1) <= ExpansionCap.
func checkExpansionGuard(e *Entry) error {
	denom := e.CompressedSize
	if denom == 0 {
		denom = 1
	}
	if e.OriginalSize/int64(denom) > ExpansionCap {
		return lerrors.NewFormatError(lerrors.InvalidSizes, "entry exceeds expansion guard", nil)
	}
	return nil
}
