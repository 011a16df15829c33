package archive

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Names are written as opaque bytes with a length prefix (spec.md §3):
// implementations must preserve the original byte-for-byte encoding. This
// implementation always writes UTF-8 on Add/Save. On read, if the stored
// bytes are not valid UTF-8 — the case for a legacy archive whose names
// were written in a single-byte ANSI code page — they are best-effort
// transcoded from Windows-1252 for display, without ever mutating the
// bytes that get written back out verbatim by a later Save of an
// unmodified entry (see DESIGN.md's resolution of this open question).
func encodeEntryName(name string) []byte {
	return []byte(name)
}

// decodeEntryName returns the display string for raw, and the raw bytes
// themselves when they weren't valid UTF-8 (so the caller can stash them
// on the Entry for verbatim round-trip; see Entry.rawNameBytes).
func decodeEntryName(raw []byte) (string, []byte) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw), raw
	}
	return string(decoded), raw
}

// validNameLength reports whether the UTF-8-encoded byte length of name
// falls within spec.md §3's 1..260 byte bound.
func validNameLength(name string) bool {
	n := len(encodeEntryName(name))
	return n >= 1 && n <= 260
}
