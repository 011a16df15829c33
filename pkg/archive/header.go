package archive

import (
	"encoding/binary"

	"github.com/go-restruct/restruct"

	lerrors "lark/pkg/errors"
)

// Header layouts the fixed 60-byte archive header (spec.md §3), packed
// and unpacked with github.com/go-restruct/restruct the way Lucksystem's
// script-table headers are — tag-driven struct (de)serialisation instead
// of a hand-rolled byte-offset table.
const HeaderSize = 60

const (
	// SignaturePrimary is the signature Create starts from and the one
	// Save writes when given WithPrimarySignature.
	SignaturePrimary uint32 = 0x4B52414C
	// SignatureLegacy is accepted on Open and, per spec.md's Open Question
	// resolution (see DESIGN.md), preserved verbatim through Save rather
	// than silently upgraded to SignaturePrimary.
	SignatureLegacy uint32 = 0x4352414C

	FormatVersion uint16 = 0x0200
)

type Header struct {
	Signature               uint32
	FormatVersion            uint16
	MinUnpackVersion         uint16
	Flags                    uint32
	BlockSize                uint32
	DefaultCompressionLevel  uint32
	Reserved1                uint32
	CreationTime             int64
	LastUpdateTime           int64
	ReservedData             [16]byte
	FileCount                uint32
}

// DefaultBlockSize is the advisory BlockSize written by Create, matching
// spec.md §3's stated default.
const DefaultBlockSize uint32 = 262144

func isValidSignature(sig uint32) bool {
	return sig == SignaturePrimary || sig == SignatureLegacy
}

// packHeader serialises h to exactly HeaderSize bytes, little-endian.
func packHeader(h *Header) ([]byte, error) {
	buf, err := restruct.Pack(binary.LittleEndian, h)
	if err != nil {
		return nil, lerrors.NewFormatError(lerrors.InvalidSizes, "packing header", err)
	}
	if len(buf) != HeaderSize {
		return nil, lerrors.NewFormatError(lerrors.InvalidSizes, "packed header size mismatch", nil)
	}
	return buf, nil
}

// unpackHeader parses buf (must be exactly HeaderSize bytes) into a
// Header, without validating its contents — validation is a separate
// pass (validate.go) so errors can be attributed precisely.
func unpackHeader(buf []byte) (*Header, error) {
	if len(buf) != HeaderSize {
		return nil, lerrors.NewFormatError(lerrors.ArchiveTooSmall, "archive shorter than header", nil)
	}
	var h Header
	if err := restruct.Unpack(buf, binary.LittleEndian, &h); err != nil {
		return nil, lerrors.NewFormatError(lerrors.InvalidSignature, "unpacking header", err)
	}
	return &h, nil
}
