// Package codec implements the archive engine's six streaming compressors
// — Store, LZSS, LZHUF, DEFLATE, LZW, LZ77 — behind one Codec interface and
// a Method→Codec registry, replacing the switch-per-call-site dispatch the
// REDESIGN FLAGS note in spec.md calls out. The on-disk Method byte is
// still the tag; dispatch through Lookup is a single polymorphic call.
package codec

import (
	"bytes"
	"io"

	lerrors "lark/pkg/errors"
)

// Method is the on-disk CompressionMethod tag.
type Method byte

// The six supported compression methods.
const (
	Store   Method = 0
	LZSS    Method = 1
	LZHUF   Method = 2
	Deflate Method = 3
	LZW     Method = 4
	LZ77    Method = 5
)

// Valid reports whether m is one of the six supported methods.
func (m Method) Valid() bool {
	return m <= LZ77
}

// Codec is implemented by every compressor. Decompress must be the exact
// inverse of Compress for the same codec, for every byte sequence and
// every level: round-trip equality is a hard correctness requirement.
// Codecs are stateless across invocations — no cross-entry dictionaries.
type Codec interface {
	Compress(w io.Writer, r io.Reader, level int) error
	Decompress(w io.Writer, r io.Reader) error
}

var registry = map[Method]Codec{
	Store:   storeCodec{},
	LZSS:    lzssCodec{},
	LZHUF:   lzhufCodec{},
	Deflate: deflateCodec{},
	LZW:     lzwCodec{},
	LZ77:    lz77Codec{},
}

// Lookup resolves m to its Codec implementation.
func Lookup(m Method) (Codec, error) {
	c, ok := registry[m]
	if !ok {
		return nil, lerrors.NewFormatError(lerrors.InvalidCompressionMethod, "unknown compression method", nil)
	}
	return c, nil
}

// CompressBuffer compresses all of src with the codec for m at the given
// level and returns the compressed bytes.
func CompressBuffer(m Method, level int, src []byte) ([]byte, error) {
	c, err := Lookup(m)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := c.Compress(&out, bytes.NewReader(src), level); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecompressBuffer decompresses src with the codec for m, refusing to
// write more than originalSize*expansionCap bytes (expansionCap bytes
// when originalSize is 0) — the defensive expansion guard spec.md §4.11
// requires at decompress time. Empty output is returned as a non-nil,
// zero-length slice.
func DecompressBuffer(m Method, src []byte, originalSize int64, expansionCap int64) ([]byte, error) {
	c, err := Lookup(m)
	if err != nil {
		return nil, err
	}
	limit := originalSize * expansionCap
	if limit <= 0 {
		limit = expansionCap
	}
	sink := newBoundedBuffer(limit)
	if err := c.Decompress(sink, bytes.NewReader(src)); err != nil {
		return nil, err
	}
	if sink.buf.Len() == 0 {
		return []byte{}, nil
	}
	return sink.buf.Bytes(), nil
}

// boundedBuffer is a sink that fails fast once more than limit bytes have
// been written to it, guarding against decompression bombs.
type boundedBuffer struct {
	buf   bytes.Buffer
	limit int64
}

func newBoundedBuffer(limit int64) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len())+int64(len(p)) > b.limit {
		return 0, lerrors.NewFormatError(lerrors.InvalidSizes, "decompressed output exceeds expansion guard", nil)
	}
	return b.buf.Write(p)
}
