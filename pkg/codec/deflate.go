package codec

import (
	"io"

	"github.com/klauspost/compress/zlib"

	lerrors "lark/pkg/errors"
)

// deflateCodec is a thin binding over a zlib-format (RFC 1950) stream,
// using github.com/klauspost/compress/zlib rather than the stdlib
// implementation — a drop-in, wire-compatible replacement already present
// in the example corpus's dependency graph.
type deflateCodec struct{}

// deflateLevel maps the archive's 0..9 CompressionLevel to zlib's level
// constants per spec.md §4.10: 0 -> none, 1 -> fastest, 2..6 -> default,
// 7..9 -> max.
func deflateLevel(level int) int {
	switch {
	case level <= 0:
		return zlib.NoCompression
	case level == 1:
		return zlib.BestSpeed
	case level <= 6:
		return zlib.DefaultCompression
	default:
		return zlib.BestCompression
	}
}

func (deflateCodec) Compress(w io.Writer, r io.Reader, level int) error {
	zw, err := zlib.NewWriterLevel(w, deflateLevel(level))
	if err != nil {
		return lerrors.NewCompressionError(byte(Deflate), "creating zlib writer", err)
	}
	if _, err := io.Copy(zw, r); err != nil {
		zw.Close()
		return lerrors.NewCompressionError(byte(Deflate), "writing compressed data", err)
	}
	if err := zw.Close(); err != nil {
		return lerrors.NewCompressionError(byte(Deflate), "closing zlib writer", err)
	}
	return nil
}

func (deflateCodec) Decompress(w io.Writer, r io.Reader) error {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return lerrors.NewCompressionError(byte(Deflate), "creating zlib reader", err)
	}
	defer zr.Close()
	if _, err := io.Copy(w, zr); err != nil {
		return lerrors.NewCompressionError(byte(Deflate), "reading decompressed data", err)
	}
	return nil
}
