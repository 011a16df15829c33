package codec

import (
	"encoding/binary"
	"io"

	lerrors "lark/pkg/errors"
)

// LZSS parameters (spec.md §4.6). The framing worked out in the encoder
// and decoder below — a 12-bit distance and a 4-bit (length-3) field
// packed into two payload bytes — only has room for length 3..18, which
// is the classic LZSS scheme and matches the LZHUF front end in §4.8
// exactly. The "3-258 match length" figure in the component summary table
// doesn't fit that framing; the worked byte layout is authoritative since
// it's what round-trip correctness is tested against (see DESIGN.md).
const (
	lzssWindowSize = 4096
	lzssMinMatch   = 3
	lzssMaxMatch   = 18
	lzssMaxChain   = 512
	lzssBlockSize  = 64 * 1024

	lzssFlagByte    = 0xFF
	lzssEscapeLit   = 0xFE
)

type lzssCodec struct{}

func (lzssCodec) Compress(w io.Writer, r io.Reader, _ int) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return lerrors.NewCompressionError(byte(LZSS), "reading input", err)
	}
	return encodeLZSSBlocks(w, data, lzssWindowSize, lzssMinMatch, lzssMaxMatch, lzssMaxChain)
}

func (lzssCodec) Decompress(w io.Writer, r io.Reader) error {
	return decodeLZSSBlocks(w, r)
}

// encodeLZSSBlocks emits the data in lzssBlockSize input chunks, each
// preceded by its compressed byte length as a little-endian u32, per
// spec.md's block framing. The decoder starts every block with an empty
// window, so encodeLZSSBlock only emits matches that lie wholly inside
// the current block.
func encodeLZSSBlocks(w io.Writer, data []byte, windowSize, minMatch, maxMatch, maxChain int) error {
	m := newMatcher(data, windowSize, minMatch, maxMatch, maxChain)

	pos := 0
	wroteAny := false
	for pos < len(data) || !wroteAny {
		end := pos + lzssBlockSize
		if end > len(data) {
			end = len(data)
		}
		block := encodeLZSSBlock(m, data, pos, end)
		if err := writeLZBlock(w, block); err != nil {
			return err
		}
		wroteAny = true
		pos = end
		if len(data) == 0 {
			break
		}
	}
	return nil
}

func encodeLZSSBlock(m *matcher, data []byte, start, end int) []byte {
	out := make([]byte, 0, end-start)
	pos := start
	for pos < end {
		distance, length := m.find(pos)
		if length > end-pos {
			length = end - pos
		}
		// A distance whose low byte is lzssEscapeLit would read back as
		// the escaped 0xFF literal, so such matches are emitted as literals.
		if length >= m.minMatch && pos-distance >= start && byte(distance) != lzssEscapeLit {
			low8 := byte(distance & 0xFF)
			hi4 := byte((distance >> 8) & 0x0F)
			b2 := hi4 | byte((length-3)<<4)
			out = append(out, lzssFlagByte, low8, b2)
			for i := 0; i < length; i++ {
				m.insert(pos + i)
			}
			pos += length
		} else {
			c := data[pos]
			if c == lzssFlagByte {
				out = append(out, lzssFlagByte, lzssEscapeLit)
			} else {
				out = append(out, c)
			}
			m.insert(pos)
			pos++
		}
	}
	return out
}

func decodeLZSSBlocks(w io.Writer, r io.Reader) error {
	for {
		block, err := readLZBlock(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return lerrors.NewCompressionError(byte(LZSS), "reading block", err)
		}
		out, err := decodeLZSSBlock(block)
		if err != nil {
			return err
		}
		if _, err := w.Write(out); err != nil {
			return lerrors.NewCompressionError(byte(LZSS), "writing output", err)
		}
	}
}

func decodeLZSSBlock(block []byte) ([]byte, error) {
	out := make([]byte, 0, len(block))
	i := 0
	for i < len(block) {
		b := block[i]
		i++
		if b != lzssFlagByte {
			out = append(out, b)
			continue
		}
		if i >= len(block) {
			return nil, lerrors.NewCompressionError(byte(LZSS), "truncated flag token", nil)
		}
		if block[i] == lzssEscapeLit {
			out = append(out, lzssFlagByte)
			i++
			continue
		}
		if i+1 >= len(block) {
			return nil, lerrors.NewCompressionError(byte(LZSS), "truncated match token", nil)
		}
		low8 := block[i]
		b2 := block[i+1]
		i += 2
		distance := int(low8) | int(b2&0x0F)<<8
		length := int(b2>>4) + 3
		if distance < 1 || distance > len(out) {
			return nil, lerrors.NewCompressionError(byte(LZSS), "invalid match distance", nil)
		}
		start := len(out) - distance
		for j := 0; j < length; j++ {
			out = append(out, out[start+j])
		}
	}
	return out, nil
}

// writeLZBlock and readLZBlock implement the shared u32-length-prefixed
// block framing used by LZSS and LZ77.
func writeLZBlock(w io.Writer, block []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(block)))
	if _, err := w.Write(hdr[:]); err != nil {
		return lerrors.NewCompressionError(byte(LZSS), "writing block header", err)
	}
	if _, err := w.Write(block); err != nil {
		return lerrors.NewCompressionError(byte(LZSS), "writing block payload", err)
	}
	return nil
}

func readLZBlock(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	block := make([]byte, n)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, err
	}
	return block, nil
}
