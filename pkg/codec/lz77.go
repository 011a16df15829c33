package codec

import (
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash/v2"

	lerrors "lark/pkg/errors"
)

// LZ77 parameters (spec.md §4.7): 32 KiB window, minimum match 2, chain
// depth 512. Tokens are framed with a bit-flag per 8 tokens (1 = match,
// 0 = literal), a little-endian u16 distance, and a length-bias byte
// (length-2). The length-bias byte only has 8 bits, so the largest
// encodable match is 257, one short of the 258 mentioned in the summary
// table; clamped here rather than in the matcher so the matcher stays
// parameter-driven.
const (
	lz77WindowSize = 32768
	lz77MinMatch   = 2
	lz77MaxMatch   = 257
	lz77MaxChain   = 512
	lz77BlockSize  = 64 * 1024

	lz77TokensPerFlag = 8
)

type lz77Codec struct{}

func (lz77Codec) Compress(w io.Writer, r io.Reader, _ int) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return lerrors.NewCompressionError(byte(LZ77), "reading input", err)
	}
	return encodeLZ77Blocks(w, data)
}

func (lz77Codec) Decompress(w io.Writer, r io.Reader) error {
	return decodeLZ77Blocks(w, r)
}

func encodeLZ77Blocks(w io.Writer, data []byte) error {
	m := newLZ77Matcher(data)

	pos := 0
	wroteAny := false
	for pos < len(data) || !wroteAny {
		end := pos + lz77BlockSize
		if end > len(data) {
			end = len(data)
		}
		block := encodeLZ77Block(m, data, pos, end)
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

// newLZ77Matcher builds a matcher keyed on an xxhash-derived bucket
// instead of the ad hoc shift-xor hash lzmatch.go uses internally for
// LZSS, giving LZ77 a distinct, faster-mixing hash as spec.md's design
// notes leave the search strategy unspecified.
func newLZ77Matcher(data []byte) *matcher {
	return newMatcherWithHash(data, lz77WindowSize, lz77MinMatch, lz77MaxMatch, lz77MaxChain, xxMatchHash)
}

func xxMatchHash(data []byte, pos int) uint32 {
	return uint32(xxhash.Sum64(data[pos:pos+3])) & (matchHashSize - 1)
}

func encodeLZ77Block(m *matcher, data []byte, start, end int) []byte {
	var tokens []lz77Token
	pos := start
	for pos < end {
		distance, length := m.find(pos)
		// decodeLZ77Block starts each block with empty output, so a match
		// must neither reach back before start nor run past end.
		if length > end-pos {
			length = end - pos
		}
		if length >= m.minMatch && pos-distance >= start {
			tokens = append(tokens, lz77Token{isMatch: true, distance: distance, length: length})
			for i := 0; i < length; i++ {
				m.insert(pos + i)
			}
			pos += length
		} else {
			tokens = append(tokens, lz77Token{isMatch: false, literal: data[pos]})
			m.insert(pos)
			pos++
		}
	}
	return packLZ77Tokens(tokens)
}

type lz77Token struct {
	isMatch  bool
	literal  byte
	distance int
	length   int
}

func packLZ77Tokens(tokens []lz77Token) []byte {
	out := make([]byte, 0, len(tokens)*2)
	for i := 0; i < len(tokens); i += lz77TokensPerFlag {
		groupEnd := i + lz77TokensPerFlag
		if groupEnd > len(tokens) {
			groupEnd = len(tokens)
		}
		group := tokens[i:groupEnd]
		var flag byte
		for j, t := range group {
			if t.isMatch {
				flag |= 1 << uint(j)
			}
		}
		out = append(out, flag)
		for _, t := range group {
			if t.isMatch {
				var buf [3]byte
				binary.LittleEndian.PutUint16(buf[:2], uint16(t.distance))
				buf[2] = byte(t.length - lz77MinMatch)
				out = append(out, buf[:]...)
			} else {
				out = append(out, t.literal)
			}
		}
	}
	return out
}

func decodeLZ77Blocks(w io.Writer, r io.Reader) error {
	for {
		block, err := readLZBlock(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return lerrors.NewCompressionError(byte(LZ77), "reading block", err)
		}
		out, err := decodeLZ77Block(block)
		if err != nil {
			return err
		}
		if _, err := w.Write(out); err != nil {
			return lerrors.NewCompressionError(byte(LZ77), "writing output", err)
		}
	}
}

func decodeLZ77Block(block []byte) ([]byte, error) {
	out := make([]byte, 0, len(block))
	i := 0
	for i < len(block) {
		flag := block[i]
		i++
		for j := 0; j < lz77TokensPerFlag; j++ {
			if i >= len(block) {
				return out, nil
			}
			if flag&(1<<uint(j)) != 0 {
				if i+2 >= len(block) {
					return nil, lerrors.NewCompressionError(byte(LZ77), "truncated match token", nil)
				}
				distance := int(binary.LittleEndian.Uint16(block[i : i+2]))
				length := int(block[i+2]) + lz77MinMatch
				i += 3
				if distance < 1 || distance > len(out) {
					// spec.md's clamp keeps the decoder making forward
					// progress on a corrupted distance instead of
					// rejecting; the CRC catches the resulting damage.
					if len(out) == 0 {
						return nil, lerrors.NewCompressionError(byte(LZ77), "invalid match distance at empty output", nil)
					}
					distance = 1
				}
				start := len(out) - distance
				for k := 0; k < length; k++ {
					out = append(out, out[start+k])
				}
			} else {
				out = append(out, block[i])
				i++
			}
		}
	}
	return out, nil
}
