package codec

import (
	"io"

	"lark/pkg/bitio"
	lerrors "lark/pkg/errors"
)

// LZHUF layers the adaptive Huffman alphabet in huffman.go over the same
// LZSS front end parameters as lzssCodec — 4 KiB window, match length
// 3..18, 512-entry chain — so the two codecs share lzss* constants.
//
// The alphabet as specified (0..253 literal, 254 end-of-stream, 255
// match-follows) has no symbol for literal byte values 254 and 255
// themselves. Those two bytes are encoded as the match-follows symbol
// with distance fixed at the sentinel value 0 (never produced by a real
// match, whose minimum distance is 1) and the length nibble's low bit
// selecting which of the two bytes it is. Decoder and encoder agree on
// this escape, and it never perturbs the frequency table since marker
// 255 is already exempt from frequency updates.
type lzhufCodec struct{}

func (lzhufCodec) Compress(w io.Writer, r io.Reader, _ int) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return lerrors.NewCompressionError(byte(LZHUF), "reading input", err)
	}
	return encodeLZHUF(w, data)
}

func (lzhufCodec) Decompress(w io.Writer, r io.Reader) error {
	return decodeLZHUF(w, r)
}

func encodeLZHUF(w io.Writer, data []byte) error {
	bw := bitio.NewWriter(w)
	model := newHuffmanModel()
	m := newMatcher(data, lzssWindowSize, lzssMinMatch, lzssMaxMatch, lzssMaxChain)

	pos := 0
	for pos < len(data) {
		distance, length := m.find(pos)
		if length >= m.minMatch {
			if err := model.encodeSymbol(bw, huffmanMatchFollows); err != nil {
				return lerrors.NewCompressionError(byte(LZHUF), "writing match marker", err)
			}
			if err := bw.WriteBits(uint32(distance), 12); err != nil {
				return lerrors.NewCompressionError(byte(LZHUF), "writing match distance", err)
			}
			if err := bw.WriteBits(uint32(length-lzssMinMatch), 4); err != nil {
				return lerrors.NewCompressionError(byte(LZHUF), "writing match length", err)
			}
			for i := 0; i < length; i++ {
				m.insert(pos + i)
			}
			pos += length
			continue
		}

		c := data[pos]
		if c > huffmanLiteralMax {
			if err := model.encodeSymbol(bw, huffmanMatchFollows); err != nil {
				return lerrors.NewCompressionError(byte(LZHUF), "writing escape marker", err)
			}
			if err := bw.WriteBits(0, 12); err != nil {
				return lerrors.NewCompressionError(byte(LZHUF), "writing escape sentinel", err)
			}
			escapeBit := uint32(0)
			if c == 255 {
				escapeBit = 1
			}
			if err := bw.WriteBits(escapeBit, 4); err != nil {
				return lerrors.NewCompressionError(byte(LZHUF), "writing escape selector", err)
			}
		} else {
			if err := model.encodeSymbol(bw, int(c)); err != nil {
				return lerrors.NewCompressionError(byte(LZHUF), "writing literal", err)
			}
		}
		m.insert(pos)
		pos++
	}

	if err := model.encodeSymbol(bw, huffmanEndOfStream); err != nil {
		return lerrors.NewCompressionError(byte(LZHUF), "writing end marker", err)
	}
	if err := bw.Close(); err != nil {
		return lerrors.NewCompressionError(byte(LZHUF), "flushing bit writer", err)
	}
	return nil
}

func decodeLZHUF(w io.Writer, r io.Reader) error {
	br := bitio.NewReader(r)
	model := newHuffmanModel()
	out := make([]byte, 0, 4096)

	for {
		if br.AtEOF() {
			return lerrors.NewCompressionError(byte(LZHUF), "truncated stream, missing end marker", nil)
		}
		sym := model.decodeSymbol(br)
		if sym == huffmanEndOfStream {
			break
		}
		if sym == huffmanMatchFollows {
			distance := int(br.ReadBits(12))
			lenField := int(br.ReadBits(4))
			if distance == 0 {
				if lenField&1 == 1 {
					out = append(out, 255)
				} else {
					out = append(out, 254)
				}
				continue
			}
			length := lenField + lzssMinMatch
			if distance > len(out) {
				return lerrors.NewCompressionError(byte(LZHUF), "invalid match distance", nil)
			}
			start := len(out) - distance
			for i := 0; i < length; i++ {
				out = append(out, out[start+i])
			}
			continue
		}
		out = append(out, byte(sym))
	}

	if _, err := w.Write(out); err != nil {
		return lerrors.NewCompressionError(byte(LZHUF), "writing output", err)
	}
	return nil
}
