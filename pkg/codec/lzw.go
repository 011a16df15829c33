package codec

import (
	"io"

	"lark/pkg/bitio"
	lerrors "lark/pkg/errors"
)

// LZW implements classic variable-width LZW (spec.md §4.9) independently
// of the standard library's compress/lzw, which has no CLEAR/END code
// concept and a fixed order/litWidth contract that doesn't match this
// container's framing. Grounded on the general hash-chain dictionary
// growth idea shared with rutvijjoshi26/parallel-compressor-go's
// tokenizer, adapted from an offset/length alphabet to a code-table one.
const (
	lzwMinWidth  = 9
	lzwMaxWidth  = 16
	lzwClearCode = 256
	lzwEndCode   = 257
	lzwFirstFree = 258
)

type lzwCodec struct{}

func (lzwCodec) Compress(w io.Writer, r io.Reader, _ int) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return lerrors.NewCompressionError(byte(LZW), "reading input", err)
	}
	return encodeLZW(w, data)
}

func (lzwCodec) Decompress(w io.Writer, r io.Reader) error {
	return decodeLZW(w, r)
}

func encodeLZW(w io.Writer, data []byte) error {
	bw := bitio.NewWriter(w)

	dict := make(map[string]uint16)
	resetLZWDict := func() {
		dict = make(map[string]uint16, lzwFirstFree*2)
	}
	resetLZWDict()

	width := uint(lzwMinWidth)
	nextCode := lzwFirstFree

	emit := func(code int) error {
		return bw.WriteBits(uint32(code), width)
	}

	if err := emit(lzwClearCode); err != nil {
		return lerrors.NewCompressionError(byte(LZW), "writing clear code", err)
	}

	if len(data) == 0 {
		if err := emit(lzwEndCode); err != nil {
			return lerrors.NewCompressionError(byte(LZW), "writing end code", err)
		}
		if err := bw.Close(); err != nil {
			return lerrors.NewCompressionError(byte(LZW), "flushing bit writer", err)
		}
		return nil
	}

	cur := string(data[0:1])
	for i := 1; i < len(data); i++ {
		c := data[i : i+1]
		next := cur + string(c)
		if _, ok := dict[next]; ok {
			cur = next
			continue
		}

		code, err := lzwCodeOf(cur, dict)
		if err != nil {
			return err
		}
		if err := emit(code); err != nil {
			return lerrors.NewCompressionError(byte(LZW), "writing code", err)
		}

		if nextCode >= (1 << lzwMaxWidth) {
			if err := emit(lzwClearCode); err != nil {
				return lerrors.NewCompressionError(byte(LZW), "writing clear code", err)
			}
			resetLZWDict()
			width = lzwMinWidth
			nextCode = lzwFirstFree
		} else {
			dict[next] = uint16(nextCode)
			nextCode++
			for nextCode > (1<<width)-1 && width < lzwMaxWidth {
				width++
			}
		}
		cur = string(c)
	}

	code, err := lzwCodeOf(cur, dict)
	if err != nil {
		return err
	}
	if err := emit(code); err != nil {
		return lerrors.NewCompressionError(byte(LZW), "writing final code", err)
	}
	if err := emit(lzwEndCode); err != nil {
		return lerrors.NewCompressionError(byte(LZW), "writing end code", err)
	}
	if err := bw.Close(); err != nil {
		return lerrors.NewCompressionError(byte(LZW), "flushing bit writer", err)
	}
	return nil
}

// lzwCodeOf returns the code for cur: a dictionary lookup for any string
// longer than one byte (every such cur reaching this point was already
// confirmed present by the extend-or-emit loop above), falling back to
// the seed code for a single unseen byte.
func lzwCodeOf(cur string, dict map[string]uint16) (int, error) {
	if len(cur) == 1 {
		return int(cur[0]), nil
	}
	code, ok := dict[cur]
	if !ok {
		return 0, lerrors.NewCompressionError(byte(LZW), "internal encoder state error", nil)
	}
	return int(code), nil
}

func decodeLZW(w io.Writer, r io.Reader) error {
	br := bitio.NewReader(r)

	type dictEntry struct {
		s string
	}
	var dict []dictEntry
	resetLZWDecodeDict := func() {
		dict = make([]dictEntry, lzwFirstFree, 1<<lzwMaxWidth)
		for i := 0; i < 256; i++ {
			dict[i] = dictEntry{s: string([]byte{byte(i)})}
		}
	}

	width := uint(lzwMinWidth)
	var prev string
	out := make([]byte, 0, 4096)

	readCode := func() (int, error) {
		if br.AtEOF() {
			return 0, io.ErrUnexpectedEOF
		}
		return int(br.ReadBits(width)), nil
	}

	resetLZWDecodeDict()
	for {
		code, err := readCode()
		if err != nil {
			return lerrors.NewCompressionError(byte(LZW), "truncated stream", err)
		}
		if code == lzwClearCode {
			resetLZWDecodeDict()
			width = lzwMinWidth
			prev = ""
			continue
		}
		if code == lzwEndCode {
			break
		}

		var s string
		if code < len(dict) {
			s = dict[code].s
		} else if code == len(dict) && prev != "" {
			s = prev + prev[:1]
		} else {
			return lerrors.NewCompressionError(byte(LZW), "invalid code", nil)
		}

		out = append(out, s...)

		if prev != "" && len(dict) < (1<<lzwMaxWidth) {
			dict = append(dict, dictEntry{s: prev + s[:1]})
			// The decoder adds each entry one code after the encoder did,
			// so len(dict) here is the encoder's nextCode minus one.
			for len(dict)+1 > (1<<width)-1 && width < lzwMaxWidth {
				width++
			}
		}
		prev = s
	}

	if _, err := w.Write(out); err != nil {
		return lerrors.NewCompressionError(byte(LZW), "writing output", err)
	}
	return nil
}
