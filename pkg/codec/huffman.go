package codec

import (
	"container/heap"

	"lark/pkg/bitio"
)

// adaptiveHuffman implements the 256-symbol adaptive Huffman alphabet
// LZHUF layers on top of its LZSS front end (spec.md §4.8): symbols
// 0..253 are literal bytes, 254 is end-of-stream, 255 signals "a match
// token follows". The tree is rebuilt from scratch every
// huffmanRebuildInterval symbol-frequency increments rather than
// incrementally reshaped, trading a little compression for a simple,
// easy-to-mirror-in-the-decoder rebuild step — the same tradeoff
// jeromelesaux's lzh port makes.
const (
	huffmanSymbols           = 256
	huffmanLiteralMax        = 253
	huffmanEndOfStream       = 254
	huffmanMatchFollows      = 255
	huffmanRebuildInterval   = 4096
)

type huffNode struct {
	freq        int
	symbol      int // -1 for internal nodes
	left, right *huffNode
}

// huffHeap is a container/heap min-heap over huffNode, used only while
// building a tree; the resulting codes are flattened into tables before
// compression begins so encode/decode never touch the heap.
type huffHeap []*huffNode

func (h huffHeap) Len() int            { return len(h) }
func (h huffHeap) Less(i, j int) bool  { return h[i].freq < h[j].freq }
func (h huffHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *huffHeap) Push(x interface{}) { *h = append(*h, x.(*huffNode)) }
func (h *huffHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// huffmanModel tracks running symbol frequencies and the current code
// table derived from them. Both encoder and decoder keep one, fed the
// same sequence of symbols, so they rebuild identically without needing
// to exchange the tree.
type huffmanModel struct {
	freq         [huffmanSymbols]int
	codes        [huffmanSymbols]huffCode
	root         *huffNode
	sinceRebuild int
}

type huffCode struct {
	bits   uint32
	length int
}

func newHuffmanModel() *huffmanModel {
	m := &huffmanModel{}
	for i := range m.freq {
		m.freq[i] = 1
	}
	m.rebuild()
	return m
}

// update bumps the frequency for sym and rebuilds the tree every
// huffmanRebuildInterval increments.
func (m *huffmanModel) update(sym int) {
	m.freq[sym]++
	m.sinceRebuild++
	if m.sinceRebuild >= huffmanRebuildInterval {
		m.rebuild()
		m.sinceRebuild = 0
	}
}

func (m *huffmanModel) rebuild() {
	h := make(huffHeap, 0, huffmanSymbols)
	for sym, f := range m.freq {
		h = append(h, &huffNode{freq: f, symbol: sym})
	}
	heap.Init(&h)

	for h.Len() > 1 {
		a := heap.Pop(&h).(*huffNode)
		b := heap.Pop(&h).(*huffNode)
		heap.Push(&h, &huffNode{freq: a.freq + b.freq, symbol: -1, left: a, right: b})
	}

	var codes [huffmanSymbols]huffCode
	if h.Len() == 1 {
		assignCodes(h[0], 0, 0, &codes)
		m.root = h[0]
	}
	m.codes = codes
}

func assignCodes(n *huffNode, bits uint32, length int, out *[huffmanSymbols]huffCode) {
	if n.symbol >= 0 {
		if length == 0 {
			// Single-symbol tree (e.g. first byte of input): assign a
			// 1-bit code so the bit writer always has something to emit.
			length = 1
		}
		out[n.symbol] = huffCode{bits: bits, length: length}
		return
	}
	assignCodes(n.left, bits<<1, length+1, out)
	assignCodes(n.right, bits<<1|1, length+1, out)
}

// decodeSymbol walks the tree cached from the last rebuild bit by bit and
// applies the same frequency update the encoder applied after emitting it.
func (m *huffmanModel) decodeSymbol(br *bitio.Reader) int {
	n := m.root
	for n.symbol < 0 {
		if br.ReadBit() {
			n = n.right
		} else {
			n = n.left
		}
	}
	sym := n.symbol
	if sym <= huffmanLiteralMax {
		m.update(sym)
	}
	return sym
}

// encodeSymbol writes sym's current Huffman code to bw, then updates the
// running frequency table — unless sym is one of the two markers, which
// spec.md excludes from the frequency schedule.
func (m *huffmanModel) encodeSymbol(bw *bitio.Writer, sym int) error {
	c := m.codes[sym]
	if err := bw.WriteBits(c.bits, uint(c.length)); err != nil {
		return err
	}
	if sym <= huffmanLiteralMax {
		m.update(sym)
	}
	return nil
}
