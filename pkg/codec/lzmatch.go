package codec

// matcher is a hash-chain longest-match finder shared by the LZSS, LZHUF
// front end, and LZ77 codecs. Each keeps its own matcher instance
// parameterized by window size, match-length bounds, and chain depth —
// the "dictionary contract" design notes in spec.md §9 call out: any
// search strategy is fine as long as the emitted (distance, length) pair
// is honoured identically by encoder and decoder.
//
// The hash-chain walk technique mirrors the bounded brute-force search in
// HOKORISAMA's LZSS port and the chain-threaded index in
// rutvijjoshi26/parallel-compressor-go's hashed LZ77 tokenizer.
type matcher struct {
	data       []byte
	head       []int32
	prev       []int32
	windowSize int
	minMatch   int
	maxMatch   int
	maxChain   int
	hash       func([]byte, int) uint32
}

const matchHashBits = 16
const matchHashSize = 1 << matchHashBits

func newMatcher(data []byte, windowSize, minMatch, maxMatch, maxChain int) *matcher {
	return newMatcherWithHash(data, windowSize, minMatch, maxMatch, maxChain, matchHash)
}

// newMatcherWithHash builds a matcher with a caller-supplied 3-byte hash
// function. LZSS and the LZHUF front end share the default shift-xor
// hash; LZ77 uses an xxhash-derived one instead (see lz77.go).
func newMatcherWithHash(data []byte, windowSize, minMatch, maxMatch, maxChain int, hash func([]byte, int) uint32) *matcher {
	head := make([]int32, matchHashSize)
	for i := range head {
		head[i] = -1
	}
	return &matcher{
		data:       data,
		head:       head,
		prev:       make([]int32, len(data)),
		windowSize: windowSize,
		minMatch:   minMatch,
		maxMatch:   maxMatch,
		maxChain:   maxChain,
		hash:       hash,
	}
}

func matchHash(data []byte, pos int) uint32 {
	var h uint32
	for i := 0; i < 3; i++ {
		h = h<<5 ^ uint32(data[pos+i])
	}
	return h & (matchHashSize - 1)
}

// insert records pos in the hash chain so later positions can find it.
// It is a no-op near the end of data where a 3-byte hash can't be formed.
func (m *matcher) insert(pos int) {
	if pos+3 > len(m.data) {
		return
	}
	h := m.hash(m.data, pos)
	m.prev[pos] = m.head[h]
	m.head[h] = int32(pos)
}

// find returns the longest match at pos within the window, or (0, 0) if
// no match of at least minMatch bytes exists.
func (m *matcher) find(pos int) (distance, length int) {
	if pos+m.minMatch > len(m.data) || pos+3 > len(m.data) {
		return 0, 0
	}
	maxLen := len(m.data) - pos
	if maxLen > m.maxMatch {
		maxLen = m.maxMatch
	}

	h := m.hash(m.data, pos)
	candidate := m.head[h]
	chain := 0
	for candidate >= 0 && chain < m.maxChain {
		dist := pos - int(candidate)
		if dist >= m.windowSize {
			break
		}
		l := matchLength(m.data, int(candidate), pos, maxLen)
		if l > length {
			length = l
			distance = dist
			if length == maxLen {
				break
			}
		}
		candidate = m.prev[candidate]
		chain++
	}
	if length < m.minMatch {
		return 0, 0
	}
	return distance, length
}

func matchLength(data []byte, a, b, maxLen int) int {
	l := 0
	for l < maxLen && data[a+l] == data[b+l] {
		l++
	}
	return l
}
