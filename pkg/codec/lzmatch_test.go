package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A match at exactly windowSize away is outside the window (the window
// holds windowSize prior bytes, positions pos-1 .. pos-windowSize), so
// find must never report a distance of windowSize or more — lzss.go's
// 12-bit distance field can only represent up to windowSize-1.
func TestMatcherNeverReturnsDistanceAtWindowEdge(t *testing.T) {
	windowSize := 16
	data := make([]byte, 0, windowSize+8)
	data = append(data, 'X', 'Y', 'Z')
	for len(data) < windowSize {
		data = append(data, 0)
	}
	data = append(data, 'X', 'Y', 'Z')

	m := newMatcher(data, windowSize, 3, 18, 512)
	for i := 0; i < len(data); i++ {
		if dist, length := m.find(i); length > 0 {
			require.Less(t, dist, windowSize)
		}
		m.insert(i)
	}
}
