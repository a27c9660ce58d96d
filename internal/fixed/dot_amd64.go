//go:build amd64 && !purego

package fixed

import "golang.org/x/sys/cpu"

func init() {
	if cpu.X86.HasAVX2 {
		dotImpl = dotBlocksAVX2
	}
}

// dotBlocksAVX2 runs the vector kernel over whole blocks of eight and
// finishes the tail in Go.
func dotBlocksAVX2(x, y []int16) int64 {
	n := len(x) &^ 7
	var acc int64
	if n > 0 {
		acc = dotAVX2(x[:n], y[:n])
	}
	for i := n; i < len(x); i++ {
		acc += int64(x[i]) * int64(y[i])
	}
	return acc
}

// dotAVX2 requires len(x) to be a multiple of 8 and len(y) >= len(x).
// Products are widened to 32 bits before multiplying so -32768*-32768 is
// exact, then accumulated in 64-bit lanes.
//
//go:noescape
func dotAVX2(x, y []int16) int64
