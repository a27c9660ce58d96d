//go:build amd64 && !purego

package fixed

import (
	"testing"

	"golang.org/x/sys/cpu"
)

func TestDotAVX2MatchesGeneric(t *testing.T) {
	if !cpu.X86.HasAVX2 {
		t.Skip("AVX2 not available")
	}
	for _, n := range []int{8, 16, 64, 256, 320} {
		x := make([]int16, n)
		y := make([]int16, n)
		for i := range x {
			x[i] = MinInt16
			y[i] = MinInt16
		}
		if got, want := dotAVX2(x, y), int64(n)<<30; got != want {
			t.Fatalf("n=%d all -32768: got %d, want %d", n, got, want)
		}
		for i := range x {
			x[i] = int16(i*977 - 30000)
			y[i] = int16(32767 - i*911)
		}
		if got, want := dotAVX2(x, y), dotGeneric(x, y); got != want {
			t.Fatalf("n=%d: got %d, want %d", n, got, want)
		}
	}
}
