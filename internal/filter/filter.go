// Package filter implements the fixed-point signal filters that surround the
// codec core: emphasis, high-pass, LPC synthesis/analysis, convolution and
// the 16 kHz <-> 12.8 kHz resamplers.
package filter

import "github.com/thesyncim/amrwb/internal/fixed"

// Order is the LPC order used throughout the codec.
const Order = 16

// Preemph applies x[n] -= mu*x[n-1] in place. mem holds x[-1].
func Preemph(x []int16, mu int16, mem *int16) {
	prev := *mem
	for i := range x {
		cur := x[i]
		x[i] = fixed.Sat16(int32(cur) - (int32(mu)*int32(prev)+0x4000)>>15)
		prev = cur
	}
	*mem = prev
}

// Deemph applies y[n] = x[n] + mu*y[n-1] in place. mem holds y[-1].
func Deemph(x []int16, mu int16, mem *int16) {
	prev := *mem
	for i := range x {
		prev = fixed.Sat16(int32(x[i]) + (int32(mu)*int32(prev)+0x4000)>>15)
		x[i] = prev
	}
	*mem = prev
}

// SynFilt filters x through 1/A(z) into y. a holds Order+1 Q12 coefficients
// with a[0] = 4096. mem holds the last Order outputs (oldest first) and is
// updated when update is true. x and y may alias.
func SynFilt(a []int16, x, y []int16, mem []int16, update bool) {
	var buf [Order + 320]int16
	copy(buf[:Order], mem[:Order])
	yy := buf[:Order+len(x)]
	for n := range x {
		acc := int64(x[n]) * int64(a[0])
		for i := 1; i <= Order; i++ {
			acc -= int64(a[i]) * int64(yy[Order+n-i])
		}
		yy[Order+n] = fixed.Sat16L((acc + 0x800) >> 12)
	}
	copy(y, yy[Order:])
	if update {
		copy(mem[:Order], yy[len(x):len(x)+Order])
	}
}

// SynFilt32 is SynFilt with a caller-visible int32 accumulator shift, used for
// impulse responses that must not saturate early.
func SynFilt32(a []int16, x []int32, y []int32) {
	for n := range x {
		acc := int64(x[n]) * int64(a[0])
		for i := 1; i <= Order && i <= n; i++ {
			acc -= int64(a[i]) * int64(y[n-i])
		}
		y[n] = fixed.Sat32((acc + 0x800) >> 12)
	}
}

// Residu computes y[i] = sum a[j]*x[off+i-j] for i in [0,len(y)).
// x must provide Order samples of history before off.
func Residu(a []int16, x []int16, off int, y []int16) {
	for i := range y {
		acc := int64(0)
		for j := 0; j <= Order; j++ {
			acc += int64(a[j]) * int64(x[off+i-j])
		}
		y[i] = fixed.Sat16L((acc + 0x800) >> 12)
	}
}

// Convolve computes y[n] = sum_{i<=n} x[i]*h[n-i] with h in Q12.
func Convolve(x, h, y []int16) {
	for n := range y {
		acc := int64(0)
		for i := 0; i <= n; i++ {
			acc += int64(x[i]) * int64(h[n-i])
		}
		y[n] = fixed.Sat16L((acc + 0x800) >> 12)
	}
}

// WeightA computes ap[i] = a[i]*gamma^i (gamma in Q15).
func WeightA(a []int16, ap []int16, gamma int16) {
	ap[0] = a[0]
	fac := gamma
	for i := 1; i <= Order; i++ {
		ap[i] = fixed.MultR(a[i], fac)
		fac = fixed.MultR(fac, gamma)
	}
}

// Random returns the next value of the 16-bit noise generator.
func Random(seed *int16) int16 {
	*seed = int16(int32(*seed)*31821 + 13849)
	return *seed
}

