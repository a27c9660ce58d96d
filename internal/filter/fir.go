package filter

import (
	"github.com/thesyncim/amrwb/internal/fixed"
)

// bandpass67 passes 6 kHz..7 kHz at 16 kHz: a Hamming-windowed ideal
// band-pass, Q15.
var bandpass67 = [...]int16{
	18, -20, -21, 146, -359, 552, -502, 0, 955, -2024, 2620,
	-2211, 687, 1467, -3350, 4096, -3350, 1467, 687, -2211, 2620, -2024,
	955, 0, -502, 552, -359, 146, -21, -20, 18,
}

// FIR is a fixed-point FIR filter with Q15 coefficients and persistent
// history across calls.
type FIR struct {
	coef []int16
	mem  []int16
	buf  []int16
}

// NewBandpass67 returns the 6-7 kHz band-pass filter applied to the
// generated high band.
func NewBandpass67() *FIR {
	return NewFIR(bandpass67[:], Frame16k)
}

// NewFIR returns a filter with the given coefficients able to process up to
// maxLen samples per call without allocating.
func NewFIR(coef []int16, maxLen int) *FIR {
	return &FIR{
		coef: coef,
		mem:  make([]int16, len(coef)-1),
		buf:  make([]int16, len(coef)-1+maxLen),
	}
}

// Reset clears the filter history.
func (f *FIR) Reset() {
	clear(f.mem)
}

// Filter processes x in place.
func (f *FIR) Filter(x []int16) {
	m := len(f.mem)
	copy(f.buf, f.mem)
	copy(f.buf[m:], x)
	for n := range x {
		var acc int64
		for i, c := range f.coef {
			acc += int64(c) * int64(f.buf[n+m-i])
		}
		x[n] = fixed.Sat16L((acc + 0x4000) >> 15)
	}
	copy(f.mem, f.buf[len(x):len(x)+m])
}
