package filter

import "github.com/thesyncim/amrwb/internal/fixed"

// Biquad is a second-order IIR section with Q12 coefficients.
//
//	y[n] = b0 x[n] + b1 x[n-1] + b2 x[n-2] + a1 y[n-1] + a2 y[n-2]
type Biquad struct {
	b  [3]int32
	a  [2]int32
	x1 int32
	x2 int32
	y1 int64 // Q12 extended precision output history
	y2 int64
}

// NewHP50 returns the 50 Hz high-pass filter at 12.8 kHz.
func NewHP50() *Biquad {
	return &Biquad{b: [3]int32{4026, -8052, 4026}, a: [2]int32{8050, -3956}}
}

// NewHP400 returns the 400 Hz high-pass filter at 12.8 kHz used to shape
// the high band gain estimate.
func NewHP400() *Biquad {
	return &Biquad{b: [3]int32{3565, -7130, 3565}, a: [2]int32{7061, -3103}}
}

// Reset clears the filter memory.
func (f *Biquad) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

// Filter processes x in place.
func (f *Biquad) Filter(x []int16) {
	for i := range x {
		in := int32(x[i])
		acc := int64(f.b[0])*int64(in) + int64(f.b[1])*int64(f.x1) + int64(f.b[2])*int64(f.x2)
		acc <<= 12
		acc += int64(f.a[0])*f.y1 + int64(f.a[1])*f.y2
		y := acc >> 12 // Q12
		f.x2, f.x1 = f.x1, in
		f.y2, f.y1 = f.y1, y
		x[i] = fixed.Sat16L((y + 0x800) >> 12)
	}
}
