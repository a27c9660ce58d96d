package filter

import (
	"github.com/thesyncim/amrwb/internal/fixed"
)

const (
	// Frame16k is the number of 16 kHz samples per frame.
	Frame16k = 320
	// Frame12k8 is the number of 12.8 kHz samples per frame.
	Frame12k8 = 256

	resampleHalf = 12 // taps on each side of the interpolation point
	resampleMem  = 2 * resampleHalf
)

// Hann-windowed sinc phases normalized to unity DC gain, Q14. The
// 16 kHz to 12.8 kHz filter cuts at 6.4 kHz and steps in quarter
// samples, the 12.8 kHz to 16 kHz filter cuts at 6.14 kHz and steps in
// fifths.
var downTaps = [4][24]int16{
	{
		16, 0, -74, 200, -311, 286, 0, -601, 1445, -2337, 3020, 13102,
		3020, -2337, 1445, -601, 0, 286, -311, 200, -74, 0, 16, -6,
	},
	{
		0, 32, -103, 177, -173, 0, 379, -885, 1302, -1264, 0, 12249,
		6558, -2709, 996, 0, -455, 509, -345, 139, 0, -46, 33, -10,
	},
	{
		-9, 42, -88, 97, 0, -236, 559, -807, 728, 0, -1977, 9883,
		9883, -1977, 0, 728, -807, 559, -236, 0, 97, -88, 42, -9,
	},
	{
		-10, 33, -46, 0, 139, -345, 509, -455, 0, 996, -2709, 6558,
		12249, 0, -1264, 1302, -885, 379, 0, -173, 177, -103, 32, 0,
	},
}

var upTaps = [5][24]int16{
	{
		27, -62, 113, -178, 252, -333, 415, -492, 559, -611, 644, 15722,
		644, -611, 559, -492, 415, -333, 252, -178, 113, -62, 27, -6,
	},
	{
		15, -34, 56, -75, 82, -68, 16, 95, -313, 760, -1955, 14781,
		4300, -2083, 1376, -986, 717, -513, 354, -231, 138, -73, 30, -8,
	},
	{
		3, -2, -7, 35, -89, 182, -333, 570, -951, 1629, -3193, 12153,
		8401, -3119, 1814, -1180, 790, -524, 335, -203, 112, -54, 21, -5,
	},
	{
		-5, 21, -54, 112, -203, 335, -524, 790, -1180, 1814, -3119, 8401,
		12153, -3193, 1629, -951, 570, -333, 182, -89, 35, -7, -2, 3,
	},
	{
		-8, 30, -73, 138, -231, 354, -513, 717, -986, 1376, -2083, 4300,
		14781, -1955, 760, -313, 95, 16, -68, 82, -75, 56, -34, 15,
	},
}

// Downsampler converts 320 samples at 16 kHz to 256 samples at 12.8 kHz.
type Downsampler struct {
	buf [resampleMem + Frame16k]int16
}

// Reset clears the resampler history.
func (d *Downsampler) Reset() {
	d.buf = [resampleMem + Frame16k]int16{}
}

// Process resamples one frame. len(in) must be 320 and len(out) 256.
func (d *Downsampler) Process(in []int16, out []int16) {
	copy(d.buf[resampleMem:], in[:Frame16k])
	for n := 0; n < Frame12k8; n++ {
		pos := (5 * n) >> 2
		phase := (5 * n) & 3
		out[n] = interpolate(d.buf[pos+1:pos+1+2*resampleHalf], downTaps[phase][:])
	}
	copy(d.buf[:resampleMem], d.buf[Frame16k:])
}

// Upsampler converts 256 samples at 12.8 kHz to 320 samples at 16 kHz.
type Upsampler struct {
	buf [resampleMem + Frame12k8]int16
}

// Reset clears the resampler history.
func (u *Upsampler) Reset() {
	u.buf = [resampleMem + Frame12k8]int16{}
}

// Process resamples one frame. len(in) must be 256 and len(out) 320.
func (u *Upsampler) Process(in []int16, out []int16) {
	copy(u.buf[resampleMem:], in[:Frame12k8])
	for m := 0; m < Frame16k; m++ {
		pos := (4 * m) / 5
		phase := (4 * m) % 5
		out[m] = interpolate(u.buf[pos+1:pos+1+2*resampleHalf], upTaps[phase][:])
	}
	copy(u.buf[:resampleMem], u.buf[Frame12k8:])
}

func interpolate(x []int16, taps []int16) int16 {
	var acc int64
	for i := range taps {
		acc += int64(x[i]) * int64(taps[i])
	}
	return fixed.Sat16L((acc + 0x2000) >> 14)
}
