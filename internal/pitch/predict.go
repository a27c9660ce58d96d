package pitch

import (
	"github.com/thesyncim/amrwb/internal/fixed"
)

const lInterpol2 = 16 // one-sided support of the excitation interpolator

// predTaps[p] is a Hann-windowed sinc with unity DC gain that
// interpolates at a delay of p/4 sample, Q14.
var predTaps = [4][32]int16{
	{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 16384,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	},
	{
		-6, 16, -32, 54, -84, 123, -172, 234, -313, 414, -550, 741, -1035, 1569, -2911, 14744,
		4894, -2053, 1256, -870, 636, -477, 360, -271, 201, -146, 102, -68, 42, -23, 11, -3,
	},
	{
		-6, 19, -39, 68, -107, 159, -224, 307, -412, 546, -724, 970, -1340, 1977, -3411, 10409,
		10409, -3411, 1977, -1340, 970, -724, 546, -412, 307, -224, 159, -107, 68, -39, 19, -6,
	},
	{
		-3, 11, -23, 42, -68, 102, -146, 201, -271, 360, -477, 636, -870, 1256, -2053, 4894,
		14744, -2911, 1569, -1035, 741, -550, 414, -313, 234, -172, 123, -84, 54, -32, 16, -6,
	},
}

// PredLt4 writes n samples of adaptive codebook excitation to exc[base:],
// interpolating the past excitation at lag t0 + frac/4 (frac 0..3). The
// computation runs in place so lags shorter than n repeat the new samples.
func PredLt4(exc []int16, base, t0, frac, n int) {
	if frac == 0 {
		for i := 0; i < n; i++ {
			exc[base+i] = exc[base+i-t0]
		}
		return
	}
	taps := &predTaps[upSamp-frac]
	for i := 0; i < n; i++ {
		m := base + i - t0 - 1 - (lInterpol2 - 1)
		var acc int64
		for k := 0; k < 2*lInterpol2; k++ {
			acc += int64(exc[m+k]) * int64(taps[k])
		}
		exc[base+i] = fixed.Sat16L((acc + 0x2000) >> 14)
	}
}

// LtpFilter smooths the adaptive excitation with {0.18, 0.64, 0.18}.
// exc must hold one sample before base and n+1 samples from base.
func LtpFilter(exc []int16, base int, out []int16, n int) {
	for i := 0; i < n; i++ {
		acc := 5898*int32(exc[base+i-1]) + 20972*int32(exc[base+i]) + 5898*int32(exc[base+i+1])
		out[i] = fixed.Sat16((acc + 0x4000) >> 15)
	}
}

// Decimator halves the sampling rate of the weighted speech.
type Decimator struct {
	mem [4]int16
}

var decimTaps = [5]int32{4260, 7536, 9175, 7536, 4260}

// Reset clears the filter memory.
func (d *Decimator) Reset() {
	d.mem = [4]int16{}
}

// Process low-pass filters x and writes every second sample to out
// (len(out) == len(x)/2).
func (d *Decimator) Process(x []int16, out []int16) {
	var buf [4 + 256]int16
	copy(buf[:4], d.mem[:])
	copy(buf[4:], x)
	for j := range out {
		var acc int32
		for k, c := range decimTaps {
			acc += c * int32(buf[2*j+k])
		}
		out[j] = fixed.Sat16((acc + 0x4000) >> 15)
	}
	copy(d.mem[:], buf[len(x):len(x)+4])
}
