package codec

import (
	"github.com/thesyncim/amrwb/internal/lpc"
	"github.com/thesyncim/amrwb/internal/types"
)

// enhancer post-processes the decoded excitation fed to the synthesis
// filter. The excitation kept for the adaptive codebook is never touched.
type enhancer struct {
	stab    int16 // spectral stability, Q15
	thr     int32 // smoothed code gain, Q16
	prevIsf [M]int16
}

func (en *enhancer) reset() {
	en.stab = 0
	en.thr = 0
	en.prevIsf = lpc.MeanIsf
}

// stability measures how little the spectral envelope moved since the
// previous frame: 1 for a stationary envelope, 0 for a transition.
func (en *enhancer) stability(isf []int16) {
	var d int32
	for i := 0; i < M-1; i++ {
		v := int32(isf[i]) - int32(en.prevIsf[i])
		if v < 0 {
			v = -v
		}
		d += v
	}
	en.stab = int16(min(max(32767-d*8, 0), 32767))
	copy(en.prevIsf[:], isf[:M])
}

// apply writes the synthesis excitation for one subframe. The noise
// enhancer smooths the code gain of unvoiced, stationary segments. The
// pitch enhancer lowers the code energy between harmonics of voiced ones.
func (en *enhancer) apply(v []int16, gp int16, code []int16, gc int32, voice int16, out []int16) {
	switch {
	case en.thr == 0:
		en.thr = gc
	case gc < en.thr:
		en.thr = max(gc, int32(int64(en.thr)*27>>5)) // -1.5 dB
	default:
		en.thr = min(gc, int32(min(int64(en.thr)*19>>4, 1<<31-1))) // +1.5 dB
	}
	fac := int64(en.stab) * int64(16384-int32(voice)>>1) >> 15
	gc2 := int32((fac*int64(en.thr) + (32768-fac)*int64(gc)) >> 15)

	fp := int32(voice>>3) + 4096 // 0.125*(1+voice)
	for i := 0; i < L; i++ {
		var nb int32
		if i > 0 {
			nb += int32(code[i-1])
		}
		if i < L-1 {
			nb += int32(code[i+1])
		}
		c := int32(code[i]) - (fp*nb+0x4000)>>15
		out[i] = mixSample(v[i], gp, int16(min(max(c, -32768), 32767)), gc2)
	}
}

// Phase dispersion spreads the few pulses of the low rate codebooks over
// the subframe. Both responses are all-pass with random phases above
// their cutoff, 1 kHz for the strong one and 3 kHz for the medium one,
// and leave the low band untouched. Q15.
var dispStrong = [L]int16{
	5790, 6200, 7488, -430, 914, 3644, 2801, -4785, 5297, 1759,
	-3258, 784, -4008, -2857, 3400, -6379, 1535, 2560, 3940, -1302,
	810, 5300, -3609, -1486, -58, -3047, 1440, -3155, 3468, -6892,
	8295, -495, 335, -1496, 1335, 2281, -1714, -4412, 3301, 3825,
	-5159, 134, -2302, 2929, -3515, 664, 1071, 300, 2388, 8632,
	-3204, -6823, 4630, -2368, -3341, -4879, -8556, 5731, 8081, 7623,
	4401, -440, 770, -1119,
}

var dispMedium = [L]int16{
	17257, 10097, -1592, 1164, -2533, -3089, 9087, -6616, 626, 530,
	1933, -3314, 2356, 1260, -5442, 4223, 2131, -3726, -2570, 6336,
	-2433, -225, -2573, 2361, 3382, -5283, 896, 1163, 709, 736,
	-4927, 4486, -657, 43, -1138, -573, 2163, -544, -168, -2093,
	3015, -2169, 3508, -4396, -97, 4420, -842, -5160, 4732, -2010,
	4132, -6232, 2156, 2415, -1192, -1536, 1011, 280, -787, 1894,
	-1050, -2811, 1675, 8367,
}

const (
	dispGainLow = 9830  // 0.6, Q14
	dispGainMid = 14746 // 0.9
)

// disperse circularly convolves the code with the response selected by
// the mode and the pitch gain. Only the 6.60 and 8.85 modes use it.
func disperse(code []int16, mode types.Mode, gp int16) {
	var h *[L]int16
	switch {
	case mode == types.Mode660 && gp < dispGainLow:
		h = &dispStrong
	case mode == types.Mode660 && gp < dispGainMid, mode == types.Mode885 && gp < dispGainLow:
		h = &dispMedium
	default:
		return
	}
	var acc [L]int32
	for i, c := range code[:L] {
		if c == 0 {
			continue
		}
		for j := 0; j < L; j++ {
			acc[(i+j)%L] += int32(c) * int32(h[j]) >> 15
		}
	}
	for i := range acc {
		code[i] = int16(min(max(acc[i], -32768), 32767))
	}
}
