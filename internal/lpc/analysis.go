// Package lpc implements linear prediction analysis and the immittance
// spectral representations used to transmit the short-term envelope:
// windowed autocorrelation, Levinson-Durbin, A(z) <-> ISP <-> ISF
// conversion, per-subframe interpolation and the split ISF quantizers.
package lpc

import (
	"github.com/thesyncim/amrwb/internal/fixed"
)

const (
	// M is the prediction order.
	M = 16
	// WindowLen is the analysis window length: 64 past samples, the
	// 256-sample frame and 64 samples of look-ahead.
	WindowLen = 384

	// kMax bounds |k| in Q15 before the recursion gives up.
	kMax = 32750
)

// Result reports whether an analysis step produced a fresh value or fell
// back to the previous frame's parameters.
type Result uint8

const (
	Ok Result = iota
	Fallback
)

func (r Result) String() string {
	if r == Fallback {
		return "fallback"
	}
	return "ok"
}

// window is the asymmetric analysis window in Q15: a quarter sine rising
// over 256 samples and a quarter cosine falling over the last 128.
var window = [...]int16{
	0, 201, 402, 603, 804, 1005, 1206, 1407, 1608, 1809, 2009, 2210,
	2411, 2611, 2811, 3012, 3212, 3412, 3612, 3812, 4011, 4211, 4410, 4609,
	4808, 5007, 5205, 5404, 5602, 5800, 5998, 6195, 6393, 6590, 6787, 6983,
	7180, 7376, 7571, 7767, 7962, 8157, 8351, 8546, 8740, 8933, 9127, 9319,
	9512, 9704, 9896, 10088, 10279, 10469, 10660, 10850, 11039, 11228, 11417, 11605,
	11793, 11980, 12167, 12354, 12540, 12725, 12910, 13095, 13279, 13463, 13646, 13828,
	14010, 14192, 14373, 14553, 14733, 14912, 15091, 15269, 15447, 15624, 15800, 15976,
	16151, 16326, 16500, 16673, 16846, 17018, 17190, 17361, 17531, 17700, 17869, 18037,
	18205, 18372, 18538, 18703, 18868, 19032, 19195, 19358, 19520, 19681, 19841, 20001,
	20160, 20318, 20475, 20632, 20788, 20943, 21097, 21251, 21403, 21555, 21706, 21856,
	22006, 22154, 22302, 22449, 22595, 22740, 22884, 23028, 23170, 23312, 23453, 23593,
	23732, 23870, 24008, 24144, 24279, 24414, 24548, 24680, 24812, 24943, 25073, 25202,
	25330, 25457, 25583, 25708, 25833, 25956, 26078, 26199, 26320, 26439, 26557, 26674,
	26791, 26906, 27020, 27133, 27246, 27357, 27467, 27576, 27684, 27791, 27897, 28002,
	28106, 28209, 28311, 28411, 28511, 28610, 28707, 28803, 28899, 28993, 29086, 29178,
	29269, 29359, 29448, 29535, 29622, 29707, 29792, 29875, 29957, 30038, 30118, 30196,
	30274, 30350, 30425, 30499, 30572, 30644, 30715, 30784, 30853, 30920, 30986, 31050,
	31114, 31177, 31238, 31298, 31357, 31415, 31471, 31527, 31581, 31634, 31686, 31737,
	31786, 31834, 31881, 31927, 31972, 32015, 32058, 32099, 32138, 32177, 32214, 32251,
	32286, 32319, 32352, 32383, 32413, 32442, 32470, 32496, 32522, 32546, 32568, 32590,
	32610, 32629, 32647, 32664, 32679, 32693, 32706, 32718, 32729, 32738, 32746, 32753,
	32758, 32762, 32766, 32767, 32767, 32766, 32758, 32746, 32729, 32706, 32679, 32647,
	32610, 32568, 32522, 32470, 32413, 32352, 32286, 32214, 32138, 32058, 31972, 31881,
	31786, 31686, 31581, 31471, 31357, 31238, 31114, 30986, 30853, 30715, 30572, 30425,
	30274, 30118, 29957, 29792, 29622, 29448, 29269, 29086, 28899, 28707, 28511, 28311,
	28106, 27897, 27684, 27467, 27246, 27020, 26791, 26557, 26320, 26078, 25833, 25583,
	25330, 25073, 24812, 24548, 24279, 24008, 23732, 23453, 23170, 22884, 22595, 22302,
	22006, 21706, 21403, 21097, 20788, 20475, 20160, 19841, 19520, 19195, 18868, 18538,
	18205, 17869, 17531, 17190, 16846, 16500, 16151, 15800, 15447, 15091, 14733, 14373,
	14010, 13646, 13279, 12910, 12540, 12167, 11793, 11417, 11039, 10660, 10279, 9896,
	9512, 9127, 8740, 8351, 7962, 7571, 7180, 6787, 6393, 5998, 5602, 5205,
	4808, 4410, 4011, 3612, 3212, 2811, 2411, 2009, 1608, 1206, 804, 402,
}

// lagWindow is a 60 Hz Gaussian lag window, Q15.
var lagWindow = [M]int32{
	32754, 32711, 32640, 32541, 32415, 32260, 32079, 31871,
	31637, 31377, 31093, 30784, 30452, 30098, 29721, 29324,
}

// Autocorr windows the 384-sample analysis buffer x and stores its first M+1
// autocorrelation lags in r, normalized so that r[0] lies in [2^29, 2^30).
// r[0] is raised by 2^-13 of itself as a white-noise floor.
func Autocorr(x []int16, r []int32) {
	var y [WindowLen]int16
	for i := range y {
		y[i] = fixed.MultR(x[i], window[i])
	}
	var acc [M + 1]int64
	for k := 0; k <= M; k++ {
		acc[k] = fixed.Dot(y[k:], y[:])
	}
	acc[0] += acc[0]>>13 + 1

	shift := 0
	for acc[0]>>shift >= 1<<30 {
		shift++
	}
	left := 0
	for shift == 0 && acc[0]<<left < 1<<29 {
		left++
	}
	for k := range acc {
		r[k] = int32((acc[k] << left) >> shift)
	}
}

// LagWindow applies the Gaussian lag window to r[1:M+1].
func LagWindow(r []int32) {
	for i := 1; i <= M; i++ {
		r[i] = int32(int64(r[i]) * int64(lagWindow[i-1]) >> 15)
	}
}

// Levinson solves the normal equations for the autocorrelation r and writes
// M+1 Q12 coefficients to a (a[0] = 4096) and M Q15 reflection
// coefficients to rc. The recursion runs in double precision with the
// coefficients in Q27 and the prediction error kept normalized. When a
// reflection coefficient reaches unit magnitude, prev is copied to a and
// Fallback is returned.
func Levinson(r []int32, prev []int16, a []int16, rc []int16) Result {
	if r[0] <= 0 {
		copy(a[:M+1], prev)
		return Fallback
	}
	var rd [M + 1]fixed.DPF
	norm := fixed.NormL(r[0])
	for i := range rd {
		rd[i] = fixed.Extract(fixed.LShl(r[i], norm))
	}

	var ad, an [M + 1]fixed.DPF
	var alpha fixed.DPF
	alphaExp := 0
	for i := 1; i <= M; i++ {
		acc := rd[i].L()
		if i > 1 {
			var t int32
			for j := 1; j < i; j++ {
				t = fixed.LAdd(t, rd[j].Mul(ad[i-j]))
			}
			acc = fixed.LAdd(fixed.LShl(t, 4), acc)
		}

		den := rd[0]
		if i > 1 {
			den = alpha
		}
		num := fixed.LAbs(acc)
		if num >= den.L() {
			copy(a[:M+1], prev)
			return Fallback
		}
		k := fixed.Div32(num, den)
		if acc > 0 {
			k = -k
		}
		k = fixed.LShl(k, alphaExp)
		kd := fixed.Extract(k)
		if kd.Hi > kMax || kd.Hi < -kMax {
			copy(a[:M+1], prev)
			return Fallback
		}
		if rc != nil {
			rc[i-1] = kd.Hi
		}

		for j := 1; j < i; j++ {
			an[j] = fixed.Extract(fixed.LAdd(kd.Mul(ad[i-j]), ad[j].L()))
		}
		an[i] = fixed.Extract(fixed.LShr(k, 4))
		copy(ad[1:i+1], an[1:i+1])

		// alpha *= 1 - k^2
		g := fixed.Extract(fixed.LSub(fixed.MaxInt32, fixed.LAbs(kd.Mul(kd))))
		if i == 1 {
			alpha = rd[0]
		}
		t := alpha.Mul(g)
		n := fixed.NormL(t)
		alpha = fixed.Extract(fixed.LShl(t, n))
		alphaExp += n
	}

	a[0] = 4096
	for i := 1; i <= M; i++ {
		a[i] = fixed.Round(fixed.LShl(ad[i].L(), 1))
	}
	return Ok
}
