package lpc

import (
	"github.com/thesyncim/amrwb/internal/fixed"
)

const (
	gridPoints = 101
	nc         = M / 2
)

// grid holds cos(pi*j/100) in Q15 with the endpoints pulled in.
var grid = [...]int16{
	32760, 32752, 32703, 32623, 32510, 32365, 32188, 31979, 31739, 31467, 31164, 30831,
	30467, 30073, 29649, 29197, 28715, 28205, 27667, 27102, 26510, 25892, 25248, 24580,
	23887, 23170, 22431, 21670, 20887, 20084, 19261, 18418, 17558, 16680, 15786, 14876,
	13952, 13014, 12063, 11100, 10126, 9142, 8149, 7148, 6140, 5126, 4107, 3084,
	2058, 1029, 0, -1029, -2058, -3084, -4107, -5126, -6140, -7148, -8149, -9142,
	-10126, -11100, -12063, -13014, -13952, -14876, -15786, -16680, -17558, -18418, -19261, -20084,
	-20887, -21670, -22431, -23170, -23887, -24580, -25248, -25892, -26510, -27102, -27667, -28205,
	-28715, -29197, -29649, -30073, -30467, -30831, -31164, -31467, -31739, -31979, -32188, -32365,
	-32510, -32623, -32703, -32752, -32760,
}

// cosTable holds cos(pi*i/128) in Q15.
var cosTable = [...]int16{
	32767, 32758, 32729, 32679, 32610, 32522, 32413, 32286, 32138, 31972, 31786, 31581,
	31357, 31114, 30853, 30572, 30274, 29957, 29622, 29269, 28899, 28511, 28106, 27684,
	27246, 26791, 26320, 25833, 25330, 24812, 24279, 23732, 23170, 22595, 22006, 21403,
	20788, 20160, 19520, 18868, 18205, 17531, 16846, 16151, 15447, 14733, 14010, 13279,
	12540, 11793, 11039, 10279, 9512, 8740, 7962, 7180, 6393, 5602, 4808, 4011,
	3212, 2411, 1608, 804, 0, -804, -1608, -2411, -3212, -4011, -4808, -5602,
	-6393, -7180, -7962, -8740, -9512, -10279, -11039, -11793, -12540, -13279, -14010, -14733,
	-15447, -16151, -16846, -17531, -18205, -18868, -19520, -20160, -20788, -21403, -22006, -22595,
	-23170, -23732, -24279, -24812, -25330, -25833, -26320, -26791, -27246, -27684, -28106, -28511,
	-28899, -29269, -29622, -29957, -30274, -30572, -30853, -31114, -31357, -31581, -31786, -31972,
	-32138, -32286, -32413, -32522, -32610, -32679, -32729, -32758, -32768,
}

// InterpWeights are the Q15 weights of the previous frame's ISP for
// each subframe.
var InterpWeights = [4]int16{18022, 6554, 1311, 0}

// chebps evaluates sum f[i]*T_(n-i)(x) + f[n]/2 by Clenshaw recurrence.
// f is Q20, x is Q15.
func chebps(x int16, f []int64, n int) int64 {
	var b1, b2 int64
	xx := int64(x)
	for i := 0; i < n; i++ {
		b0 := (2*xx*b1)>>15 - b2 + f[i]
		b2, b1 = b1, b0
	}
	return (xx*b1)>>15 - b2 + f[n]>>1
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// AzToIsp converts the Q12 predictor a to M Q15 immittance spectral pairs.
// When fewer than M-1 roots are found, old is copied to isp and Fallback is
// returned.
func AzToIsp(a []int16, isp []int16, old []int16) Result {
	var f1, f2 [nc + 1]int64
	for i := 0; i < nc; i++ {
		f1[i] = int64(a[i]) + int64(a[M-i])
		f2[i] = int64(a[i]) - int64(a[M-i])
	}
	f1[nc] = 2 * int64(a[nc])
	for i := 2; i < nc; i++ {
		f2[i] += f2[i-2]
	}
	for i := range f1 {
		f1[i] <<= 8
		f2[i] <<= 8
	}

	coef, order := f1[:], nc
	nf := 0
	xlow := grid[0]
	ylow := chebps(xlow, coef, order)
	for j := 1; nf < M-1 && j < gridPoints; j++ {
		xhigh, yhigh := xlow, ylow
		xlow = grid[j]
		ylow = chebps(xlow, coef, order)
		if sign(ylow)*sign(yhigh) > 0 {
			continue
		}
		for k := 0; k < 2; k++ {
			xmid := int16((int32(xlow) + int32(xhigh)) >> 1)
			ymid := chebps(xmid, coef, order)
			if sign(ylow)*sign(ymid) <= 0 {
				yhigh, xhigh = ymid, xmid
			} else {
				ylow, xlow = ymid, xmid
			}
		}
		xint := xlow
		if d := yhigh - ylow; d != 0 {
			xint = int16(int64(xlow) - ylow*int64(xhigh-xlow)/d)
		}
		isp[nf] = xint
		nf++
		if order == nc {
			coef, order = f2[:], nc-1
		} else {
			coef, order = f1[:], nc
		}
		xlow = xint
		ylow = chebps(xlow, coef, order)
	}
	if nf < M-1 {
		copy(isp[:M], old)
		return Fallback
	}
	isp[M-1] = fixed.Shl(a[M], 3)
	return Ok
}

// ispPol expands prod (1 - 2*q_k z^-1 + z^-2) over the roots isp[0],
// isp[2], ... (n roots) and stores the first n+1 coefficients in f (Q24).
func ispPol(isp []int16, n int, f []int64) {
	var p [2*nc + 1]int64
	p[0] = 1 << 24
	deg := 0
	for k := 0; k < n; k++ {
		b := -2 * int64(isp[2*k])
		for j := deg + 2; j >= 1; j-- {
			v := p[j] + (b*p[j-1])>>15
			if j >= 2 {
				v += p[j-2]
			}
			p[j] = v
		}
		deg += 2
	}
	copy(f, p[:n+1])
}

// IspToAz converts M Q15 ISPs to M+1 Q12 predictor coefficients.
func IspToAz(isp []int16, a []int16) {
	var f1, f2 [nc + 1]int64
	ispPol(isp, nc, f1[:])
	ispPol(isp[1:], nc-1, f2[:])
	for i := nc - 1; i >= 2; i-- {
		f2[i] -= f2[i-2]
	}
	k := int64(isp[M-1])
	for i := 0; i < nc; i++ {
		f1[i] += (f1[i] * k) >> 15
		f2[i] -= (f2[i] * k) >> 15
	}
	a[0] = 4096
	for i, j := 1, M-1; i < nc; i, j = i+1, j-1 {
		a[i] = fixed.Sat16L((f1[i] + f2[i] + 1<<12) >> 13)
		a[j] = fixed.Sat16L((f1[i] - f2[i] + 1<<12) >> 13)
	}
	t := f1[nc] + (f1[nc]*k)>>15
	a[nc] = fixed.Sat16L((t + 1<<12) >> 13)
	a[M] = fixed.ShrR(isp[M-1], 3)
}

// IsfToIsp converts normalized frequencies (0..16384 for 0..6400 Hz, the
// last value at half scale) to cosine-domain ISPs.
func IsfToIsp(isf []int16, isp []int16) {
	for i := 0; i < M; i++ {
		v := int32(isf[i])
		if i == M-1 {
			v <<= 1
		}
		if v < 0 {
			v = 0
		}
		if v > 16384 {
			v = 16384
		}
		idx := v >> 7
		frac := v & 0x7f
		if idx == 128 {
			isp[i] = cosTable[128]
			continue
		}
		d := int32(cosTable[idx+1]) - int32(cosTable[idx])
		isp[i] = int16(int32(cosTable[idx]) + (d*frac)>>7)
	}
}

// IspToIsf is the inverse of IsfToIsp.
func IspToIsf(isp []int16, isf []int16) {
	idx := 127
	for i := M - 1; i >= 0; i-- {
		if i >= M-2 {
			idx = 127
		}
		for idx > 0 && cosTable[idx] < isp[i] {
			idx--
		}
		for idx < 127 && cosTable[idx+1] >= isp[i] {
			idx++
		}
		d := int32(cosTable[idx+1]) - int32(cosTable[idx])
		v := int32(idx) << 7
		if d != 0 {
			v += ((int32(isp[i]) - int32(cosTable[idx])) << 7) / d
		}
		if v < 0 {
			v = 0
		}
		if v > 16384 {
			v = 16384
		}
		isf[i] = int16(v)
	}
	isf[M-1] >>= 1
}

// IntLpc interpolates between old and cur in the ISP domain and writes the
// four per-subframe predictors to az (4*(M+1) values).
func IntLpc(old, cur []int16, az []int16) {
	var isp [M]int16
	for sf, w := range InterpWeights {
		fac := int32(32768) - int32(w)
		for i := range isp {
			isp[i] = int16((int32(old[i])*int32(w) + int32(cur[i])*fac + 0x4000) >> 15)
		}
		IspToAz(isp[:], az[sf*(M+1):(sf+1)*(M+1)])
	}
}
