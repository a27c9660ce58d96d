package dtx

import "github.com/thesyncim/amrwb/internal/fixed"

const (
	minEner   = -2 << 10 // log2 mean square, Q10
	maxEner   = 22 << 10
	enerSpan  = maxEner - minEner
	enerSteps = 1<<6 - 1
)

// LogEnergy returns log2 of the mean square of x in Q10, bounded to
// [-2, 22].
func LogEnergy(x []int16) int16 {
	en := fixed.Energy(x)
	if en == 0 || len(x) == 0 {
		return minEner
	}
	e := log2Q10(en) - log2Q10(int64(len(x)))
	return int16(min(max(e, minEner), maxEner))
}

func log2Q10(v int64) int32 {
	n := int32(0)
	for v > fixed.MaxInt32 {
		v >>= 1
		n++
	}
	e, f := fixed.Log2(int32(v))
	return (int32(e)+n)<<10 + int32(f)>>5
}

// QuantizeEnergy maps a Q10 log energy to its 6-bit index.
func QuantizeEnergy(e int16) int {
	i := ((int32(e)-minEner)*enerSteps + enerSpan/2) / enerSpan
	return int(min(max(i, 0), enerSteps))
}

// DequantizeEnergy is the inverse of QuantizeEnergy.
func DequantizeEnergy(index int) int16 {
	return int16(int32(index)*enerSpan/enerSteps + minEner)
}

// scaleNoise rescales x in place so that its log energy becomes e.
func scaleNoise(x []int16, e int16) {
	cur := LogEnergy(x)
	g := fixed.Pow2Q((int32(e)-int32(cur))>>1+12<<10, 10) // Q12
	for i := range x {
		x[i] = fixed.Sat16L(int64(x[i]) * int64(g) >> 12)
	}
}
