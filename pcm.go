package amrwb

import "math"

// FloatToPCM converts float samples in [-1, 1] to 16-bit PCM into dst.
// Values outside the range saturate and NaN becomes 0. It returns the
// number of samples converted, min(len(dst), len(src)).
func FloatToPCM(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i, v := range src[:n] {
		f := float64(v) * 32768
		switch {
		case f != f:
			dst[i] = 0
		case f >= 32767:
			dst[i] = 32767
		case f <= -32768:
			dst[i] = -32768
		default:
			dst[i] = int16(math.RoundToEven(f))
		}
	}
	return n
}

// PCMToFloat converts 16-bit PCM to float samples in [-1, 1) into dst and
// returns the number of samples converted.
func PCMToFloat(dst []float32, src []int16) int {
	n := min(len(dst), len(src))
	for i, v := range src[:n] {
		dst[i] = float32(v) / 32768
	}
	return n
}
