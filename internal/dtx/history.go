package dtx

import (
	"github.com/thesyncim/amrwb/internal/fixed"
	"github.com/thesyncim/amrwb/internal/lpc"
)

const (
	histLen = 8

	// An entry is an outlier when its summed ISF distance to the others
	// exceeds 2.25 times the median.
	outlierNum = 9
	outlierDen = 4
	maxOutlier = 2

	isfDithThr  = 1800
	enerDithThr = 512
)

// history keeps the ISF vectors and log energies of the last frames.
type history struct {
	isf  [histLen][lpc.M]int16
	ener [histLen]int16
	n    int
	next int
}

func (h *history) reset() { *h = history{} }

func (h *history) push(isf []int16, e int16) {
	copy(h.isf[h.next][:], isf[:lpc.M])
	h.ener[h.next] = e
	h.next = (h.next + 1) % histLen
	h.n = min(h.n+1, histLen)
}

// average returns the mean ISF vector and log energy of the history with
// up to two outliers removed, and whether the descriptors vary enough to
// call for dithering on the receive side.
func (h *history) average(isf []int16) (e int16, dither bool) {
	if h.n == 0 {
		copy(isf, lpc.MeanIsfNoise[:])
		return minEner, false
	}
	var skip [histLen]bool
	h.outliers(&skip)

	var sum [lpc.M]int32
	var esum int32
	n := int32(0)
	for i := 0; i < h.n; i++ {
		if skip[i] {
			continue
		}
		for k := range sum {
			sum[k] += int32(h.isf[i][k])
		}
		esum += int32(h.ener[i])
		n++
	}
	for k := range sum {
		isf[k] = int16(sum[k] / n)
	}
	e = int16(esum / n)

	var isfDev, enerDev int32
	for i := 0; i < h.n; i++ {
		if skip[i] {
			continue
		}
		for k := range sum {
			isfDev += int32(fixed.Abs(h.isf[i][k] - isf[k]))
		}
		enerDev += int32(fixed.Abs(h.ener[i] - e))
	}
	return e, isfDev/n > isfDithThr || enerDev/n > enerDithThr
}

func (h *history) outliers(skip *[histLen]bool) {
	if h.n < 3 {
		return
	}
	var dist, sorted [histLen]int64
	for i := 0; i < h.n; i++ {
		for j := 0; j < h.n; j++ {
			for k := 0; k < lpc.M; k++ {
				d := int64(h.isf[i][k]) - int64(h.isf[j][k])
				dist[i] += d * d
			}
		}
	}
	copy(sorted[:h.n], dist[:h.n])
	s := sorted[:h.n]
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	med := s[len(s)/2]
	for r := 0; r < maxOutlier; r++ {
		worst := -1
		for i := 0; i < h.n; i++ {
			if !skip[i] && (worst < 0 || dist[i] > dist[worst]) {
				worst = i
			}
		}
		if dist[worst]*outlierDen <= med*outlierNum {
			return
		}
		skip[worst] = true
	}
}
