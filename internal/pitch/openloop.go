package pitch

import (
	"github.com/thesyncim/amrwb/internal/filter"
	"github.com/thesyncim/amrwb/internal/fixed"
)

const (
	// LMinDec and LMaxDec bound the open-loop lag on the decimated signal.
	LMinDec = PitMin / 2
	LMaxDec = 115

	maxOlLen = 128 // longest open-loop analysis block (decimated samples)
)

// lagWeight favours short lags to avoid picking multiples of the period.
var lagWeight [LMaxDec + 1]int32

func init() {
	for t := LMinDec; t <= LMaxDec; t++ {
		lagWeight[t] = 32767 - int32(t-LMinDec)*8192/(LMaxDec-LMinDec)
	}
}

// OpenLoop estimates the pitch lag from the decimated weighted speech. It
// keeps the lag history used to weight the search towards the recent median.
type OpenLoop struct {
	oldT0Med int
	adaW     int16
	weight   bool
	oldLags  [5]int16
	hp       *filter.Biquad
	hpHist   [LMaxDec]int16
}

// NewOpenLoop returns an estimator in its reset state.
func NewOpenLoop() *OpenLoop {
	o := &OpenLoop{hp: filter.NewHP400()}
	o.Reset()
	return o
}

// Reset restores the initial state.
func (o *OpenLoop) Reset() {
	o.oldT0Med = 40
	o.adaW = 0
	o.weight = false
	for i := range o.oldLags {
		o.oldLags[i] = 40
	}
	o.hp.Reset()
	o.hpHist = [LMaxDec]int16{}
}

// Median returns the median of the last five open-loop lags (decimated).
func (o *OpenLoop) Median() int {
	return o.oldT0Med
}

// Estimate searches n decimated samples of wsp starting at off (wsp must
// hold LMaxDec samples of history before off). It returns the lag at the
// full 12.8 kHz rate and the normalized correlation of the high-passed
// signal at that lag in Q15.
func (o *OpenLoop) Estimate(wsp []int16, off, n int) (lag int, gain int16) {
	best := int64(-1 << 62)
	t := LMaxDec
	for i := LMaxDec; i >= LMinDec; i-- {
		r := fixed.Dot(wsp[off:off+n], wsp[off-i:off-i+n])
		r = r * int64(lagWeight[i]) >> 15
		if o.weight {
			d := i - o.oldT0Med
			if d < 0 {
				d = -d
			}
			w := int64(32767 - d*67)
			if w < 26214 {
				w = 26214
			}
			r = r * w >> 15
		}
		if r >= best {
			best, t = r, i
		}
	}

	var buf [LMaxDec + maxOlLen]int16
	copy(buf[:LMaxDec], o.hpHist[:])
	hp := buf[LMaxDec : LMaxDec+n]
	copy(hp, wsp[off:off+n])
	o.hp.Filter(hp)
	r0 := fixed.Dot(hp, buf[LMaxDec-t:])
	r1 := fixed.Energy(buf[LMaxDec-t : LMaxDec-t+n])
	r2 := fixed.Energy(hp)
	den := fixed.Sqrt64(r1) * fixed.Sqrt64(r2)
	if den > 0 && r0 > 0 {
		gain = fixed.Sat16L((r0 << 15) / den)
	}
	copy(o.hpHist[:], buf[n:n+LMaxDec])

	copy(o.oldLags[1:], o.oldLags[:4])
	o.oldLags[0] = int16(t)
	if gain > 19661 {
		o.oldT0Med = int(fixed.Median(o.oldLags[:]))
		o.adaW = 32767
	} else {
		o.adaW = fixed.Mult(o.adaW, 29491)
	}
	o.weight = o.adaW >= 26214
	return 2 * t, gain
}
