package acelp

import (
	"github.com/thesyncim/amrwb/internal/filter"
	"github.com/thesyncim/amrwb/internal/fixed"
)

const (
	dnMax = 1 << 13 // dn is scaled so that |dn| <= dnMax
	rrMax = 1 << 14 // rr[0][0] is scaled to at most rrMax
)

// Searcher holds the correlation tables of one subframe search. The zero
// value is ready to use; it is not safe for concurrent use.
type Searcher struct {
	rr     [L][L]int32 // sign-folded autocorrelation of h
	dn     [L]int32    // sign-folded, scaled target correlation
	dn2    [L]int64    // pulse preselection metric
	sign   [L]int16
	rrv    [L]int64 // correlation of each position with the placed pulses
	taken  [L]bool
	order  [24]int
	pos    [24]int
	best   [24]int
	posMax [4]int
}

// CorrHX computes dn[i] = sum_{n>=i} x[n]*h[n-i] with h in Q12.
func CorrHX(h, x []int16, dn []int32) {
	for i := 0; i < L; i++ {
		var acc int64
		for n := i; n < L; n++ {
			acc += int64(x[n]) * int64(h[n-i])
		}
		dn[i] = fixed.Sat32(acc >> 12)
	}
}

// Sharpen applies the code shaping filter (1 - tilt z^-1) followed by
// pitch sharpening x[n] += sharp*x[n-t0] for lags shorter than the subframe.
// Encoder and decoder apply it to the impulse response and the code.
func Sharpen(x []int16, tilt int16, t0 int, sharp int16) {
	if tilt != 0 {
		for i := L - 1; i > 0; i-- {
			x[i] = fixed.Sub(x[i], fixed.MultR(tilt, x[i-1]))
		}
	}
	if t0 < L {
		for i := t0; i < L; i++ {
			x[i] = fixed.Add(x[i], fixed.MultR(x[i-t0], sharp))
		}
	}
}

// prepare selects the pulse signs from a mix of dn and cn and builds the
// sign-folded correlation tables.
func (s *Searcher) prepare(dn []int32, cn []int16, h []int16) {
	var edn int64
	for i := 0; i < L; i++ {
		edn += int64(dn[i]) * int64(dn[i])
	}
	ecn := fixed.Energy(cn[:L])
	wcn := fixed.Sqrt64(edn)
	wdn := fixed.Sqrt64(ecn)
	if ecn == 0 {
		wcn, wdn = 0, 1
	}

	var maxAbs int64
	for i := 0; i < L; i++ {
		v := int64(cn[i])*wcn + int64(dn[i])*wdn
		if v >= 0 {
			s.sign[i] = 1
			s.dn2[i] = v
		} else {
			s.sign[i] = -1
			s.dn2[i] = -v
		}
		if a := abs64(int64(dn[i])); a > maxAbs {
			maxAbs = a
		}
	}
	shr, shl := 0, 0
	for maxAbs>>shr > dnMax {
		shr++
	}
	for maxAbs > 0 && shr == 0 && shl < 16 && maxAbs<<(shl+1) <= dnMax {
		shl++
	}
	for i := 0; i < L; i++ {
		v := (int64(dn[i]) << shl) >> shr
		s.dn[i] = int32(v) * int32(s.sign[i])
	}

	var rr [L][L]int64
	for d := 0; d < L; d++ {
		var acc int64
		for m := L - 1; m >= d; m-- {
			n := L - 1 - m
			acc += int64(h[n]) * int64(h[n+d])
			rr[m][m-d] = acc
			rr[m-d][m] = acc
		}
	}
	top := rr[0][0]
	shr, shl = 0, 0
	for top>>shr > rrMax {
		shr++
	}
	for top > 0 && shr == 0 && shl < 16 && top<<(shl+1) <= rrMax {
		shl++
	}
	for i := 0; i < L; i++ {
		for j := 0; j < L; j++ {
			v := int32((rr[i][j] << shl) >> shr)
			if s.sign[i] != s.sign[j] {
				v = -v
			}
			s.rr[i][j] = v
		}
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func (s *Searcher) reset() {
	s.rrv = [L]int64{}
	s.taken = [L]bool{}
}

func (s *Searcher) place(i int, ps, alp *int64) {
	*ps += int64(s.dn[i])
	*alp += int64(s.rr[i][i]) + 2*s.rrv[i]
	for k := 0; k < L; k++ {
		s.rrv[k] += int64(s.rr[k][i])
	}
	s.taken[i] = true
}

// better reports whether ps^2/alp beats bestPs2/bestAlp.
func better(ps, alp, bestPs2, bestAlp int64) bool {
	if alp <= 0 {
		alp = 1
	}
	return ps*ps*bestAlp > bestPs2*alp
}

// trackOrder assigns pulses to tracks round-robin starting at track first.
func (s *Searcher) trackOrder(cfg Config, first int) []int {
	var used [4]int
	n := cfg.NumPulses()
	o := s.order[:0]
	for len(o) < n {
		for k := 0; k < cfg.Tracks && len(o) < n; k++ {
			t := (first + k) % cfg.Tracks
			if used[t] < cfg.Pulses[t] {
				o = append(o, t)
				used[t]++
			}
		}
	}
	return o
}

// Search finds the pulse positions and signs maximizing the normalized
// correlation with the target. dn is the backward-filtered target, cn the
// residual target and h the Q12 weighted impulse response. code receives
// the Q9 code vector, y the code filtered by h, and indices one packed
// index per track.
func (s *Searcher) Search(cfg Config, dn []int32, cn []int16, h []int16, code, y []int16, indices []int) {
	s.prepare(dn, cn, h)
	n := cfg.NumPulses()
	if cfg.Tracks == 2 {
		s.search2(cfg)
	} else {
		s.search4(cfg, n)
	}
	clear(code[:L])
	for _, i := range s.best[:n] {
		code[i] = PulseAmp * s.sign[i]
	}
	filter.Convolve(code[:L], h, y[:L])

	var pulses [6]Pulse
	for t := 0; t < cfg.Tracks; t++ {
		k := 0
		for _, i := range s.best[:n] {
			if i%cfg.Tracks == t {
				pulses[k] = Pulse{Pos: i / cfg.Tracks, Neg: s.sign[i] < 0}
				k++
			}
		}
		indices[t] = Quantize(pulses[:k], cfg.PosBits)
	}
}

// search2 is the exhaustive search of one pulse in each of two tracks.
func (s *Searcher) search2(cfg Config) {
	bestPs2, bestAlp := int64(-1), int64(1)
	for i0 := 0; i0 < L; i0 += 2 {
		for i1 := 1; i1 < L; i1 += 2 {
			ps := int64(s.dn[i0]) + int64(s.dn[i1])
			alp := int64(s.rr[i0][i0]) + int64(s.rr[i1][i1]) + 2*int64(s.rr[i0][i1])
			if better(ps, alp, bestPs2, bestAlp) {
				bestPs2, bestAlp = ps*ps, alp
				s.best[0], s.best[1] = i0, i1
			}
		}
	}
}

func (s *Searcher) search4(cfg Config, n int) {
	for t := 0; t < cfg.Tracks; t++ {
		m := t
		for i := t; i < L; i += cfg.Tracks {
			if s.dn2[i] > s.dn2[m] {
				m = i
			}
		}
		s.posMax[t] = m
	}

	bestPs2, bestAlp := int64(-1), int64(1)
	for it := 0; it < cfg.Iter; it++ {
		order := s.trackOrder(cfg, it%cfg.Tracks)
		s.reset()
		var ps, alp int64
		s.pos[0], s.pos[1] = s.posMax[order[0]], s.posMax[order[1]]
		s.place(s.pos[0], &ps, &alp)
		s.place(s.pos[1], &ps, &alp)

		for j := 2; j+1 < n; j += 2 {
			t0, t1 := order[j], order[j+1]
			b0, b1 := -1, -1
			pairPs2, pairAlp := int64(-1), int64(1)
			for i0 := t0; i0 < L; i0 += cfg.Tracks {
				if s.taken[i0] {
					continue
				}
				ps1 := ps + int64(s.dn[i0])
				alp1 := alp + int64(s.rr[i0][i0]) + 2*s.rrv[i0]
				for i1 := t1; i1 < L; i1 += cfg.Tracks {
					if s.taken[i1] || i1 == i0 {
						continue
					}
					ps2 := ps1 + int64(s.dn[i1])
					alp2 := alp1 + int64(s.rr[i1][i1]) + 2*(s.rrv[i1]+int64(s.rr[i0][i1]))
					if better(ps2, alp2, pairPs2, pairAlp) {
						pairPs2, pairAlp = ps2*ps2, alp2
						b0, b1 = i0, i1
					}
				}
			}
			s.pos[j], s.pos[j+1] = b0, b1
			s.place(b0, &ps, &alp)
			s.place(b1, &ps, &alp)
		}
		if better(ps, alp, bestPs2, bestAlp) {
			bestPs2, bestAlp = ps*ps, alp
			copy(s.best[:n], s.pos[:n])
		}
	}
}
