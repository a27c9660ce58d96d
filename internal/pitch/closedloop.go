package pitch

import (
	"github.com/thesyncim/amrwb/internal/fixed"
)

const (
	subfr   = 64
	upSamp  = 4
	lInter4 = 4 // one-sided support of the correlation interpolator
)

// inter4 is a Hamming-windowed sinc sampled at quarter-sample steps, Q15.
var inter4 = [...]int16{
	32767, 29270, 20212, 9156, 0, -4822, -5181, -2806, 0,
	1631, 1728, 898, 0, -454, -444, -218, 0,
}

// interpol4 interpolates x at index c + frac/4, frac in -3..3.
func interpol4(x []int32, c, frac int) int64 {
	if frac < 0 {
		frac += upSamp
		c--
	}
	var acc int64
	for i := 0; i < lInter4; i++ {
		acc += int64(x[c-i]) * int64(inter4[frac+upSamp*i])
		acc += int64(x[c+1+i]) * int64(inter4[upSamp-frac+upSamp*i])
	}
	return acc
}

// Searcher holds the scratch buffers of the closed-loop search so that no
// allocation happens per subframe.
type Searcher struct {
	corr [PitMax + 2*lInter4 + 2]int32
	excf [subfr]int64 // Q12
}

// ClosedLoop refines the lag in [t0min, t0max] by maximizing the
// normalized correlation between the target xn and the past excitation
// filtered by h (Q12). exc[base:] is the current subframe. The returned
// fraction is in quarter samples, 0..3.
func (s *Searcher) ClosedLoop(exc []int16, base int, xn, h []int16, t0min, t0max int, c Coding) (t0, frac int) {
	half, integer := c.Resolution()
	// corr index of lag t is t - t0min + lInter4
	s.normCorr(exc, base, xn, h, t0min-lInter4, t0max+lInter4)

	idx := func(t int) int { return t - t0min + lInter4 }
	t0 = t0min
	best := s.corr[idx(t0min)]
	for t := t0min + 1; t <= t0max; t++ {
		if v := s.corr[idx(t)]; v >= best {
			best, t0 = v, t
		}
	}

	if t0 >= integer {
		return t0, 0
	}
	step, first := 1, -3
	if t0 >= half {
		step, first = 2, -2
	}
	if t0 == t0min {
		first = 0
	}
	bestFrac := first
	bestVal := interpol4(s.corr[:], idx(t0), first)
	for f := first + step; f <= 3; f += step {
		if v := interpol4(s.corr[:], idx(t0), f); v >= bestVal {
			bestVal, bestFrac = v, f
		}
	}
	if bestFrac < 0 {
		bestFrac += upSamp
		t0--
	}
	return t0, bestFrac
}

// normCorr stores corr(t)/sqrt(energy(t)) for t in [tmin, tmax] at
// s.corr[t-tmin].
func (s *Searcher) normCorr(exc []int16, base int, xn, h []int16, tmin, tmax int) {
	// excf = exc[base-tmin:] filtered by h
	for n := 0; n < subfr; n++ {
		var acc int64
		for i := 0; i <= n; i++ {
			acc += int64(exc[base-tmin+i]) * int64(h[n-i])
		}
		s.excf[n] = acc
	}
	for t := tmin; t <= tmax; t++ {
		var corr, energy int64
		for n := 0; n < subfr; n++ {
			e := s.excf[n] >> 12
			corr += int64(xn[n]) * e
			energy += e * e
		}
		var v int64
		if energy > 0 {
			v = (corr << 8) / (fixed.Sqrt64(energy) + 1)
		}
		s.corr[t-tmin] = fixed.Sat32(v)
		if t == tmax {
			break
		}
		// advance to lag t+1
		x := int64(exc[base-t-1])
		for n := subfr - 1; n > 0; n-- {
			s.excf[n] = s.excf[n-1] + x*int64(h[n])
		}
		s.excf[0] = x * int64(h[0])
	}
}
