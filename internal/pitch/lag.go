// Package pitch implements the long-term (adaptive codebook) predictor:
// open-loop lag estimation on decimated weighted speech, closed-loop
// fractional refinement, lag index coding and excitation interpolation.
package pitch

const (
	PitMin   = 34  // shortest lag at 12.8 kHz
	PitMax   = 231 // longest lag at 12.8 kHz
	PitFr2   = 128 // 9-bit coding: quarter resolution below this lag
	PitFr19b = 160 // 9-bit coding: half resolution below this lag
	PitFr18b = 92  // 8-bit coding: half resolution below this lag

	// LInterpol is the interpolation support needed in front of the oldest
	// excitation sample addressed by PitMax.
	LInterpol = 17
	// ExcBase is the offset of the current subframe in an excitation
	// buffer that keeps PitMax+LInterpol samples of history.
	ExcBase = PitMax + LInterpol
)

// Coding is the lag index format of one subframe.
type Coding uint8

const (
	Abs9 Coding = iota // 9-bit absolute, 1/4, 1/2 and integer resolution
	Rel6               // 6-bit relative, 1/4 resolution over 16 lags
	Abs8               // 8-bit absolute, 1/2 and integer resolution
	Rel5               // 5-bit relative, 1/2 resolution over 16 lags
)

// Bits returns the index width of c.
func (c Coding) Bits() int {
	switch c {
	case Abs9:
		return 9
	case Rel6:
		return 6
	case Abs8:
		return 8
	default:
		return 5
	}
}

// Relative reports whether c codes the lag around the previous subframe.
func (c Coding) Relative() bool {
	return c == Rel6 || c == Rel5
}

// Resolution returns the lags at which the closed-loop search switches
// from quarter to half and from half to integer resolution.
func (c Coding) Resolution() (half, integer int) {
	switch c {
	case Abs9:
		return PitFr2, PitFr19b
	case Rel6:
		return PitMax + 1, PitMax + 1
	case Abs8:
		return PitMin, PitFr18b
	default:
		return PitMin, PitMax + 1
	}
}

// AbsRange returns the closed-loop search range around an open-loop lag.
func AbsRange(tOp int) (lo, hi int) {
	lo = tOp - 8
	if lo < PitMin {
		lo = PitMin
	}
	hi = lo + 15
	if hi > PitMax {
		hi = PitMax
		lo = hi - 15
	}
	return lo, hi
}

// RelRange returns the 16-lag window used by relative coding around the
// previous subframe's integer lag.
func RelRange(prev int) (lo, hi int) {
	return AbsRange(prev)
}

// Encode returns the index of lag t0 + frac/4. lo is the lower bound of
// the relative window and is ignored for absolute codings.
func Encode(c Coding, t0, frac, lo int) int {
	switch c {
	case Abs9:
		switch {
		case t0 < PitFr2:
			return t0*4 + frac - PitMin*4
		case t0 < PitFr19b:
			return t0*2 + frac>>1 - PitFr2*2 + (PitFr2-PitMin)*4
		default:
			return t0 - PitFr19b + (PitFr2-PitMin)*4 + (PitFr19b-PitFr2)*2
		}
	case Abs8:
		if t0 < PitFr18b {
			return t0*2 + frac>>1 - PitMin*2
		}
		return t0 - PitFr18b + (PitFr18b-PitMin)*2
	case Rel6:
		return (t0-lo)*4 + frac
	default:
		return (t0-lo)*2 + frac>>1
	}
}

// Decode is the inverse of Encode and returns the integer lag and the
// fraction in quarter samples (0..3).
func Decode(c Coding, index, lo int) (t0, frac int) {
	switch c {
	case Abs9:
		switch {
		case index < (PitFr2-PitMin)*4:
			t0 = PitMin + index>>2
			frac = index - (t0-PitMin)*4
		case index < (PitFr2-PitMin)*4+(PitFr19b-PitFr2)*2:
			i := index - (PitFr2-PitMin)*4
			t0 = PitFr2 + i>>1
			frac = (i - (t0-PitFr2)*2) * 2
		default:
			t0 = index - (PitFr2-PitMin)*4 - (PitFr19b-PitFr2)*2 + PitFr19b
		}
	case Abs8:
		if index < (PitFr18b-PitMin)*2 {
			t0 = PitMin + index>>1
			frac = (index - (t0-PitMin)*2) * 2
		} else {
			t0 = index - (PitFr18b-PitMin)*2 + PitFr18b
		}
	case Rel6:
		t0 = lo + index>>2
		frac = index & 3
	default:
		t0 = lo + index>>1
		frac = (index & 1) * 2
	}
	if t0 > PitMax {
		t0, frac = PitMax, 0
	}
	return t0, frac
}
