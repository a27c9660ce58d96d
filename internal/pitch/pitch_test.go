package pitch

import (
	"math"
	"testing"
)

func allowedFracs(c Coding, t0 int) []int {
	half, integer := c.Resolution()
	switch {
	case t0 >= integer:
		return []int{0}
	case t0 >= half:
		return []int{0, 2}
	}
	return []int{0, 1, 2, 3}
}

func TestLagCodingRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Coding
		prev int
	}{
		{"abs9", Abs9, 0},
		{"abs8", Abs8, 0},
		{"rel6 low", Rel6, PitMin},
		{"rel6 mid", Rel6, 100},
		{"rel6 high", Rel6, PitMax},
		{"rel5 low", Rel5, 40},
		{"rel5 high", Rel5, 225},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lo, hi := PitMin, PitMax
			if tc.c.Relative() {
				lo, hi = RelRange(tc.prev)
			}
			seen := make(map[int]bool)
			for t0 := lo; t0 <= hi; t0++ {
				fracs := allowedFracs(tc.c, t0)
				for _, f := range fracs {
					idx := Encode(tc.c, t0, f, lo)
					if idx < 0 || idx >= 1<<tc.c.Bits() {
						t.Fatalf("lag %d+%d/4: index %d out of %d bits", t0, f, idx, tc.c.Bits())
					}
					if seen[idx] {
						t.Fatalf("lag %d+%d/4: index %d reused", t0, f, idx)
					}
					seen[idx] = true
					gt, gf := Decode(tc.c, idx, lo)
					if gt != t0 || gf != f {
						t.Fatalf("index %d: got %d+%d/4, want %d+%d/4", idx, gt, gf, t0, f)
					}
				}
			}
		})
	}
}

func TestRelRangeWidth(t *testing.T) {
	for _, prev := range []int{PitMin, 40, 120, PitMax - 3, PitMax} {
		lo, hi := RelRange(prev)
		if hi-lo != 15 || lo < PitMin || hi > PitMax {
			t.Errorf("RelRange(%d) = [%d, %d]", prev, lo, hi)
		}
	}
}

func TestPredLt4(t *testing.T) {
	exc := make([]int16, ExcBase+subfr+1)
	for i := 0; i < ExcBase; i++ {
		exc[i] = int16(i * 37 % 2000)
	}
	PredLt4(exc, ExcBase, 50, 0, subfr+1)
	for i := 0; i <= subfr; i++ {
		if exc[ExcBase+i] != exc[ExcBase+i-50] {
			t.Fatalf("integer lag: sample %d = %d, want %d", i, exc[ExcBase+i], exc[ExcBase+i-50])
		}
	}

	for frac := 1; frac < 4; frac++ {
		for i := range exc {
			exc[i] = 1000
		}
		PredLt4(exc, ExcBase, 41, frac, subfr)
		for i := 0; i < subfr; i++ {
			if d := int(exc[ExcBase+i]) - 1000; d > 3 || d < -3 {
				t.Fatalf("frac %d: constant input gave %d at %d", frac, exc[ExcBase+i], i)
			}
		}
	}
}

func TestLtpFilterDC(t *testing.T) {
	exc := make([]int16, 70)
	for i := range exc {
		exc[i] = 2000
	}
	out := make([]int16, 64)
	LtpFilter(exc, 1, out, 64)
	for i, v := range out {
		if v < 1999 || v > 2001 {
			t.Fatalf("out[%d] = %d", i, v)
		}
	}
}

func TestClosedLoopPulseTrain(t *testing.T) {
	const period = 57
	exc := make([]int16, ExcBase+subfr+1)
	for i := range exc {
		if (len(exc)-i)%period == 0 {
			exc[i] = 8000
		}
	}
	xn := make([]int16, subfr)
	for n := range xn {
		xn[n] = exc[ExcBase+n-period]
	}
	h := make([]int16, subfr)
	h[0] = 4096
	lo, hi := AbsRange(period)
	var s Searcher
	t0, frac := s.ClosedLoop(exc, ExcBase, xn, h, lo, hi, Abs9)
	if t0 != period || frac != 0 {
		t.Fatalf("ClosedLoop = %d+%d/4, want %d", t0, frac, period)
	}
}

func TestOpenLoopSine(t *testing.T) {
	const frames = 6
	wsp := make([]int16, LMaxDec+frames*64)
	for i := range wsp {
		wsp[i] = int16(8000 * math.Sin(2*math.Pi*float64(i)/40))
	}
	o := NewOpenLoop()
	var lag int
	var gain int16
	for f := 0; f < frames; f++ {
		lag, gain = o.Estimate(wsp, LMaxDec+f*64, 64)
	}
	if lag != 80 {
		t.Errorf("lag = %d, want 80", lag)
	}
	if gain < 19661 {
		t.Errorf("gain = %d, want > 19661", gain)
	}
	if m := o.Median(); m != 40 {
		t.Errorf("median = %d, want 40", m)
	}
}

func TestDecimatorDC(t *testing.T) {
	var d Decimator
	x := make([]int16, 256)
	out := make([]int16, 128)
	for i := range x {
		x[i] = 3000
	}
	d.Process(x, out)
	d.Process(x, out)
	for i, v := range out {
		if v < 2998 || v > 3001 {
			t.Fatalf("out[%d] = %d", i, v)
		}
	}
}
