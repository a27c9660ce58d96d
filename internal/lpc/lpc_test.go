package lpc

import (
	"math"
	"testing"
)

// ar2Signal returns 384 samples of x[n] = w[n] + 1.2x[n-1] - 0.5x[n-2].
func ar2Signal() []int16 {
	s := uint32(1)
	x := make([]int16, WindowLen)
	var p1, p2 float64
	for n := range x {
		s = s*1664525 + 1013904223
		w := float64(int32(s>>16)-32768) / 8
		v := w + 1.2*p1 - 0.5*p2
		p2, p1 = p1, v
		x[n] = int16(v)
	}
	return x
}

func TestAutocorrNormalization(t *testing.T) {
	tests := []struct {
		name string
		x    []int16
	}{
		{"ar2", ar2Signal()},
		{"silence", make([]int16, WindowLen)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := make([]int32, M+1)
			Autocorr(tc.x, r)
			if r[0] < 1<<29 || r[0] >= 1<<30 {
				t.Fatalf("r[0] = %d not normalized", r[0])
			}
			for i := 1; i <= M; i++ {
				if r[i] > r[0] || r[i] < -r[0] {
					t.Fatalf("|r[%d]| = %d exceeds r[0] = %d", i, r[i], r[0])
				}
			}
		})
	}
}

func TestLevinsonAR2(t *testing.T) {
	r := make([]int32, M+1)
	Autocorr(ar2Signal(), r)
	LagWindow(r)
	prev := make([]int16, M+1)
	prev[0] = 4096
	a := make([]int16, M+1)
	rc := make([]int16, M)
	if res := Levinson(r, prev, a, rc); res != Ok {
		t.Fatalf("Levinson = %v", res)
	}
	if a[0] != 4096 {
		t.Fatalf("a[0] = %d", a[0])
	}
	if d := int(a[1]) + 4915; d > 500 || d < -500 {
		t.Errorf("a[1] = %d, want about -4915", a[1])
	}
	if d := int(a[2]) - 2048; d > 500 || d < -500 {
		t.Errorf("a[2] = %d, want about 2048", a[2])
	}
	if rc[0] >= 0 {
		t.Errorf("first reflection coefficient %d should be negative", rc[0])
	}
}

func TestLevinsonMatchesFloat(t *testing.T) {
	r := make([]int32, M+1)
	Autocorr(ar2Signal(), r)
	LagWindow(r)

	var af [M + 1]float64
	af[0] = 1
	e := float64(r[0])
	for i := 1; i <= M; i++ {
		acc := float64(r[i])
		for j := 1; j < i; j++ {
			acc += af[j] * float64(r[i-j])
		}
		k := -acc / e
		var tmp [M + 1]float64
		for j := 1; j < i; j++ {
			tmp[j] = af[j] + k*af[i-j]
		}
		copy(af[1:i], tmp[1:i])
		af[i] = k
		e *= 1 - k*k
	}

	prev := make([]int16, M+1)
	a := make([]int16, M+1)
	if res := Levinson(r, prev, a, nil); res != Ok {
		t.Fatalf("Levinson = %v", res)
	}
	for i := 1; i <= M; i++ {
		want := math.Round(af[i] * 4096)
		if d := float64(a[i]) - want; d > 16 || d < -16 {
			t.Errorf("a[%d] = %d, want %.0f", i, a[i], want)
		}
	}
}

func TestLevinsonFallback(t *testing.T) {
	prev := make([]int16, M+1)
	for i := range prev {
		prev[i] = int16(i + 1)
	}
	degenerate := make([]int32, M+1)
	degenerate[0], degenerate[1] = 1<<29, 1<<29
	tests := []struct {
		name string
		r    []int32
	}{
		{"zero energy", make([]int32, M+1)},
		{"unit reflection", degenerate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := make([]int16, M+1)
			if res := Levinson(tc.r, prev, a, nil); res != Fallback {
				t.Fatalf("Levinson = %v, want fallback", res)
			}
			for i := range a {
				if a[i] != prev[i] {
					t.Fatalf("a[%d] = %d, want previous %d", i, a[i], prev[i])
				}
			}
		})
	}
}

func TestIspRoundTrip(t *testing.T) {
	isp := make([]int16, M)
	IsfToIsp(MeanIsf[:], isp)
	a := make([]int16, M+1)
	IspToAz(isp, a)
	back := make([]int16, M)
	if res := AzToIsp(a, back, isp); res != Ok {
		t.Fatalf("AzToIsp = %v", res)
	}
	for i := range isp {
		if d := int(isp[i]) - int(back[i]); d > 8 || d < -8 {
			t.Errorf("isp[%d]: %d -> %d", i, isp[i], back[i])
		}
	}
	isf := make([]int16, M)
	IspToIsf(back, isf)
	for i := range isf {
		if d := int(isf[i]) - int(MeanIsf[i]); d > 2 || d < -2 {
			t.Errorf("isf[%d]: %d -> %d", i, MeanIsf[i], isf[i])
		}
	}
}

func TestAzToIspFallback(t *testing.T) {
	// 1 + 3z^-8 has no interlaced unit-circle roots.
	a := make([]int16, M+1)
	a[0], a[8] = 4096, 12288
	old := make([]int16, M)
	for i := range old {
		old[i] = int16(30000 - 4000*i)
	}
	isp := make([]int16, M)
	if res := AzToIsp(a, isp, old); res != Fallback {
		t.Fatalf("AzToIsp = %v, want fallback", res)
	}
	for i := range isp {
		if isp[i] != old[i] {
			t.Fatalf("isp[%d] = %d, want %d", i, isp[i], old[i])
		}
	}
}

func TestIntLpcLastSubframe(t *testing.T) {
	old := make([]int16, M)
	cur := make([]int16, M)
	IsfToIsp(MeanIsf[:], old)
	IsfToIsp(MeanIsfNoise[:], cur)
	az := make([]int16, 4*(M+1))
	IntLpc(old, cur, az)
	want := make([]int16, M+1)
	IspToAz(cur, want)
	for i := range want {
		if az[3*(M+1)+i] != want[i] {
			t.Fatalf("subframe 4 coefficient %d = %d, want %d", i, az[3*(M+1)+i], want[i])
		}
	}
	for sf := 0; sf < 4; sf++ {
		if az[sf*(M+1)] != 4096 {
			t.Errorf("subframe %d a[0] = %d", sf, az[sf*(M+1)])
		}
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name string
		in   []int16
	}{
		{"collapsed", []int16{0, 0, 0, 0}},
		{"crossing", []int16{500, 400, 300, 200}},
		{"already spaced", []int16{200, 400, 600, 900}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x := append([]int16(nil), tc.in...)
			Reorder(x, IsfGap)
			if x[0] < IsfGap {
				t.Errorf("x[0] = %d", x[0])
			}
			for i := 1; i < len(x)-1; i++ {
				if x[i]-x[i-1] < IsfGap {
					t.Errorf("x[%d]-x[%d] = %d", i, i-1, x[i]-x[i-1])
				}
			}
		})
	}
}

func testIsf(frame int) []int16 {
	isf := make([]int16, M)
	s := uint32(frame*7919 + 17)
	for i := range isf {
		s = s*1664525 + 1013904223
		isf[i] = MeanIsf[i] + int16(int32(s>>20)-2048)/8
	}
	return isf
}

func checkSpacing(t *testing.T, isf []int16) {
	t.Helper()
	if isf[0] < IsfGap {
		t.Fatalf("isf[0] = %d below gap", isf[0])
	}
	for i := 0; i < M-2; i++ {
		if isf[i+1]-isf[i] < IsfGap {
			t.Fatalf("isf[%d]-isf[%d] = %d < %d", i+1, i, isf[i+1]-isf[i], IsfGap)
		}
	}
}

func TestQuantizeDecodeAgree(t *testing.T) {
	tests := []struct {
		name   string
		nIdx   int
		widths []int
		q      func(*Predictor, []int16, []int, []int16)
		d      func(*Predictor, []int, bool, []int16)
	}{
		{"46bit", numIdx46, []int{8, 8, 6, 7, 7, 5, 5}, (*Predictor).Quantize46, (*Predictor).Decode46},
		{"36bit", numIdx36, []int{8, 8, 7, 7, 6}, (*Predictor).Quantize36, (*Predictor).Decode36},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enc, dec := NewPredictor(), NewPredictor()
			idx := make([]int, tc.nIdx)
			qe := make([]int16, M)
			qd := make([]int16, M)
			for frame := 0; frame < 30; frame++ {
				tc.q(enc, testIsf(frame), idx, qe)
				for i, w := range tc.widths {
					if idx[i] < 0 || idx[i] >= 1<<w {
						t.Fatalf("frame %d: index %d = %d exceeds %d bits", frame, i, idx[i], w)
					}
				}
				tc.d(dec, idx, false, qd)
				for i := range qe {
					if qe[i] != qd[i] {
						t.Fatalf("frame %d: isf[%d] encoder %d decoder %d", frame, i, qe[i], qd[i])
					}
				}
				checkSpacing(t, qd)
			}
		})
	}
}

func TestConcealFromReset(t *testing.T) {
	p := NewPredictor()
	isf := make([]int16, M)
	p.Decode46(nil, true, isf)
	for i := range isf {
		if isf[i] != MeanIsf[i] {
			t.Fatalf("isf[%d] = %d, want %d", i, isf[i], MeanIsf[i])
		}
	}
}

func TestConcealKeepsOrdering(t *testing.T) {
	p := NewPredictor()
	idx := make([]int, numIdx46)
	isf := make([]int16, M)
	enc := NewPredictor()
	for frame := 0; frame < 10; frame++ {
		enc.Quantize46(testIsf(frame), idx, isf)
		p.Decode46(idx, false, isf)
	}
	for n := 0; n < 6; n++ {
		p.Decode46(idx, true, isf)
		checkSpacing(t, isf)
	}
}

func TestSIDRoundTrip(t *testing.T) {
	idx := make([]int, numIdxSID)
	q := make([]int16, M)
	QuantizeSID(MeanIsfNoise[:], idx, q)
	d := make([]int16, M)
	DecodeSID(idx, d)
	for i := range q {
		if q[i] != d[i] {
			t.Fatalf("isf[%d]: quantized %d decoded %d", i, q[i], d[i])
		}
	}
	for i, w := range SIDFieldBits() {
		if idx[i] >= 1<<w {
			t.Errorf("index %d = %d exceeds %d bits", i, idx[i], w)
		}
	}
	checkSpacing(t, d)
}
