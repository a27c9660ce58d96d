package gain

import (
	"testing"

	"github.com/thesyncim/amrwb/internal/fixed"
)

func pulses(pos ...int) []int16 {
	c := make([]int16, L)
	for i, p := range pos {
		if i%2 == 0 {
			c[p] = 512
		} else {
			c[p] = -512
		}
	}
	return c
}

func TestPitch(t *testing.T) {
	xn := make([]int16, L)
	y2 := make([]int16, L)
	for i := range xn {
		xn[i] = int16(i*37%200 - 100)
		y2[i] = 2 * xn[i]
	}
	tests := []struct {
		name string
		y1   []int16
		want int16
	}{
		{"equal", xn, 16384},
		{"double", y2, 8192},
		{"silent", make([]int16, L), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Pitch(xn, tc.y1); got != tc.want {
				t.Errorf("Pitch = %d, want %d", got, tc.want)
			}
		})
	}
	neg := make([]int16, L)
	half := make([]int16, L)
	for i := range neg {
		neg[i] = -xn[i]
		half[i] = xn[i] / 4
	}
	if got := Pitch(xn, neg); got != 0 {
		t.Errorf("anti-correlated gain = %d, want 0", got)
	}
	if got := Pitch(xn, half); got != PitchMax {
		t.Errorf("gain = %d, want clamp at %d", got, PitchMax)
	}
}

func TestQuantizeFindsExactEntry(t *testing.T) {
	y1 := make([]int16, L)
	y2 := make([]int16, L)
	for i := 0; i < L; i += 2 {
		y1[i] = 1000
		y2[i+1] = 25600 // 50 in Q9
	}
	code := pulses(3, 17, 40, 58)
	for _, bits := range []int{6, 7} {
		tab := tableFor(bits)
		for _, k := range []int{0, 9, tab.size() / 2, tab.size() - 3} {
			var p Predictor
			p.Reset()
			gc0 := p.predict(code)
			gp, gamma, _ := tab.entry(k)
			gc := scaleCode(gc0, gamma)
			xn := make([]int16, L)
			for i := range xn {
				v := int64(gp)*int64(y1[i])<<11 + int64(gc)*int64(y2[i])
				xn[i] = fixed.Sat16L((v + 1<<24) >> 25)
			}
			q := NewQuantizer()
			gotGp, gotGc, idx := q.Quantize(bits, xn, y1, y2, code, false)
			if idx != k {
				t.Errorf("bits=%d: index %d, want %d", bits, idx, k)
				continue
			}
			if gotGp != gp || gotGc != gc {
				t.Errorf("bits=%d: gains (%d, %d), want (%d, %d)", bits, gotGp, gotGc, gp, gc)
			}
		}
	}
}

func TestQuantizeClip(t *testing.T) {
	y1 := make([]int16, L)
	for i := range y1 {
		y1[i] = int16(300 * (i%5 - 2))
	}
	q := NewQuantizer()
	gp, _, _ := q.Quantize(7, y1, y1, make([]int16, L), pulses(1, 2), true)
	if gp > PitchClip {
		t.Fatalf("clipped pitch gain %d exceeds %d", gp, PitchClip)
	}
}

func TestEncoderDecoderAgree(t *testing.T) {
	for _, bits := range []int{6, 7} {
		q := NewQuantizer()
		d := NewDecoder()
		seed := uint32(99)
		rnd := func(n int) int {
			seed = seed*1664525 + 1013904223
			return int(seed>>8) % n
		}
		for sub := 0; sub < 40; sub++ {
			xn := make([]int16, L)
			y1 := make([]int16, L)
			y2 := make([]int16, L)
			for i := range xn {
				xn[i] = int16(rnd(6000) - 3000)
				y1[i] = int16(rnd(6000) - 3000)
				y2[i] = int16(rnd(2000) - 1000)
			}
			code := pulses(rnd(16), 16+rnd(16), 32+rnd(16), 48+rnd(16))
			gp, gc, idx := q.Quantize(bits, xn, y1, y2, code, false)
			d.Advance(false)
			dgp, dgc := d.Decode(bits, idx, code, Frame{})
			if gp != dgp || gc != dgc {
				t.Fatalf("bits=%d subframe %d: encoder (%d, %d), decoder (%d, %d)", bits, sub, gp, gc, dgp, dgc)
			}
		}
	}
}

func TestConcealmentMonotonic(t *testing.T) {
	for _, unusable := range []bool{true, false} {
		d := NewDecoder()
		code := pulses(5, 22, 39, 60)
		var gps []int16
		var gcs []int32
		for _, idx := range []int{70, 85, 41, 99, 60, 77, 52, 90} {
			d.Advance(false)
			gp, gc := d.Decode(7, idx, code, Frame{})
			gps = append(gps, gp)
			gcs = append(gcs, gc)
		}
		last5gp := gps[len(gps)-5:]
		last5gc := gcs[len(gcs)-5:]

		pdown, cdown := pdownUsable[1], cdownUsable[1]
		if unusable {
			pdown, cdown = pdownUnusable[1], cdownUnusable[1]
		}
		wantGp := fixed.Mult(pdown, min(fixed.Median(last5gp), PitchClip))
		wantGc := int32(int64(fixed.MedianL(last5gc)) * int64(cdown) >> 15)

		prevGp, prevGc := int16(fixed.MaxInt16), int32(fixed.MaxInt32)
		for n := 1; n <= 12; n++ {
			d.Advance(true)
			for sub := 0; sub < 4; sub++ {
				gp, gc := d.Decode(7, 0, code, Frame{Bad: true, PrevBad: n > 1 || sub > 0, Unusable: unusable})
				if n == 1 && sub == 0 && (gp != wantGp || gc != wantGc) {
					t.Fatalf("unusable=%v: first concealed gains (%d, %d), want (%d, %d)", unusable, gp, gc, wantGp, wantGc)
				}
				if gp > prevGp || gc > prevGc {
					t.Fatalf("unusable=%v frame %d: gains rose to (%d, %d) from (%d, %d)", unusable, n, gp, gc, prevGp, prevGc)
				}
				prevGp, prevGc = gp, gc
			}
		}
		if d.State() != 6 {
			t.Errorf("state = %d after a long erasure, want 6", d.State())
		}
	}
}

func TestRecoveryLimitsCodeGain(t *testing.T) {
	d := NewDecoder()
	code := pulses(1, 30)
	for i := 0; i < 6; i++ {
		d.Advance(false)
		d.Decode(6, 63, code, Frame{})
	}
	d.Advance(true)
	_, concealed := d.Decode(6, 0, code, Frame{Bad: true, Unusable: true})
	d.Advance(false)
	_, gc := d.Decode(6, 63, code, Frame{PrevBad: true})
	if gc > concealed {
		t.Fatalf("code gain after erasure %d exceeds concealed %d", gc, concealed)
	}
}

func TestClipper(t *testing.T) {
	var c Clipper
	c.Reset()
	if c.Active() {
		t.Fatal("clipping active after reset")
	}
	isf := make([]int16, 16)
	for i := range isf {
		isf[i] = int16(1000 + 100*i)
	}
	for i := 0; i < 20; i++ {
		c.UpdateISF(isf)
		for s := 0; s < 4; s++ {
			c.UpdateGain(16000)
		}
	}
	if !c.Active() {
		t.Fatalf("clipping inactive with dist=%d gain=%d", c.dist, c.gain)
	}
	for i := 0; i < 40; i++ {
		c.UpdateGain(0)
	}
	if c.Active() {
		t.Fatal("clipping still active after low pitch gains")
	}
}

func TestVoiceFactor(t *testing.T) {
	exc := make([]int16, L)
	for i := range exc {
		exc[i] = int16(1000 - 30*i)
	}
	code := pulses(4, 9, 33)
	if v := VoiceFactor(exc, 16384, code, 0); v != 32767 {
		t.Errorf("pure pitch: %d, want 32767", v)
	}
	if v := VoiceFactor(exc, 0, code, 1<<16); v != -32767 {
		t.Errorf("pure code: %d, want -32767", v)
	}
	if v := VoiceFactor(exc, 8000, code, 20<<16); v <= -32767 || v >= 32767 {
		t.Errorf("mixed: %d, want strictly inside (-1, 1)", v)
	}
}
