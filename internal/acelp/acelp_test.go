package acelp

import (
	"sort"
	"testing"
)

type lcg uint32

func (r *lcg) next(n int) int {
	*r = *r*1664525 + 1013904223
	return int(uint32(*r)>>8) % n
}

func sortPulses(p []Pulse) {
	sort.Slice(p, func(i, j int) bool { return p[i].Pos < p[j].Pos })
}

func randomPulses(r *lcg, k int, n uint) []Pulse {
	used := make(map[int]bool)
	p := make([]Pulse, 0, k)
	for len(p) < k {
		pos := r.next(1 << n)
		if used[pos] {
			continue
		}
		used[pos] = true
		p = append(p, Pulse{Pos: pos, Neg: r.next(2) == 1})
	}
	return p
}

func TestPackRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		k    int
		n    uint
	}{
		{"1 pulse 32 positions", 1, 5},
		{"1 pulse", 1, 4},
		{"2 pulses", 2, 4},
		{"3 pulses", 3, 4},
		{"4 pulses", 4, 4},
		{"5 pulses", 5, 4},
		{"6 pulses", 6, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := lcg(tc.k*131 + int(tc.n))
			bits := IndexBits(tc.k, tc.n)
			for iter := 0; iter < 5000; iter++ {
				in := randomPulses(&r, tc.k, tc.n)
				idx := Quantize(in, tc.n)
				if idx < 0 || idx >= 1<<bits {
					t.Fatalf("%v: index %d exceeds %d bits", in, idx, bits)
				}
				out := make([]Pulse, tc.k)
				Dequantize(idx, tc.n, out)
				want := append([]Pulse(nil), in...)
				sortPulses(want)
				sortPulses(out)
				for i := range want {
					if want[i] != out[i] {
						t.Fatalf("pulses %v: decoded %v (index %d)", want, out, idx)
					}
				}
			}
		})
	}
}

func TestPackTwoPulsesExhaustive(t *testing.T) {
	for a := 0; a < 16; a++ {
		for b := 0; b < 16; b++ {
			if a == b {
				continue
			}
			for s := 0; s < 4; s++ {
				in := []Pulse{{a, s&1 == 1}, {b, s&2 == 2}}
				out := make([]Pulse, 2)
				Dequantize(Quantize(in, 4), 4, out)
				sortPulses(in)
				sortPulses(out)
				if in[0] != out[0] || in[1] != out[1] {
					t.Fatalf("%v decoded as %v", in, out)
				}
			}
		}
	}
}

func TestConfigBits(t *testing.T) {
	tests := []struct {
		cfg  Config
		want int
	}{
		{Config12, 12}, {Config20, 20}, {Config36, 36}, {Config44, 44},
		{Config52, 52}, {Config64, 64}, {Config72, 72}, {Config88, 88},
	}
	for _, tc := range tests {
		if got := tc.cfg.Bits(); got != tc.want {
			t.Errorf("config with %v pulses: %d bits, want %d", tc.cfg.Pulses, got, tc.want)
		}
	}
}

func impulseResponse() []int16 {
	h := make([]int16, L)
	v := int32(4096)
	for i := range h {
		h[i] = int16(v)
		v = v * -27000 >> 15
	}
	return h
}

func TestSearchUniqueAndDecodable(t *testing.T) {
	configs := []Config{Config12, Config20, Config36, Config44, Config52, Config64, Config72, Config88}
	h := impulseResponse()
	r := lcg(7)
	for _, cfg := range configs {
		var s Searcher
		for sub := 0; sub < 20; sub++ {
			xn := make([]int16, L)
			cn := make([]int16, L)
			for i := range xn {
				xn[i] = int16(r.next(8000) - 4000)
				cn[i] = int16(r.next(8000) - 4000)
			}
			dn := make([]int32, L)
			CorrHX(h, xn, dn)
			code := make([]int16, L)
			y := make([]int16, L)
			idx := make([]int, cfg.Tracks)
			s.Search(cfg, dn, cn, h, code, y, idx)

			n := 0
			for _, v := range code {
				switch v {
				case 0:
				case PulseAmp, -PulseAmp:
					n++
				default:
					t.Fatalf("%v: pulse amplitude %d (positions collide)", cfg.Pulses, v)
				}
			}
			if n != cfg.NumPulses() {
				t.Fatalf("%v: %d pulses, want %d", cfg.Pulses, n, cfg.NumPulses())
			}
			dec := make([]int16, L)
			cfg.Decode(idx, dec)
			for i := range dec {
				if dec[i] != code[i] {
					t.Fatalf("%v: decoded code[%d] = %d, want %d", cfg.Pulses, i, dec[i], code[i])
				}
			}
		}
	}
}

func TestSearchFindsIsolatedPulses(t *testing.T) {
	h := make([]int16, L)
	h[0] = 4096
	xn := make([]int16, L)
	want := map[int]int16{5: 3000, 14: -2500, 23: 2800, 60: -3100}
	for i, v := range want {
		xn[i] = v
	}
	dn := make([]int32, L)
	CorrHX(h, xn, dn)
	code := make([]int16, L)
	y := make([]int16, L)
	idx := make([]int, 4)
	var s Searcher
	s.Search(Config20, dn, xn, h, code, y, idx)
	for i, v := range code {
		w, ok := want[i]
		switch {
		case ok && (v > 0) != (w > 0):
			t.Errorf("position %d: sign of %d, want sign of %d", i, v, w)
		case !ok && v != 0:
			t.Errorf("unexpected pulse at %d", i)
		}
	}
}

func TestSharpenLongLagNoTilt(t *testing.T) {
	x := make([]int16, L)
	x[3] = 512
	Sharpen(x, 0, L, 27853)
	for i, v := range x {
		if (i == 3 && v != 512) || (i != 3 && v != 0) {
			t.Fatalf("x[%d] = %d", i, v)
		}
	}
	Sharpen(x, 0, 20, 16384)
	if x[23] != 256 || x[43] != 128 {
		t.Fatalf("sharpened taps %d, %d", x[23], x[43])
	}
}
