package bitstream

import (
	"errors"
	"testing"

	"github.com/thesyncim/amrwb/internal/types"
)

func allModes() []types.Mode {
	var m []types.Mode
	for i := types.Mode660; i <= types.ModeSID; i++ {
		m = append(m, i)
	}
	return m
}

func TestFieldWidthsSum(t *testing.T) {
	want := []int{132, 177, 253, 285, 317, 365, 397, 461, 477, 35}
	for i, m := range allModes() {
		sum := 0
		for _, w := range FieldWidths(m) {
			sum += w
		}
		if sum != want[i] || FrameBits(m) != want[i] {
			t.Errorf("mode %d: fields sum to %d, FrameBits %d, want %d", m, sum, FrameBits(m), want[i])
		}
		if got := m.Bitrate() / 50; m.IsSpeech() && got != want[i] {
			t.Errorf("mode %d: bitrate %d bits/frame, layout %d", m, got, want[i])
		}
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	seed := uint32(1)
	for _, m := range allModes() {
		t.Run(m.String(), func(t *testing.T) {
			for iter := 0; iter < 50; iter++ {
				var in Params
				walk(m, &in, func(width int, v *int) {
					seed = seed*1664525 + 1013904223
					*v = int(seed>>7) & (1<<width - 1)
				})
				bits := make([]uint8, FrameBits(m))
				if err := Pack(m, &in, bits); err != nil {
					t.Fatal(err)
				}
				var out Params
				if err := Unpack(m, bits, &out); err != nil {
					t.Fatal(err)
				}
				if in != out {
					t.Fatalf("round trip mismatch:\n in  %+v\n out %+v", in, out)
				}
			}
		})
	}
}

func TestPackErrors(t *testing.T) {
	var p Params
	if err := Pack(types.Mode660, &p, make([]uint8, 100)); !errors.Is(err, ErrLength) {
		t.Errorf("short buffer: err = %v, want ErrLength", err)
	}
	if err := Unpack(types.Mode(12), make([]uint8, 500), &p); !errors.Is(err, ErrMode) {
		t.Errorf("bad mode: err = %v, want ErrMode", err)
	}
}

func TestOrderIsPermutation(t *testing.T) {
	for _, m := range allModes() {
		o := Order(m)
		if len(o) != FrameBits(m) {
			t.Fatalf("mode %d: order has %d entries, want %d", m, len(o), FrameBits(m))
		}
		seen := make([]bool, len(o))
		for _, i := range o {
			if i < 0 || i >= len(o) || seen[i] {
				t.Fatalf("mode %d: order is not a permutation (index %d)", m, i)
			}
			seen[i] = true
		}
		if o[0] != 0 {
			t.Errorf("mode %d: first stored bit is %d, want 0", m, o[0])
		}
	}
}

func TestWriterReader(t *testing.T) {
	w := NewWriter(nil)
	w.WriteBits(0x5, 3)
	w.WriteBits(0x1ff, 9)
	w.WriteBit(1)
	if w.Len() != 13 || len(w.Bytes()) != 2 {
		t.Fatalf("Len = %d, %d bytes", w.Len(), len(w.Bytes()))
	}
	if got := w.Bytes(); got[0] != 0xbf || got[1] != 0xf8 {
		t.Fatalf("packed % x, want bf f8", got)
	}
	r := NewReader(w.Bytes())
	for _, tc := range []struct {
		n    int
		want uint32
	}{{3, 5}, {9, 0x1ff}, {1, 1}, {3, 0}} {
		v, err := r.ReadBits(tc.n)
		if err != nil || v != tc.want {
			t.Fatalf("ReadBits(%d) = %d, %v; want %d", tc.n, v, err, tc.want)
		}
	}
	if _, err := r.ReadBit(); !errors.Is(err, ErrShort) {
		t.Fatalf("read past end: %v", err)
	}
}
