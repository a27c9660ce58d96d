package frameio

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/thesyncim/amrwb"
)

func TestFormatsRoundTrip(t *testing.T) {
	bits := make([]uint8, amrwb.FrameBits(amrwb.Mode1425))
	for i := range bits {
		bits[i] = uint8(i % 3 & 1)
	}
	for _, name := range Formats {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, name)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.WriteFrame(amrwb.RxFrame{Mode: amrwb.Mode1425, Quality: amrwb.QualityGood, Bits: bits}); err != nil {
				t.Fatal(err)
			}
			r, err := NewReader(&buf, name)
			if err != nil {
				t.Fatal(err)
			}
			f, err := r.ReadFrame()
			if err != nil {
				t.Fatal(err)
			}
			if f.Mode != amrwb.Mode1425 || !bytes.Equal(f.Bits, bits) {
				t.Fatalf("got %v %v", f.Mode, f.Bits)
			}
			if _, err := r.ReadFrame(); err != io.EOF {
				t.Fatalf("got %v, want io.EOF", err)
			}
		})
	}
	if _, err := NewWriter(io.Discard, "ogg"); !errors.Is(err, ErrFormat) {
		t.Errorf("unknown format: %v", err)
	}
}

func TestPCM(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 1234}
	var buf bytes.Buffer
	if err := WritePCM(&buf, in); err != nil {
		t.Fatal(err)
	}
	buf.Write([]byte{0x34}) // half a sample
	out := make([]int16, 4)
	if err := ReadPCM(&buf, out); err != nil {
		t.Fatal(err)
	}
	if err := ReadPCM(&buf, out); err != nil {
		t.Fatal(err)
	}
	want := []int16{-32768, 1234, 0x34, 0}
	if out[0] != want[0] || out[1] != want[1] || out[2] != want[2] || out[3] != want[3] {
		t.Fatalf("got %v, want %v", out, want)
	}
	if err := ReadPCM(&buf, out); err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}
