package itu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/thesyncim/amrwb"
)

func pattern(n int) []uint8 {
	b := make([]uint8, n)
	for i := range b {
		b[i] = uint8(i*7/3) & 1
	}
	return b
}

func sampleFrames() []amrwb.RxFrame {
	return []amrwb.RxFrame{
		{Mode: amrwb.Mode1265, Quality: amrwb.QualityGood, Bits: pattern(253)},
		{Mode: amrwb.Mode2385, Quality: amrwb.QualityBad, Bits: pattern(477)},
		{Mode: amrwb.Mode660, Quality: amrwb.QualityGood, Bits: pattern(132)},
		{Mode: amrwb.ModeSID, Quality: amrwb.QualitySIDFirst, Bits: pattern(35)},
		{Mode: amrwb.Mode660, Quality: amrwb.QualityNoData},
		{Mode: amrwb.ModeSID, Quality: amrwb.QualitySIDUpdate, Bits: pattern(35)},
		{Mode: amrwb.Mode660, Quality: amrwb.QualityLost},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatG192, FormatTypeMode} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, format)
			frames := sampleFrames()
			for i, f := range frames {
				if err := w.WriteFrame(f); err != nil {
					t.Fatalf("frame %d: WriteFrame failed: %v", i, err)
				}
			}
			r := NewReader(&buf, format)
			for i, want := range frames {
				got, err := r.ReadFrame()
				if err != nil {
					t.Fatalf("frame %d: ReadFrame failed: %v", i, err)
				}
				if got.Quality != want.Quality || got.Mode != want.Mode || !bytes.Equal(got.Bits, want.Bits) {
					t.Fatalf("frame %d: got %v/%v %v, want %v/%v %v", i, got.Quality, got.Mode, got.Bits, want.Quality, want.Mode, want.Bits)
				}
			}
			if _, err := r.ReadFrame(); err != io.EOF {
				t.Fatalf("got %v, want io.EOF", err)
			}
		})
	}
}

func TestG192Layout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatG192)
	if err := w.WriteFrame(amrwb.RxFrame{Mode: amrwb.Mode660, Quality: amrwb.QualityGood, Bits: pattern(132)}); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	if len(b) != 2*(2+132) {
		t.Fatalf("frame is %d bytes", len(b))
	}
	if s := binary.LittleEndian.Uint16(b); s != SyncGood {
		t.Errorf("sync %#04x", s)
	}
	if n := binary.LittleEndian.Uint16(b[2:]); n != 132 {
		t.Errorf("length %d", n)
	}
	for i, bit := range pattern(132) {
		want := uint16(BitZero)
		if bit == 1 {
			want = BitOne
		}
		if got := binary.LittleEndian.Uint16(b[4+2*i:]); got != want {
			t.Fatalf("bit %d: word %#04x, want %#04x", i, got, want)
		}
	}
}

func TestTypeModeRecordSize(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatTypeMode)
	for _, f := range sampleFrames() {
		if err := w.WriteFrame(f); err != nil {
			t.Fatal(err)
		}
	}
	if want := len(sampleFrames()) * 2 * (2 + amrwb.MaxFrameBits); buf.Len() != want {
		t.Errorf("stream is %d bytes, want %d", buf.Len(), want)
	}
}

func TestReadErrors(t *testing.T) {
	words := func(w ...uint16) io.Reader {
		var b []byte
		for _, v := range w {
			b = binary.LittleEndian.AppendUint16(b, v)
		}
		return bytes.NewReader(b)
	}
	tests := []struct {
		name   string
		format Format
		in     io.Reader
		want   error
	}{
		{"bad sync", FormatG192, words(0x1234, 0), ErrInvalidSync},
		{"bad length", FormatG192, words(SyncGood, 100), ErrInvalidLength},
		{"truncated", FormatG192, words(SyncGood, 132, BitOne), ErrUnexpectedEOF},
		{"half header", FormatG192, bytes.NewReader([]byte{0x21}), ErrUnexpectedEOF},
		{"bad quality", FormatTypeMode, words(42, 0), ErrInvalidHeader},
		{"bad mode", FormatTypeMode, words(0, 12), ErrInvalidHeader},
	}
	for _, tt := range tests {
		if _, err := NewReader(tt.in, tt.format).ReadFrame(); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestWriteErrors(t *testing.T) {
	for _, format := range []Format{FormatG192, FormatTypeMode} {
		w := NewWriter(io.Discard, format)
		bad := []amrwb.RxFrame{
			{Mode: amrwb.Mode885, Quality: amrwb.QualityGood, Bits: pattern(10)},
			{Mode: amrwb.ModeSID, Quality: amrwb.QualitySIDUpdate, Bits: pattern(20)},
			{Mode: amrwb.Mode885, Quality: amrwb.Quality(77)},
		}
		for i, f := range bad {
			if err := w.WriteFrame(f); !errors.Is(err, ErrInvalidFrame) {
				t.Errorf("%v case %d: got %v", format, i, err)
			}
		}
	}
}
