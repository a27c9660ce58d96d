package mime

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/thesyncim/amrwb"
	"github.com/thesyncim/amrwb/internal/testsignal"
)

func TestToCByte(t *testing.T) {
	tests := []struct {
		toc  ToC
		want byte
	}{
		{ToC{FT: 0, Q: true}, 0x04},
		{ToC{FT: 8, Q: true}, 0x44},
		{ToC{FT: 8}, 0x40},
		{ToC{FT: FrameTypeSID, Q: true}, 0x4c},
		{ToC{FT: FrameTypeNoData, Q: true}, 0x7c},
		{ToC{F: true, FT: 2, Q: true}, 0x94},
	}
	for _, tt := range tests {
		if got := tt.toc.Byte(); got != tt.want {
			t.Errorf("%+v: got %#02x, want %#02x", tt.toc, got, tt.want)
		}
		back, err := ParseToC(tt.want)
		if err != nil || back != tt.toc {
			t.Errorf("ParseToC(%#02x) = %+v, %v", tt.want, back, err)
		}
	}
	for ft := byte(10); ft <= 13; ft++ {
		if _, err := ParseToC(ft << 3); !errors.Is(err, ErrInvalidFrameType) {
			t.Errorf("frame type %d: err %v", ft, err)
		}
	}
}

func TestDataSizeCoversFrameBits(t *testing.T) {
	for m := amrwb.Mode660; m <= amrwb.Mode2385; m++ {
		n := DataSize(uint8(m))
		if bits := amrwb.FrameBits(m); n != (bits+7)/8 {
			t.Errorf("mode %v: %d bytes for %d bits", m, n, bits)
		}
	}
	if DataSize(FrameTypeSID) != 5 {
		t.Errorf("SID size %d", DataSize(FrameTypeSID))
	}
}

func TestWriteReadEncodedStream(t *testing.T) {
	const frames = 60
	pcm, err := testsignal.Generate(testsignal.VariantSpeechLike, 20*amrwb.FrameSize)
	if err != nil {
		t.Fatal(err)
	}
	// speech followed by silence exercises the SID frames
	pcm = append(pcm, make([]int16, (frames-20)*amrwb.FrameSize)...)
	enc, err := amrwb.NewEncoder(amrwb.EncoderOptions{Mode: amrwb.Mode1585, DTX: true})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	var sent []amrwb.RxFrame
	for f := 0; f < frames; f++ {
		fr, err := enc.Encode(pcm[f*amrwb.FrameSize : (f+1)*amrwb.FrameSize])
		if err != nil {
			t.Fatal(err)
		}
		rx := fr.Rx()
		rx.Bits = append([]uint8(nil), rx.Bits...)
		sent = append(sent, rx)
		if err := w.WriteFrame(rx); err != nil {
			t.Fatalf("frame %d: WriteFrame failed: %v", f, err)
		}
	}
	if w.Frames() != frames {
		t.Errorf("Frames() = %d", w.Frames())
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(Magic)) {
		t.Fatal("missing magic")
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	sids := 0
	for f := 0; f < frames; f++ {
		got, err := r.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: ReadFrame failed: %v", f, err)
		}
		want := sent[f]
		if got.Quality != want.Quality {
			t.Fatalf("frame %d: quality %v, want %v", f, got.Quality, want.Quality)
		}
		if want.Quality == amrwb.QualityNoData {
			continue
		}
		if got.Mode != want.Mode || !bytes.Equal(got.Bits, want.Bits) {
			t.Fatalf("frame %d: got mode %v bits %v, want %v %v", f, got.Mode, got.Bits, want.Mode, want.Bits)
		}
		if got.Mode == amrwb.ModeSID {
			sids++
		}
	}
	if sids == 0 {
		t.Error("no SID frames in stream")
	}
	if _, err := r.ReadFrame(); err != io.EOF {
		t.Errorf("after last frame: %v, want io.EOF", err)
	}
}

func TestNoDataReportsLastMode(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf)
	bits := make([]uint8, amrwb.FrameBits(amrwb.Mode2305))
	frames := []amrwb.RxFrame{
		{Mode: amrwb.Mode2305, Quality: amrwb.QualityGood, Bits: bits},
		{Mode: amrwb.Mode660, Quality: amrwb.QualityNoData},
		{Mode: amrwb.Mode660, Quality: amrwb.QualityLost},
		{Mode: amrwb.Mode2305, Quality: amrwb.QualityBad, Bits: bits},
	}
	for _, f := range frames {
		if err := w.WriteFrame(f); err != nil {
			t.Fatal(err)
		}
	}
	r, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []amrwb.Quality{amrwb.QualityGood, amrwb.QualityNoData, amrwb.QualityLost, amrwb.QualityBad}
	for i, q := range want {
		f, err := r.ReadFrame()
		if err != nil {
			t.Fatal(err)
		}
		if f.Quality != q || f.Mode != amrwb.Mode2305 {
			t.Errorf("frame %d: %v in %v, want %v in 23.05", i, f.Quality, f.Mode, q)
		}
	}
}

func TestStorageOrder(t *testing.T) {
	// A lone one in the VAD flag, the first field, lands in the first
	// stored bit.
	bits := make([]uint8, amrwb.FrameBits(amrwb.Mode660))
	bits[0] = 1
	out, err := AppendData(nil, ToC{FT: 0, Q: true}, amrwb.RxFrame{Mode: amrwb.Mode660, Bits: bits}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 17 || out[0] != 0x80 {
		t.Fatalf("got % x", out)
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrInvalidHeader},
		{"narrowband", "#!AMR\n", ErrInvalidHeader},
		{"multichannel", "#!AMR-WB_MC1.0\n", ErrInvalidHeader},
		{"amr-wb", "#!AMR-WB\n\x44\x01\x02", ErrForeignFormat},
		{"amr-wb header only", "#!AMR-WB\n", ErrForeignFormat},
		{"short magic", "#!ACELP-W", ErrInvalidHeader},
	}
	for _, tt := range tests {
		if _, err := NewReader(bytes.NewReader([]byte(tt.data))); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}

	r, err := NewReader(bytes.NewReader(append([]byte(Magic), 0x44, 1, 2, 3)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadFrame(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("truncated frame: %v", err)
	}
	r, _ = NewReader(bytes.NewReader(append([]byte(Magic), 11<<3)))
	if _, err := r.ReadFrame(); !errors.Is(err, ErrInvalidFrameType) {
		t.Errorf("reserved type: %v", err)
	}
}

func TestWriterErrors(t *testing.T) {
	w, _ := NewWriter(io.Discard)
	tests := []amrwb.RxFrame{
		{Mode: amrwb.Mode885, Quality: amrwb.QualityGood, Bits: make([]uint8, 10)},
		{Mode: amrwb.ModeSID, Quality: amrwb.QualityGood, Bits: make([]uint8, 35)},
		{Mode: amrwb.ModeSID, Quality: amrwb.QualitySIDUpdate, Bits: make([]uint8, 34)},
		{Mode: amrwb.Mode660, Quality: amrwb.Quality(99)},
	}
	for i, f := range tests {
		if err := w.WriteFrame(f); !errors.Is(err, ErrInvalidFrame) {
			t.Errorf("case %d: got %v, want ErrInvalidFrame", i, err)
		}
	}
}
