package mime

import (
	"fmt"

	"github.com/thesyncim/amrwb"
	"github.com/thesyncim/amrwb/internal/bitstream"
)

// Frame types beyond the speech modes.
const (
	FrameTypeSID        = 9
	FrameTypeSpeechLost = 14
	FrameTypeNoData     = 15
)

// dataSizes holds the data bytes following each ToC frame type; -1 marks
// the reserved types.
var dataSizes = [16]int{17, 23, 32, 36, 40, 46, 50, 58, 60, 5, -1, -1, -1, -1, 0, 0}

// DataSize returns the number of data bytes that follow a ToC entry of
// frame type ft, or -1 for a reserved type.
func DataSize(ft uint8) int {
	if ft > 15 {
		return -1
	}
	return dataSizes[ft]
}

// ToC is one table of contents entry.
type ToC struct {
	F  bool  // another entry follows (RTP only; always false in files)
	FT uint8 // frame type
	Q  bool  // frame quality indicator, false for damaged frames
}

// Byte returns the entry in its one byte wire form.
func (t ToC) Byte() byte {
	b := t.FT << 3
	if t.F {
		b |= 0x80
	}
	if t.Q {
		b |= 0x04
	}
	return b
}

// ParseToC decodes a one byte ToC entry. Padding bits are ignored.
func ParseToC(b byte) (ToC, error) {
	t := ToC{F: b&0x80 != 0, FT: b >> 3 & 0x0f, Q: b&0x04 != 0}
	if DataSize(t.FT) < 0 {
		return t, fmt.Errorf("%w: %d", ErrInvalidFrameType, t.FT)
	}
	return t, nil
}

// ToCFor returns the ToC entry that stores frame f.
func ToCFor(f amrwb.RxFrame) (ToC, error) {
	switch f.Quality {
	case amrwb.QualityGood, amrwb.QualityProbablyDegraded, amrwb.QualityBad:
		if !f.Mode.IsSpeech() {
			return ToC{}, fmt.Errorf("%w: speech frame in mode %v", ErrInvalidFrame, f.Mode)
		}
		return ToC{FT: uint8(f.Mode), Q: f.Quality != amrwb.QualityBad}, nil
	case amrwb.QualitySIDFirst, amrwb.QualitySIDUpdate:
		return ToC{FT: FrameTypeSID, Q: true}, nil
	case amrwb.QualitySIDBad:
		return ToC{FT: FrameTypeSID}, nil
	case amrwb.QualityLost:
		return ToC{FT: FrameTypeSpeechLost, Q: true}, nil
	case amrwb.QualityNoData:
		return ToC{FT: FrameTypeNoData, Q: true}, nil
	}
	return ToC{}, fmt.Errorf("%w: quality %v", ErrInvalidFrame, f.Quality)
}

// FrameBits returns the number of data bits of a frame of type ft: the
// speech bits, 40 for a silence descriptor (the comfort noise parameters,
// the update indicator and the 4-bit mode indication), 0 for lost and
// NO_DATA frames and -1 for a reserved type.
func FrameBits(ft uint8) int {
	switch {
	case ft < FrameTypeSID:
		return amrwb.FrameBits(amrwb.Mode(ft))
	case ft == FrameTypeSID:
		return amrwb.FrameBits(amrwb.ModeSID) + 5
	case ft == FrameTypeSpeechLost, ft == FrameTypeNoData:
		return 0
	}
	return -1
}

// AppendSorted appends the data bits of frame f, stored under ToC entry
// t, to dst in storage order: most sensitive bits first. modeInd is the
// mode indication carried by SID frames.
func AppendSorted(dst []uint8, t ToC, f amrwb.RxFrame, modeInd amrwb.Mode) ([]uint8, error) {
	switch {
	case t.FT == FrameTypeSID:
		want := amrwb.FrameBits(amrwb.ModeSID)
		if f.Bits != nil && len(f.Bits) != want {
			return dst, fmt.Errorf("%w: %d SID bits, want %d", ErrInvalidFrame, len(f.Bits), want)
		}
		dst = appendSorted(dst, amrwb.ModeSID, f.Bits)
		sti := uint8(1)
		if f.Quality == amrwb.QualitySIDFirst {
			sti = 0
		}
		dst = append(dst, sti)
		for i := 3; i >= 0; i-- {
			dst = append(dst, uint8(modeInd>>i)&1)
		}
	case t.FT < FrameTypeSID:
		m := amrwb.Mode(t.FT)
		if len(f.Bits) != amrwb.FrameBits(m) {
			return dst, fmt.Errorf("%w: %d bits in mode %v", ErrInvalidFrame, len(f.Bits), m)
		}
		dst = appendSorted(dst, m, f.Bits)
	case DataSize(t.FT) < 0:
		return dst, fmt.Errorf("%w: %d", ErrInvalidFrameType, t.FT)
	}
	return dst, nil
}

// appendSorted appends bits in storage order. Missing bits are zeros.
func appendSorted(dst []uint8, m amrwb.Mode, bits []uint8) []uint8 {
	for _, j := range bitstream.Order(m) {
		var b uint8
		if j < len(bits) {
			b = bits[j]
		}
		dst = append(dst, b)
	}
	return dst
}

// FromSorted rebuilds a frame stored under ToC entry t from its data bits
// in storage order; bits beyond FrameBits(t.FT) are ignored. last is
// reported as the mode of frames without speech bits. The second result is
// the mode indication of a SID frame, or the frame's mode.
func FromSorted(t ToC, bits []uint8, last amrwb.Mode) (amrwb.RxFrame, amrwb.Mode, error) {
	n := FrameBits(t.FT)
	if n < 0 {
		return amrwb.RxFrame{}, last, fmt.Errorf("%w: %d", ErrInvalidFrameType, t.FT)
	}
	if len(bits) < n {
		return amrwb.RxFrame{}, last, ErrUnexpectedEOF
	}
	switch t.FT {
	case FrameTypeSpeechLost:
		return amrwb.RxFrame{Mode: last, Quality: amrwb.QualityLost}, last, nil
	case FrameTypeNoData:
		return amrwb.RxFrame{Mode: last, Quality: amrwb.QualityNoData}, last, nil
	case FrameTypeSID:
		k := amrwb.FrameBits(amrwb.ModeSID)
		q := amrwb.QualitySIDUpdate
		switch {
		case !t.Q:
			q = amrwb.QualitySIDBad
		case bits[k] == 0:
			q = amrwb.QualitySIDFirst
		}
		var ind amrwb.Mode
		for _, b := range bits[k+1 : k+5] {
			ind = ind<<1 | amrwb.Mode(b&1)
		}
		if !ind.IsSpeech() {
			ind = last
		}
		return amrwb.RxFrame{Mode: amrwb.ModeSID, Quality: q, Bits: unsort(amrwb.ModeSID, bits)}, ind, nil
	}
	m := amrwb.Mode(t.FT)
	q := amrwb.QualityGood
	if !t.Q {
		q = amrwb.QualityBad
	}
	return amrwb.RxFrame{Mode: m, Quality: q, Bits: unsort(m, bits)}, m, nil
}

func unsort(m amrwb.Mode, sorted []uint8) []uint8 {
	order := bitstream.Order(m)
	bits := make([]uint8, len(order))
	for i, j := range order {
		bits[j] = sorted[i] & 1
	}
	return bits
}

// AppendData appends the data bytes of frame f, stored under ToC entry t,
// to dst: the sorted bits packed most significant bit first and zero
// padded to DataSize(t.FT) bytes.
func AppendData(dst []byte, t ToC, f amrwb.RxFrame, modeInd amrwb.Mode) ([]byte, error) {
	var scratch [amrwb.MaxFrameBits]uint8
	bits, err := AppendSorted(scratch[:0], t, f, modeInd)
	if err != nil {
		return dst, err
	}
	var packed [60]byte
	w := bitstream.NewWriter(packed[:0])
	for _, b := range bits {
		w.WriteBit(b)
	}
	dst = append(dst, w.Bytes()...)
	for i := len(w.Bytes()); i < DataSize(t.FT); i++ {
		dst = append(dst, 0)
	}
	return dst, nil
}

// ParseData decodes the data bytes of a frame stored under ToC entry t.
// See FromSorted for last and the second result.
func ParseData(t ToC, data []byte, last amrwb.Mode) (amrwb.RxFrame, amrwb.Mode, error) {
	n := DataSize(t.FT)
	if n < 0 {
		return amrwb.RxFrame{}, last, fmt.Errorf("%w: %d", ErrInvalidFrameType, t.FT)
	}
	if len(data) < n {
		return amrwb.RxFrame{}, last, ErrUnexpectedEOF
	}
	var scratch [amrwb.MaxFrameBits]uint8
	bits := scratch[:FrameBits(t.FT)]
	r := bitstream.NewReader(data[:n])
	for i := range bits {
		bits[i], _ = r.ReadBit()
	}
	return FromSorted(t, bits, last)
}
