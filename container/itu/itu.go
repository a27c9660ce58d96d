package itu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/thesyncim/amrwb"
)

// Format selects the word layout.
type Format int

const (
	FormatG192 Format = iota
	FormatTypeMode
)

func (f Format) String() string {
	switch f {
	case FormatG192:
		return "g192"
	case FormatTypeMode:
		return "typemode"
	default:
		return "unknown"
	}
}

// Word values.
const (
	SyncGood = 0x6B21
	SyncBad  = 0x6B20
	BitOne   = 0x0081
	BitZero  = 0x007F
)

const (
	sidBits    = 40
	sidCNBits  = 35
	recordBits = amrwb.MaxFrameBits
)

// Writer writes frames as 16-bit words.
type Writer struct {
	w      io.Writer
	format Format
	last   amrwb.Mode
	words  []uint16
	buf    []byte
}

// NewWriter returns a Writer producing format f.
func NewWriter(w io.Writer, f Format) *Writer {
	return &Writer{w: w, format: f}
}

// WriteFrame writes one frame.
func (fw *Writer) WriteFrame(f amrwb.RxFrame) error {
	if !f.Quality.Valid() {
		return fmt.Errorf("%w: quality %d", ErrInvalidFrame, f.Quality)
	}
	var err error
	if fw.format == FormatTypeMode {
		err = fw.typeMode(f)
	} else {
		err = fw.g192(f)
	}
	if err != nil {
		return err
	}
	if f.Mode.IsSpeech() && f.Bits != nil {
		fw.last = f.Mode
	}
	fw.buf = fw.buf[:0]
	for _, v := range fw.words {
		fw.buf = binary.LittleEndian.AppendUint16(fw.buf, v)
	}
	_, err = fw.w.Write(fw.buf)
	return err
}

func (fw *Writer) g192(f amrwb.RxFrame) error {
	sync := uint16(SyncGood)
	switch f.Quality {
	case amrwb.QualityBad, amrwb.QualityLost, amrwb.QualitySIDBad:
		sync = SyncBad
	}
	fw.words = append(fw.words[:0], sync, 0)
	switch f.Quality {
	case amrwb.QualityLost, amrwb.QualityNoData:
		return nil
	case amrwb.QualitySIDFirst, amrwb.QualitySIDUpdate, amrwb.QualitySIDBad:
		if f.Bits != nil && len(f.Bits) != sidCNBits {
			return fmt.Errorf("%w: %d SID bits", ErrInvalidFrame, len(f.Bits))
		}
		fw.appendBits(f.Bits, sidCNBits)
		sti := uint8(1)
		if f.Quality == amrwb.QualitySIDFirst {
			sti = 0
		}
		fw.appendBits([]uint8{sti}, 1)
		for i := 3; i >= 0; i-- {
			fw.appendBits([]uint8{uint8(fw.last>>i) & 1}, 1)
		}
	default:
		if !f.Mode.IsSpeech() || len(f.Bits) != amrwb.FrameBits(f.Mode) {
			return fmt.Errorf("%w: %d bits in mode %v", ErrInvalidFrame, len(f.Bits), f.Mode)
		}
		fw.appendBits(f.Bits, len(f.Bits))
	}
	fw.words[1] = uint16(len(fw.words) - 2)
	return nil
}

func (fw *Writer) typeMode(f amrwb.RxFrame) error {
	mode := f.Mode
	n := 0
	switch f.Quality {
	case amrwb.QualityLost, amrwb.QualityNoData:
		if !mode.IsSpeech() {
			mode = fw.last
		}
	case amrwb.QualitySIDFirst, amrwb.QualitySIDUpdate, amrwb.QualitySIDBad:
		mode, n = amrwb.ModeSID, sidCNBits
		if f.Bits != nil && len(f.Bits) != n {
			return fmt.Errorf("%w: %d SID bits", ErrInvalidFrame, len(f.Bits))
		}
	default:
		n = amrwb.FrameBits(mode)
		if !mode.IsSpeech() || len(f.Bits) != n {
			return fmt.Errorf("%w: %d bits in mode %v", ErrInvalidFrame, len(f.Bits), mode)
		}
	}
	fw.words = append(fw.words[:0], uint16(f.Quality), uint16(mode))
	fw.appendBits(f.Bits, n)
	fw.appendBits(nil, recordBits-n)
	return nil
}

// appendBits appends n bit words; bits missing from b are zeros.
func (fw *Writer) appendBits(b []uint8, n int) {
	for i := 0; i < n; i++ {
		w := uint16(BitZero)
		if i < len(b) && b[i] != 0 {
			w = BitOne
		}
		fw.words = append(fw.words, w)
	}
}

// Reader reads frames written as 16-bit words.
type Reader struct {
	r      io.Reader
	format Format
	last   amrwb.Mode
	buf    []byte
}

// NewReader returns a Reader for format f.
func NewReader(r io.Reader, f Format) *Reader {
	return &Reader{r: r, format: f}
}

// ReadFrame returns the next frame, or io.EOF after the last one.
func (fr *Reader) ReadFrame() (amrwb.RxFrame, error) {
	var hdr [2]uint16
	if err := fr.words(hdr[:], true); err != nil {
		return amrwb.RxFrame{}, err
	}
	if fr.format == FormatTypeMode {
		return fr.readTypeMode(hdr)
	}
	return fr.readG192(hdr)
}

func (fr *Reader) readG192(hdr [2]uint16) (amrwb.RxFrame, error) {
	good := hdr[0] == SyncGood
	if !good && hdr[0] != SyncBad {
		return amrwb.RxFrame{}, fmt.Errorf("%w: %#04x", ErrInvalidSync, hdr[0])
	}
	n := int(hdr[1])
	switch n {
	case 0:
		q := amrwb.QualityNoData
		if !good {
			q = amrwb.QualityLost
		}
		return amrwb.RxFrame{Mode: fr.last, Quality: q}, nil
	case sidBits:
		bits, err := fr.bits(n)
		if err != nil {
			return amrwb.RxFrame{}, err
		}
		q := amrwb.QualitySIDUpdate
		switch {
		case !good:
			q = amrwb.QualitySIDBad
		case bits[sidCNBits] == 0:
			q = amrwb.QualitySIDFirst
		}
		var ind amrwb.Mode
		for _, b := range bits[sidCNBits+1:] {
			ind = ind<<1 | amrwb.Mode(b)
		}
		if ind.IsSpeech() {
			fr.last = ind
		}
		return amrwb.RxFrame{Mode: amrwb.ModeSID, Quality: q, Bits: bits[:sidCNBits]}, nil
	}
	for m := amrwb.Mode660; m <= amrwb.Mode2385; m++ {
		if amrwb.FrameBits(m) != n {
			continue
		}
		bits, err := fr.bits(n)
		if err != nil {
			return amrwb.RxFrame{}, err
		}
		q := amrwb.QualityGood
		if !good {
			q = amrwb.QualityBad
		}
		fr.last = m
		return amrwb.RxFrame{Mode: m, Quality: q, Bits: bits}, nil
	}
	return amrwb.RxFrame{}, fmt.Errorf("%w: %d bits", ErrInvalidLength, n)
}

func (fr *Reader) readTypeMode(hdr [2]uint16) (amrwb.RxFrame, error) {
	q, m := amrwb.Quality(hdr[0]), amrwb.Mode(hdr[1])
	if hdr[0] > 0xff || hdr[1] > 0xff || !q.Valid() || !m.Valid() {
		return amrwb.RxFrame{}, fmt.Errorf("%w: quality %d, mode %d", ErrInvalidHeader, hdr[0], hdr[1])
	}
	bits, err := fr.bits(recordBits)
	if err != nil {
		return amrwb.RxFrame{}, err
	}
	switch q {
	case amrwb.QualityLost, amrwb.QualityNoData:
		return amrwb.RxFrame{Mode: m, Quality: q}, nil
	case amrwb.QualitySIDFirst, amrwb.QualitySIDUpdate, amrwb.QualitySIDBad:
		return amrwb.RxFrame{Mode: amrwb.ModeSID, Quality: q, Bits: bits[:sidCNBits]}, nil
	}
	if !m.IsSpeech() {
		return amrwb.RxFrame{}, fmt.Errorf("%w: speech frame in mode %v", ErrInvalidHeader, m)
	}
	fr.last = m
	return amrwb.RxFrame{Mode: m, Quality: q, Bits: bits[:amrwb.FrameBits(m)]}, nil
}

// bits reads n bit words.
func (fr *Reader) bits(n int) ([]uint8, error) {
	w := make([]uint16, n)
	if err := fr.words(w, false); err != nil {
		return nil, err
	}
	b := make([]uint8, n)
	for i, v := range w {
		if v == BitOne {
			b[i] = 1
		}
	}
	return b, nil
}

// words fills w. A clean end of stream before the first word is io.EOF
// when atStart is set.
func (fr *Reader) words(w []uint16, atStart bool) error {
	need := 2 * len(w)
	if cap(fr.buf) < need {
		fr.buf = make([]byte, need)
	}
	buf := fr.buf[:need]
	if _, err := io.ReadFull(fr.r, buf); err != nil {
		if atStart && errors.Is(err, io.EOF) {
			return io.EOF
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrUnexpectedEOF
		}
		return err
	}
	for i := range w {
		w[i] = binary.LittleEndian.Uint16(buf[2*i:])
	}
	return nil
}
