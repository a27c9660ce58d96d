package bitstream

import "errors"

// ErrShort is returned when a Reader runs out of data.
var ErrShort = errors.New("bitstream: not enough data")

// Writer packs bits MSB first into bytes.
type Writer struct {
	buf []byte
	n   int // bits written
}

// NewWriter returns a Writer appending to buf[:0].
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

// WriteBit appends one bit; any nonzero value is a one.
func (w *Writer) WriteBit(b uint8) {
	if w.n&7 == 0 {
		w.buf = append(w.buf, 0)
	}
	if b != 0 {
		w.buf[len(w.buf)-1] |= 0x80 >> (w.n & 7)
	}
	w.n++
}

// WriteBits appends the n low bits of v, most significant first.
func (w *Writer) WriteBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(uint8(v>>i) & 1)
	}
}

// Len returns the number of bits written.
func (w *Writer) Len() int { return w.n }

// Bytes returns the packed data. Unused trailing bits are zero.
func (w *Writer) Bytes() []byte { return w.buf }

// Reader unpacks bits MSB first from bytes.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// ReadBit returns the next bit.
func (r *Reader) ReadBit() (uint8, error) {
	if r.pos >= len(r.buf)*8 {
		return 0, ErrShort
	}
	b := r.buf[r.pos>>3] >> (7 - r.pos&7) & 1
	r.pos++
	return b, nil
}

// ReadBits returns the next n bits as an unsigned value.
func (r *Reader) ReadBits(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | uint32(b)
	}
	return v, nil
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int { return len(r.buf)*8 - r.pos }
