package mime

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/thesyncim/amrwb"
)

// Reader reads frames from a storage file.
type Reader struct {
	r      *bufio.Reader
	last   amrwb.Mode
	buf    [60]byte
	frames int
}

// NewReader checks the file header and returns a Reader positioned at
// the first frame.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	hdr, _ := br.Peek(len(Magic))
	switch {
	case string(hdr) == Magic:
		if _, err := br.Discard(len(Magic)); err != nil {
			return nil, err
		}
		return &Reader{r: br}, nil
	case strings.HasPrefix(string(hdr), amrMagic):
		return nil, ErrForeignFormat
	}
	return nil, ErrInvalidHeader
}

// ReadFrame returns the next frame. It returns io.EOF after the last
// frame. Frames without speech bits report the mode of the last speech or
// SID frame read.
func (fr *Reader) ReadFrame() (amrwb.RxFrame, error) {
	b, err := fr.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return amrwb.RxFrame{}, io.EOF
		}
		return amrwb.RxFrame{}, err
	}
	t, err := ParseToC(b)
	if err != nil {
		return amrwb.RxFrame{}, err
	}
	data := fr.buf[:DataSize(t.FT)]
	if _, err := io.ReadFull(fr.r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return amrwb.RxFrame{}, ErrUnexpectedEOF
		}
		return amrwb.RxFrame{}, err
	}
	f, mode, err := ParseData(t, data, fr.last)
	if err != nil {
		return amrwb.RxFrame{}, err
	}
	fr.last = mode
	fr.frames++
	return f, nil
}

// Frames returns the number of frames read.
func (fr *Reader) Frames() int {
	return fr.frames
}
