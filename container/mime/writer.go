package mime

import (
	"io"

	"github.com/thesyncim/amrwb"
)

// Magic is the header of a storage file.
const Magic = "#!ACELP-WB\n"

// amrMagic is the header of an AMR-WB storage file.
const amrMagic = "#!AMR-WB\n"

// Writer writes frames to a storage file.
type Writer struct {
	w      io.Writer
	last   amrwb.Mode // mode indication for SID frames
	buf    []byte
	frames int
}

// NewWriter writes the file header to w and returns a Writer for the
// frames that follow.
func NewWriter(w io.Writer) (*Writer, error) {
	if _, err := io.WriteString(w, Magic); err != nil {
		return nil, err
	}
	return &Writer{w: w, buf: make([]byte, 0, 61)}, nil
}

// WriteFrame appends one frame record. Speech frames must carry exactly
// the bits of their mode. SID frames without bits are stored as zeros.
func (fw *Writer) WriteFrame(f amrwb.RxFrame) error {
	t, err := ToCFor(f)
	if err != nil {
		return err
	}
	fw.buf = append(fw.buf[:0], t.Byte())
	fw.buf, err = AppendData(fw.buf, t, f, fw.last)
	if err != nil {
		return err
	}
	if _, err := fw.w.Write(fw.buf); err != nil {
		return err
	}
	if f.Mode.IsSpeech() && t.FT < FrameTypeSID {
		fw.last = f.Mode
	}
	fw.frames++
	return nil
}

// Frames returns the number of frames written.
func (fw *Writer) Frames() int {
	return fw.frames
}
