// Package frameio selects a frame container by name for the command line
// tools.
package frameio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/thesyncim/amrwb"
	"github.com/thesyncim/amrwb/container/itu"
	"github.com/thesyncim/amrwb/container/mime"
)

// ErrFormat is returned for an unknown format name.
var ErrFormat = errors.New("frameio: unknown format")

// Formats lists the accepted format names.
var Formats = []string{"mime", "g192", "typemode"}

// Writer writes frames to a container.
type Writer interface {
	WriteFrame(f amrwb.RxFrame) error
}

// Reader reads frames from a container. ReadFrame returns io.EOF after the
// last frame.
type Reader interface {
	ReadFrame() (amrwb.RxFrame, error)
}

// NewWriter returns a Writer for the named format.
func NewWriter(w io.Writer, format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "mime", "awb":
		return mime.NewWriter(w)
	case "g192":
		return itu.NewWriter(w, itu.FormatG192), nil
	case "typemode":
		return itu.NewWriter(w, itu.FormatTypeMode), nil
	}
	return nil, fmt.Errorf("%w: %q (use %s)", ErrFormat, format, strings.Join(Formats, ", "))
}

// NewReader returns a Reader for the named format.
func NewReader(r io.Reader, format string) (Reader, error) {
	switch strings.ToLower(format) {
	case "mime", "awb":
		return mime.NewReader(r)
	case "g192":
		return itu.NewReader(r, itu.FormatG192), nil
	case "typemode":
		return itu.NewReader(r, itu.FormatTypeMode), nil
	}
	return nil, fmt.Errorf("%w: %q (use %s)", ErrFormat, format, strings.Join(Formats, ", "))
}

// ReadPCM reads one frame of little-endian 16-bit samples into pcm. A
// partial final frame is zero padded. It returns io.EOF when no sample is
// left.
func ReadPCM(r io.Reader, pcm []int16) error {
	buf := make([]byte, 2*len(pcm))
	n, err := io.ReadFull(r, buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return err
	}
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	clear(buf[n:])
	for i := range pcm {
		pcm[i] = int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
	}
	return nil
}

// WritePCM writes pcm as little-endian 16-bit samples.
func WritePCM(w io.Writer, pcm []int16) error {
	buf := make([]byte, 2*len(pcm))
	for i, v := range pcm {
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(uint16(v) >> 8)
	}
	_, err := w.Write(buf)
	return err
}
