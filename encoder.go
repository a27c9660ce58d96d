package amrwb

import (
	"fmt"

	"github.com/thesyncim/amrwb/internal/codec"
)

// EncoderOptions configures a new Encoder.
type EncoderOptions struct {
	// Mode is the speech mode used by Encode. The zero value is Mode660.
	Mode Mode

	// DTX enables voice activity detection and discontinuous transmission.
	DTX bool

	// AllowDither lets silence descriptors request comfort noise dithering
	// for strongly varying background noise.
	AllowDither bool
}

// Frame is one encoded frame.
type Frame struct {
	// Mode is the mode of Bits: the speech mode used, or ModeSID for
	// silence descriptors. A FrameNoData frame reports the speech mode.
	Mode Mode

	// Type is the frame type.
	Type FrameType

	// Bits holds one element per bit, each 0 or 1. It is empty for
	// FrameNoData and is reused by the next call to the Encoder.
	Bits []uint8

	// VAD is the voice activity decision for the frame. It is false
	// when DTX is disabled.
	VAD bool
}

// Encoder encodes 16 kHz PCM into frames.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	enc  *codec.Encoder
	mode Mode
	bits [MaxFrameBits]uint8
}

// NewEncoder creates an encoder with the given options.
//
// Returns ErrInvalidMode if opts.Mode is not a speech mode.
func NewEncoder(opts EncoderOptions) (*Encoder, error) {
	if !opts.Mode.IsSpeech() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, opts.Mode)
	}
	e := &Encoder{enc: codec.NewEncoder(), mode: opts.Mode}
	e.enc.SetDTX(opts.DTX)
	e.enc.SetDither(opts.AllowDither)
	return e, nil
}

// Encode encodes one frame of FrameSize samples in the current mode.
func (e *Encoder) Encode(pcm []int16) (Frame, error) {
	return e.EncodeMode(pcm, e.mode)
}

// EncodeMode encodes one frame of FrameSize samples in mode m without
// changing the current mode. Modes may change on every frame.
func (e *Encoder) EncodeMode(pcm []int16, m Mode) (Frame, error) {
	if len(pcm) != FrameSize {
		return Frame{}, fmt.Errorf("%w: got %d samples, want %d", ErrInvalidFrameSize, len(pcm), FrameSize)
	}
	if !m.IsSpeech() {
		return Frame{}, fmt.Errorf("%w: %d", ErrInvalidMode, m)
	}
	fr, err := e.enc.Encode(pcm, m, e.bits[:])
	if err != nil {
		return Frame{}, err
	}
	return Frame{Mode: fr.Mode, Type: fr.Type, Bits: e.bits[:fr.Bits], VAD: fr.VAD}, nil
}

// EncodeFloat32 encodes one frame of float32 samples in [-1, 1].
func (e *Encoder) EncodeFloat32(pcm []float32) (Frame, error) {
	if len(pcm) != FrameSize {
		return Frame{}, fmt.Errorf("%w: got %d samples, want %d", ErrInvalidFrameSize, len(pcm), FrameSize)
	}
	var buf [FrameSize]int16
	FloatToPCM(buf[:], pcm)
	return e.Encode(buf[:])
}

// SetMode sets the speech mode used by Encode.
//
// Returns ErrInvalidMode if m is not a speech mode.
func (e *Encoder) SetMode(m Mode) error {
	if !m.IsSpeech() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, m)
	}
	e.mode = m
	return nil
}

// Mode returns the speech mode used by Encode.
func (e *Encoder) Mode() Mode {
	return e.mode
}

// SetDTX enables or disables discontinuous transmission.
func (e *Encoder) SetDTX(enabled bool) {
	e.enc.SetDTX(enabled)
}

// DTXEnabled reports whether discontinuous transmission is enabled.
func (e *Encoder) DTXEnabled() bool {
	return e.enc.DTX()
}

// Reset clears the encoder state so the next frame is coded as the first
// frame of a new stream. Options are kept.
func (e *Encoder) Reset() {
	e.enc.Reset()
}

// Rx returns the frame as a lossless channel delivers it.
func (f Frame) Rx() RxFrame {
	return RxFrame{Mode: f.Mode, Quality: QualityFor(f.Type), Bits: f.Bits}
}
