package amrwb

import (
	"fmt"

	"github.com/thesyncim/amrwb/internal/codec"
)

// Decoder decodes frames into 16 kHz PCM.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	dec *codec.Decoder
	buf [FrameSize]int16
}

// NewDecoder creates a decoder in its initial state.
func NewDecoder() *Decoder {
	return &Decoder{dec: codec.NewDecoder()}
}

// Decode decodes one frame into pcm, which must hold at least FrameSize
// samples.
//
// bits holds one element per bit as produced by Encoder. mode is the
// speech mode of a speech frame; for SID and NO_DATA frames it is
// ignored. q tells how the frame arrived. Lost frames and NO_DATA frames
// may pass nil bits.
//
// A bad or lost frame is concealed and never fails.
func (d *Decoder) Decode(bits []uint8, mode Mode, q Quality, pcm []int16) error {
	if len(pcm) < FrameSize {
		return fmt.Errorf("%w: got %d samples, need %d", ErrBufferTooSmall, len(pcm), FrameSize)
	}
	if !q.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, q)
	}
	if q == QualityGood {
		if !mode.IsSpeech() {
			return fmt.Errorf("%w: %d", ErrInvalidMode, mode)
		}
		if len(bits) != FrameBits(mode) {
			return fmt.Errorf("%w: %d bits for mode %v", ErrFrameLength, len(bits), mode)
		}
	}
	if q == QualitySIDUpdate && len(bits) != FrameBits(ModeSID) {
		return fmt.Errorf("%w: %d bits for SID", ErrFrameLength, len(bits))
	}
	return d.dec.Decode(bits, mode, q, pcm)
}

// DecodeFloat32 decodes one frame into pcm as float32 samples in [-1, 1).
func (d *Decoder) DecodeFloat32(bits []uint8, mode Mode, q Quality, pcm []float32) error {
	if len(pcm) < FrameSize {
		return fmt.Errorf("%w: got %d samples, need %d", ErrBufferTooSmall, len(pcm), FrameSize)
	}
	if err := d.Decode(bits, mode, q, d.buf[:]); err != nil {
		return err
	}
	PCMToFloat(pcm, d.buf[:])
	return nil
}

// Reset restores the initial decoder state.
func (d *Decoder) Reset() {
	d.dec.Reset()
}

// RxFrame is a frame as delivered by a channel or read from a container.
type RxFrame struct {
	// Mode is the speech mode of the bits, ModeSID for silence
	// descriptors, or the last speech mode for frames without bits.
	Mode Mode

	// Quality tells how the frame arrived.
	Quality Quality

	// Bits holds one element per bit, each 0 or 1.
	Bits []uint8
}

// DecodeFrame decodes a received frame into pcm.
func (d *Decoder) DecodeFrame(f RxFrame, pcm []int16) error {
	return d.Decode(f.Bits, f.Mode, f.Quality, pcm)
}
