// errors.go defines public error types for the amrwb package.

package amrwb

import "errors"

// Public error types for encoding and decoding operations.
var (
	// ErrInvalidMode indicates a mode outside Mode660..Mode2385 where a
	// speech mode is required.
	ErrInvalidMode = errors.New("amrwb: invalid mode")

	// ErrInvalidFrameSize indicates a PCM buffer that does not hold exactly
	// one frame of FrameSize samples.
	ErrInvalidFrameSize = errors.New("amrwb: invalid frame size")

	// ErrBufferTooSmall indicates the output buffer is too small for one
	// decoded frame.
	ErrBufferTooSmall = errors.New("amrwb: output buffer too small")

	// ErrInvalidQuality indicates an unknown frame quality.
	ErrInvalidQuality = errors.New("amrwb: invalid frame quality")

	// ErrFrameLength indicates a bit sequence whose length does not match
	// its mode.
	ErrFrameLength = errors.New("amrwb: frame length does not match mode")
)
