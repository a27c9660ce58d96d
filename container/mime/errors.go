package mime

import "errors"

// Package-level errors for reading and writing storage files.
var (
	// ErrInvalidHeader indicates the stream does not start with Magic.
	ErrInvalidHeader = errors.New("mime: invalid header")

	// ErrForeignFormat indicates an AMR-WB storage file, whose frames use
	// codebooks this codec does not implement.
	ErrForeignFormat = errors.New("mime: AMR-WB stream is not decodable")

	// ErrInvalidFrameType indicates a reserved frame type (10-13) in a
	// ToC entry.
	ErrInvalidFrameType = errors.New("mime: invalid frame type")

	// ErrInvalidFrame indicates a frame whose bit count does not match its
	// mode, or whose mode and quality cannot be stored.
	ErrInvalidFrame = errors.New("mime: invalid frame")

	// ErrUnexpectedEOF indicates the stream ended inside a frame record.
	ErrUnexpectedEOF = errors.New("mime: unexpected end of stream")
)
