package itu

import "errors"

// Package-level errors for the word formats.
var (
	// ErrInvalidSync indicates a G.192 frame that does not start with a
	// sync word.
	ErrInvalidSync = errors.New("itu: invalid sync word")

	// ErrInvalidLength indicates a bit count that matches no frame type.
	ErrInvalidLength = errors.New("itu: invalid frame length")

	// ErrInvalidHeader indicates an unknown quality or mode word.
	ErrInvalidHeader = errors.New("itu: invalid frame header")

	// ErrInvalidFrame indicates a frame that cannot be stored.
	ErrInvalidFrame = errors.New("itu: invalid frame")

	// ErrUnexpectedEOF indicates the stream ended inside a frame.
	ErrUnexpectedEOF = errors.New("itu: unexpected end of stream")
)
