package rtp

import "errors"

var (
	// ErrInvalidPayload indicates a payload that is truncated or holds an
	// invalid table of contents.
	ErrInvalidPayload = errors.New("rtp: invalid payload")

	// ErrTooManyFrames indicates more frames than fit in one payload.
	ErrTooManyFrames = errors.New("rtp: too many frames in payload")

	// ErrPayloadType indicates a packet with an unexpected payload type.
	ErrPayloadType = errors.New("rtp: unexpected payload type")
)
