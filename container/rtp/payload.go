package rtp

import (
	"fmt"

	"github.com/thesyncim/amrwb"
	"github.com/thesyncim/amrwb/container/mime"
	"github.com/thesyncim/amrwb/internal/bitstream"
)

// CMRNone is the codec mode request meaning no request.
const CMRNone = 15

// MaxFrames is the largest number of frames per payload accepted.
const MaxFrames = 16

// Payload is the decoded content of one RTP payload.
type Payload struct {
	// CMR is the mode the sender asks the receiver to encode with, or
	// CMRNone.
	CMR uint8

	// Frames are the frames of the payload in time order.
	Frames []amrwb.RxFrame
}

// Format holds the payload format parameters negotiated for a session.
type Format struct {
	OctetAligned bool
}

// Marshal builds the payload for frames. modeInd is the mode indication
// written into SID frames.
func (f Format) Marshal(cmr uint8, frames []amrwb.RxFrame, modeInd amrwb.Mode) ([]byte, error) {
	if len(frames) == 0 || len(frames) > MaxFrames {
		return nil, fmt.Errorf("%w: %d", ErrTooManyFrames, len(frames))
	}
	tocs := make([]mime.ToC, len(frames))
	for i, fr := range frames {
		t, err := mime.ToCFor(fr)
		if err != nil {
			return nil, err
		}
		t.F = i < len(frames)-1
		tocs[i] = t
	}

	if f.OctetAligned {
		out := []byte{cmr << 4}
		for _, t := range tocs {
			out = append(out, t.Byte())
		}
		for i, fr := range frames {
			var err error
			if out, err = mime.AppendData(out, tocs[i], fr, modeInd); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	w := bitstream.NewWriter(nil)
	w.WriteBits(uint32(cmr), 4)
	for _, t := range tocs {
		w.WriteBits(uint32(t.Byte()>>2), 6)
	}
	var bits []uint8
	for i, fr := range frames {
		var err error
		if bits, err = mime.AppendSorted(bits[:0], tocs[i], fr, modeInd); err != nil {
			return nil, err
		}
		for _, b := range bits {
			w.WriteBit(b)
		}
	}
	return w.Bytes(), nil
}

// Unmarshal decodes a payload. last is reported as the mode of frames
// without speech bits and is advanced by the frames read; the returned
// mode is the last one seen.
func (f Format) Unmarshal(payload []byte, last amrwb.Mode) (Payload, amrwb.Mode, error) {
	if f.OctetAligned {
		return unmarshalOctet(payload, last)
	}
	return unmarshalCompact(payload, last)
}

func unmarshalOctet(payload []byte, last amrwb.Mode) (Payload, amrwb.Mode, error) {
	if len(payload) < 2 {
		return Payload{}, last, fmt.Errorf("%w: %d bytes", ErrInvalidPayload, len(payload))
	}
	p := Payload{CMR: payload[0] >> 4}
	var tocs []mime.ToC
	pos := 1
	for {
		if pos >= len(payload) {
			return Payload{}, last, fmt.Errorf("%w: table of contents runs past the end", ErrInvalidPayload)
		}
		t, err := mime.ParseToC(payload[pos])
		if err != nil {
			return Payload{}, last, err
		}
		pos++
		tocs = append(tocs, t)
		if len(tocs) > MaxFrames {
			return Payload{}, last, ErrTooManyFrames
		}
		if !t.F {
			break
		}
	}
	for _, t := range tocs {
		n := mime.DataSize(t.FT)
		if pos+n > len(payload) {
			return Payload{}, last, fmt.Errorf("%w: frame data truncated", ErrInvalidPayload)
		}
		fr, mode, err := mime.ParseData(t, payload[pos:pos+n], last)
		if err != nil {
			return Payload{}, last, err
		}
		last = mode
		pos += n
		p.Frames = append(p.Frames, fr)
	}
	return p, last, nil
}

func unmarshalCompact(payload []byte, last amrwb.Mode) (Payload, amrwb.Mode, error) {
	r := bitstream.NewReader(payload)
	cmr, err := r.ReadBits(4)
	if err != nil {
		return Payload{}, last, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p := Payload{CMR: uint8(cmr)}
	var tocs []mime.ToC
	for {
		v, err := r.ReadBits(6)
		if err != nil {
			return Payload{}, last, fmt.Errorf("%w: table of contents runs past the end", ErrInvalidPayload)
		}
		t, err := mime.ParseToC(byte(v) << 2)
		if err != nil {
			return Payload{}, last, err
		}
		tocs = append(tocs, t)
		if len(tocs) > MaxFrames {
			return Payload{}, last, ErrTooManyFrames
		}
		if !t.F {
			break
		}
	}
	var bits [amrwb.MaxFrameBits]uint8
	for _, t := range tocs {
		n := mime.FrameBits(t.FT)
		if r.Remaining() < n {
			return Payload{}, last, fmt.Errorf("%w: frame data truncated", ErrInvalidPayload)
		}
		for i := 0; i < n; i++ {
			bits[i], _ = r.ReadBit()
		}
		fr, mode, err := mime.FromSorted(t, bits[:n], last)
		if err != nil {
			return Payload{}, last, err
		}
		last = mode
		p.Frames = append(p.Frames, fr)
	}
	return p, last, nil
}
