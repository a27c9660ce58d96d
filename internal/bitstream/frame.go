package bitstream

import (
	"errors"
	"fmt"

	"github.com/thesyncim/amrwb/internal/types"
)

// ErrLength is returned when a bit sequence does not match its mode.
var ErrLength = errors.New("bitstream: frame length mismatch")

// ErrMode is returned for modes without a bit layout.
var ErrMode = errors.New("bitstream: invalid mode")

// Subframe holds the parameters of one subframe.
type Subframe struct {
	Pitch  int
	LTP    int // 1 selects the unfiltered adaptive excitation
	Code   [4]int
	Gain   int
	HFGain int
}

// SID holds the parameters of a silence descriptor.
type SID struct {
	ISF    [5]int
	Energy int
	Dither int
}

// Params holds the decoded parameters of one frame. Only the fields used
// by the frame's mode are meaningful.
type Params struct {
	VAD  int
	ISF  [7]int
	Sub  [4]Subframe
	Desc SID
}

// walk visits the fields of a frame in transmission order.
func walk(m types.Mode, p *Params, fn func(width int, v *int)) {
	if m == types.ModeSID {
		for i, w := range sidIsfBits {
			fn(w, &p.Desc.ISF[i])
		}
		fn(SIDEnergyBits, &p.Desc.Energy)
		fn(1, &p.Desc.Dither)
		return
	}
	c, ok := Config(m)
	if !ok {
		return
	}
	fn(1, &p.VAD)
	for i, w := range c.IsfBits {
		fn(w, &p.ISF[i])
	}
	cb := c.Codebook.FieldBits()
	for s := range p.Sub {
		sub := &p.Sub[s]
		fn(c.Pitch[s].Bits(), &sub.Pitch)
		if c.LTPFlag {
			fn(1, &sub.LTP)
		}
		for t, w := range cb {
			fn(w, &sub.Code[t])
		}
		fn(c.GainBits, &sub.Gain)
		if c.HFGainBits > 0 {
			fn(c.HFGainBits, &sub.HFGain)
		}
	}
}

// Pack writes the parameters of a frame in mode m as one bit per element
// (0 or 1, most significant bit of each field first) into bits, which
// must hold FrameBits(m) elements.
func Pack(m types.Mode, p *Params, bits []uint8) error {
	n := FrameBits(m)
	if n == 0 {
		return ErrMode
	}
	if len(bits) < n {
		return fmt.Errorf("%w: have %d bits, mode %d needs %d", ErrLength, len(bits), m, n)
	}
	pos := 0
	walk(m, p, func(width int, v *int) {
		for b := width - 1; b >= 0; b-- {
			bits[pos] = uint8(*v>>b) & 1
			pos++
		}
	})
	return nil
}

// Unpack reads the parameters of a frame in mode m from a bit sequence
// produced by Pack. Nonzero elements are read as ones.
func Unpack(m types.Mode, bits []uint8, p *Params) error {
	n := FrameBits(m)
	if n == 0 {
		return ErrMode
	}
	if len(bits) < n {
		return fmt.Errorf("%w: have %d bits, mode %d needs %d", ErrLength, len(bits), m, n)
	}
	pos := 0
	walk(m, p, func(width int, v *int) {
		x := 0
		for b := 0; b < width; b++ {
			x <<= 1
			if bits[pos] != 0 {
				x |= 1
			}
			pos++
		}
		*v = x
	})
	return nil
}
