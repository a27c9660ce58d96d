// Package bitstream maps codec parameters to and from the ordered bit
// sequence of a frame. The per-mode field layout is data: one ModeConfig
// per bit rate, shared by the encoder and the decoder.
package bitstream

import (
	"github.com/thesyncim/amrwb/internal/acelp"
	"github.com/thesyncim/amrwb/internal/pitch"
	"github.com/thesyncim/amrwb/internal/types"
)

// ModeConfig describes the parameter layout of one mode.
type ModeConfig struct {
	Mode       types.Mode
	Bits       int             // total bits per frame
	IsfBits    []int           // ISF index widths
	Pitch      [4]pitch.Coding // lag coding per subframe
	LTPFlag    bool            // one LTP filter flag per subframe is sent
	Codebook   acelp.Config
	GainBits   int
	HFGainBits int // high band gain per subframe, 0 if not sent
}

var (
	isf36 = []int{8, 8, 7, 7, 6}
	isf46 = []int{8, 8, 6, 7, 7, 5, 5}

	pitchLow  = [4]pitch.Coding{pitch.Abs8, pitch.Rel5, pitch.Rel5, pitch.Rel5}
	pitch885  = [4]pitch.Coding{pitch.Abs8, pitch.Rel5, pitch.Abs8, pitch.Rel5}
	pitchHigh = [4]pitch.Coding{pitch.Abs9, pitch.Rel6, pitch.Abs9, pitch.Rel6}
)

var configs = [types.NumSpeechModes]ModeConfig{
	{types.Mode660, 132, isf36, pitchLow, false, acelp.Config12, 6, 0},
	{types.Mode885, 177, isf46, pitch885, false, acelp.Config20, 6, 0},
	{types.Mode1265, 253, isf46, pitchHigh, true, acelp.Config36, 7, 0},
	{types.Mode1425, 285, isf46, pitchHigh, true, acelp.Config44, 7, 0},
	{types.Mode1585, 317, isf46, pitchHigh, true, acelp.Config52, 7, 0},
	{types.Mode1825, 365, isf46, pitchHigh, true, acelp.Config64, 7, 0},
	{types.Mode1985, 397, isf46, pitchHigh, true, acelp.Config72, 7, 0},
	{types.Mode2305, 461, isf46, pitchHigh, true, acelp.Config88, 7, 0},
	{types.Mode2385, 477, isf46, pitchHigh, true, acelp.Config88, 7, 4},
}

const (
	// SIDBits is the size of a silence descriptor frame.
	SIDBits = 35
	// SIDEnergyBits is the width of the SID log energy index.
	SIDEnergyBits = 6
)

var sidIsfBits = []int{6, 6, 6, 5, 5}

// Config returns the layout of a speech mode. ok is false for SID and
// invalid modes.
func Config(m types.Mode) (c *ModeConfig, ok bool) {
	if !m.IsSpeech() {
		return nil, false
	}
	return &configs[m], true
}

// FrameBits returns the number of bits of a frame in mode m, or 0 when m
// is not a valid mode.
func FrameBits(m types.Mode) int {
	if m == types.ModeSID {
		return SIDBits
	}
	if c, ok := Config(m); ok {
		return c.Bits
	}
	return 0
}

// FieldWidths returns the widths of all fields of a frame in transmission
// order.
func FieldWidths(m types.Mode) []int {
	var p Params
	var w []int
	walk(m, &p, func(width int, _ *int) { w = append(w, width) })
	return w
}
