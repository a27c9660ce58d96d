package gain

import "github.com/thesyncim/amrwb/internal/fixed"

const (
	distIsfMax   = 307 // 120 Hz
	distIsfThres = 154 // 60 Hz
	gainPitThres = 14746
	gainPitMin   = 9830
)

// Clipper detects the conditions under which a pitch gain near one could
// make the synthesis filter resonate: a sharp spectrum (closely spaced
// ISFs) together with a consistently high pitch gain.
type Clipper struct {
	dist int16
	gain int16
}

// Reset restores the initial state.
func (c *Clipper) Reset() {
	c.dist = distIsfMax
	c.gain = gainPitMin
}

// Active reports whether the pitch gain must be limited to PitchClip.
func (c *Clipper) Active() bool {
	return c.dist < distIsfThres && c.gain > gainPitThres
}

// UpdateISF tracks the smoothed minimum ISF spacing of a frame.
func (c *Clipper) UpdateISF(isf []int16) {
	d := int16(fixed.MaxInt16)
	for i := 1; i < len(isf)-1; i++ {
		d = min(d, isf[i]-isf[i-1])
	}
	c.dist = min(fixed.Add(fixed.MultR(c.dist, 26214), fixed.MultR(d, 6554)), distIsfMax)
}

// UpdateGain tracks the smoothed pitch gain of a subframe.
func (c *Clipper) UpdateGain(gp int16) {
	c.gain = fixed.Add(fixed.MultR(c.gain, 29491), fixed.MultR(max(gp, gainPitMin), 3277))
}
