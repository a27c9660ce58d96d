// Package codec implements the wideband ACELP speech encoder and decoder
// frame pipelines on top of the signal processing packages. One frame is
// 20 ms: 320 samples at 16 kHz, coded as 256 samples at 12.8 kHz in four
// 64-sample subframes.
package codec

import (
	"errors"

	"github.com/thesyncim/amrwb/internal/filter"
	"github.com/thesyncim/amrwb/internal/fixed"
	"github.com/thesyncim/amrwb/internal/lpc"
	"github.com/thesyncim/amrwb/internal/pitch"
)

const (
	// FrameLen16k is the number of 16 kHz samples in a frame.
	FrameLen16k = filter.Frame16k
	// FrameLen is the number of 12.8 kHz samples in a frame.
	FrameLen = filter.Frame12k8
	// L is the subframe length.
	L = 64
	// NumSubfr is the number of subframes per frame.
	NumSubfr = FrameLen / L

	M = lpc.M

	// excLen keeps the pitch history, the frame and one sample for the
	// LTP smoothing filter.
	excLen = pitch.ExcBase + FrameLen + 1

	preemphFac = 22282 // 0.68
	gamma1     = 30147 // 0.92, perceptual weighting
	pitSharp   = 27853 // 0.85
	hfGamma    = 19661 // 0.6, high band envelope

	lookahead   = 64 // 12.8 kHz samples
	lookahead16 = lookahead * 5 / 4
	frameOff    = lpc.WindowLen - FrameLen - lookahead // start of the frame in the analysis buffer
)

// ErrFrameSize is returned when a PCM buffer does not hold one frame.
var ErrFrameSize = errors.New("codec: invalid frame size")

// ErrMode is returned for an unknown mode.
var ErrMode = errors.New("codec: invalid mode")

// initIsp is the ISP vector both sides start from.
var initIsp [M]int16

func init() {
	lpc.IsfToIsp(lpc.MeanIsf[:], initIsp[:])
}

// mixExcitation overwrites the adaptive excitation v with gp*v + gc*code.
// gp is Q14, gc Q16 and code Q9.
func mixExcitation(v []int16, gp int16, code []int16, gc int32) {
	for i := 0; i < L; i++ {
		acc := int64(gp)*int64(v[i])<<11 + int64(gc)*int64(code[i])
		v[i] = fixed.Sat16L((acc + 1<<24) >> 25)
	}
}

// mixSample is mixExcitation for one sample without touching the buffer.
func mixSample(v int16, gp int16, c int16, gc int32) int16 {
	acc := int64(gp)*int64(v)<<11 + int64(gc)*int64(c)
	return fixed.Sat16L((acc + 1<<24) >> 25)
}

// impulseResponse computes the first L samples of the weighted synthesis
// filter ap(z) / (aq(z) (1 - 0.68 z^-1)) in Q12.
func impulseResponse(aq, ap []int16, h []int16) {
	var x, y [L]int32
	for i := 0; i <= M; i++ {
		x[i] = int32(ap[i])
	}
	filter.SynFilt32(aq, x[:], y[:])
	var prev int64
	for n := range y {
		prev = int64(y[n]) + (int64(preemphFac)*prev+0x4000)>>15
		h[n] = fixed.Sat16L(prev)
	}
}

// codeTilt maps a voicing factor (Q15, -1..1) to the code pre-filter
// coefficient 0.25*(1+v) in Q15.
func codeTilt(voice int16) int16 {
	return voice>>2 + 8192
}

func shift(buf []int16, n int) {
	copy(buf, buf[n:])
}
