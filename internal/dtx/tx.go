// Package dtx implements discontinuous transmission: the voice activity
// detector, the transmit and receive state machines, the silence
// descriptor (SID) parameters and comfort noise generation.
package dtx

import (
	"github.com/thesyncim/amrwb/internal/bitstream"
	"github.com/thesyncim/amrwb/internal/lpc"
	"github.com/thesyncim/amrwb/internal/types"
)

const (
	hangConst      = 7  // speech frames sent after the VAD drops
	elapsedThresh  = 30 // bursts shorter than this skip the hangover
	updateInterval = 8
	firstUpdate    = 3
	elapsedMax     = 32767
)

// Encoder is the transmit side DTX handler.
type Encoder struct {
	hangover   int
	elapsed    int // frames since the last SID analysis
	sidCounter int
	prev       types.TxType
	hist       history
}

// NewEncoder returns a handler in its initial state.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.Reset()
	return e
}

// Reset restores the initial state.
func (e *Encoder) Reset() {
	e.hangover = hangConst
	e.elapsed = elapsedMax
	e.sidCounter = firstUpdate
	e.prev = types.TxSpeech
	e.hist.reset()
}

// Update records the ISF vector and residual log energy of a frame.
func (e *Encoder) Update(isf []int16, ener int16) {
	e.hist.push(isf, ener)
}

// Next returns the frame type for a frame with the given voice activity
// decision. Speech continues for a hangover period after the activity
// ends unless the burst was too short to need one.
func (e *Encoder) Next(vad bool) types.TxType {
	t := e.next(vad)
	e.prev = t
	return t
}

func (e *Encoder) next(vad bool) types.TxType {
	if e.elapsed < elapsedMax {
		e.elapsed++
	}
	if vad {
		e.hangover = hangConst
		return types.TxSpeech
	}
	if e.hangover > 0 {
		e.hangover--
		if e.elapsed+e.hangover >= elapsedThresh {
			return types.TxSpeech
		}
	}
	e.elapsed = 0
	if e.prev == types.TxSpeech {
		e.sidCounter = firstUpdate
		return types.TxSIDFirst
	}
	e.sidCounter--
	if e.sidCounter == 0 {
		e.sidCounter = updateInterval
		return types.TxSIDUpdate
	}
	return types.TxNoData
}

// SID fills the silence descriptor from the averaged history. isfQ
// receives the quantized ISF vector.
func (e *Encoder) SID(p *bitstream.SID, isfQ []int16) {
	var isf [lpc.M]int16
	ener, dither := e.hist.average(isf[:])
	var idx [5]int
	lpc.QuantizeSID(isf[:], idx[:], isfQ)
	p.ISF = idx
	p.Energy = QuantizeEnergy(ener)
	p.Dither = 0
	if dither {
		p.Dither = 1
	}
}
