package dtx

import (
	"github.com/thesyncim/amrwb/internal/bitstream"
	"github.com/thesyncim/amrwb/internal/filter"
	"github.com/thesyncim/amrwb/internal/lpc"
	"github.com/thesyncim/amrwb/internal/types"
)

const (
	maxEmpty   = 50 // frames without SID before muting
	maxPeriod  = 32 // longest interpolation between two SIDs
	muteStep   = 256
	noiseSeed  = 21845
	ditherSeed = 12345
)

// State is the receive side DTX state.
type State uint8

const (
	StateSpeech State = iota
	StateDTX
	StateMute
)

func (s State) String() string {
	switch s {
	case StateSpeech:
		return "SPEECH"
	case StateDTX:
		return "DTX"
	case StateMute:
		return "DTX_MUTE"
	default:
		return "UNKNOWN"
	}
}

// Decoder is the receive side DTX handler and comfort noise generator.
type Decoder struct {
	state  State
	since  int // frames since the last SID
	period int
	drop   int16 // accumulated attenuation while muted
	haveCN bool
	dither bool

	oldIsf, newIsf   [lpc.M]int16
	oldEner, newEner int16
	curIsf           [lpc.M]int16
	curEner          int16

	hist  history
	seed  int16
	dseed int16
}

// NewDecoder returns a handler in its initial state.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset restores the initial state.
func (d *Decoder) Reset() {
	*d = Decoder{
		period: updateInterval,
		seed:   noiseSeed,
		dseed:  ditherSeed,
	}
	copy(d.oldIsf[:], lpc.MeanIsfNoise[:])
	d.newIsf = d.oldIsf
	d.curIsf = d.oldIsf
	d.oldEner, d.newEner, d.curEner = minEner, minEner, minEner
}

// State returns the current state.
func (d *Decoder) State() State { return d.state }

// Next advances the state machine for a received frame and returns the
// state the frame must be decoded in. NO_DATA during speech stays in
// StateSpeech: the frame is then treated as lost. Lost and bad speech
// frames during a pause keep generating comfort noise; only a usable
// speech frame ends it.
func (d *Decoder) Next(rx types.RxType) State {
	s := StateSpeech
	switch rx {
	case types.RxSIDFirst, types.RxSIDUpdate, types.RxSIDBad:
		s = StateDTX
	case types.RxNoData, types.RxSpeechLost, types.RxSpeechBad:
		if d.state != StateSpeech {
			s = StateDTX
		}
	}
	if s == StateSpeech {
		d.since = 0
		d.drop = 0
		d.state = s
		return s
	}
	if rx == types.RxSIDFirst || rx == types.RxSIDUpdate {
		d.period = min(max(d.since, 1), maxPeriod)
		d.since = 0
		d.drop = 0
	} else if d.since < elapsedMax {
		d.since++
	}
	if d.since > maxEmpty || (rx == types.RxSIDBad && d.state == StateMute) {
		s = StateMute
	}
	d.state = s
	return s
}

// Activity records the ISF vector and excitation log energy of a good
// speech frame, from which a SID_FIRST frame is reconstructed.
func (d *Decoder) Activity(isf []int16, ener int16) {
	d.hist.push(isf, ener)
}

// First starts comfort noise from the speech history. It is used for
// SID_FIRST frames, which carry no parameters, and for any SID frame that
// arrives before comfort noise parameters exist.
func (d *Decoder) First() {
	e, dither := d.hist.average(d.newIsf[:])
	lpc.Reorder(d.newIsf[:], lpc.IsfGap)
	d.newEner = e
	d.oldIsf, d.oldEner = d.newIsf, d.newEner
	d.curIsf, d.curEner = d.newIsf, d.newEner
	d.dither = dither
	d.haveCN = true
}

// Update applies a received SID. Comfort noise moves from its current
// parameters to the new ones over the interval between the last two SIDs.
func (d *Decoder) Update(p *bitstream.SID) {
	if !d.haveCN {
		d.First()
	}
	d.oldIsf, d.oldEner = d.curIsf, d.curEner
	lpc.DecodeSID(p.ISF[:], d.newIsf[:])
	d.newEner = DequantizeEnergy(p.Energy)
	d.dither = p.Dither != 0
}

// Generate produces the comfort noise parameters of one frame: the ISF
// vector and a white excitation of the interpolated energy.
func (d *Decoder) Generate(isf []int16, exc []int16) {
	if !d.haveCN {
		d.First()
	}
	if d.since >= d.period {
		d.curIsf, d.curEner = d.newIsf, d.newEner
	} else {
		f := int32(d.since * 32768 / d.period)
		for k := range d.curIsf {
			o := int32(d.oldIsf[k])
			d.curIsf[k] = int16(o + (int32(d.newIsf[k])-o)*f>>15)
		}
		o := int32(d.oldEner)
		d.curEner = int16(o + (int32(d.newEner)-o)*f>>15)
	}

	copy(isf, d.curIsf[:])
	e := d.curEner
	if d.dither {
		for k := 0; k < lpc.M-1; k++ {
			isf[k] += filter.Random(&d.dseed) >> 8
		}
		lpc.Reorder(isf[:lpc.M], lpc.IsfGap)
		e += filter.Random(&d.dseed) >> 6
	}
	if d.state == StateMute {
		d.drop = min(d.drop+muteStep, maxEner-minEner)
	}
	e = max(e-d.drop, minEner)

	for i := range exc {
		exc[i] = filter.Random(&d.seed) >> 4
	}
	scaleNoise(exc, e)
}
