package codec

import (
	"errors"
	"fmt"

	"github.com/thesyncim/amrwb/internal/acelp"
	"github.com/thesyncim/amrwb/internal/bitstream"
	"github.com/thesyncim/amrwb/internal/dtx"
	"github.com/thesyncim/amrwb/internal/filter"
	"github.com/thesyncim/amrwb/internal/fixed"
	"github.com/thesyncim/amrwb/internal/gain"
	"github.com/thesyncim/amrwb/internal/lpc"
	"github.com/thesyncim/amrwb/internal/pitch"
	"github.com/thesyncim/amrwb/internal/types"
)

// ErrRxType is returned for an unknown receive frame type.
var ErrRxType = errors.New("codec: invalid receive frame type")

const (
	codeSeed = 21845

	// maxLagJump is the largest distance from the recent median accepted
	// for a lag received in a bad frame.
	maxLagJump = 16
)

// Decoder holds the state of the speech decoder. It is not safe for
// concurrent use.
type Decoder struct {
	isfPred *lpc.Predictor
	oldIspQ [M]int16

	exc    [excLen]int16
	memSyn [M]int16
	tilt    int16
	prevT0  int
	lagHist [5]int16 // integer lags of the last good subframes, newest first
	gd      *gain.Decoder
	enh    enhancer
	seed   int16

	prevBad  bool
	vadHist  int
	lastMode types.Mode

	memDe int16
	hp    *filter.Biquad
	up    filter.Upsampler
	hf    *hfSynth
	dtx   *dtx.Decoder
}

// NewDecoder returns a decoder in its initial state.
func NewDecoder() *Decoder {
	d := &Decoder{
		isfPred: lpc.NewPredictor(),
		gd:      gain.NewDecoder(),
		hp:      filter.NewHP50(),
		hf:      newHFSynth(),
		dtx:     dtx.NewDecoder(),
	}
	d.Reset()
	return d
}

// Reset restores the initial state of every component.
func (d *Decoder) Reset() {
	d.isfPred.Reset()
	d.oldIspQ = initIsp
	d.ResetSoft()
	d.gd.Reset()
	d.enh.reset()
	d.seed = codeSeed
	d.prevBad = false
	d.vadHist = 0
	d.lastMode = types.Mode660
	d.memDe = 0
	d.hp.Reset()
	d.up.Reset()
	d.hf.reset()
	d.dtx.Reset()
}

// ResetSoft clears the state that only speech frames update.
func (d *Decoder) ResetSoft() {
	d.exc = [excLen]int16{}
	d.tilt = 0
	d.prevT0 = pitch.PitMin
	for i := range d.lagHist {
		d.lagHist[i] = pitch.PitMin
	}
	d.gd.Reset()
	d.isfPred.ResetResidual()
	d.prevBad = false
}

// DTXState returns the receive side DTX state after the last frame.
func (d *Decoder) DTXState() dtx.State { return d.dtx.State() }

// Decode reconstructs 320 samples at 16 kHz into pcm from one frame of
// bits (one element per bit) classified as rx. mode is the speech mode of
// the bits and is ignored for SID and NO_DATA frames. Lost frames may pass
// nil bits.
func (d *Decoder) Decode(bits []uint8, mode types.Mode, rx types.RxType, pcm []int16) error {
	if len(pcm) < FrameLen16k {
		return fmt.Errorf("%w: %d samples", ErrFrameSize, len(pcm))
	}
	if !rx.Valid() {
		return fmt.Errorf("%w: %d", ErrRxType, rx)
	}
	if d.dtx.Next(rx) != dtx.StateSpeech {
		return d.decodeComfortNoise(bits, rx, pcm)
	}

	bad := rx != types.RxSpeechGood
	unusable := rx == types.RxSpeechLost || rx == types.RxNoData
	cfg, ok := bitstream.Config(mode)
	if !ok {
		if !bad {
			return fmt.Errorf("%w: %d", ErrMode, mode)
		}
		cfg, _ = bitstream.Config(d.lastMode)
		unusable = true
	}
	var p bitstream.Params
	if !unusable {
		if err := bitstream.Unpack(cfg.Mode, bits, &p); err != nil {
			if !bad {
				return err
			}
			unusable = true
		}
	}
	d.lastMode = cfg.Mode
	d.decodeSpeech(cfg, &p, bad, unusable, pcm)
	return nil
}

func (d *Decoder) decodeSpeech(cfg *bitstream.ModeConfig, p *bitstream.Params, bad, unusable bool, pcm []int16) {
	var isfQ, ispQ [M]int16
	if len(cfg.IsfBits) == 7 {
		d.isfPred.Decode46(p.ISF[:7], bad, isfQ[:])
	} else {
		d.isfPred.Decode36(p.ISF[:5], bad, isfQ[:])
	}
	lpc.IsfToIsp(isfQ[:], ispQ[:])
	var aq [NumSubfr * (M + 1)]int16
	lpc.IntLpc(d.oldIspQ[:], ispQ[:], aq[:])
	d.enh.stability(isfQ[:])

	d.gd.Advance(bad)
	f := gain.Frame{Bad: bad, PrevBad: d.prevBad, Unusable: unusable, VADHist: d.vadHist}
	if !bad {
		if p.VAD == 0 {
			d.vadHist++
		} else {
			d.vadHist = 0
		}
	}

	var syn [FrameLen]int16
	var hf [FrameLen16k]int16
	for sf := 0; sf < NumSubfr; sf++ {
		k := sf * (M + 1)
		d.subframe(cfg, sf, aq[k:k+M+1], &p.Sub[sf], f, syn[sf*L:(sf+1)*L], hf[sf*hfSub:(sf+1)*hfSub])
	}
	if !bad {
		d.dtx.Activity(isfQ[:], dtx.LogEnergy(d.exc[pitch.ExcBase:pitch.ExcBase+FrameLen]))
	}
	d.oldIspQ = ispQ
	shift(d.exc[:], FrameLen)
	d.prevBad = bad
	d.post(syn[:], hf[:], pcm)
}

func (d *Decoder) subframe(cfg *bitstream.ModeConfig, sf int, aq []int16, sub *bitstream.Subframe, f gain.Frame, syn, hf []int16) {
	base := pitch.ExcBase + sf*L
	c := cfg.Pitch[sf]
	med := int(fixed.Median(d.lagHist[:]))
	t0, frac := med, 0
	if !f.Unusable {
		lo := 0
		if c.Relative() {
			lo, _ = pitch.RelRange(d.prevT0)
		}
		t0, frac = pitch.Decode(c, sub.Pitch, lo)
		if f.Bad && (t0 > med+maxLagJump || t0 < med-maxLagJump) {
			t0, frac = med, 0
		}
	}
	if !f.Bad {
		copy(d.lagHist[1:], d.lagHist[:len(d.lagHist)-1])
		d.lagHist[0] = int16(t0)
	}
	d.prevT0 = t0
	pitch.PredLt4(d.exc[:], base, t0, frac, L+1)
	if !cfg.LTPFlag || sub.LTP == 0 || f.Unusable {
		var smooth [L]int16
		pitch.LtpFilter(d.exc[:], base, smooth[:], L)
		copy(d.exc[base:base+L], smooth[:])
	}

	var code [L]int16
	if f.Unusable {
		for i := range code {
			code[i] = filter.Random(&d.seed) >> 6
		}
	} else {
		cfg.Codebook.Decode(sub.Code[:], code[:])
	}
	acelp.Sharpen(code[:], d.tilt, t0, pitSharp)

	gp, gc := d.gd.Decode(cfg.GainBits, sub.Gain, code[:], f)
	exc := d.exc[base : base+L]
	var v, exc2 [L]int16
	copy(v[:], exc)
	voice := gain.VoiceFactor(v[:], gp, code[:], gc)
	mixExcitation(exc, gp, code[:], gc)
	d.tilt = codeTilt(voice)

	disp := code
	disperse(disp[:], cfg.Mode, gp)
	d.enh.apply(v[:], gp, disp[:], gc, voice, exc2[:])
	filter.SynFilt(aq, exc2[:], syn, d.memSyn[:], true)

	g := tiltGain(syn)
	if cfg.HFGainBits > 0 && !f.Bad {
		g = hfGains[sub.HFGain&0xf]
	}
	d.hf.synth(exc, aq, g, hf)
}

func (d *Decoder) decodeComfortNoise(bits []uint8, rx types.RxType, pcm []int16) error {
	switch rx {
	case types.RxSIDFirst:
		d.dtx.First()
	case types.RxSIDUpdate:
		var p bitstream.Params
		if err := bitstream.Unpack(types.ModeSID, bits, &p); err != nil {
			return err
		}
		d.dtx.Update(&p.Desc)
	}

	var isf, isp [M]int16
	var exc, syn [FrameLen]int16
	d.dtx.Generate(isf[:], exc[:])
	lpc.IsfToIsp(isf[:], isp[:])
	var aq [NumSubfr * (M + 1)]int16
	lpc.IntLpc(d.oldIspQ[:], isp[:], aq[:])

	var hf [FrameLen16k]int16
	for sf := 0; sf < NumSubfr; sf++ {
		a := aq[sf*(M+1) : (sf+1)*(M+1)]
		s := syn[sf*L : (sf+1)*L]
		filter.SynFilt(a, exc[sf*L:(sf+1)*L], s, d.memSyn[:], true)
		d.hf.synth(exc[sf*L:], a, tiltGain(s), hf[sf*hfSub:(sf+1)*hfSub])
	}

	d.oldIspQ = isp
	d.ResetSoft()
	d.isfPred.SetLast(isf[:])
	d.enh.stability(isf[:])
	d.post(syn[:], hf[:], pcm)
	return nil
}

// post de-emphasizes and high-passes the 12.8 kHz synthesis, resamples it
// to 16 kHz and adds the high band.
func (d *Decoder) post(syn, hf, pcm []int16) {
	filter.Deemph(syn, preemphFac, &d.memDe)
	d.hp.Filter(syn)
	d.up.Process(syn, pcm[:FrameLen16k])
	for i := 0; i < FrameLen16k; i++ {
		pcm[i] = fixed.Add(pcm[i], hf[i])
	}
}
