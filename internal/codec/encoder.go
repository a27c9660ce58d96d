package codec

import (
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

// Frame describes one encoded frame.
type Frame struct {
	Mode types.Mode   // mode of the bits; ModeSID for silence descriptors, the speech mode for NO_DATA
	Type types.TxType // transmit frame type
	Bits int          // number of bits written, 0 for NO_DATA
	VAD  bool         // voice activity decision of the frame
}

// Encoder holds the state of the speech encoder. It is not safe for
// concurrent use.
type Encoder struct {
	down   filter.Downsampler
	hp     *filter.Biquad
	memPre int16
	sp     [lpc.WindowLen]int16 // past, frame, look-ahead
	in16   [lookahead16 + FrameLen16k]int16

	oldA      [M + 1]int16
	oldIsp    [M]int16
	fallbacks int // frames whose envelope analysis fell back
	oldIspQ   [M]int16
	isfPred   *lpc.Predictor

	wsp    [FrameLen]int16
	memWsp int16
	decim  pitch.Decimator
	wspDec [pitch.LMaxDec + FrameLen/2]int16
	ol     *pitch.OpenLoop

	exc    [excLen]int16
	memSyn [M]int16
	memErr [M]int16 // speech minus synthesis
	memW0  int16
	tilt   int16
	prevT0 int
	pitch  pitch.Searcher
	cb     acelp.Searcher
	gq     *gain.Quantizer
	clip   gain.Clipper
	hf     *hfSynth
	hfBP   *filter.FIR

	vad    *dtx.VAD
	dtx    *dtx.Encoder
	dtxOn  bool
	dither bool
}

// NewEncoder returns an encoder in its initial state.
func NewEncoder() *Encoder {
	e := &Encoder{
		hp:      filter.NewHP50(),
		isfPred: lpc.NewPredictor(),
		ol:      pitch.NewOpenLoop(),
		gq:      gain.NewQuantizer(),
		hf:      newHFSynth(),
		hfBP:    filter.NewBandpass67(),
		vad:     dtx.NewVAD(),
		dtx:     dtx.NewEncoder(),
	}
	e.Reset()
	return e
}

// SetDTX enables or disables discontinuous transmission.
func (e *Encoder) SetDTX(on bool) { e.dtxOn = on }

// DTX reports whether discontinuous transmission is enabled.
func (e *Encoder) DTX() bool { return e.dtxOn }

// SetDither allows silence descriptors to request comfort noise dithering.
func (e *Encoder) SetDither(on bool) { e.dither = on }

// Reset restores the initial state of every component.
func (e *Encoder) Reset() {
	e.down.Reset()
	e.hp.Reset()
	e.memPre = 0
	e.sp = [lpc.WindowLen]int16{}
	e.in16 = [lookahead16 + FrameLen16k]int16{}

	e.oldA = [M + 1]int16{4096}
	e.oldIsp = initIsp
	e.fallbacks = 0
	e.oldIspQ = initIsp
	e.isfPred.Reset()

	e.wsp = [FrameLen]int16{}
	e.memWsp = 0
	e.decim.Reset()
	e.wspDec = [pitch.LMaxDec + FrameLen/2]int16{}
	e.ol.Reset()

	e.ResetSoft()
	e.hf.reset()
	e.hfBP.Reset()
	e.vad.Reset()
	e.dtx.Reset()
}

// ResetSoft clears the state that only speech frames update. It runs on
// every comfort noise frame, as on the decoder side.
func (e *Encoder) ResetSoft() {
	e.exc = [excLen]int16{}
	e.memSyn = [M]int16{}
	e.memErr = [M]int16{}
	e.memW0 = 0
	e.tilt = 0
	e.prevT0 = pitch.PitMin
	e.gq.Reset()
	e.isfPred.ResetResidual()
	e.clip.Reset()
}

// Encode codes one frame of 320 samples at 16 kHz in the given mode and
// writes one element per bit to bits, which must hold the mode's frame
// size. With DTX enabled the frame may come out as a silence descriptor
// or as nothing at all.
func (e *Encoder) Encode(pcm []int16, mode types.Mode, bits []uint8) (Frame, error) {
	if len(pcm) != FrameLen16k {
		return Frame{}, fmt.Errorf("%w: %d samples", ErrFrameSize, len(pcm))
	}
	cfg, ok := bitstream.Config(mode)
	if !ok {
		return Frame{}, fmt.Errorf("%w: %d", ErrMode, mode)
	}
	if len(bits) < cfg.Bits {
		return Frame{}, fmt.Errorf("%w: have %d bits, need %d", bitstream.ErrLength, len(bits), cfg.Bits)
	}

	copy(e.in16[lookahead16:], pcm)
	var sig, vin [FrameLen]int16
	e.down.Process(pcm, sig[:])
	e.hp.Filter(sig[:])
	vin = sig
	filter.Preemph(sig[:], preemphFac, &e.memPre)
	copy(e.sp[lpc.WindowLen-FrameLen:], sig[:])

	var r [M + 1]int32
	var isf [M]int16
	lpc.Autocorr(e.sp[:], r[:])
	lpc.LagWindow(r[:])
	isp := e.analyze(r[:])
	lpc.IspToIsf(isp[:], isf[:])

	var az [NumSubfr * (M + 1)]int16
	lpc.IntLpc(e.oldIsp[:], isp[:], az[:])

	e.weightedSpeech(az[:])
	var top [2]int
	for h := range top {
		lag, g := e.ol.Estimate(e.wspDec[:], pitch.LMaxDec+h*L, L)
		top[h] = lag
		e.vad.Tone(g)
	}
	vad := e.vad.Decide(vin[:])

	var res [FrameLen]int16
	for sf := 0; sf < NumSubfr; sf++ {
		filter.Residu(az[sf*(M+1):], e.sp[:], frameOff+sf*L, res[sf*L:(sf+1)*L])
	}
	e.dtx.Update(isf[:], dtx.LogEnergy(res[:]))

	tx := types.TxSpeech
	if e.dtxOn {
		tx = e.dtx.Next(vad)
	}
	var fr Frame
	var err error
	if tx == types.TxSpeech {
		fr, err = e.encodeSpeech(cfg, isf[:], az[:], top, vad, bits)
	} else {
		fr, err = e.comfortNoise(cfg.Mode, tx, vad, bits)
	}

	e.oldIsp = isp
	shift(e.sp[:], FrameLen)
	shift(e.wspDec[:], FrameLen/2)
	shift(e.in16[:], FrameLen16k)
	return fr, err
}

// analyze returns the ISPs of the frame from its lag-windowed
// autocorrelation r. When the recursion turns unstable or the root search
// comes up short, the previous frame's envelope is kept.
func (e *Encoder) analyze(r []int32) [M]int16 {
	var a [M + 1]int16
	var isp [M]int16
	if lpc.Levinson(r, e.oldA[:], a[:], nil) == lpc.Fallback {
		e.fallbacks++
		return e.oldIsp
	}
	if lpc.AzToIsp(a[:], isp[:], e.oldIsp[:]) == lpc.Fallback {
		e.fallbacks++
		return e.oldIsp
	}
	e.oldA = a
	return isp
}

// weightedSpeech filters the frame through A(z/g1)/(1 - 0.68 z^-1) and
// appends its decimated version to the open-loop buffer.
func (e *Encoder) weightedSpeech(az []int16) {
	var ap [M + 1]int16
	for sf := 0; sf < NumSubfr; sf++ {
		filter.WeightA(az[sf*(M+1):], ap[:], gamma1)
		filter.Residu(ap[:], e.sp[:], frameOff+sf*L, e.wsp[sf*L:(sf+1)*L])
	}
	filter.Deemph(e.wsp[:], preemphFac, &e.memWsp)
	e.decim.Process(e.wsp[:], e.wspDec[pitch.LMaxDec:])
}

// comfortNoise codes a pause frame. NO_DATA frames carry no bits and
// report the speech mode m.
func (e *Encoder) comfortNoise(m types.Mode, tx types.TxType, vad bool, bits []uint8) (Frame, error) {
	fr := Frame{Mode: m, Type: tx, VAD: vad}
	if tx != types.TxNoData {
		fr.Mode = types.ModeSID
	}
	if tx == types.TxSIDFirst || tx == types.TxSIDUpdate {
		var p bitstream.Params
		var isfQ [M]int16
		e.dtx.SID(&p.Desc, isfQ[:])
		if !e.dither {
			p.Desc.Dither = 0
		}
		if err := bitstream.Pack(types.ModeSID, &p, bits); err != nil {
			return Frame{}, err
		}
		lpc.IsfToIsp(isfQ[:], e.oldIspQ[:])
		fr.Bits = bitstream.SIDBits
	}
	e.ResetSoft()
	return fr, nil
}

func (e *Encoder) encodeSpeech(cfg *bitstream.ModeConfig, isf, az []int16, top [2]int, vad bool, bits []uint8) (Frame, error) {
	var p bitstream.Params
	if vad {
		p.VAD = 1
	}
	var isfQ, ispQ [M]int16
	idx := p.ISF[:len(cfg.IsfBits)]
	if len(idx) == 7 {
		e.isfPred.Quantize46(isf, idx, isfQ[:])
	} else {
		e.isfPred.Quantize36(isf, idx, isfQ[:])
	}
	lpc.IsfToIsp(isfQ[:], ispQ[:])
	var aq [NumSubfr * (M + 1)]int16
	lpc.IntLpc(e.oldIspQ[:], ispQ[:], aq[:])
	e.clip.UpdateISF(isfQ[:])

	for sf := 0; sf < NumSubfr; sf++ {
		k := sf * (M + 1)
		e.subframe(cfg, sf, az[k:k+M+1], aq[k:k+M+1], top[sf/2], &p.Sub[sf])
	}
	e.oldIspQ = ispQ
	shift(e.exc[:], FrameLen)

	if err := bitstream.Pack(cfg.Mode, &p, bits); err != nil {
		return Frame{}, err
	}
	return Frame{Mode: cfg.Mode, Type: types.TxSpeech, Bits: cfg.Bits, VAD: vad}, nil
}

func (e *Encoder) subframe(cfg *bitstream.ModeConfig, sf int, a, aq []int16, tOp int, out *bitstream.Subframe) {
	off := frameOff + sf*L
	base := pitch.ExcBase + sf*L
	var ap [M + 1]int16
	filter.WeightA(a, ap[:], gamma1)

	// The LP residual stands in for the excitation of lags below L.
	var res [L]int16
	filter.Residu(aq, e.sp[:], off, res[:])
	copy(e.exc[base:base+L], res[:])

	// Target: weighted speech minus the zero-input response.
	var errBuf [M + L]int16
	copy(errBuf[:M], e.memErr[:])
	filter.SynFilt(aq, res[:], errBuf[M:], e.memErr[:], false)
	var xn [L]int16
	filter.Residu(ap[:], errBuf[:], M, xn[:])
	filter.Deemph(xn[:], preemphFac, &e.memW0)

	var h [L]int16
	impulseResponse(aq, ap[:], h[:])

	c := cfg.Pitch[sf]
	lo, hi := pitch.AbsRange(tOp)
	if c.Relative() {
		lo, hi = pitch.RelRange(e.prevT0)
	}
	t0, frac := e.pitch.ClosedLoop(e.exc[:], base, xn[:], h[:], lo, hi, c)
	out.Pitch = pitch.Encode(c, t0, frac, lo)
	e.prevT0 = t0
	pitch.PredLt4(e.exc[:], base, t0, frac, L+1)

	var y1 [L]int16
	gp := e.selectLTP(cfg, base, xn[:], h[:], y1[:], out)

	var xn2, cn [L]int16
	for i := range xn2 {
		xn2[i] = fixed.Sat16L(int64(xn[i]) - (int64(gp)*int64(y1[i])+0x2000)>>14)
		cn[i] = fixed.Sat16L(int64(res[i]) - (int64(gp)*int64(e.exc[base+i])+0x2000)>>14)
	}
	hs := h
	acelp.Sharpen(hs[:], e.tilt, t0, pitSharp)
	var dn [L]int32
	acelp.CorrHX(hs[:], xn2[:], dn[:])
	var code, y2 [L]int16
	e.cb.Search(cfg.Codebook, dn[:], cn[:], hs[:], code[:], y2[:], out.Code[:])
	cfg.Codebook.Decode(out.Code[:], code[:])
	acelp.Sharpen(code[:], e.tilt, t0, pitSharp)

	gpq, gc, gi := e.gq.Quantize(cfg.GainBits, xn[:], y1[:], y2[:], code[:], e.clip.Active())
	out.Gain = gi
	e.clip.UpdateGain(gpq)

	exc := e.exc[base : base+L]
	voice := gain.VoiceFactor(exc, gpq, code[:], gc)
	mixExcitation(exc, gpq, code[:], gc)
	e.tilt = codeTilt(voice)

	var syn [L]int16
	filter.SynFilt(aq, exc, syn[:], e.memSyn[:], true)
	for i := 0; i < M; i++ {
		k := L - M + i
		e.memErr[i] = fixed.Sub(e.sp[off+k], syn[k])
	}
	e.memW0 = fixed.Sub(xn[L-1], mixSample(y1[L-1], gpq, y2[L-1], gc))

	if cfg.HFGainBits > 0 {
		var target, sim [hfSub]int16
		copy(target[:], e.in16[sf*hfSub:(sf+1)*hfSub])
		e.hfBP.Filter(target[:])
		e.hf.synth(exc, aq, 1<<14, sim[:])
		out.HFGain = hfIndex(fixed.Energy(target[:]), fixed.Energy(sim[:]))
	}
}

// selectLTP chooses between the smoothed and, where the mode can signal
// it, the unfiltered adaptive excitation. It leaves the choice in the
// excitation buffer, its filtered version in y1 and returns the pitch
// gain used for the codebook target.
func (e *Encoder) selectLTP(cfg *bitstream.ModeConfig, base int, xn, h, y1 []int16, out *bitstream.Subframe) int16 {
	var smooth, ys [L]int16
	pitch.LtpFilter(e.exc[:], base, smooth[:], L)
	filter.Convolve(smooth[:], h, ys[:])
	gs := e.pitchGain(xn, ys[:])

	if cfg.LTPFlag {
		var yu [L]int16
		filter.Convolve(e.exc[base:base+L], h, yu[:])
		gu := e.pitchGain(xn, yu[:])
		if residualEnergy(xn, yu[:], gu) <= residualEnergy(xn, ys[:], gs) {
			out.LTP = 1
			copy(y1, yu[:])
			return gu
		}
	}
	out.LTP = 0
	copy(e.exc[base:base+L], smooth[:])
	copy(y1, ys[:])
	return gs
}

func (e *Encoder) pitchGain(xn, y []int16) int16 {
	g := gain.Pitch(xn, y)
	if e.clip.Active() {
		g = min(g, gain.PitchClip)
	}
	return g
}

// residualEnergy returns |xn - g*y|^2 with g in Q14.
func residualEnergy(xn, y []int16, g int16) int64 {
	var s int64
	for i := 0; i < L; i++ {
		d := int64(xn[i]) - (int64(g)*int64(y[i])+0x2000)>>14
		s += d * d
	}
	return s
}
