package codec

import (
	"github.com/thesyncim/amrwb/internal/filter"
	"github.com/thesyncim/amrwb/internal/fixed"
)

// hfSub is the number of 16 kHz samples per subframe.
const hfSub = FrameLen16k / NumSubfr

const (
	hfSeed    = 21845
	hfGainMin = 819  // 0.05, Q14
	hfGainMax = 8192 // 0.5
)

// hfGains are the 4-bit high band gains of the 23.85 mode, Q14.
var hfGains = [16]int16{
	819, 1048, 1340, 1713, 2191, 2802, 3583, 4582,
	5859, 7492, 9581, 12253, 15669, 20037, 25624, 32767,
}

// hfSynth generates the 6.4-7 kHz band from white noise: the noise takes
// the energy of the low band excitation, is scaled by the band gain,
// shaped by the weighted LP envelope and band-pass filtered.
type hfSynth struct {
	seed int16
	mem  [M]int16
	bp   *filter.FIR
}

func newHFSynth() *hfSynth {
	h := &hfSynth{bp: filter.NewBandpass67()}
	h.reset()
	return h
}

func (h *hfSynth) reset() {
	h.seed = hfSeed
	h.mem = [M]int16{}
	h.bp.Reset()
}

// synth writes hfSub high band samples for the subframe with excitation
// exc, quantized predictor aq and gain g (Q14).
func (h *hfSynth) synth(exc, aq []int16, g int16, out []int16) {
	out = out[:hfSub]
	for i := range out {
		out[i] = filter.Random(&h.seed) >> 3
	}
	eExc := fixed.Energy(exc[:L]) * hfSub / L
	eNoise := fixed.Energy(out)
	var scale int64
	if eNoise > 0 {
		scale = fixed.Sqrt64((eExc<<20)/eNoise) << 4
	}
	scale = scale * int64(g) >> 14
	for i := range out {
		out[i] = fixed.Sat16L(int64(out[i]) * scale >> 14)
	}
	var ap [M + 1]int16
	filter.WeightA(aq, ap[:], hfGamma)
	filter.SynFilt(ap[:], out, out, h.mem[:], true)
	h.bp.Filter(out)
}

// tiltGain estimates the high band gain from the spectral tilt of the low
// band synthesis: a flat spectrum gets more noise than a low-pass one.
func tiltGain(syn []int16) int16 {
	r0 := fixed.Energy(syn)
	if r0 == 0 {
		return hfGainMin
	}
	r1 := fixed.Dot(syn[1:], syn[:len(syn)-1])
	tilt := min(max(r1<<15/r0, -32768), 32767)
	return int16(min(max((32768-tilt)>>3, hfGainMin), hfGainMax))
}

// hfIndex returns the gain index whose value best matches
// sqrt(target/sim) in the log domain.
func hfIndex(target, sim int64) int {
	if sim <= 0 || target <= 0 {
		return 0
	}
	g := fixed.Sqrt64((target<<20)/sim) << 4 // Q14
	idx := 0
	for i := 0; i < len(hfGains)-1; i++ {
		if g*g > int64(hfGains[i])*int64(hfGains[i+1]) {
			idx = i + 1
		}
	}
	return idx
}
