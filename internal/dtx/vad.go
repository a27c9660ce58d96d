package dtx

import "github.com/thesyncim/amrwb/internal/fixed"

const (
	// Bands is the number of filter bank bands.
	Bands = 12
	// FrameLen is the number of 12.8 kHz samples per VAD decision.
	FrameLen = 256

	noiseInit = 150
	noiseMin  = 40
	noiseMax  = 160000

	thrHigh = 1260 // Q8 mean squared band SNR
	thrLow  = 720

	burstLen  = 3
	hangLen   = 7
	statCount = 20
	statThr   = 410 // Q8 mean level change ratio
	toneThr   = 21298
	snrCap    = 8191
)

// Allpass coefficients of the half-band splitters, Q15.
const (
	coeff5a = 21955
	coeff5b = 6390
	coeff3  = 13363
)

// VAD is a voice activity detector operating on 12.8 kHz frames. It
// compares 12 sub-band levels against adaptive noise estimates.
type VAD struct {
	mem     [11][2]int16 // splitter states
	bckr    [Bands]int32 // background noise estimate
	ave     [Bands]int32 // slow level average for stationarity
	level   [Bands]int32
	vadreg  uint16
	tone    uint16
	burst   int
	hang    int
	stat    int
	speech  int32 // long-term speech level
	scratch [FrameLen]int16
}

// NewVAD returns a detector in its initial state.
func NewVAD() *VAD {
	v := &VAD{}
	v.Reset()
	return v
}

// Reset restores the initial state.
func (v *VAD) Reset() {
	*v = VAD{}
	for i := range v.bckr {
		v.bckr[i] = noiseInit
		v.ave[i] = noiseInit
	}
	v.stat = statCount
}

// Tone records the normalized open-loop pitch gain of a half frame.
// Strongly periodic frames are not used to update the noise estimate.
func (v *VAD) Tone(gain int16) {
	v.tone >>= 1
	if gain > toneThr {
		v.tone |= 0x4000
	}
}

// Decide returns the voice activity decision for a 256 sample frame.
func (v *VAD) Decide(x []int16) bool {
	v.filterBank(x[:FrameLen])

	var sum, noise int64
	for i := 0; i < Bands; i++ {
		r := min(int64(v.level[i])<<8/int64(v.bckr[i]), snrCap)
		sum += r * r >> 8
		noise += int64(v.bckr[i])
	}
	snr := sum / Bands

	thr := min(max(thrHigh-noise>>6, thrLow), thrHigh)
	if v.speech > 0 && v.speech < int32(noise)*4 {
		thr = max(thr*7/8, thrLow)
	}
	raw := snr > thr

	v.updateStationarity()
	v.updateNoise()

	v.vadreg >>= 1
	if raw {
		v.vadreg |= 0x4000
		v.burst++
		if v.burst >= burstLen {
			v.hang = hangLen
		}
		var lsum int64
		for _, l := range v.level {
			lsum += int64(l)
		}
		v.speech += int32((lsum - int64(v.speech)) >> 5)
		return true
	}
	v.burst = 0
	if v.hang > 0 {
		v.hang--
		return true
	}
	return false
}

func (v *VAD) updateStationarity() {
	var sum int64
	for i := 0; i < Bands; i++ {
		hi, lo := v.level[i], v.ave[i]
		if hi < lo {
			hi, lo = lo, hi
		}
		lo = max(lo, 1)
		sum += min(int64(hi)<<8/int64(lo), snrCap)
		v.ave[i] += (v.level[i] - v.ave[i]) >> 3
	}
	if sum/Bands > statThr {
		v.stat = statCount
	} else if v.stat > 0 {
		v.stat--
	}
}

func (v *VAD) updateNoise() {
	quiet := v.vadreg&0x7800 == 0 && v.tone&0x7fc0 == 0
	for i := 0; i < Bands; i++ {
		b, l := v.bckr[i], v.level[i]
		switch {
		case l < b:
			b -= (b - l) >> 2
		case quiet || v.stat == 0:
			b += max((l-b)>>4, 1)
		}
		v.bckr[i] = min(max(b, noiseMin), noiseMax)
	}
}

// split5 divides x into two half-band signals of half the length with a
// pair of first-order allpass sections.
func split5(x, lo, hi []int16, mem *[2]int16) {
	for i := range lo {
		a := allpass(x[2*i], coeff5a, &mem[0])
		b := allpass(x[2*i+1], coeff5b, &mem[1])
		lo[i] = int16((int32(a) + int32(b)) >> 1)
		hi[i] = int16((int32(a) - int32(b)) >> 1)
	}
}

// split3 is the cheaper splitter with a single allpass section.
func split3(x, lo, hi []int16, mem *[2]int16) {
	for i := range lo {
		a := x[2*i]
		b := allpass(x[2*i+1], coeff3, &mem[0])
		lo[i] = int16((int32(a) + int32(b)) >> 1)
		hi[i] = int16((int32(a) - int32(b)) >> 1)
	}
}

func allpass(in, c int16, mem *int16) int16 {
	t := fixed.Sub(in, fixed.Mult(c, *mem))
	out := fixed.Add(*mem, fixed.Mult(c, t))
	*mem = t
	return out
}

func (v *VAD) filterBank(x []int16) {
	s := v.scratch[:]
	for i := range s {
		s[i] = x[i] >> 2
	}
	var l1, h1 [128]int16
	var l2, h2, a, b [64]int16
	var c, d, e, b8, b9, b10 [32]int16
	var f, g, b4, b5, b6, b7 [16]int16
	var b0, b1, b2, b3 [8]int16

	split5(s, l1[:], h1[:], &v.mem[0])
	split5(l1[:], l2[:], h2[:], &v.mem[1])
	split5(h1[:], a[:], b[:], &v.mem[2])
	split3(a[:], b9[:], b10[:], &v.mem[3])
	split5(l2[:], c[:], d[:], &v.mem[4])
	split3(h2[:], e[:], b8[:], &v.mem[5])
	split3(e[:], b6[:], b7[:], &v.mem[6])
	split3(d[:], b4[:], b5[:], &v.mem[7])
	split5(c[:], f[:], g[:], &v.mem[8])
	split3(f[:], b0[:], b1[:], &v.mem[9])
	split3(g[:], b2[:], b3[:], &v.mem[10])

	bands := [Bands][]int16{b0[:], b1[:], b2[:], b3[:], b4[:], b5[:], b6[:], b7[:], b8[:], b9[:], b10[:], b[:]}
	for i, band := range bands {
		var acc int32
		for _, y := range band {
			acc += int32(fixed.Abs(y))
		}
		shift := 0
		for n := len(band); n < 64; n <<= 1 {
			shift++
		}
		v.level[i] = acc << shift
	}
}
