// Package testsignal generates deterministic 16 kHz test signals for the
// codec tests, benchmarks and command line tools.
package testsignal

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// SampleRate is the rate of every generated signal.
const SampleRate = 16000

const (
	VariantAMMultisine  = "am_multisine_v1"
	VariantChirpSweep   = "chirp_sweep_v1"
	VariantImpulseTrain = "impulse_train_v1"
	VariantSpeechLike   = "speech_like_v1"
)

var variants = []string{
	VariantAMMultisine,
	VariantChirpSweep,
	VariantImpulseTrain,
	VariantSpeechLike,
}

// Variants returns the names accepted by Generate.
func Variants() []string {
	out := make([]string, len(variants))
	copy(out, variants)
	return out
}

// Generate returns samples of the named signal at full scale 0.98.
func Generate(variant string, samples int) ([]int16, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("invalid sample count: %d", samples)
	}
	var gen func(t float64, i int) float64
	switch variant {
	case VariantAMMultisine:
		gen = amMultisine
	case VariantChirpSweep:
		gen = chirpSweep(samples)
	case VariantImpulseTrain:
		gen = impulseTrain
	case VariantSpeechLike:
		gen = speechLike()
	default:
		return nil, fmt.Errorf("unknown signal variant %q", variant)
	}
	out := make([]int16, samples)
	for i := range out {
		out[i] = toPCM(gen(float64(i)/SampleRate, i))
	}
	return out, nil
}

// Sine returns a tone of the given frequency and peak amplitude (0..1).
func Sine(freq, amp float64, samples int) []int16 {
	out := make([]int16, samples)
	for i := range out {
		out[i] = toPCM(amp * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

// HashPCM returns the SHA-256 of samples as little-endian int16.
func HashPCM(samples []int16) string {
	h := sha256.New()
	var b [2]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		_, _ = h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func amMultisine(t float64, i int) float64 {
	freqs := []float64{440, 1000, 2000}
	modFreqs := []float64{1.3, 2.7, 0.9}
	var val float64
	for k, f := range freqs {
		depth := 0.5 + 0.5*math.Sin(2*math.Pi*modFreqs[k]*t)
		val += 0.3 * depth * math.Sin(2*math.Pi*f*t)
	}
	onset := int(0.010 * SampleRate)
	if i < onset {
		frac := float64(i) / float64(onset)
		val *= frac * frac * frac
	}
	return val
}

func chirpSweep(samples int) func(float64, int) float64 {
	duration := float64(samples) / SampleRate
	const f0, f1 = 60.0, 7000.0
	k := math.Log(f1/f0) / duration
	return func(t float64, i int) float64 {
		phase := 2 * math.Pi * f0 * (math.Exp(k*t) - 1) / k
		env := 0.2 + 0.8*(0.5+0.5*math.Sin(2*math.Pi*0.41*t))
		return 0.85 * env * math.Sin(phase)
	}
}

func impulseTrain(t float64, i int) float64 {
	period := int(0.035 * SampleRate)
	decay := 0.0035 * SampleRate
	pos := i % period
	val := 0.0
	if pos == 0 {
		val = 0.92
	}
	if pos < int(0.015*SampleRate) {
		val += 0.75 * math.Exp(-float64(pos)/decay) * math.Sin(2*math.Pi*540*float64(pos)/SampleRate)
	}
	val += 0.02 * noise(i, 17)
	return val * (0.6 + 0.4*math.Sin(2*math.Pi*0.19*t))
}

func speechLike() func(float64, int) float64 {
	var phase, prev float64
	return func(t float64, i int) float64 {
		f0 := 95.0 + 28.0*math.Sin(2*math.Pi*0.63*t) + 16.0*math.Sin(2*math.Pi*0.17*t)
		phase += 2 * math.Pi * f0 / SampleRate
		if phase > 2*math.Pi {
			phase -= 2 * math.Pi
		}
		voiced := math.Sin(phase) + 0.35*math.Sin(2*phase) + 0.2*math.Sin(3*phase)
		voicing := 0.5 + 0.5*math.Sin(2*math.Pi*0.78*t+0.25)
		syllable := 0.25 + 0.75*math.Pow(0.5+0.5*math.Sin(2*math.Pi*3.2*t), 2)
		n := noise(i, 71)
		high := n - 0.86*prev
		prev = n
		mix := voicing*voiced + (1-voicing)*(0.38*high+0.22*math.Sin(2*math.Pi*3200*t))
		return 0.6 * syllable * mix
	}
}

func noise(i, salt int) float64 {
	x := uint32(i*1664525 + salt*2246822519)
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return float64(int32(x)) / 2147483647.0
}

func toPCM(v float64) int16 {
	v = min(max(v, -0.98), 0.98)
	return int16(math.Round(v * 32767))
}
