// Package acelp implements the algebraic (fixed) codebook: the
// correlation-driven pulse position search over interleaved tracks and
// the combinatorial packing of signed pulse positions into indices.
package acelp

// L is the subframe length (codebook vector size).
const L = 64

// PulseAmp is the amplitude of one unit pulse in Q9.
const PulseAmp = 512

// Config describes the pulse layout of one codec mode.
type Config struct {
	Tracks  int    // 2 or 4 interleaved tracks
	PosBits uint   // position bits per track (5 for 2 tracks, 4 for 4)
	Pulses  [4]int // pulses per track
	Iter    int    // track-order permutations tried by the search
}

// Predefined pulse layouts.
var (
	Config12 = Config{Tracks: 2, PosBits: 5, Pulses: [4]int{1, 1}}
	Config20 = Config{Tracks: 4, PosBits: 4, Pulses: [4]int{1, 1, 1, 1}, Iter: 4}
	Config36 = Config{Tracks: 4, PosBits: 4, Pulses: [4]int{2, 2, 2, 2}, Iter: 4}
	Config44 = Config{Tracks: 4, PosBits: 4, Pulses: [4]int{3, 3, 2, 2}, Iter: 4}
	Config52 = Config{Tracks: 4, PosBits: 4, Pulses: [4]int{3, 3, 3, 3}, Iter: 4}
	Config64 = Config{Tracks: 4, PosBits: 4, Pulses: [4]int{4, 4, 4, 4}, Iter: 3}
	Config72 = Config{Tracks: 4, PosBits: 4, Pulses: [4]int{5, 5, 4, 4}, Iter: 3}
	Config88 = Config{Tracks: 4, PosBits: 4, Pulses: [4]int{6, 6, 6, 6}, Iter: 2}
)

// NumPulses returns the total number of pulses per subframe.
func (c Config) NumPulses() int {
	n := 0
	for t := 0; t < c.Tracks; t++ {
		n += c.Pulses[t]
	}
	return n
}

// FieldBits returns the index width of each track.
func (c Config) FieldBits() []int {
	out := make([]int, c.Tracks)
	for t := range out {
		out[t] = IndexBits(c.Pulses[t], c.PosBits)
	}
	return out
}

// Bits returns the total number of codebook bits per subframe.
func (c Config) Bits() int {
	n := 0
	for _, b := range c.FieldBits() {
		n += b
	}
	return n
}

// Decode builds the Q9 code vector from per-track indices.
func (c Config) Decode(indices []int, code []int16) {
	clear(code[:L])
	var p [6]Pulse
	for t := 0; t < c.Tracks; t++ {
		out := p[:c.Pulses[t]]
		Dequantize(indices[t], c.PosBits, out)
		for _, q := range out {
			i := q.Pos*c.Tracks + t
			if i >= L {
				continue
			}
			if q.Neg {
				code[i] -= PulseAmp
			} else {
				code[i] += PulseAmp
			}
		}
	}
}
