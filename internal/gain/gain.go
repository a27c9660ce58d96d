// Package gain quantizes the adaptive (pitch) and fixed (code) codebook
// gains. The code gain is predicted from the energies of past quantized
// gains with a 4th-order moving average and only a correction factor is
// sent, jointly with the pitch gain.
package gain

import (
	"github.com/thesyncim/amrwb/internal/fixed"
)

// L is the subframe length.
const L = 64

const (
	// PitchMax is the largest unquantized pitch gain (1.2 in Q14).
	PitchMax = 19661
	// PitchClip bounds the pitch gain while clipping is active (0.95 in Q14).
	PitchClip = 15565

	meanEner = 10205 // 30 dB as log2 energy, Q10
	minEner  = -4762 // -14 dB
	concDrop = 1020  // 3 dB
)

// MA prediction coefficients in Q13, newest first.
var predCoef = [4]int32{4096, 3277, 2458, 1638}

// Predictor holds the quantized energies of the last four code gain
// corrections.
type Predictor struct {
	past [4]int16
}

// Reset restores the initial energies.
func (p *Predictor) Reset() {
	for i := range p.past {
		p.past[i] = minEner
	}
}

// predict returns the predicted code gain in Q16 for a Q9 code vector.
func (p *Predictor) predict(code []int16) int32 {
	var pred int32
	for i, c := range predCoef {
		pred += c * int32(p.past[i])
	}
	pred >>= 13
	ener := fixed.Energy(code[:L])
	if ener < 1 {
		ener = 1
	}
	// Unit-amplitude code energy per sample: sum(code^2) / 2^18 / 64.
	lg := (meanEner + pred - (log2Q10(ener) - 24<<10)) >> 1
	return fixed.Pow2Q(lg+16<<10, 10)
}

func (p *Predictor) push(ener int16) {
	copy(p.past[1:], p.past[:3])
	p.past[0] = ener
}

// conceal pushes the average past energy lowered by 3 dB.
func (p *Predictor) conceal() {
	var sum int32
	for _, e := range p.past {
		sum += int32(e)
	}
	e := sum>>2 - concDrop
	if e < minEner {
		e = minEner
	}
	p.push(int16(e))
}

func log2Q10(v int64) int32 {
	n := int32(0)
	for v > fixed.MaxInt32 {
		v >>= 1
		n++
	}
	e, f := fixed.Log2(int32(v))
	return (int32(e)+n)<<10 + int32(f)>>5
}

func scaleCode(gc0 int32, gamma int16) int32 {
	return fixed.Sat32(int64(gc0) * int64(gamma) >> 11)
}

// term is a block floating point value v * 2^x with |v| < 2^29.
type term struct {
	v int64
	x int
}

func mk(v int64, x int) term {
	for v >= 1<<29 || v <= -(1<<29) {
		v >>= 1
		x++
	}
	return term{v, x}
}

func (a term) mul(b term) term { return mk(a.v*b.v, a.x+b.x) }

// align rescales all nonzero terms to the largest exponent.
func align(ts []term) {
	top, ok := 0, false
	for _, t := range ts {
		if t.v != 0 && (!ok || t.x > top) {
			top, ok = t.x, true
		}
	}
	for i := range ts {
		s := top - ts[i].x
		if s > 62 {
			ts[i].v = 0
		} else if s > 0 {
			ts[i].v >>= s
		}
		ts[i].x = top
	}
}

// Pitch returns the optimal pitch gain <xn,y1>/<y1,y1> in Q14, bounded to
// [0, PitchMax].
func Pitch(xn, y1 []int16) int16 {
	num := fixed.Dot(xn[:L], y1[:L])
	den := fixed.Energy(y1[:L])
	if num <= 0 || den == 0 {
		return 0
	}
	g := num << 14 / den
	if g > PitchMax {
		return PitchMax
	}
	return int16(g)
}

// Quantizer is the encoder side of the gain quantizer.
type Quantizer struct {
	pred Predictor
}

// NewQuantizer returns a quantizer in its initial state.
func NewQuantizer() *Quantizer {
	q := &Quantizer{}
	q.Reset()
	return q
}

// Reset restores the initial predictor state.
func (q *Quantizer) Reset() { q.pred.Reset() }

// Quantize selects the joint (pitch, code) gain entry minimizing
// |xn - gp*y1 - gc*y2|^2. y1 is the filtered adaptive excitation, y2 the
// filtered Q9 code and bits the index width (6 or 7). With clip set, pitch
// gains above PitchClip are excluded. gp is returned in Q14, gc in Q16.
func (q *Quantizer) Quantize(bits int, xn, y1, y2, code []int16, clip bool) (gp int16, gc int32, index int) {
	tab := tableFor(bits)
	gc0 := q.pred.predict(code)

	g0 := mk(int64(gc0), -16)
	c := [5]term{
		mk(fixed.Energy(y1[:L]), -28),
		mk(-2*fixed.Dot(xn[:L], y1[:L]), -14),
		mk(fixed.Energy(y2[:L]), -40).mul(g0).mul(g0),
		mk(-2*fixed.Dot(xn[:L], y2[:L]), -20).mul(g0),
		mk(2*fixed.Dot(y1[:L], y2[:L]), -34).mul(g0),
	}
	align(c[:])

	best := int64(0)
	index = -1
	for i := 0; i < tab.size(); i++ {
		p, g, _ := tab.entry(i)
		if clip && p > PitchClip {
			continue
		}
		p64, g64 := int64(p), int64(g)
		err := c[0].v*p64*p64 + c[1].v*p64 + c[2].v*g64*g64 + c[3].v*g64 + c[4].v*p64*g64
		if index < 0 || err < best {
			best, index = err, i
		}
	}
	p, g, e := tab.entry(index)
	q.pred.push(e)
	return p, scaleCode(gc0, g), index
}

// Frame describes the reception status of the frame being decoded.
type Frame struct {
	Bad      bool // parameters are replaced by concealment
	PrevBad  bool // the previous frame was bad
	Unusable bool // the frame was lost rather than received damaged
	VADHist  int  // consecutive frames classified as non-speech
}

// Decoder is the decoder side of the gain quantizer, including erasure
// concealment.
type Decoder struct {
	pred   Predictor
	pastGp [5]int16
	pastGc [5]int32
	prevGc int32
	state  int
}

// NewDecoder returns a decoder in its initial state.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset restores the initial state.
func (d *Decoder) Reset() {
	d.pred.Reset()
	d.pastGp = [5]int16{}
	d.pastGc = [5]int32{}
	d.prevGc = 0
	d.state = 0
}

// Advance updates the erasure state once per frame: each bad frame raises
// it up to 6, each good frame halves it.
func (d *Decoder) Advance(bad bool) {
	if bad {
		d.state = min(d.state+1, 6)
	} else {
		d.state >>= 1
	}
}

// State returns the erasure state 0..6.
func (d *Decoder) State() int { return d.state }

// Decode returns the pitch gain (Q14) and code gain (Q16) of one
// subframe. code is the Q9 code vector the gains will scale.
func (d *Decoder) Decode(bits, index int, code []int16, f Frame) (gp int16, gc int32) {
	if f.Bad {
		return d.conceal(f)
	}
	tab := tableFor(bits)
	if index < 0 || index >= tab.size() {
		return d.conceal(Frame{Bad: true, Unusable: true, VADHist: f.VADHist})
	}
	gc0 := d.pred.predict(code)
	p, g, e := tab.entry(index)
	gc = scaleCode(gc0, g)
	if f.PrevBad && gc > d.prevGc {
		gc = d.prevGc
	}
	d.pred.push(e)
	d.remember(p, gc)
	return p, gc
}

func (d *Decoder) conceal(f Frame) (int16, int32) {
	pdown, cdown := pdownUsable[d.state], cdownUsable[d.state]
	if f.Unusable {
		pdown, cdown = pdownUnusable[d.state], cdownUnusable[d.state]
	}
	med := min(fixed.Median(d.pastGp[:]), PitchClip)
	gp := fixed.Mult(pdown, med)

	gc := fixed.MedianL(d.pastGc[:])
	if f.VADHist <= 2 {
		gc = int32(int64(gc) * int64(cdown) >> 15)
	}
	d.pred.conceal()
	d.remember(gp, gc)
	return gp, gc
}

func (d *Decoder) remember(gp int16, gc int32) {
	copy(d.pastGp[:4], d.pastGp[1:])
	d.pastGp[4] = gp
	copy(d.pastGc[:4], d.pastGc[1:])
	d.pastGc[4] = gc
	d.prevGc = gc
}

// VoiceFactor returns (Ep - Ec) / (Ep + Ec) in Q15, where Ep is the energy
// of the scaled adaptive excitation and Ec that of the scaled code.
func VoiceFactor(exc []int16, gp int16, code []int16, gc int32) int16 {
	t := [2]term{
		mk(fixed.Energy(exc[:L]), -28).mul(mk(int64(gp)*int64(gp), 0)),
		mk(fixed.Energy(code[:L]), -18).mul(mk(int64(gc), -16)).mul(mk(int64(gc), -16)),
	}
	align(t[:])
	den := t[0].v + t[1].v
	if den <= 0 {
		return 0
	}
	v := (t[0].v - t[1].v) * 32767 / den
	return int16(v)
}
