package lpc

const (
	// IsfGap is the minimum distance between consecutive ISFs (50 Hz).
	IsfGap = 128

	mu        = 10923 // 1/3, Q15
	alpha     = 29491 // 0.9, Q15
	oneAlpha  = 3277
	survivors = 4
	histLen   = 8
	part1Dim  = 9
	numIdx46  = 7
	numIdx36  = 5
	numIdxSID = 5
)

// Predictor is the moving-average ISF predictor memory. The encoder and the
// decoder each own one and must update it identically on good frames.
type Predictor struct {
	pastQ [M]int16 // previous quantized prediction residual
	hist  [histLen][M]int16
	last  [M]int16 // last decoded ISF vector
}

// NewPredictor returns a predictor in its reset state.
func NewPredictor() *Predictor {
	p := &Predictor{}
	p.Reset()
	return p
}

// Reset restores the initial state.
func (p *Predictor) Reset() {
	p.pastQ = [M]int16{}
	for i := range p.hist {
		p.hist[i] = MeanIsf
	}
	p.last = MeanIsf
}

// ResetResidual clears the MA memory only. Both sides call it when speech
// resumes after a comfort noise period.
func (p *Predictor) ResetResidual() {
	p.pastQ = [M]int16{}
}

// SetLast seeds the concealment history with isf, as after comfort noise.
func (p *Predictor) SetLast(isf []int16) {
	copy(p.last[:], isf)
	for i := range p.hist {
		copy(p.hist[i][:], isf)
	}
}

func (p *Predictor) residual(isf []int16, res []int16) {
	for i := 0; i < M; i++ {
		pred := int32(MeanIsf[i]) + (int32(p.pastQ[i])*mu+0x4000)>>15
		res[i] = sat(int32(isf[i]) - pred)
	}
}

// commit rebuilds the quantized ISF from the quantized residual and updates
// the predictor.
func (p *Predictor) commit(resQ []int16, isfQ []int16) {
	for i := 0; i < M; i++ {
		pred := int32(MeanIsf[i]) + (int32(p.pastQ[i])*mu+0x4000)>>15
		isfQ[i] = sat(int32(resQ[i]) + pred)
		p.pastQ[i] = resQ[i]
	}
	Reorder(isfQ[:M], IsfGap)
	copy(p.hist[1:], p.hist[:histLen-1])
	copy(p.hist[0][:], isfQ[:M])
	copy(p.last[:], isfQ[:M])
}

// Quantize46 quantizes isf with the 46-bit split VQ, storing the seven
// indices in idx and the decoded vector in isfQ.
func (p *Predictor) Quantize46(isf []int16, idx []int, isfQ []int16) {
	p.quantize(isf, stage2a46, stage2b46, idx, isfQ)
}

// Quantize36 quantizes isf with the 36-bit split VQ, storing the five
// indices in idx and the decoded vector in isfQ.
func (p *Predictor) Quantize36(isf []int16, idx []int, isfQ []int16) {
	p.quantize(isf, stage2a36, stage2b36, idx, isfQ)
}

func (p *Predictor) quantize(isf []int16, s2a, s2b []split, idx []int, isfQ []int16) {
	var res, resQ [M]int16
	p.residual(isf, res[:])
	idx[0] = quantPart(res[:part1Dim], stage1a, s2a, idx[2:2+len(s2a)], resQ[:part1Dim])
	idx[1] = quantPart(res[part1Dim:], stage1b, s2b, idx[2+len(s2a):], resQ[part1Dim:])
	p.commit(resQ[:], isfQ)
}

// quantPart searches the best stage-1 survivors of x and refines each with
// the stage-2 splits, keeping the pair with the lowest total error.
func quantPart(x []int16, s1 *codebook, s2 []split, idx2 []int, xq []int16) int {
	var surv [survivors]int
	s1.nbest(x, surv[:])
	var r [M]int16
	var cur [5]int
	best, bestErr := surv[0], int64(-1)
	for _, k := range surv {
		e := s1.entry(k)
		for i := range x {
			r[i] = sat(int32(x[i]) - int32(e[i]))
		}
		var err int64
		for j, s := range s2 {
			c, d := s.cb.nearest(r[s.off : s.off+s.cb.dim])
			cur[j] = c
			err += d
		}
		if bestErr < 0 || err < bestErr {
			best, bestErr = k, err
			copy(idx2, cur[:len(s2)])
		}
	}
	decodePart(best, idx2, s1, s2, xq)
	return best
}

func decodePart(i1 int, idx2 []int, s1 *codebook, s2 []split, xq []int16) {
	copy(xq, s1.entry(i1))
	for j, s := range s2 {
		e := s.cb.entry(idx2[j])
		for k, v := range e {
			xq[s.off+k] = sat(int32(xq[s.off+k]) + int32(v))
		}
	}
}

// Decode46 reconstructs the ISF vector from seven 46-bit indices. When bad
// is set the indices are ignored and the vector is concealed.
func (p *Predictor) Decode46(idx []int, bad bool, isfQ []int16) {
	p.decode(idx, bad, stage2a46, stage2b46, isfQ)
}

// Decode36 reconstructs the ISF vector from five 36-bit indices.
func (p *Predictor) Decode36(idx []int, bad bool, isfQ []int16) {
	p.decode(idx, bad, stage2a36, stage2b36, isfQ)
}

func (p *Predictor) decode(idx []int, bad bool, s2a, s2b []split, isfQ []int16) {
	if bad {
		p.conceal(isfQ)
		return
	}
	var resQ [M]int16
	if !validIndices(idx, s2a, s2b) {
		p.conceal(isfQ)
		return
	}
	decodePart(idx[0], idx[2:2+len(s2a)], stage1a, s2a, resQ[:part1Dim])
	decodePart(idx[1], idx[2+len(s2a):], stage1b, s2b, resQ[part1Dim:])
	p.commit(resQ[:], isfQ)
}

func validIndices(idx []int, s2a, s2b []split) bool {
	if len(idx) < 2+len(s2a)+len(s2b) {
		return false
	}
	if idx[0] < 0 || idx[0] >= stage1a.size || idx[1] < 0 || idx[1] >= stage1b.size {
		return false
	}
	for j, s := range s2a {
		if v := idx[2+j]; v < 0 || v >= s.cb.size {
			return false
		}
	}
	for j, s := range s2b {
		if v := idx[2+len(s2a)+j]; v < 0 || v >= s.cb.size {
			return false
		}
	}
	return true
}

// conceal moves the last ISF towards the history mean and keeps the
// predictor memory consistent with the substituted vector.
func (p *Predictor) conceal(isfQ []int16) {
	for i := 0; i < M; i++ {
		var sum int32
		for k := range p.hist {
			sum += int32(p.hist[k][i])
		}
		ref := sum / histLen
		isfQ[i] = int16((int32(alpha)*int32(p.last[i]) + int32(oneAlpha)*ref + 0x4000) >> 15)
	}
	for i := 0; i < M; i++ {
		pred := int32(MeanIsf[i]) + (int32(p.pastQ[i])*mu+0x4000)>>15
		p.pastQ[i] = sat((int32(isfQ[i]) - pred) >> 1)
	}
	Reorder(isfQ[:M], IsfGap)
	copy(p.last[:], isfQ[:M])
}

// Reorder enforces a minimum distance between the first M-1 coefficients.
func Reorder(isf []int16, minDist int16) {
	lo := int32(minDist)
	for i := 0; i < len(isf)-1; i++ {
		if int32(isf[i]) < lo {
			isf[i] = int16(lo)
		}
		lo = int32(isf[i]) + int32(minDist)
	}
}

// QuantizeSID quantizes a comfort noise ISF vector with the 28-bit
// memoryless split VQ.
func QuantizeSID(isf []int16, idx []int, isfQ []int16) {
	var x [M]int16
	for i := 0; i < M; i++ {
		x[i] = sat(int32(isf[i]) - int32(MeanIsfNoise[i]))
	}
	for j, s := range sidSplits {
		idx[j], _ = s.cb.nearest(x[s.off : s.off+s.cb.dim])
	}
	DecodeSID(idx, isfQ)
}

// DecodeSID reconstructs a comfort noise ISF vector.
func DecodeSID(idx []int, isfQ []int16) {
	copy(isfQ, MeanIsfNoise[:])
	for j, s := range sidSplits {
		i := idx[j]
		if i < 0 || i >= s.cb.size {
			i = 0
		}
		for k, v := range s.cb.entry(i) {
			isfQ[s.off+k] = sat(int32(isfQ[s.off+k]) + int32(v))
		}
	}
	Reorder(isfQ[:M], IsfGap)
}

// SIDFieldBits returns the width of each silence descriptor ISF index.
func SIDFieldBits() []int {
	return []int{6, 6, 6, 5, 5}
}

func sat(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
