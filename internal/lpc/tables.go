package lpc

// MeanIsf is the long-term mean of the ISF vector removed before
// prediction.
var MeanIsf = [M]int16{
	738, 1326, 2336, 3578, 4596, 5662, 6711, 7730,
	8750, 9753, 10705, 11728, 12833, 13971, 15043, 4037,
}

// MeanIsfNoise is the mean ISF vector of background noise, used by the
// silence descriptor quantizer.
var MeanIsfNoise = [M]int16{
	478, 1100, 2213, 3267, 4219, 5222, 6198, 7240,
	8229, 9153, 10098, 11108, 12144, 13184, 14165, 3803,
}

// residualStd is the per-coefficient spread of the prediction residual that
// the codebooks are scaled to.
var residualStd = [M]int32{
	330, 420, 520, 580, 620, 640, 650, 660,
	660, 660, 650, 640, 620, 580, 520, 360,
}

// codebook is a flat table of size vectors of dim coefficients.
type codebook struct {
	dim  int
	size int
	vec  []int16
}

func (c *codebook) entry(i int) []int16 {
	return c.vec[i*c.dim : (i+1)*c.dim]
}

func (c *codebook) dist(x []int16, i int) int64 {
	var d int64
	e := c.entry(i)
	for k, v := range e {
		t := int64(x[k]) - int64(v)
		d += t * t
	}
	return d
}

// nearest returns the index of the entry closest to x and its distance.
func (c *codebook) nearest(x []int16) (int, int64) {
	best, bestD := 0, int64(-1)
	for i := 0; i < c.size; i++ {
		if d := c.dist(x, i); bestD < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}

// nbest stores the indices of the len(idx) entries closest to x in idx,
// best first.
func (c *codebook) nbest(x []int16, idx []int) {
	var dist [8]int64
	n := len(idx)
	for k := 0; k < n; k++ {
		idx[k], dist[k] = -1, -1
	}
	for i := 0; i < c.size; i++ {
		d := c.dist(x, i)
		for k := 0; k < n; k++ {
			if idx[k] < 0 || d < dist[k] {
				copy(idx[k+1:n], idx[k:n-1])
				copy(dist[k+1:n], dist[k:n-1])
				idx[k], dist[k] = i, d
				break
			}
		}
	}
}

// split is a stage-2 codebook applied to coefficients [off, off+cb.dim) of
// its stage-1 part.
type split struct {
	off int
	cb  *codebook
}

// The split sizes follow the AMR-WB layout, but the entries are generated
// here, so indices are only meaningful to this codec.
var (
	stage1a = gaussCodebook(256, residualStd[0:9], 1)
	stage1b = gaussCodebook(256, residualStd[9:16], 2)

	stage2a46 = []split{
		{0, gridCodebook(residualStd[0:3], []int{4, 4, 4})},
		{3, gridCodebook(residualStd[3:6], []int{8, 4, 4})},
		{6, gridCodebook(residualStd[6:9], []int{8, 4, 4})},
	}
	stage2b46 = []split{
		{0, gridCodebook(residualStd[9:12], []int{4, 4, 2})},
		{3, gridCodebook(residualStd[12:16], []int{4, 2, 2, 2})},
	}
	stage2a36 = []split{
		{0, gridCodebook(residualStd[0:5], []int{4, 4, 2, 2, 2})},
		{5, gridCodebook(residualStd[5:9], []int{4, 4, 4, 2})},
	}
	stage2b36 = []split{
		{0, gridCodebook(residualStd[9:16], []int{2, 2, 2, 2, 2, 2, 1})},
	}

	// SID codebooks quantize isf - MeanIsfNoise directly in five splits.
	sidSplits = []split{
		{0, gaussCodebook(64, scaledStd(residualStd[0:2], 3, 2), 3)},
		{2, gaussCodebook(64, scaledStd(residualStd[2:5], 3, 2), 4)},
		{5, gaussCodebook(64, scaledStd(residualStd[5:8], 3, 2), 5)},
		{8, gaussCodebook(32, scaledStd(residualStd[8:12], 3, 2), 6)},
		{12, gaussCodebook(32, scaledStd(residualStd[12:16], 3, 2), 7)},
	}
)

func scaledStd(std []int32, num, den int32) []int32 {
	out := make([]int32, len(std))
	for i, s := range std {
		out[i] = s * num / den
	}
	return out
}

// gaussCodebook draws size vectors from an integer Irwin-Hall approximation
// of a zero-mean Gaussian with the given per-coefficient spread. Entry 0 is
// the zero vector. Generation uses integer arithmetic only so every
// platform builds identical tables.
func gaussCodebook(size int, std []int32, seed uint32) *codebook {
	const (
		sum4Mean = 2 * 32767
		sum4Std  = 18919 // 32768/sqrt(3)
	)
	dim := len(std)
	cb := &codebook{dim: dim, size: size, vec: make([]int16, size*dim)}
	s := seed*2654435761 + 1
	next := func() int64 {
		s = s*1103515245 + 12345
		return int64(s>>16) & 0x7fff
	}
	for i := 1; i < size; i++ {
		for k := 0; k < dim; k++ {
			u := next() + next() + next() + next() - sum4Mean
			cb.vec[i*dim+k] = int16(u * int64(std[k]) / sum4Std)
		}
	}
	return cb
}

// gridCodebook builds a uniform product codebook with levels[k] levels on
// coefficient k, centred on zero. The step is matched to half the stage-1
// spread.
func gridCodebook(std []int32, levels []int) *codebook {
	dim := len(std)
	size := 1
	for _, l := range levels {
		size *= l
	}
	cb := &codebook{dim: dim, size: size, vec: make([]int16, size*dim)}
	for i := 0; i < size; i++ {
		r := i
		for k := 0; k < dim; k++ {
			l := levels[k]
			q := r % l
			r /= l
			sigma := std[k] / 2
			var step int32
			switch l {
			case 1:
				step = 0
			case 2:
				step = sigma * 16 / 10
			case 4:
				step = sigma
			default:
				step = sigma * 6 / 10
			}
			// level q of l, centred: (2q-l+1)*step/2
			cb.vec[i*dim+k] = int16((int32(2*q-l+1) * step) / 2)
		}
	}
	return cb
}
