package gain

// The gain codebooks are a product of pitch gain levels and code gain
// corrections. Indices are only meaningful to this codec.

// Pitch gain levels in Q14, shared by both codebooks.
var gpLevels = [8]int16{1638, 4096, 6554, 9011, 11469, 13926, 16384, 18842}

// Code gain correction factors in Q11 and their quantized energies
// 2*log2(gamma) in Q10, which feed the MA predictor.
var (
	gamma6 = [8]int16{512, 761, 1131, 1680, 2497, 3710, 5513, 8192}
	ener6  = [8]int16{-4096, -2925, -1754, -585, 586, 1756, 2926, 4096}

	gamma7 = [16]int16{369, 464, 583, 733, 922, 1159, 1458, 1834, 2306, 2900, 3647, 4586, 5767, 7252, 9120, 11469}
	ener7  = [16]int16{-5064, -4387, -3712, -3036, -2358, -1682, -1004, -326, 351, 1028, 1705, 2382, 3059, 3736, 4413, 5090}
)

type table struct {
	gamma []int16
	ener  []int16
}

var (
	table6 = table{gamma6[:], ener6[:]}
	table7 = table{gamma7[:], ener7[:]}
)

func tableFor(bits int) *table {
	if bits == 6 {
		return &table6
	}
	return &table7
}

func (t *table) size() int { return len(gpLevels) * len(t.gamma) }

func (t *table) entry(index int) (gp, gamma, ener int16) {
	g := index % len(t.gamma)
	return gpLevels[index/len(t.gamma)], t.gamma[g], t.ener[g]
}

// Concealment attenuation in Q15, indexed by the erasure state 0..6.
var (
	pdownUnusable = [7]int16{32767, 31130, 29491, 24576, 7537, 1638, 328}
	pdownUsable   = [7]int16{32767, 32113, 31457, 24576, 7537, 1638, 328}
	cdownUnusable = [7]int16{32767, 16384, 8192, 8192, 8192, 4915, 3277}
	cdownUsable   = [7]int16{32767, 32113, 32113, 32113, 32113, 32113, 22938}
)
