package acelp

// Pulse is one signed unit pulse at a track-relative position.
type Pulse struct {
	Pos int
	Neg bool
}

func mask(n uint) int { return 1<<n - 1 }

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// quant1 codes one pulse with n position bits in n+1 bits.
func quant1(p Pulse, n uint) int {
	return p.Pos&mask(n) | b2i(p.Neg)<<n
}

func dec1(index int, n uint, off int, out []Pulse) {
	out[0] = Pulse{Pos: index&mask(n) + off, Neg: (index>>n)&1 == 1}
}

// quant2 codes two pulses in 2n+1 bits. Only one sign is sent: the order
// of the two positions tells whether the second sign is equal or opposite.
func quant2(p1, p2 Pulse, n uint) int {
	m := mask(n)
	a, b := p1.Pos&m, p2.Pos&m
	var index int
	if p1.Neg == p2.Neg {
		if a <= b {
			index = a<<n + b
		} else {
			index = b<<n + a
		}
		return index | b2i(p1.Neg)<<(2*n)
	}
	if a <= b {
		return (b<<n + a) | b2i(p2.Neg)<<(2*n)
	}
	return (a<<n + b) | b2i(p1.Neg)<<(2*n)
}

func dec2(index int, n uint, off int, out []Pulse) {
	m := mask(n)
	a := (index >> n) & m
	b := index & m
	neg := (index>>(2*n))&1 == 1
	out[0] = Pulse{Pos: a + off, Neg: neg}
	if a <= b {
		out[1] = Pulse{Pos: b + off, Neg: neg}
	} else {
		out[1] = Pulse{Pos: b + off, Neg: !neg}
	}
}

func sameHalf(p, q Pulse, half int) bool {
	return (p.Pos^q.Pos)&half == 0
}

// quant3 codes three pulses in 3n+1 bits: two pulses sharing a half of the
// track with n-1 bits each, plus the half flag, plus the third pulse.
func quant3(p1, p2, p3 Pulse, n uint) int {
	half := 1 << (n - 1)
	a, b, c := p1, p2, p3
	switch {
	case sameHalf(p1, p2, half):
	case sameHalf(p1, p3, half):
		b, c = p3, p2
	default:
		a, b, c = p2, p3, p1
	}
	index := quant2(a, b, n-1)
	index += (a.Pos & half) << n
	index += quant1(c, n) << (2 * n)
	return index
}

func dec3(index int, n uint, off int, out []Pulse) {
	j := off
	if (index>>(2*n-1))&1 == 1 {
		j += 1 << (n - 1)
	}
	dec2(index&mask(2*n-1), n-1, j, out)
	dec1((index>>(2*n))&mask(n+1), n, off, out[2:])
}

// quant4x1 codes four pulses in 4n+1 bits.
func quant4x1(p1, p2, p3, p4 Pulse, n uint) int {
	half := 1 << (n - 1)
	a, b, c, d := p1, p2, p3, p4
	switch {
	case sameHalf(p1, p2, half):
	case sameHalf(p1, p3, half):
		b, c = p3, p2
	default:
		a, b, c = p2, p3, p1
	}
	index := quant2(a, b, n-1)
	index += (a.Pos & half) << n
	index += quant2(c, d, n) << (2 * n)
	return index
}

func dec4x1(index int, n uint, off int, out []Pulse) {
	j := off
	if (index>>(2*n-1))&1 == 1 {
		j += 1 << (n - 1)
	}
	dec2(index&mask(2*n-1), n-1, j, out)
	dec2((index>>(2*n))&mask(2*n+1), n, off, out[2:])
}

// splitHalves separates pulses by the half of the n-bit track they fall in.
func splitHalves(p []Pulse, n uint, lo, hi []Pulse) ([]Pulse, []Pulse) {
	half := 1 << (n - 1)
	lo, hi = lo[:0], hi[:0]
	for _, q := range p {
		if q.Pos&half == 0 {
			lo = append(lo, q)
		} else {
			hi = append(hi, q)
		}
	}
	return lo, hi
}

// quant4 codes four pulses in 4n bits. The two top bits carry the number of
// pulses in the lower half (modulo 4).
func quant4(p []Pulse, n uint) int {
	var bufA, bufB [4]Pulse
	a, b := splitHalves(p[:4], n, bufA[:], bufB[:])
	n1 := n - 1
	var index int
	switch len(a) {
	case 0:
		index = 1 << (4*n - 3)
		index += quant4x1(b[0], b[1], b[2], b[3], n1)
	case 1:
		index = quant1(a[0], n1) << (3*n1 + 1)
		index += quant3(b[0], b[1], b[2], n1)
	case 2:
		index = quant2(a[0], a[1], n1) << (2*n1 + 1)
		index += quant2(b[0], b[1], n1)
	case 3:
		index = quant3(a[0], a[1], a[2], n1) << n
		index += quant1(b[0], n1)
	case 4:
		index = quant4x1(a[0], a[1], a[2], a[3], n1)
	}
	return index + (len(a)&3)<<(4*n-2)
}

func dec4(index int, n uint, off int, out []Pulse) {
	n1 := n - 1
	j := off + 1<<n1
	switch (index >> (4*n - 2)) & 3 {
	case 0:
		if (index>>(4*n-3))&1 == 0 {
			dec4x1(index, n1, off, out)
		} else {
			dec4x1(index, n1, j, out)
		}
	case 1:
		dec1(index>>(3*n1+1), n1, off, out)
		dec3(index, n1, j, out[1:])
	case 2:
		dec2(index>>(2*n1+1), n1, off, out)
		dec2(index, n1, j, out[2:])
	case 3:
		dec3(index>>n, n1, off, out)
		dec1(index, n1, j, out[3:])
	}
}

// quant5 codes five pulses in 5n bits: three pulses sharing a half, a flag
// naming that half, and the remaining two pulses over the whole track.
func quant5(p []Pulse, n uint) int {
	var bufA, bufB [5]Pulse
	a, b := splitHalves(p[:5], n, bufA[:], bufB[:])
	n1 := n - 1
	var index int
	switch len(a) {
	case 0:
		index = 1<<(5*n-1) + quant3(b[0], b[1], b[2], n1)<<(2*n+1)
		index += quant2(b[3], b[4], n)
	case 1:
		index = 1<<(5*n-1) + quant3(b[0], b[1], b[2], n1)<<(2*n+1)
		index += quant2(b[3], a[0], n)
	case 2:
		index = 1<<(5*n-1) + quant3(b[0], b[1], b[2], n1)<<(2*n+1)
		index += quant2(a[0], a[1], n)
	case 3:
		index = quant3(a[0], a[1], a[2], n1) << (2*n + 1)
		index += quant2(b[0], b[1], n)
	case 4:
		index = quant3(a[0], a[1], a[2], n1) << (2*n + 1)
		index += quant2(a[3], b[0], n)
	case 5:
		index = quant3(a[0], a[1], a[2], n1) << (2*n + 1)
		index += quant2(a[3], a[4], n)
	}
	return index
}

func dec5(index int, n uint, off int, out []Pulse) {
	n1 := n - 1
	j := off
	if (index>>(5*n-1))&1 == 1 {
		j += 1 << n1
	}
	dec3(index>>(2*n+1), n1, j, out)
	dec2(index, n, off, out[3:])
}

// quant6 codes six pulses in 6n-2 bits.
func quant6(p []Pulse, n uint) int {
	var bufA, bufB [6]Pulse
	a, b := splitHalves(p[:6], n, bufA[:], bufB[:])
	n1 := n - 1
	var index, count int
	switch len(a) {
	case 0:
		index = 1<<(6*n-5) + quant5(b[:5], n1)<<n
		index += quant1(b[5], n1)
	case 1:
		count = 1
		index = 1<<(6*n-5) + quant5(b[:5], n1)<<n
		index += quant1(a[0], n1)
	case 2:
		count = 2
		index = 1<<(6*n-5) + quant4(b[:4], n1)<<(2*n1+1)
		index += quant2(a[0], a[1], n1)
	case 3:
		count = 3
		index = quant3(a[0], a[1], a[2], n1) << (3*n1 + 1)
		index += quant3(b[0], b[1], b[2], n1)
	case 4:
		count = 2
		index = quant4(a[:4], n1) << (2*n1 + 1)
		index += quant2(b[0], b[1], n1)
	case 5:
		count = 1
		index = quant5(a[:5], n1) << n
		index += quant1(b[0], n1)
	case 6:
		index = quant5(a[:5], n1) << n
		index += quant1(a[5], n1)
	}
	return index + count<<(6*n-4)
}

func dec6(index int, n uint, off int, out []Pulse) {
	n1 := n - 1
	j := off + 1<<n1
	big, small := off, j
	if (index>>(6*n-5))&1 == 1 {
		big, small = j, off
	}
	switch (index >> (6*n - 4)) & 3 {
	case 0:
		dec5(index>>n, n1, big, out)
		dec1(index, n1, big, out[5:])
	case 1:
		dec5(index>>n, n1, big, out)
		dec1(index, n1, small, out[5:])
	case 2:
		dec4(index>>(2*n1+1), n1, big, out)
		dec2(index, n1, small, out[4:])
	case 3:
		dec3(index>>(3*n1+1), n1, off, out)
		dec3(index, n1, j, out[3:])
	}
}

// Quantize packs k = len(p) pulses (1..6) of a track with n position bits.
func Quantize(p []Pulse, n uint) int {
	switch len(p) {
	case 1:
		return quant1(p[0], n)
	case 2:
		return quant2(p[0], p[1], n)
	case 3:
		return quant3(p[0], p[1], p[2], n)
	case 4:
		return quant4(p, n)
	case 5:
		return quant5(p, n)
	case 6:
		return quant6(p, n)
	}
	return 0
}

// Dequantize unpacks len(out) pulses (1..6) of a track with n position bits.
func Dequantize(index int, n uint, out []Pulse) {
	switch len(out) {
	case 1:
		dec1(index, n, 0, out)
	case 2:
		dec2(index, n, 0, out)
	case 3:
		dec3(index, n, 0, out)
	case 4:
		dec4(index, n, 0, out)
	case 5:
		dec5(index, n, 0, out)
	case 6:
		dec6(index, n, 0, out)
	}
}

// IndexBits returns the width of the index of k pulses with n position bits.
func IndexBits(k int, n uint) int {
	switch k {
	case 1:
		return int(n) + 1
	case 2:
		return 2*int(n) + 1
	case 3:
		return 3*int(n) + 1
	case 4:
		return 4 * int(n)
	case 5:
		return 5 * int(n)
	case 6:
		return 6*int(n) - 2
	}
	return 0
}
