package fixed

// log2(1+i/32) in Q15.
var tabLog2 = [...]int16{
	0, 1455, 2866, 4236, 5568, 6863, 8124, 9352, 10549, 11716, 12855,
	13968, 15055, 16117, 17156, 18173, 19168, 20143, 21098, 22034, 22952, 23852,
	24736, 25604, 26455, 27292, 28114, 28922, 29717, 30498, 31267, 32024, 32767,
}

// 2^(i/32) in Q14.
var tabPow2 = [...]int16{
	16384, 16743, 17109, 17484, 17867, 18258, 18658, 19066, 19484, 19911, 20347,
	20792, 21247, 21713, 22188, 22674, 23170, 23678, 24196, 24726, 25268, 25821,
	26386, 26964, 27554, 28158, 28774, 29405, 30048, 30706, 31379, 32066, 32767,
}

// Log2 returns log2(x) for x > 0 as an integer exponent and a Q15 fraction.
// For x <= 0 it returns (0, 0).
func Log2(x int32) (exponent int16, fraction int16) {
	if x <= 0 {
		return 0, 0
	}
	n := NormL(x)
	return log2Norm(x<<n, n)
}

func log2Norm(x int32, n int) (int16, int16) {
	exponent := int16(30 - n)
	x >>= 9
	i := int(extractH(x)) // 32..63
	x >>= 1
	a := int16(extractL(x) & 0x7fff)
	i -= 32
	y := depositH(tabLog2[i])
	tmp := tabLog2[i] - tabLog2[i+1]
	y = lMsu(y, tmp, a)
	return exponent, extractH(y)
}

// pow2 returns 2^(exponent + fraction/32768) for 0 <= exponent <= 30.
func pow2(exponent int16, fraction int16) int32 {
	if exponent > 30 {
		return MaxInt32
	}
	if exponent < 0 {
		return 0
	}
	x := lMult(fraction, 32)
	i := int(extractH(x))
	x >>= 1
	a := int16(extractL(x) & 0x7fff)
	x = depositH(tabPow2[i])
	tmp := tabPow2[i] - tabPow2[i+1]
	x = lMsu(x, tmp, a)
	return lShrR(x, int(30-exponent))
}

// Pow2Q returns 2^(q/2^qbits) given a signed log2 value q in Q(qbits),
// clamped to the int32 range.
func Pow2Q(q int32, qbits uint) int32 {
	e := q >> qbits
	frac := (q - e<<qbits) << (15 - qbits)
	if e > 30 {
		return MaxInt32
	}
	if e < 0 {
		return 0
	}
	return pow2(int16(e), int16(frac))
}

// Sqrt64 returns floor(sqrt(x)) for x >= 0 using only integer arithmetic.
func Sqrt64(x int64) int64 {
	if x <= 0 {
		return 0
	}
	var r int64
	bit := int64(1) << 62
	for bit > x {
		bit >>= 2
	}
	for bit != 0 {
		if x >= r+bit {
			x -= r + bit
			r = (r >> 1) + bit
		} else {
			r >>= 1
		}
		bit >>= 2
	}
	return r
}

// Median returns the median of an odd-length slice without modifying it.
func Median(x []int16) int16 {
	var buf [9]int16
	n := copy(buf[:], x)
	s := buf[:n]
	for i := 1; i < n; i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	return s[n/2]
}

// MedianL is Median for 32-bit values.
func MedianL(x []int32) int32 {
	var buf [9]int32
	n := copy(buf[:], x)
	s := buf[:n]
	for i := 1; i < n; i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	return s[n/2]
}
