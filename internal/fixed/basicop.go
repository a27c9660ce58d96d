// Package fixed provides the saturating fixed-point arithmetic shared by every
// codec stage. All operations are bit-exact and platform independent.
//
// 16-bit values are int16 in Qn format chosen by the caller; 32-bit values are
// int32. Every operation saturates instead of wrapping.
package fixed

const (
	MaxInt16 = 32767
	MinInt16 = -32768
	MaxInt32 = 0x7fffffff
	MinInt32 = -0x80000000
)

// Sat16 saturates a 32-bit value to the 16-bit range.
func Sat16(x int32) int16 {
	if x > MaxInt16 {
		return MaxInt16
	}
	if x < MinInt16 {
		return MinInt16
	}
	return int16(x)
}

// Sat16L saturates a 64-bit value to the 16-bit range.
func Sat16L(x int64) int16 {
	if x > MaxInt16 {
		return MaxInt16
	}
	if x < MinInt16 {
		return MinInt16
	}
	return int16(x)
}

// Sat32 saturates a 64-bit value to the 32-bit range.
func Sat32(x int64) int32 {
	if x > MaxInt32 {
		return MaxInt32
	}
	if x < MinInt32 {
		return MinInt32
	}
	return int32(x)
}

// Add returns a+b saturated.
func Add(a, b int16) int16 { return Sat16(int32(a) + int32(b)) }

// Sub returns a-b saturated.
func Sub(a, b int16) int16 { return Sat16(int32(a) - int32(b)) }

// Abs returns |a| saturated.
func Abs(a int16) int16 {
	if a == MinInt16 {
		return MaxInt16
	}
	if a < 0 {
		return -a
	}
	return a
}

// Mult returns (a*b)>>15 saturated (Q15 product).
func Mult(a, b int16) int16 {
	return Sat16((int32(a) * int32(b)) >> 15)
}

// MultR returns the rounded Q15 product of a and b.
func MultR(a, b int16) int16 {
	return Sat16((int32(a)*int32(b) + 0x4000) >> 15)
}

// Shl shifts a left by n with saturation. Negative n shifts right.
func Shl(a int16, n int) int16 {
	if n < 0 {
		return shr(a, -n)
	}
	if n > 15 {
		n = 15
	}
	return Sat16(int32(a) << n)
}

// shr shifts a right arithmetically by n. Negative n shifts left.
func shr(a int16, n int) int16 {
	if n < 0 {
		return Shl(a, -n)
	}
	if n > 15 {
		n = 15
	}
	return a >> n
}

// ShrR shifts a right by n with rounding.
func ShrR(a int16, n int) int16 {
	if n <= 0 {
		return Shl(a, -n)
	}
	if n > 15 {
		return 0
	}
	return Sat16((int32(a) + (1 << (n - 1))) >> n)
}

// lMult returns 2*a*b saturated (Q31 product of two Q15 values).
func lMult(a, b int16) int32 {
	return Sat32(int64(a) * int64(b) * 2)
}

// LAdd returns a+b saturated.
func LAdd(a, b int32) int32 { return Sat32(int64(a) + int64(b)) }

// LSub returns a-b saturated.
func LSub(a, b int32) int32 { return Sat32(int64(a) - int64(b)) }

// lMac returns acc + 2*a*b saturated.
func lMac(acc int32, a, b int16) int32 {
	return Sat32(int64(acc) + int64(a)*int64(b)*2)
}

// lMsu returns acc - 2*a*b saturated.
func lMsu(acc int32, a, b int16) int32 {
	return Sat32(int64(acc) - int64(a)*int64(b)*2)
}

// LAbs returns |x| saturated.
func LAbs(x int32) int32 {
	if x == MinInt32 {
		return MaxInt32
	}
	if x < 0 {
		return -x
	}
	return x
}

// LShl shifts x left by n with saturation. Negative n shifts right.
func LShl(x int32, n int) int32 {
	if n < 0 {
		return LShr(x, -n)
	}
	if n > 31 {
		n = 31
	}
	return Sat32(int64(x) << n)
}

// LShr shifts x right arithmetically by n. Negative n shifts left.
func LShr(x int32, n int) int32 {
	if n < 0 {
		return LShl(x, -n)
	}
	if n > 31 {
		n = 31
	}
	return x >> n
}

// lShrR shifts x right by n with rounding.
func lShrR(x int32, n int) int32 {
	if n <= 0 {
		return LShl(x, -n)
	}
	if n > 31 {
		return 0
	}
	return Sat32((int64(x) + (1 << (n - 1))) >> n)
}

// extractH returns the upper 16 bits of x.
func extractH(x int32) int16 { return int16(x >> 16) }

// extractL returns the lower 16 bits of x.
func extractL(x int32) int16 { return int16(x) }

// Round returns the upper 16 bits of x after rounding.
func Round(x int32) int16 {
	return extractH(LAdd(x, 0x8000))
}

// depositH places a in the upper 16 bits.
func depositH(a int16) int32 { return int32(a) << 16 }

// NormL returns the left shift needed to normalize a 32-bit value.
func NormL(x int32) int {
	if x == 0 {
		return 0
	}
	if x == -1 {
		return 31
	}
	if x < 0 {
		x = ^x
	}
	n := 0
	for x < 0x40000000 {
		x <<= 1
		n++
	}
	return n
}

// divS returns num/den in Q15 for 0 <= num <= den.
func divS(num, den int16) int16 {
	if num <= 0 || den <= 0 {
		return 0
	}
	if num >= den {
		return MaxInt16
	}
	return int16((int32(num) << 15) / int32(den))
}
