package fixed

// DPF is a 32-bit value held as a double-precision pair of 16-bit halves,
// value = Hi<<16 + Lo<<1. Products between DPF values keep 31 significant
// bits without needing 64-bit intermediates at the call sites.
type DPF struct {
	Hi int16
	Lo int16
}

// Extract splits x into a DPF.
func Extract(x int32) DPF {
	hi := int16(x >> 16)
	lo := int16((x - int32(hi)<<16) >> 1)
	return DPF{Hi: hi, Lo: lo}
}

// L returns the 32-bit value of d.
func (d DPF) L() int32 {
	return int32(d.Hi)<<16 + int32(d.Lo)<<1
}

// Mul returns the Q31 product of two DPF values.
func (d DPF) Mul(e DPF) int32 {
	acc := lMult(d.Hi, e.Hi)
	acc = lMac(acc, Mult(d.Hi, e.Lo), 1)
	acc = lMac(acc, Mult(d.Lo, e.Hi), 1)
	return acc
}

// mul16 returns the Q31 product of d with a Q15 value.
func (d DPF) mul16(n int16) int32 {
	acc := lMult(d.Hi, n)
	return lMac(acc, Mult(d.Lo, n), 1)
}

// Div32 returns num/den in Q31 for 0 < num < den.
// It refines a 16-bit reciprocal of den with one Newton step.
func Div32(num int32, den DPF) int32 {
	if num <= 0 || den.Hi <= 0 {
		return 0
	}
	approx := divS(0x3fff, den.Hi) // 1/den in Q14
	t := Extract(den.mul16(approx))
	t = Extract(LSub(MaxInt32, t.L()))
	t = Extract(t.mul16(approx))
	n := Extract(num)
	r := n.Mul(t)
	return LShl(r, 2)
}
