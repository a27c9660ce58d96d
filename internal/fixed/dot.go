package fixed

// Dot returns the exact inner product of x and y[:len(x)].
// The 64-bit accumulator never saturates for codec-sized vectors, so the
// result does not depend on the summation order of the selected kernel.
func Dot(x, y []int16) int64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	_ = y[n-1]
	return dotImpl(x, y[:n])
}

// Energy returns the exact sum of squares of x.
func Energy(x []int16) int64 {
	return Dot(x, x)
}

var dotImpl = dotGeneric

func dotGeneric(x, y []int16) int64 {
	var acc int64
	for i := range x {
		acc += int64(x[i]) * int64(y[i])
	}
	return acc
}
