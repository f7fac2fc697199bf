// Package adder provides 32-bit signed integer addition with two's-complement
// wraparound.
package adder

// Add returns the sum of a and b. Results outside the int32 range wrap
// modulo 2^32, so Add(math.MaxInt32, 1) is math.MinInt32.
func Add(a, b int32) int32 {
	return a + b
}

// AddChecked returns the same sum as Add and reports whether it wrapped.
func AddChecked(a, b int32) (sum int32, overflowed bool) {
	sum = a + b
	// Wraparound is only possible when both operands share a sign and the
	// result does not.
	overflowed = (a >= 0) == (b >= 0) && (sum >= 0) != (a >= 0)
	return sum, overflowed
}

// Result records one evaluated addition.
type Result struct {
	A        int32 `json:"a"`
	B        int32 `json:"b"`
	Sum      int32 `json:"sum"`
	Overflow bool  `json:"overflow"`
}

// Eval adds a and b and keeps the operands alongside the sum.
func Eval(a, b int32) Result {
	sum, overflowed := AddChecked(a, b)
	return Result{A: a, B: b, Sum: sum, Overflow: overflowed}
}
