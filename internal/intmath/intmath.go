// Package intmath holds the small amount of number theory needed to align
// two weekly sequences with different periods.
package intmath

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// GCD returns the greatest common divisor of |a| and |b|. GCD(0, 0) is 0.
func GCD(a, b int) int {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns |a*b| / GCD(a, b). It panics when both operands are 0.
func LCM(a, b int) int {
	g := GCD(a, b)
	if g == 0 {
		panic("intmath: LCM(0, 0) is undefined")
	}
	return abs(a/g*b)
}

// ExtendedGCD returns g = GCD(a, b) together with Bézout coefficients u and
// v such that a*u + b*v = g. The result g is never negative.
func ExtendedGCD(a, b int) (g, u, v int) {
	oldR, r := a, b
	oldS, s := 1, 0
	oldT, t := 0, 1
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
		oldT, t = t, oldT-q*t
	}
	if oldR < 0 {
		return -oldR, -oldS, -oldT
	}
	return oldR, oldS, oldT
}

// FloorDiv divides rounding toward negative infinity. b must be non-zero.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// CeilDiv divides rounding toward positive infinity. b must be non-zero.
func CeilDiv(a, b int) int {
	return -FloorDiv(-a, b)
}

// Mod returns a modulo |b| in the range [0, |b|).
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += abs(b)
	}
	return m
}
