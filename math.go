package benchviz

import "math"

// Shared scalar helpers for the bench geometry.

// Clamp x between a and b, assume a <= b.
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

const minNormal = 2.2250738585072014e-308 // 2**-1022

// EqualFloat64 compares two float64 values for equality within epsilon.
// See: http://floating-point-gui.de/errors/NearlyEqualsTest.java
func EqualFloat64(a, b, epsilon float64) bool {
	if a == b {
		return true
	}
	absA := math.Abs(a)
	absB := math.Abs(b)
	diff := math.Abs(a - b)
	if a == 0 || b == 0 || diff < minNormal {
		// relative error is less meaningful near zero
		return diff < (epsilon * minNormal)
	}
	return diff/math.Min((absA+absB), math.MaxFloat64) < epsilon
}
