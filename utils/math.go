package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// RadsToDegs converts each value of a slice from radians to degrees.
func RadsToDegs(radians []float64) []float64 {
	out := make([]float64, len(radians))
	for i, r := range radians {
		out[i] = RadToDeg(r)
	}
	return out
}

// AngleDiffDeg returns the closest difference from the two given
// angles, in degrees. The arguments are commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	d := math.Mod(math.Abs(a1-a2), 360)
	return math.Min(d, 360-d)
}

// WrapAngle maps an angle in radians onto (-pi, pi].
func WrapAngle(rad float64) float64 {
	wrapped := math.Mod(rad, 2*math.Pi)
	if wrapped == 0 {
		// drop the sign of a negative zero
		return 0
	} else if wrapped <= -math.Pi {
		wrapped += 2 * math.Pi
	} else if wrapped > math.Pi {
		wrapped -= 2 * math.Pi
	}
	return wrapped
}

// Clamp bounds v to [lo, hi]. The second return is true when v was outside the range.
func Clamp(v, lo, hi float64) (float64, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// Square is the faster form of math.Pow(x, 2).
func Square(n float64) float64 {
	return n * n
}
