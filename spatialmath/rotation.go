package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// RotationZYX returns Rz(rz)·Ry(ry)·Rx(rx). All angles are radians.
func RotationZYX(rx, ry, rz float64) mgl64.Mat3 {
	return mgl64.Rotate3DZ(rz).Mul3(mgl64.Rotate3DY(ry)).Mul3(mgl64.Rotate3DX(rx))
}

// EulerZYX decomposes a rotation matrix built as Rz·Ry·Rx back into its three angles in radians.
// Pitch is returned in [-pi/2, pi/2]. At pitch = ±pi/2 the roll is folded into yaw.
func EulerZYX(m mgl64.Mat3) (rx, ry, rz float64) {
	sy := -m.At(2, 0)
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	ry = math.Asin(sy)
	if math.Abs(sy) > 1-1e-12 {
		// gimbal lock
		return 0, ry, math.Atan2(-m.At(0, 1), m.At(1, 1))
	}
	rx = math.Atan2(m.At(2, 1), m.At(2, 2))
	rz = math.Atan2(m.At(1, 0), m.At(0, 0))
	return rx, ry, rz
}

// Vec3ToR3 converts an mgl64.Vec3 into an r3.Vector.
func Vec3ToR3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}
