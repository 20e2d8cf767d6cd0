// Package spatialmath holds the pose and frame helpers shared by every kinematic topology.
//
// Locations are in millimeters and rotations in degrees on every exported surface.
// Rotations are stored as (R, P, W) in the X, Y and Z components of an r3.Vector.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/robotcell/cellsim/utils"
)

// Pose is a tool pose: a location in mm and a rotation in degrees.
type Pose struct {
	Location r3.Vector
	Rotation r3.Vector
}

// NewPose builds a pose from its six components.
func NewPose(x, y, z, r, p, w float64) Pose {
	return Pose{
		Location: r3.Vector{X: x, Y: y, Z: z},
		Rotation: r3.Vector{X: r, Y: p, Z: w},
	}
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return Pose{}
}

// NewPoseFromSlice builds a pose from a slice of six values ordered x, y, z, r, p, w.
func NewPoseFromSlice(v []float64) (Pose, error) {
	if len(v) != 6 {
		return Pose{}, errors.Errorf("pose needs 6 values, got %d", len(v))
	}
	p := NewPose(v[0], v[1], v[2], v[3], v[4], v[5])
	if !p.IsFinite() {
		return Pose{}, errors.Errorf("pose values must be finite, got %v", v)
	}
	return p, nil
}

// Slice returns the pose as x, y, z, r, p, w.
func (p Pose) Slice() []float64 {
	return []float64{p.Location.X, p.Location.Y, p.Location.Z, p.Rotation.X, p.Rotation.Y, p.Rotation.Z}
}

// IsFinite reports whether every component of the pose is a real number.
func (p Pose) IsFinite() bool {
	return vectorsFinite(p.Location, p.Rotation)
}

func vectorsFinite(vs ...r3.Vector) bool {
	for _, v := range vs {
		for _, c := range []float64{v.X, v.Y, v.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return true
}

func (p Pose) String() string {
	return fmt.Sprintf("location: (%.3f, %.3f, %.3f) rotation: (%.3f, %.3f, %.3f)",
		p.Location.X, p.Location.Y, p.Location.Z, p.Rotation.X, p.Rotation.Y, p.Rotation.Z)
}

// PoseAlmostEqual reports whether both the locations and the rotations of two poses are within epsilon
// of each other, component-wise. Rotations are compared in degrees modulo a full turn.
func PoseAlmostEqual(a, b Pose, epsilon float64) bool {
	if !R3VectorAlmostEqual(a.Location, b.Location, epsilon) {
		return false
	}
	return utils.AngleDiffDeg(a.Rotation.X, b.Rotation.X) < epsilon &&
		utils.AngleDiffDeg(a.Rotation.Y, b.Rotation.Y) < epsilon &&
		utils.AngleDiffDeg(a.Rotation.Z, b.Rotation.Z) < epsilon
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if all elements are within epsilon of each other.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, epsilon) &&
		utils.Float64AlmostEqual(a.Y, b.Y, epsilon) &&
		utils.Float64AlmostEqual(a.Z, b.Z, epsilon)
}

// Interpolate returns the pose that is the given fraction between from and to, linearly on every component.
// A fraction of 0 returns from and a fraction of 1 returns to.
func Interpolate(from, to Pose, by float64) Pose {
	return Pose{
		Location: from.Location.Add(to.Location.Sub(from.Location).Mul(by)),
		Rotation: from.Rotation.Add(to.Rotation.Sub(from.Rotation).Mul(by)),
	}
}
