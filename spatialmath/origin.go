package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Origin is the placement of a robot base within the workspace, plus the workspace box
// the robot is allowed to reach. SpaceScale is in mm; a zero component means unbounded.
type Origin struct {
	Location   r3.Vector
	Rotation   r3.Vector
	SpaceScale r3.Vector
}

// NewZeroOrigin returns a robot placed at the workspace origin with no bounding box.
func NewZeroOrigin() Origin {
	return Origin{}
}

// IsFinite reports whether every component of the origin is a real number.
func (o Origin) IsFinite() bool {
	return vectorsFinite(o.Location, o.Rotation, o.SpaceScale)
}

// Compose combines a requested pose with the robot origin by per-axis addition of locations and rotations.
// This is not a full rigid transform composition: origin rotation only ever places the cell, and the
// solvers are derived against this summed convention.
func Compose(p Pose, o Origin) Pose {
	return Pose{
		Location: p.Location.Add(o.Location),
		Rotation: p.Rotation.Add(o.Rotation),
	}
}

// Decompose undoes Compose, returning the requested pose that yields the effective pose p.
func Decompose(p Pose, o Origin) Pose {
	return Pose{
		Location: p.Location.Sub(o.Location),
		Rotation: p.Rotation.Sub(o.Rotation),
	}
}
