package kinematics

import (
	"github.com/robotcell/cellsim/referenceframe"
)

// Status classifies an inverse kinematics result.
type Status int

const (
	// Reachable means the inputs realize the requested pose.
	Reachable Status = iota
	// Unreachable means the pose is outside the workspace. The inputs are the nearest defined answer
	// (a clamped elbow for an arm, saturated slides for a gantry).
	Unreachable
	// Singular means the pose is reachable but the wrist is at a singularity, so one axis is arbitrary.
	Singular
)

func (s Status) String() string {
	switch s {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case Singular:
		return "singular"
	default:
		return "unknown"
	}
}

// Solution is the result of InverseKinematics. Inputs are always populated and finite: requests
// with a non-finite pose or origin are rejected with an error instead.
type Solution struct {
	Inputs []referenceframe.Input
	Status Status
}

// Degenerate reports whether the solution is anything other than a nominal reachable one.
func (s Solution) Degenerate() bool {
	return s.Status != Reachable
}
