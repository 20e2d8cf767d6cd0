package kinematics

import (
	"github.com/pkg/errors"
)

// Topology selects the kinematic arrangement of a robot. Its string form is what robot descriptions persist.
type Topology string

const (
	// SixAxis is an articulated arm with six revolute joints and a spherical wrist.
	SixAxis Topology = "6DOF"
	// Portal is a Cartesian gantry with three orthogonal slides.
	Portal Topology = "Portal"
)

// ParseTopology maps a persisted topology name onto a Topology.
func ParseTopology(name string) (Topology, error) {
	switch t := Topology(name); t {
	case SixAxis, Portal:
		return t, nil
	default:
		return "", errors.Errorf("unknown topology %q, supported topologies are %q and %q", name, SixAxis, Portal)
	}
}

func (t Topology) String() string {
	return string(t)
}
