package kinematics

import (
	"github.com/pkg/errors"

	"github.com/robotcell/cellsim/spatialmath"
)

var (
	// ErrNotConfigured is returned when a model is asked to compute or size links before it has lengths.
	ErrNotConfigured = errors.New("model has no link lengths configured")
	// ErrNotConnected is returned by operations that need the link nodes before Connect.
	ErrNotConnected = errors.New("model is not connected to a scene")
)

// CheckTarget returns an error when the pose or the origin of an inverse kinematics request has a
// NaN or infinite component. Such a request has no defined solution.
func CheckTarget(pointer spatialmath.Pose, origin spatialmath.Origin) error {
	if !pointer.IsFinite() {
		return errors.Errorf("target pose is not finite: %s", pointer)
	}
	if !origin.IsFinite() {
		return errors.New("robot origin is not finite")
	}
	return nil
}

// NewNodeMissingError is returned when a scene lacks a node a model needs.
func NewNodeMissingError(name string) error {
	return errors.Errorf("scene node %q is missing", name)
}
