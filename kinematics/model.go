// Package kinematics defines the contract every robot topology of the cell implements, along with the
// length/node bookkeeping the topologies share.
//
// A Model is created for one robot instance and is never shared between instances. Its link lengths and
// node handles change only at Connect and at explicit geometry edits; InverseKinematics and Transform are
// pure functions of their arguments and the current lengths.
package kinematics

import (
	"github.com/robotcell/cellsim/referenceframe"
	"github.com/robotcell/cellsim/scene"
	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/stats"
)

// Model is a kinematic topology bound to one robot instance.
type Model interface {
	Topology() Topology
	// RequiredLengthCount is the number of working link lengths. A single trailing base height entry may
	// follow them.
	RequiredLengthCount() int
	// DoF returns one limit per actuated axis.
	DoF() []referenceframe.Limit

	// Connect resolves the link nodes under root. When no lengths are configured yet they are derived from
	// the node offsets; configured lengths are never overwritten.
	Connect(root scene.Node) error
	Disconnect()
	Connected() bool
	ConfigState() ConfigState
	Lengths() []float64
	// SetLengths is an explicit geometry edit. A connected model re-runs UpdateLinkGeometry.
	SetLengths(lengths []float64) error

	// InverseKinematics computes actuator values (radians for revolute axes, mm for prismatic ones) that
	// put the tool at pointer, given in workspace coordinates, for a robot placed at origin.
	InverseKinematics(pointer spatialmath.Pose, origin spatialmath.Origin) (Solution, error)
	// Transform is the forward kinematics: the workspace tool pose produced by inputs.
	Transform(inputs []referenceframe.Input, origin spatialmath.Origin) (spatialmath.Pose, error)

	// UpdateLinkPlacement writes the actuator values onto the link nodes.
	UpdateLinkPlacement(inputs []referenceframe.Input) error
	// UpdateLinkGeometry resizes and repositions link visuals to the configured lengths.
	UpdateLinkGeometry() error

	// Statistics returns the samples for the last placed configuration, tagged with index.
	Statistics(index int, origin spatialmath.Origin) []stats.Sample
	// State summarizes the model for status displays.
	State() []stats.StateItem
}

// Constructor builds a Model of one topology. lengths may be empty, leaving the model Unconfigured
// until Connect derives them.
type Constructor func(lengths []float64, logger Logger) (Model, error)

// Series and channel names reported by Statistics.
const (
	SeriesJoints       = "joints"
	SeriesToolLocation = "tool_location"
	SeriesToolRotation = "tool_rotation"
)

// LocationChannels and RotationChannels name the channels of the tool series, in order.
var (
	LocationChannels = []string{"X", "Y", "Z"}
	RotationChannels = []string{"R", "P", "W"}
)

// ToolSamples returns the tool location and rotation samples of a workspace pose.
func ToolSamples(index int, pose spatialmath.Pose) []stats.Sample {
	v := pose.Slice()
	samples := make([]stats.Sample, 0, len(v))
	for i, ch := range LocationChannels {
		samples = append(samples, stats.Sample{Series: SeriesToolLocation, Channel: ch, Index: index, Value: v[i]})
	}
	for i, ch := range RotationChannels {
		samples = append(samples, stats.Sample{Series: SeriesToolRotation, Channel: ch, Index: index, Value: v[i+3]})
	}
	return samples
}
