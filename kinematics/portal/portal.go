// Package portal implements the kinematics of a Cartesian gantry: three orthogonal slides carrying a
// tool with a fixed orientation. Each axis is solved independently by offsetting and clamping.
//
// Lengths are, in order, frame height, the X, Y and Z shift offsets of the slide zero positions, the
// tool length, the X, Y and Z travel limits and an optional trailing base height.
package portal

import (
	"math"
	"strconv"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/logging"
	"github.com/robotcell/cellsim/referenceframe"
	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/stats"
	"github.com/robotcell/cellsim/utils"
)

const (
	workingLengths = 8
	numAxes        = 3
)

// indexes into the length list
const (
	frameHeight = iota
	shiftX
	shiftY
	shiftZ
	toolLength
	limitX
	limitY
	limitZ
	baseHeight
)

var axisNames = [numAxes]string{"X", "Y", "Z"}

func init() {
	kinematics.Register(kinematics.Portal, func(lengths []float64, logger kinematics.Logger) (kinematics.Model, error) {
		return NewGantry(lengths, logger)
	})
}

func validateLengths(l []float64) error {
	if l[frameHeight] <= 0 {
		return errors.New("frame height must be positive")
	}
	if l[limitX] < 0 || l[limitZ] < 0 {
		return errors.New("axis travel limits must not be negative")
	}
	if l[limitY] < l[shiftY]/2 {
		return errors.Errorf("y travel limit %g is shorter than half the y shift %g", l[limitY], l[shiftY])
	}
	return nil
}

// Gantry is the kinematic model of one portal robot.
type Gantry struct {
	geometry *kinematics.LinkGeometry
	logger   logging.Logger

	mu     sync.Mutex
	placed []referenceframe.Input
}

// NewGantry returns a gantry with the given lengths. Empty lengths leave it Unconfigured until Connect.
func NewGantry(lengths []float64, logger logging.Logger) (*Gantry, error) {
	g, err := kinematics.NewLinkGeometry(workingLengths, lengths, validateLengths)
	if err != nil {
		return nil, err
	}
	return &Gantry{geometry: g, logger: logger}, nil
}

// Topology returns kinematics.Portal.
func (g *Gantry) Topology() kinematics.Topology {
	return kinematics.Portal
}

// RequiredLengthCount returns 8.
func (g *Gantry) RequiredLengthCount() int {
	return g.geometry.Working()
}

func travel(l []float64) []referenceframe.Limit {
	return []referenceframe.Limit{
		{Min: 0, Max: l[limitX]},
		{Min: 0, Max: l[limitY] - l[shiftY]/2},
		{Min: -l[limitZ], Max: 0},
	}
}

// DoF returns the travel range of the X, Y and Z slides. The ranges are unbounded until the gantry is
// configured.
func (g *Gantry) DoF() []referenceframe.Limit {
	lengths, err := g.geometry.Configured()
	if err != nil {
		unbounded := referenceframe.Limit{Min: math.Inf(-1), Max: math.Inf(1)}
		return []referenceframe.Limit{unbounded, unbounded, unbounded}
	}
	return travel(lengths)
}

// Disconnect drops the scene handles.
func (g *Gantry) Disconnect() {
	g.geometry.Disconnect()
}

// Connected reports whether the gantry holds scene handles.
func (g *Gantry) Connected() bool {
	return g.geometry.Connected()
}

// ConfigState reports whether lengths are configured.
func (g *Gantry) ConfigState() kinematics.ConfigState {
	return g.geometry.ConfigState()
}

// Lengths returns a copy of the lengths.
func (g *Gantry) Lengths() []float64 {
	return g.geometry.Lengths()
}

// SetLengths replaces the lengths and, when connected, resizes the frame.
func (g *Gantry) SetLengths(lengths []float64) error {
	if err := g.geometry.SetLengths(lengths); err != nil {
		return err
	}
	if !g.geometry.Connected() {
		return nil
	}
	return g.UpdateLinkGeometry()
}

// InverseKinematics computes the slide offsets reaching pointer with the gantry placed at origin.
// Targets beyond the travel range are clamped to the nearest end stop and reported Unreachable.
func (g *Gantry) InverseKinematics(pointer spatialmath.Pose, origin spatialmath.Origin) (kinematics.Solution, error) {
	lengths, err := g.geometry.Configured()
	if err != nil {
		return kinematics.Solution{}, err
	}
	if err := kinematics.CheckTarget(pointer, origin); err != nil {
		return kinematics.Solution{}, err
	}
	axes, saturated := solve(lengths, pointer, origin)
	status := kinematics.Reachable
	if saturated {
		status = kinematics.Unreachable
		g.logger.Debugw("target clamped to gantry travel", "pointer", pointer.String(), "axes", axes)
	}
	return kinematics.Solution{Inputs: referenceframe.FloatsToInputs(axes), Status: status}, nil
}

// solve returns the clamped slide offsets and whether any of them saturated.
func solve(l []float64, pointer spatialmath.Pose, origin spatialmath.Origin) ([]float64, bool) {
	loc := spatialmath.Compose(pointer, origin).Location
	loc, saturated := boundToSpace(loc, origin.SpaceScale)
	axes := []float64{
		loc.X - l[shiftX],
		loc.Y - l[shiftY],
		loc.Z - l[shiftZ] - (l[frameHeight] - l[toolLength]),
	}
	for i, limit := range travel(l) {
		var out bool
		axes[i], out = limit.Clamp(axes[i])
		saturated = saturated || out
	}
	return axes, saturated
}

// boundToSpace clamps each component of loc to [0, scale] where the scale component is positive.
func boundToSpace(loc, scale r3.Vector) (r3.Vector, bool) {
	bound := func(v, s float64) (float64, bool) {
		if s <= 0 {
			return v, false
		}
		return utils.Clamp(v, 0, s)
	}
	var outX, outY, outZ bool
	loc.X, outX = bound(loc.X, scale.X)
	loc.Y, outY = bound(loc.Y, scale.Y)
	loc.Z, outZ = bound(loc.Z, scale.Z)
	return loc, outX || outY || outZ
}

// Transform returns the tool pose for the given slide offsets. The tool carries the origin rotation.
func (g *Gantry) Transform(inputs []referenceframe.Input, origin spatialmath.Origin) (spatialmath.Pose, error) {
	if err := kinematics.CheckInputs(inputs, numAxes); err != nil {
		return spatialmath.Pose{}, err
	}
	l, err := g.geometry.Configured()
	if err != nil {
		return spatialmath.Pose{}, err
	}
	eff := r3.Vector{
		X: inputs[0].Value + l[shiftX],
		Y: inputs[1].Value + l[shiftY],
		Z: inputs[2].Value + l[shiftZ] + l[frameHeight] - l[toolLength],
	}
	return spatialmath.Pose{Location: eff.Sub(origin.Location), Rotation: origin.Rotation}, nil
}

// UpdateLinkPlacement moves the slides: d0 along X, d1 along the scene Z axis and d2 along the scene
// Y axis.
func (g *Gantry) UpdateLinkPlacement(inputs []referenceframe.Input) error {
	if err := kinematics.CheckInputs(inputs, numAxes); err != nil {
		return err
	}
	nodes, err := g.geometry.Nodes()
	if err != nil {
		return err
	}
	for i, name := range slideNodeNames {
		setAxisOffset(nodes.Get(name), i, inputs[i].Value)
	}

	g.mu.Lock()
	g.placed = append([]referenceframe.Input(nil), inputs...)
	g.mu.Unlock()
	return nil
}

// Placed returns the slide offsets last written by UpdateLinkPlacement, or nil.
func (g *Gantry) Placed() []referenceframe.Input {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]referenceframe.Input(nil), g.placed...)
}

// Statistics samples the tool location and rotation of the last placement.
func (g *Gantry) Statistics(index int, origin spatialmath.Origin) []stats.Sample {
	placed := g.Placed()
	if len(placed) == 0 {
		return nil
	}
	pose, err := g.Transform(placed, origin)
	if err != nil {
		return nil
	}
	return kinematics.ToolSamples(index, pose)
}

// State summarizes the gantry.
func (g *Gantry) State() []stats.StateItem {
	items := g.geometry.StateItems(g.Topology())
	placed := g.Placed()
	if len(placed) == 0 {
		return items
	}
	axes := stats.StateItem{Name: "axes", Value: strconv.Itoa(numAxes)}
	for i, in := range placed {
		axes.Children = append(axes.Children, stats.StateItem{
			Name:  axisNames[i],
			Value: strconv.FormatFloat(in.Value, 'f', 2, 64) + " mm",
		})
	}
	return append(items, axes)
}
