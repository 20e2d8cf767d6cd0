// Package sixaxis implements the kinematics of an articulated arm with six revolute joints: waist,
// shoulder and elbow, followed by a spherical wrist.
//
// Link lengths are L0 (shoulder height), L1 (upper arm), L2 and L3 (forearm, used as their sum),
// L4 and L5 (wrist and tool offsets, used as their sum) and an optional trailing L6 base height.
//
// The visual model is a chain of nodes d0..d6 stacked along their parents' Y axes with box visuals
// link0..link4 and a cylindrical base. Joints 0, 3 and 5 turn about a node's Y axis, joints 1, 2 and
// 4 about its Z axis.
package sixaxis

import (
	"fmt"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/logging"
	"github.com/robotcell/cellsim/referenceframe"
	"github.com/robotcell/cellsim/scene"
	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/stats"
)

const (
	workingLengths = 6
	numJoints      = 6

	baseNodeName = "base"
)

var jointNodeNames = func() []string {
	names := make([]string, numJoints+1)
	for i := range names {
		names[i] = fmt.Sprintf("d%d", i)
	}
	return names
}()

func linkNodeName(i int) string {
	return fmt.Sprintf("link%d", i)
}

func nodeNames() []string {
	names := append([]string{}, jointNodeNames...)
	names = append(names, baseNodeName)
	for i := 0; i < numLinkVisuals; i++ {
		names = append(names, linkNodeName(i))
	}
	return names
}

func init() {
	kinematics.Register(kinematics.SixAxis, func(lengths []float64, logger kinematics.Logger) (kinematics.Model, error) {
		return NewArm(lengths, logger)
	})
}

func validateLengths(l []float64) error {
	if l[1] <= 0 {
		return errors.New("upper arm length L1 must be positive")
	}
	if l[2]+l[3] <= 0 {
		return errors.New("forearm length L2+L3 must be positive")
	}
	return nil
}

// Arm is the kinematic model of one six axis arm.
type Arm struct {
	geometry *kinematics.LinkGeometry
	logger   logging.Logger

	mu     sync.Mutex
	placed []referenceframe.Input
}

// NewArm returns an arm with the given lengths. Empty lengths leave it Unconfigured until Connect.
func NewArm(lengths []float64, logger logging.Logger) (*Arm, error) {
	g, err := kinematics.NewLinkGeometry(workingLengths, lengths, validateLengths)
	if err != nil {
		return nil, err
	}
	return &Arm{geometry: g, logger: logger}, nil
}

// Topology returns kinematics.SixAxis.
func (a *Arm) Topology() kinematics.Topology {
	return kinematics.SixAxis
}

// RequiredLengthCount returns 6.
func (a *Arm) RequiredLengthCount() int {
	return a.geometry.Working()
}

// DoF returns the joint limits. Reported angles may span a full turn either way.
func (a *Arm) DoF() []referenceframe.Limit {
	limits := make([]referenceframe.Limit, numJoints)
	for i := range limits {
		limits[i] = referenceframe.UnboundedRevolute
	}
	return limits
}

// Connect resolves d0..d6, base and link0..link4 under root. Lengths are derived only when none are
// configured: L0..L5 are the Y offsets of d1..d6 from their parents and L6 is the Y offset of d0.
func (a *Arm) Connect(root scene.Node) error {
	derived, err := a.geometry.Connect(root, nodeNames(), deriveLengths)
	if err != nil {
		return err
	}
	if derived {
		a.logger.Debugw("derived link lengths from scene", "lengths", a.geometry.Lengths())
	}
	return nil
}

func deriveLengths(nodes *kinematics.NodeSet) []float64 {
	lengths := make([]float64, 0, workingLengths+1)
	for i := 1; i <= workingLengths; i++ {
		lengths = append(lengths, nodes.Get(jointNodeNames[i]).Position().Y)
	}
	return append(lengths, nodes.Get(jointNodeNames[0]).Position().Y)
}

// Disconnect drops the scene handles.
func (a *Arm) Disconnect() {
	a.geometry.Disconnect()
}

// Connected reports whether the arm holds scene handles.
func (a *Arm) Connected() bool {
	return a.geometry.Connected()
}

// ConfigState reports whether lengths are configured.
func (a *Arm) ConfigState() kinematics.ConfigState {
	return a.geometry.ConfigState()
}

// Lengths returns a copy of the link lengths.
func (a *Arm) Lengths() []float64 {
	return a.geometry.Lengths()
}

// SetLengths replaces the link lengths and, when connected, resizes the visual links.
func (a *Arm) SetLengths(lengths []float64) error {
	if err := a.geometry.SetLengths(lengths); err != nil {
		return err
	}
	if !a.geometry.Connected() {
		return nil
	}
	return a.UpdateLinkGeometry()
}

// InverseKinematics solves the joint angles for pointer with the arm placed at origin.
func (a *Arm) InverseKinematics(pointer spatialmath.Pose, origin spatialmath.Origin) (kinematics.Solution, error) {
	lengths, err := a.geometry.Configured()
	if err != nil {
		return kinematics.Solution{}, err
	}
	if err := kinematics.CheckTarget(pointer, origin); err != nil {
		return kinematics.Solution{}, err
	}
	joints, status := solve(lengths, pointer, origin)
	if status != kinematics.Reachable {
		a.logger.Debugw("degenerate inverse kinematics solution", "status", status.String(), "pointer", pointer.String())
	}
	return kinematics.Solution{Inputs: referenceframe.FloatsToInputs(joints), Status: status}, nil
}

// Transform returns the workspace tool pose for the given joint angles.
func (a *Arm) Transform(inputs []referenceframe.Input, origin spatialmath.Origin) (spatialmath.Pose, error) {
	if err := kinematics.CheckInputs(inputs, numJoints); err != nil {
		return spatialmath.Pose{}, err
	}
	lengths, err := a.geometry.Configured()
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return forward(lengths, referenceframe.InputsToFloats(inputs), origin), nil
}

// UpdateLinkPlacement turns the joint nodes to the given angles.
func (a *Arm) UpdateLinkPlacement(inputs []referenceframe.Input) error {
	if err := kinematics.CheckInputs(inputs, numJoints); err != nil {
		return err
	}
	nodes, err := a.geometry.Nodes()
	if err != nil {
		return err
	}
	for i, in := range inputs {
		n := nodes.Get(jointNodeNames[i])
		e := n.EulerAngles()
		switch i {
		case 0, 3, 5:
			e.Y = in.Value
		default:
			e.Z = in.Value
		}
		n.SetEulerAngles(e)
	}
	a.mu.Lock()
	a.placed = append([]referenceframe.Input(nil), inputs...)
	a.mu.Unlock()
	return nil
}

// UpdateLinkGeometry stacks the joint nodes and resizes the link visuals to the configured lengths.
func (a *Arm) UpdateLinkGeometry() error {
	nodes, lengths, err := a.geometry.ConnectedAndConfigured()
	if err != nil {
		return err
	}
	layout(nodes, lengths)
	return nil
}

// Placed returns the joint angles last written by UpdateLinkPlacement, or nil.
func (a *Arm) Placed() []referenceframe.Input {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]referenceframe.Input(nil), a.placed...)
}

// Statistics samples the joint angles in degrees and the tool pose of the last placement.
func (a *Arm) Statistics(index int, origin spatialmath.Origin) []stats.Sample {
	placed := a.Placed()
	if len(placed) == 0 {
		return nil
	}
	samples := make([]stats.Sample, 0, numJoints+6)
	for i, deg := range referenceframe.InputsToDegrees(placed) {
		samples = append(samples, stats.Sample{
			Series:  kinematics.SeriesJoints,
			Channel: fmt.Sprintf("J%d", i+1),
			Index:   index,
			Value:   deg,
		})
	}
	pose, err := a.Transform(placed, origin)
	if err != nil {
		return samples
	}
	return append(samples, kinematics.ToolSamples(index, pose)...)
}

// State summarizes the arm.
func (a *Arm) State() []stats.StateItem {
	items := a.geometry.StateItems(a.Topology())
	placed := a.Placed()
	if len(placed) == 0 {
		return items
	}
	joints := stats.StateItem{Name: "joints", Value: fmt.Sprint(numJoints)}
	for i, deg := range referenceframe.InputsToDegrees(placed) {
		joints.Children = append(joints.Children, stats.StateItem{
			Name:  fmt.Sprintf("J%d", i+1),
			Value: fmt.Sprintf("%.2f°", deg),
		})
	}
	return append(items, joints)
}

// NewScene builds a scene description of an arm with the given lengths, laid out the way Connect
// expects. lengths must hold at least the working lengths.
func NewScene(name string, lengths []float64) (*scene.BasicNode, error) {
	g, err := kinematics.NewLinkGeometry(workingLengths, lengths, validateLengths)
	if err != nil {
		return nil, err
	}
	padded, err := g.Configured()
	if err != nil {
		return nil, err
	}
	root := scene.NewNode(name, r3.Vector{})
	root.AddChild(scene.NewNode(baseNodeName, r3.Vector{}))
	parent := root
	for i, jn := range jointNodeNames {
		parent = parent.AddChild(scene.NewNode(jn, r3.Vector{}))
		if i < numLinkVisuals {
			parent.AddChild(scene.NewNode(linkNodeName(i), r3.Vector{}))
		}
	}
	nodes, err := kinematics.ResolveNodes(root, nodeNames()...)
	if err != nil {
		return nil, err
	}
	layout(nodes, padded)
	return root, nil
}
