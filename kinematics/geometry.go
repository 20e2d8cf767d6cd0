package kinematics

import (
	"math"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/robotcell/cellsim/referenceframe"
	"github.com/robotcell/cellsim/scene"
	"github.com/robotcell/cellsim/stats"
)

// ConfigState is the configuration state of a model's link lengths.
type ConfigState int

const (
	// Unconfigured models have no lengths; Connect will derive them from the scene.
	Unconfigured ConfigState = iota
	// Configured models have a complete length list.
	Configured
)

func (s ConfigState) String() string {
	if s == Configured {
		return "configured"
	}
	return "unconfigured"
}

// NodeSet holds non-owning handles to the link nodes of a connected robot.
type NodeSet struct {
	nodes map[string]scene.Node
}

// ResolveNodes looks up every named node below root. All missing names are reported together.
func ResolveNodes(root scene.Node, names ...string) (*NodeSet, error) {
	if root == nil {
		return nil, errors.New("cannot connect to a nil scene root")
	}
	set := &NodeSet{nodes: make(map[string]scene.Node, len(names))}
	var errAll error
	for _, name := range names {
		n := root.ChildNode(name, true)
		if n == nil {
			multierr.AppendInto(&errAll, NewNodeMissingError(name))
			continue
		}
		set.nodes[name] = n
	}
	if errAll != nil {
		return nil, errAll
	}
	return set, nil
}

// Get returns the node resolved for name.
func (s *NodeSet) Get(name string) scene.Node {
	return s.nodes[name]
}

// LinkGeometry is the length and node state shared by the topologies: an Unconfigured → Configured
// state machine over the link lengths, plus the node handles of the connected scene. It allows one
// writer and many readers.
type LinkGeometry struct {
	mu       sync.RWMutex
	working  int
	validate func([]float64) error
	lengths  []float64
	nodes    *NodeSet
}

// NewLinkGeometry returns the state for a topology with the given number of working lengths. validate
// applies topology specific checks on top of the count check and may be nil. Empty lengths leave the
// state Unconfigured.
func NewLinkGeometry(working int, lengths []float64, validate func([]float64) error) (*LinkGeometry, error) {
	g := &LinkGeometry{working: working, validate: validate}
	if len(lengths) == 0 {
		return g, nil
	}
	if err := g.check(lengths); err != nil {
		return nil, err
	}
	g.lengths = append([]float64(nil), lengths...)
	return g, nil
}

func (g *LinkGeometry) check(lengths []float64) error {
	if len(lengths) != g.working && len(lengths) != g.working+1 {
		return referenceframe.NewIncorrectLengthCountError(len(lengths), g.working, g.working+1)
	}
	for i, l := range lengths {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return errors.Errorf("link length %d is not a finite number", i)
		}
	}
	if g.validate != nil {
		return g.validate(lengths)
	}
	return nil
}

// Working returns the number of working lengths.
func (g *LinkGeometry) Working() int {
	return g.working
}

// ConfigState reports whether lengths are configured.
func (g *LinkGeometry) ConfigState() ConfigState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.lengths) == 0 {
		return Unconfigured
	}
	return Configured
}

// Lengths returns a copy of the configured lengths, nil when Unconfigured.
func (g *LinkGeometry) Lengths() []float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.lengths) == 0 {
		return nil
	}
	return append([]float64(nil), g.lengths...)
}

// Configured returns a copy of the lengths padded with a zero base height, or ErrNotConfigured.
func (g *LinkGeometry) Configured() ([]float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.lengths) == 0 {
		return nil, ErrNotConfigured
	}
	out := make([]float64, g.working+1)
	copy(out, g.lengths)
	return out, nil
}

// SetLengths replaces the lengths after validating them.
func (g *LinkGeometry) SetLengths(lengths []float64) error {
	if err := g.check(lengths); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lengths = append([]float64(nil), lengths...)
	return nil
}

// Connect resolves names under root and, only when Unconfigured, sets the lengths returned by derive.
// It reports whether lengths were derived.
func (g *LinkGeometry) Connect(root scene.Node, names []string, derive func(*NodeSet) []float64) (bool, error) {
	nodes, err := ResolveNodes(root, names...)
	if err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.lengths) != 0 {
		g.nodes = nodes
		return false, nil
	}
	derived := derive(nodes)
	if err := g.check(derived); err != nil {
		return false, errors.Wrap(err, "lengths derived from scene are invalid")
	}
	g.nodes = nodes
	g.lengths = derived
	return true, nil
}

// Disconnect drops the node handles. Lengths are kept.
func (g *LinkGeometry) Disconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = nil
}

// Connected reports whether node handles are held.
func (g *LinkGeometry) Connected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes != nil
}

// Nodes returns the node handles, or ErrNotConnected.
func (g *LinkGeometry) Nodes() (*NodeSet, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.nodes == nil {
		return nil, ErrNotConnected
	}
	return g.nodes, nil
}

// ConnectedAndConfigured returns both nodes and padded lengths, as UpdateLinkGeometry needs.
func (g *LinkGeometry) ConnectedAndConfigured() (*NodeSet, []float64, error) {
	lengths, err := g.Configured()
	if err != nil {
		return nil, nil, err
	}
	nodes, err := g.Nodes()
	if err != nil {
		return nil, nil, err
	}
	return nodes, lengths, nil
}

// StateItems summarizes the geometry for status displays.
func (g *LinkGeometry) StateItems(topology Topology) []stats.StateItem {
	lengths := g.Lengths()
	lengthItems := make([]stats.StateItem, 0, len(lengths))
	for i, l := range lengths {
		lengthItems = append(lengthItems, stats.StateItem{
			Name:  "L" + strconv.Itoa(i),
			Value: strconv.FormatFloat(l, 'f', 2, 64),
		})
	}
	connected := "disconnected"
	if g.Connected() {
		connected = "connected"
	}
	return []stats.StateItem{
		{Name: "topology", Value: topology.String()},
		{Name: "configuration", Value: g.ConfigState().String()},
		{Name: "scene", Value: connected},
		{Name: "lengths", Value: strconv.Itoa(len(lengths)), Children: lengthItems},
	}
}

// CheckInputs returns an IncorrectDoFError when inputs does not have exactly dof entries.
func CheckInputs(inputs []referenceframe.Input, dof int) error {
	if len(inputs) != dof {
		return referenceframe.NewIncorrectDoFError(len(inputs), dof)
	}
	return nil
}
