package portal

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/scene"
)

// The scene of a gantry, Y up:
//
//	root
//	├── base                     base visual
//	└── portal                   top of the base
//	    ├── frame                vertical member
//	    └── frame_top
//	        ├── frame_x          X beam
//	        └── limit0_min       X zero stop
//	            ├── limit0_max
//	            └── d0           X slide
//	                ├── frame_y  Y beam
//	                └── limit1_min
//	                    ├── limit1_max
//	                    └── d1   Y slide
//	                        ├── frame_z
//	                        └── limit2_min
//	                            ├── limit2_max
//	                            └── d2    Z slide
//	                                └── tool
//
// Cell Y runs along the scene Z axis. Stops and slides are offset from their parent along their own
// axis only.
const (
	baseNodeName     = "base"
	portalNodeName   = "portal"
	frameNodeName    = "frame"
	frameTopNodeName = "frame_top"
	toolNodeName     = "tool"
)

var (
	slideNodeNames = [numAxes]string{"d0", "d1", "d2"}
	beamNodeNames  = [numAxes]string{"frame_x", "frame_y", "frame_z"}
	minNodeNames   = [numAxes]string{"limit0_min", "limit1_min", "limit2_min"}
	maxNodeNames   = [numAxes]string{"limit0_max", "limit1_max", "limit2_max"}
)

const (
	beamWidth  = 40
	baseMargin = 100
)

func nodeNames() []string {
	names := []string{baseNodeName, portalNodeName, frameNodeName, frameTopNodeName, toolNodeName}
	names = append(names, slideNodeNames[:]...)
	names = append(names, beamNodeNames[:]...)
	names = append(names, minNodeNames[:]...)
	return append(names, maxNodeNames[:]...)
}

// axisOffset reads the offset of n along the scene axis matching cell axis i.
func axisOffset(n scene.Node, i int) float64 {
	p := scene.SceneToCell(n.Position())
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func setAxisOffset(n scene.Node, i int, v float64) {
	p := scene.SceneToCell(n.Position())
	switch i {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	default:
		p.Z = v
	}
	n.SetPosition(scene.CellToScene(p))
}

// Connect resolves the slides, frame members and reference stops under root. When no lengths are
// configured they are taken from the stop positions: Z offsets are measured downwards, so their
// magnitudes are used.
func (g *Gantry) Connect(root scene.Node) error {
	derived, err := g.geometry.Connect(root, nodeNames(), deriveLengths)
	if err != nil {
		return err
	}
	if derived {
		g.logger.Debugw("derived gantry lengths from scene", "lengths", g.geometry.Lengths())
	}
	return nil
}

func deriveLengths(nodes *kinematics.NodeSet) []float64 {
	l := make([]float64, workingLengths+1)
	l[frameHeight] = nodes.Get(frameTopNodeName).Position().Y
	l[toolLength] = math.Abs(nodes.Get(toolNodeName).Position().Y)
	for i := 0; i < numAxes; i++ {
		l[shiftX+i] = math.Abs(axisOffset(nodes.Get(minNodeNames[i]), i))
		l[limitX+i] = math.Abs(axisOffset(nodes.Get(maxNodeNames[i]), i))
	}
	l[baseHeight] = nodes.Get(portalNodeName).Position().Y
	return l
}

// UpdateLinkGeometry resizes the frame members to span the configured travel and moves the
// reference stops to the configured offsets.
func (g *Gantry) UpdateLinkGeometry() error {
	nodes, lengths, err := g.geometry.ConnectedAndConfigured()
	if err != nil {
		return err
	}
	layout(nodes, lengths)
	return nil
}

func layout(nodes *kinematics.NodeSet, l []float64) {
	setAxisOffset(nodes.Get(portalNodeName), 2, l[baseHeight])
	setAxisOffset(nodes.Get(frameTopNodeName), 2, l[frameHeight])
	setAxisOffset(nodes.Get(toolNodeName), 2, -l[toolLength])

	frame := nodes.Get(frameNodeName)
	frame.SetGeometry(scene.Box{Width: beamWidth, Height: l[frameHeight], Length: beamWidth})
	setAxisOffset(frame, 2, l[frameHeight]/2)

	span := [numAxes]float64{
		l[shiftX] + l[limitX],
		l[shiftY] + l[limitY],
		l[shiftZ] + l[limitZ],
	}
	base := nodes.Get(baseNodeName)
	base.SetGeometry(scene.Box{
		Width:  span[0] + baseMargin,
		Height: l[baseHeight],
		Length: span[1] + baseMargin,
	})
	base.SetPosition(r3.Vector{X: span[0] / 2, Y: l[baseHeight] / 2, Z: span[1] / 2})

	nodes.Get(beamNodeNames[0]).SetGeometry(scene.Box{Width: span[0], Height: beamWidth, Length: beamWidth})
	setAxisOffset(nodes.Get(beamNodeNames[0]), 0, span[0]/2)
	nodes.Get(beamNodeNames[1]).SetGeometry(scene.Box{Width: beamWidth, Height: beamWidth, Length: span[1]})
	setAxisOffset(nodes.Get(beamNodeNames[1]), 1, span[1]/2)
	// the Z member hangs from the Y slide, from the zero stop down to the lowest position
	nodes.Get(beamNodeNames[2]).SetGeometry(scene.Box{Width: beamWidth, Height: span[2], Length: beamWidth})
	setAxisOffset(nodes.Get(beamNodeNames[2]), 2, (l[shiftZ]-l[limitZ])/2)

	setAxisOffset(nodes.Get(minNodeNames[0]), 0, l[shiftX])
	setAxisOffset(nodes.Get(minNodeNames[1]), 1, l[shiftY])
	setAxisOffset(nodes.Get(minNodeNames[2]), 2, l[shiftZ])
	setAxisOffset(nodes.Get(maxNodeNames[0]), 0, l[limitX])
	setAxisOffset(nodes.Get(maxNodeNames[1]), 1, l[limitY])
	setAxisOffset(nodes.Get(maxNodeNames[2]), 2, -l[limitZ])
}

// NewScene builds a scene description of a gantry with the given lengths, laid out the way Connect
// expects.
func NewScene(name string, lengths []float64) (*scene.BasicNode, error) {
	g, err := kinematics.NewLinkGeometry(workingLengths, lengths, validateLengths)
	if err != nil {
		return nil, err
	}
	padded, err := g.Configured()
	if err != nil {
		return nil, err
	}
	n := func(name string) *scene.BasicNode {
		return scene.NewNode(name, r3.Vector{})
	}
	root := n(name)
	root.AddChild(n(baseNodeName))
	portal := root.AddChild(n(portalNodeName))
	portal.AddChild(n(frameNodeName))
	top := portal.AddChild(n(frameTopNodeName))
	top.AddChild(n(beamNodeNames[0]))

	parent := top
	for i := 0; i < numAxes; i++ {
		if i > 0 {
			// the Y and Z members ride on the slide before them
			parent.AddChild(n(beamNodeNames[i]))
		}
		stop := parent.AddChild(n(minNodeNames[i]))
		stop.AddChild(n(maxNodeNames[i]))
		parent = stop.AddChild(n(slideNodeNames[i]))
	}
	parent.AddChild(n(toolNodeName))

	nodes, err := kinematics.ResolveNodes(root, nodeNames()...)
	if err != nil {
		return nil, err
	}
	layout(nodes, padded)
	return root, nil
}
