// Package scene is the scene-graph collaborator of the kinematic models.
//
// Solvers hold Nodes as non-owning handles: they read node offsets at connect time, write joint
// rotations and slide translations at placement time and swap primitive geometries when link
// lengths change. The scene itself is Y-up, so a cell location (x, y, z) with z up lives at scene
// position (x, z, y); see CellToScene.
package scene

import (
	"github.com/golang/geo/r3"
)

// Node is a single element of a scene graph.
type Node interface {
	Name() string
	Parent() Node
	Children() []Node
	// ChildNode returns the first child with the given name, searching the whole subtree when recursive
	// is set. It returns nil when no such node exists.
	ChildNode(name string, recursive bool) Node

	// Position is the node offset from its parent, in mm.
	Position() r3.Vector
	SetPosition(p r3.Vector)
	// EulerAngles is the node rotation relative to its parent, in radians per axis.
	EulerAngles() r3.Vector
	SetEulerAngles(e r3.Vector)

	Geometry() Geometry
	SetGeometry(g Geometry)
}

// BasicNode is an in-memory Node.
type BasicNode struct {
	name     string
	parent   *BasicNode
	children []*BasicNode
	position r3.Vector
	euler    r3.Vector
	geometry Geometry
}

// NewNode returns a detached node at the given offset.
func NewNode(name string, position r3.Vector) *BasicNode {
	return &BasicNode{name: name, position: position}
}

// AddChild attaches child to n and returns the child so trees can be built inline.
func (n *BasicNode) AddChild(child *BasicNode) *BasicNode {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

func (n *BasicNode) removeChild(child *BasicNode) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Name returns the node name.
func (n *BasicNode) Name() string {
	return n.name
}

// Parent returns the parent node or nil for a root.
func (n *BasicNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children returns the direct children of the node.
func (n *BasicNode) Children() []Node {
	out := make([]Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out
}

// ChildNode searches breadth first for a child with the given name.
func (n *BasicNode) ChildNode(name string, recursive bool) Node {
	found := n.child(name, recursive)
	if found == nil {
		return nil
	}
	return found
}

func (n *BasicNode) child(name string, recursive bool) *BasicNode {
	queue := append([]*BasicNode(nil), n.children...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c.name == name {
			return c
		}
		if recursive {
			queue = append(queue, c.children...)
		}
	}
	return nil
}

// Position returns the offset from the parent.
func (n *BasicNode) Position() r3.Vector {
	return n.position
}

// SetPosition sets the offset from the parent.
func (n *BasicNode) SetPosition(p r3.Vector) {
	n.position = p
}

// EulerAngles returns the rotation relative to the parent.
func (n *BasicNode) EulerAngles() r3.Vector {
	return n.euler
}

// SetEulerAngles sets the rotation relative to the parent.
func (n *BasicNode) SetEulerAngles(e r3.Vector) {
	n.euler = e
}

// Geometry returns the attached primitive, or nil.
func (n *BasicNode) Geometry() Geometry {
	return n.geometry
}

// SetGeometry replaces the attached primitive.
func (n *BasicNode) SetGeometry(g Geometry) {
	n.geometry = g
}

// CellToScene maps a z-up cell vector onto the y-up scene axes.
func CellToScene(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Z, Z: v.Y}
}

// SceneToCell maps a y-up scene vector onto the z-up cell axes.
func SceneToCell(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Z, Z: v.Y}
}
