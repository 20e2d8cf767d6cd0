package scene

import "fmt"

// Geometry is a primitive shape attached to a node.
type Geometry interface {
	Kind() string
	fmt.Stringer
}

// Box is a chamfered box. Height runs along the node's Y axis.
type Box struct {
	Width         float64
	Height        float64
	Length        float64
	ChamferRadius float64
}

// Kind returns "box".
func (b Box) Kind() string {
	return "box"
}

func (b Box) String() string {
	return fmt.Sprintf("box(%gx%gx%g, chamfer %g)", b.Width, b.Height, b.Length, b.ChamferRadius)
}

// Cylinder is a cylinder standing on the node's Y axis.
type Cylinder struct {
	Radius float64
	Height float64
}

// Kind returns "cylinder".
func (c Cylinder) Kind() string {
	return "cylinder"
}

func (c Cylinder) String() string {
	return fmt.Sprintf("cylinder(r %g, h %g)", c.Radius, c.Height)
}
