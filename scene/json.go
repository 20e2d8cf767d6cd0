package scene

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// GeometryConfig is the serialized form of a Geometry.
type GeometryConfig struct {
	Type          string  `json:"type"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Length        float64 `json:"length,omitempty"`
	ChamferRadius float64 `json:"chamfer_radius,omitempty"`
	Radius        float64 `json:"radius,omitempty"`
}

// NodeConfig is the serialized form of a node and its subtree.
type NodeConfig struct {
	Name     string          `json:"name"`
	Position []float64       `json:"position,omitempty"`
	Euler    []float64       `json:"euler,omitempty"`
	Geometry *GeometryConfig `json:"geometry,omitempty"`
	Children []NodeConfig    `json:"children,omitempty"`
}

func vectorFromSlice(field string, v []float64) (r3.Vector, error) {
	switch len(v) {
	case 0:
		return r3.Vector{}, nil
	case 3:
		return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return r3.Vector{}, errors.Errorf("%s needs 3 values, got %d", field, len(v))
	}
}

// ParseConfig builds the node tree described by cfg.
func (cfg NodeConfig) ParseConfig() (*BasicNode, error) {
	if cfg.Name == "" {
		return nil, errors.New("scene node needs a name")
	}
	pos, err := vectorFromSlice("position", cfg.Position)
	if err != nil {
		return nil, errors.Wrapf(err, "node %q", cfg.Name)
	}
	euler, err := vectorFromSlice("euler", cfg.Euler)
	if err != nil {
		return nil, errors.Wrapf(err, "node %q", cfg.Name)
	}
	n := NewNode(cfg.Name, pos)
	n.SetEulerAngles(euler)
	if cfg.Geometry != nil {
		g, err := cfg.Geometry.ParseConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "node %q", cfg.Name)
		}
		n.SetGeometry(g)
	}
	for _, c := range cfg.Children {
		child, err := c.ParseConfig()
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// ParseConfig converts the serialized form into a Geometry.
func (cfg GeometryConfig) ParseConfig() (Geometry, error) {
	switch cfg.Type {
	case "box":
		return Box{Width: cfg.Width, Height: cfg.Height, Length: cfg.Length, ChamferRadius: cfg.ChamferRadius}, nil
	case "cylinder":
		return Cylinder{Radius: cfg.Radius, Height: cfg.Height}, nil
	default:
		return nil, errors.Errorf("unsupported geometry type %q, supported types are box and cylinder", cfg.Type)
	}
}

// ToConfig serializes the node and its subtree.
func ToConfig(n Node) NodeConfig {
	p, e := n.Position(), n.EulerAngles()
	cfg := NodeConfig{
		Name:     n.Name(),
		Position: []float64{p.X, p.Y, p.Z},
	}
	if e != (r3.Vector{}) {
		cfg.Euler = []float64{e.X, e.Y, e.Z}
	}
	switch g := n.Geometry().(type) {
	case Box:
		cfg.Geometry = &GeometryConfig{Type: g.Kind(), Width: g.Width, Height: g.Height, Length: g.Length, ChamferRadius: g.ChamferRadius}
	case Cylinder:
		cfg.Geometry = &GeometryConfig{Type: g.Kind(), Radius: g.Radius, Height: g.Height}
	}
	for _, c := range n.Children() {
		cfg.Children = append(cfg.Children, ToConfig(c))
	}
	return cfg
}

// FromReader decodes a JSON scene description.
func FromReader(r io.Reader) (*BasicNode, error) {
	var cfg NodeConfig
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse scene description as json")
	}
	return cfg.ParseConfig()
}

// ReadFile reads a JSON scene description, expanding ${ENV} references first.
func ReadFile(path string) (*BasicNode, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromReader(bytes.NewReader(buf))
}

// Write encodes the node tree as indented JSON.
func Write(w io.Writer, n Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToConfig(n))
}
