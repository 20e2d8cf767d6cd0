// Package program holds taught point programs: a robot's target poses in the order and at the times
// they are played back.
package program

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/a8m/envsubst"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/utils"
)

// A Point is one taught pose. At is the offset from the program start in seconds.
type Point struct {
	Name     string    `json:"name,omitempty"`
	Location r3.Vector `json:"location"`
	Rotation r3.Vector `json:"rotation"`
	At       float64   `json:"at"`
}

// Pose returns the taught pose.
func (p Point) Pose() spatialmath.Pose {
	return spatialmath.Pose{Location: p.Location, Rotation: p.Rotation}
}

// Time returns At as a duration.
func (p Point) Time() time.Duration {
	return time.Duration(p.At * float64(time.Second))
}

// A Program is a sequence of taught points for one robot.
type Program struct {
	Name   string  `json:"name"`
	Robot  string  `json:"robot"`
	Loop   bool    `json:"loop,omitempty"`
	Points []Point `json:"points"`
}

// Validate ensures the program can be played back.
func (p *Program) Validate(path string) error {
	var errAll error
	if p.Name == "" {
		multierr.AppendInto(&errAll, utils.NewConfigValidationFieldRequiredError(path, "name"))
	}
	if len(p.Points) == 0 {
		multierr.AppendInto(&errAll, utils.NewConfigValidationFieldRequiredError(path, "points"))
	}
	for idx, point := range p.Points {
		pointPath := fmt.Sprintf("%s.points.%d", path, idx)
		if !point.Pose().IsFinite() {
			multierr.AppendInto(&errAll, utils.NewConfigValidationError(pointPath, errors.New("pose must be finite")))
		}
		if point.At < 0 {
			multierr.AppendInto(&errAll, utils.NewConfigValidationError(pointPath, errors.New("at must not be negative")))
		}
		if idx > 0 && point.At <= p.Points[idx-1].At {
			multierr.AppendInto(&errAll, utils.NewConfigValidationError(pointPath,
				errors.Errorf("at %g is not after the previous point at %g", point.At, p.Points[idx-1].At)))
		}
	}
	return errAll
}

// Teach appends a point after the last one.
func (p *Program) Teach(name string, pose spatialmath.Pose, at time.Duration) error {
	seconds := at.Seconds()
	if n := len(p.Points); n > 0 && seconds <= p.Points[n-1].At {
		return errors.Errorf("point %q at %v is not after the last point", name, at)
	}
	p.Points = append(p.Points, Point{Name: name, Location: pose.Location, Rotation: pose.Rotation, At: seconds})
	return nil
}

// Duration is the time of the last point.
func (p *Program) Duration() time.Duration {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[len(p.Points)-1].Time()
}

// PoseAt samples the program at t. Poses between two points are interpolated linearly on every
// component; before the first point the first pose is held and after the last the last one. Looping
// programs wrap t around their duration.
func (p *Program) PoseAt(t time.Duration) spatialmath.Pose {
	if len(p.Points) == 0 {
		return spatialmath.NewZeroPose()
	}
	if d := p.Duration(); p.Loop && d > 0 {
		t %= d
	}
	seconds := t.Seconds()
	next := sort.Search(len(p.Points), func(i int) bool { return p.Points[i].At >= seconds })
	switch next {
	case 0:
		return p.Points[0].Pose()
	case len(p.Points):
		return p.Points[len(p.Points)-1].Pose()
	}
	from, to := p.Points[next-1], p.Points[next]
	return spatialmath.Interpolate(from.Pose(), to.Pose(), (seconds-from.At)/(to.At-from.At))
}

// FromReader decodes and validates a JSON program.
func FromReader(r io.Reader) (*Program, error) {
	p := &Program{}
	if err := json.NewDecoder(r).Decode(p); err != nil {
		return nil, errors.Wrap(err, "cannot parse program")
	}
	if err := p.Validate("program"); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadFile reads a JSON program, expanding ${ENV} references first.
func ReadFile(path string) (*Program, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromReader(bytes.NewReader(buf))
}

// Write encodes the program as indented JSON.
func Write(w io.Writer, p *Program) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
