package program

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/testutils"
)

func threePoints(t *testing.T) *Program {
	t.Helper()
	p := &Program{Name: "pick", Robot: "arm"}
	test.That(t, p.Teach("home", spatialmath.NewPose(400, 0, 300, 0, 180, 0), 0), test.ShouldBeNil)
	test.That(t, p.Teach("above", spatialmath.NewPose(400, 200, 500, 0, 180, 90), 2*time.Second), test.ShouldBeNil)
	test.That(t, p.Teach("place", spatialmath.NewPose(200, 200, 500, 0, 180, 90), 3*time.Second), test.ShouldBeNil)
	return p
}

func TestPoseAt(t *testing.T) {
	p := threePoints(t)
	test.That(t, p.Duration(), test.ShouldEqual, 3*time.Second)
	test.That(t, p.PoseAt(0), test.ShouldResemble, spatialmath.NewPose(400, 0, 300, 0, 180, 0))
	test.That(t, p.PoseAt(-time.Second), test.ShouldResemble, spatialmath.NewPose(400, 0, 300, 0, 180, 0))
	test.That(t, p.PoseAt(time.Second), test.ShouldResemble, spatialmath.NewPose(400, 100, 400, 0, 180, 45))
	test.That(t, p.PoseAt(2*time.Second), test.ShouldResemble, spatialmath.NewPose(400, 200, 500, 0, 180, 90))
	test.That(t, p.PoseAt(2500*time.Millisecond), test.ShouldResemble, spatialmath.NewPose(300, 200, 500, 0, 180, 90))
	test.That(t, p.PoseAt(time.Minute), test.ShouldResemble, spatialmath.NewPose(200, 200, 500, 0, 180, 90))

	p.Loop = true
	test.That(t, p.PoseAt(4*time.Second), test.ShouldResemble, spatialmath.NewPose(400, 100, 400, 0, 180, 45))

	empty := &Program{}
	test.That(t, empty.PoseAt(time.Second), test.ShouldResemble, spatialmath.NewZeroPose())
	test.That(t, empty.Duration(), test.ShouldEqual, time.Duration(0))
}

func TestTeach(t *testing.T) {
	p := threePoints(t)
	err := p.Teach("late", spatialmath.NewZeroPose(), 3*time.Second)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, p.Points, test.ShouldHaveLength, 3)
	test.That(t, p.Points[1].Location, test.ShouldResemble, r3.Vector{X: 400, Y: 200, Z: 500})
}

func TestValidate(t *testing.T) {
	test.That(t, threePoints(t).Validate("program"), test.ShouldBeNil)

	p := &Program{Points: []Point{{At: 1}, {At: 1}, {At: -1}}}
	err := p.Validate("program")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"name" is required`)
	test.That(t, err.Error(), test.ShouldContainSubstring, "program.points.1")
	test.That(t, err.Error(), test.ShouldContainSubstring, "must not be negative")

	err = (&Program{Name: "x"}).Validate("program")
	test.That(t, err.Error(), test.ShouldContainSubstring, `"points" is required`)
}

func TestReadWrite(t *testing.T) {
	p := threePoints(t)
	var buf bytes.Buffer
	test.That(t, Write(&buf, p), test.ShouldBeNil)

	back, err := FromReader(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldResemble, p)

	t.Setenv("PICK_Z", "650")
	contents := `{"name": "env", "robot": "arm", "points": [
		{"location": {"x": 1, "y": 2, "z": ${PICK_Z}}, "rotation": {}, "at": 0},
		{"location": {"x": 1, "y": 2, "z": 3}, "rotation": {}, "at": 0.5}
	]}`
	path := testutils.WriteFile(t, t.TempDir(), "pick.json", contents)
	read, err := ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.Points[0].Location.Z, test.ShouldEqual, 650)
	test.That(t, read.Points[1].Time(), test.ShouldEqual, 500*time.Millisecond)

	_, err = FromReader(strings.NewReader(`{"name": "bad", "points": []}`))
	test.That(t, err, test.ShouldNotBeNil)
}
