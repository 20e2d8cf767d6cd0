package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/robotcell/cellsim/kinematics"
	_ "github.com/robotcell/cellsim/kinematics/register"
	"github.com/robotcell/cellsim/logging"
	"github.com/robotcell/cellsim/testutils"
)

const cellJSON = `{
  "robots": [
    {
      "name": "arm",
      "topology": "6DOF",
      "lengths": [300, 250, 200, 50, 100, 50, 0],
      "origin": {"location": {"x": 100, "y": 0, "z": 0}, "rotation": {"z": 90}},
      "scene": "arm.json"
    },
    {
      "name": "gantry",
      "topology": "Portal",
      "lengths": [500, 50, 50, 20, 30, 600, ${GANTRY_LIMIT_Y}, 400],
      "origin": {"location": {"x": 0, "y": 0, "z": 0}, "rotation": {}, "space_scale": {"x": 2000, "z": 1500}}
    }
  ]
}`

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	return testutils.WriteFile(t, dir, "cell.json", contents)
}

func TestRead(t *testing.T) {
	t.Setenv("GANTRY_LIMIT_Y", "650")
	dir := t.TempDir()
	path := writeConfig(t, dir, cellJSON)

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Robots, test.ShouldHaveLength, 2)
	test.That(t, cfg.Robots[1].Lengths[6], test.ShouldEqual, 650)

	arm, ok := cfg.FindRobot("arm")
	test.That(t, ok, test.ShouldBeTrue)
	origin := arm.Origin.ParseConfig()
	test.That(t, origin.Location, test.ShouldResemble, r3.Vector{X: 100})
	test.That(t, origin.Rotation, test.ShouldResemble, r3.Vector{Z: 90})
	test.That(t, cfg.ResolvePath(arm.Scene), test.ShouldEqual, filepath.Join(dir, "arm.json"))
	test.That(t, cfg.ResolvePath("/abs/scene.json"), test.ShouldEqual, "/abs/scene.json")

	_, ok = cfg.FindRobot("missing")
	test.That(t, ok, test.ShouldBeFalse)

	model, err := arm.NewModel(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Topology(), test.ShouldEqual, kinematics.SixAxis)

	gantry, _ := cfg.FindRobot("gantry")
	test.That(t, gantry.Origin.ParseConfig().SpaceScale, test.ShouldResemble, r3.Vector{X: 2000, Z: 1500})
	model, err = gantry.NewModel(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Topology(), test.ShouldEqual, kinematics.Portal)
}

func TestValidate(t *testing.T) {
	r := Robot{}
	err := r.Validate("robots.0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"name" is required`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"topology" is required`)

	r = Robot{Name: "x", Topology: "Scara", Origin: Origin{SpaceScale: r3.Vector{Y: -1}}}
	err = r.Validate("robots.0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown topology")
	test.That(t, err.Error(), test.ShouldContainSubstring, "space_scale")

	r = Robot{Name: "x", Topology: "Portal"}
	test.That(t, r.Validate("robots.0"), test.ShouldBeNil)

	cfg := Config{Robots: []Robot{r, r}}
	err = cfg.Ensure()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "used more than once")

	_, err = FromReader("", strings.NewReader(`{"robots": [{"name": "a", "topology": "6DOF", "bogus": 1}]}`))
	test.That(t, err, test.ShouldNotBeNil)

	// a model rejects a length list of the wrong size even when the config parses
	r = Robot{Name: "x", Topology: "6DOF", Lengths: []float64{1, 2}}
	test.That(t, r.Validate("robots.0"), test.ShouldBeNil)
	_, err = r.NewModel(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWriteRoundTrip(t *testing.T) {
	t.Setenv("GANTRY_LIMIT_Y", "600")
	dir := t.TempDir()
	cfg, err := Read(writeConfig(t, dir, cellJSON))
	test.That(t, err, test.ShouldBeNil)

	model, err := kinematics.New(kinematics.SixAxis, []float64{310, 260, 210, 40, 90, 60, 20}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.StoreLengths("arm", model), test.ShouldBeNil)
	test.That(t, cfg.StoreLengths("nobody", model), test.ShouldNotBeNil)

	out := filepath.Join(dir, "saved.json")
	test.That(t, WriteFile(out, cfg), test.ShouldBeNil)
	back, err := Read(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Robots[0].Lengths, test.ShouldResemble, []float64{310, 260, 210, 40, 90, 60, 20})
	test.That(t, back.Robots[1], test.ShouldResemble, cfg.Robots[1])

	var buf bytes.Buffer
	test.That(t, Write(&buf, cfg), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, `"topology": "Portal"`)
	test.That(t, buf.String(), test.ShouldNotContainSubstring, "ConfigFilePath")
}

func TestWatcher(t *testing.T) {
	t.Setenv("GANTRY_LIMIT_Y", "600")
	dir := t.TempDir()
	path := writeConfig(t, dir, cellJSON)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	w, err := NewWatcher(ctx, path, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, w.Close(), test.ShouldBeNil)
	}()

	// an invalid edit is skipped, the next valid one is delivered
	test.That(t, os.WriteFile(path, []byte(`{"robots": [{"name": ""}]}`), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(path, []byte(strings.Replace(cellJSON, "300, 250", "320, 250", 1)), 0o600), test.ShouldBeNil)

	for {
		select {
		case <-ctx.Done():
			t.Fatal("timed out waiting for config change")
		case cfg := <-w.Config():
			if cfg.Robots[0].Lengths[0] != 320 {
				// an earlier write event may observe the file before the last write
				continue
			}
			test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
			return
		}
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "cell.json")
	w, err := NewWatcher(context.Background(), path, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot watch")
	test.That(t, w, test.ShouldBeNil)
}
