package sixaxis

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/logging"
	"github.com/robotcell/cellsim/referenceframe"
	"github.com/robotcell/cellsim/scene"
	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/stats"
	"github.com/robotcell/cellsim/utils"
)

var testLengths = []float64{300, 250, 200, 50, 100, 50, 0}

func newTestArm(t *testing.T, lengths []float64) *Arm {
	t.Helper()
	arm, err := NewArm(lengths, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return arm
}

// reported converts internal joint angles into the reported convention.
func reported(t1, t2, t3, t4, t5, t6 float64) []referenceframe.Input {
	return referenceframe.FloatsToInputs([]float64{-(t1 + math.Pi), -t2, -t3, -(t4 + math.Pi), t5, -t6})
}

func poseRotation(p spatialmath.Pose) mgl64.Mat3 {
	return spatialmath.RotationZYX(
		utils.DegToRad(p.Rotation.X),
		utils.DegToRad(p.Rotation.Y),
		utils.DegToRad(p.Rotation.Z),
	)
}

func samePose(t *testing.T, got, want spatialmath.Pose) {
	t.Helper()
	test.That(t, got.Location.X, test.ShouldAlmostEqual, want.Location.X, 1e-6)
	test.That(t, got.Location.Y, test.ShouldAlmostEqual, want.Location.Y, 1e-6)
	test.That(t, got.Location.Z, test.ShouldAlmostEqual, want.Location.Z, 1e-6)
	test.That(t, poseRotation(got).ApproxEqualThreshold(poseRotation(want), 1e-9), test.ShouldBeTrue)
}

func allFinite(inputs []referenceframe.Input) bool {
	for _, in := range inputs {
		if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
			return false
		}
	}
	return true
}

func TestInverseKinematicsOutOfReach(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	arm, err := NewArm(testLengths, logger)
	test.That(t, err, test.ShouldBeNil)
	sol, err := arm.InverseKinematics(spatialmath.NewPose(400, 0, 300, 0, 180, 0), spatialmath.NewZeroOrigin())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logs.FilterMessage("degenerate inverse kinematics solution").Len(), test.ShouldEqual, 1)
	test.That(t, sol.Inputs, test.ShouldHaveLength, 6)
	test.That(t, sol.Inputs[0].Value, test.ShouldEqual, -2*math.Pi)
	test.That(t, sol.Status, test.ShouldEqual, kinematics.Unreachable)
	test.That(t, sol.Degenerate(), test.ShouldBeTrue)
	test.That(t, allFinite(sol.Inputs), test.ShouldBeTrue)
}

func TestWristCentre(t *testing.T) {
	f := toArmFrame(spatialmath.NewPose(400, 0, 300, 0, 180, 0), spatialmath.NewZeroOrigin())
	p5 := f.p.Sub(f.a.Mul(testLengths[4] + testLengths[5]))
	test.That(t, p5.X, test.ShouldAlmostEqual, -550)
	test.That(t, p5.Y, test.ShouldEqual, 0)
	test.That(t, p5.Z, test.ShouldAlmostEqual, 300)
	test.That(t, f.a.Dot(f.b), test.ShouldAlmostEqual, 0)
}

func TestJointRoundTrip(t *testing.T) {
	arm := newTestArm(t, testLengths)
	origin := spatialmath.Origin{
		Location: r3.Vector{X: 100, Y: -50, Z: 20},
		Rotation: r3.Vector{X: 5, Y: -10, Z: 15},
	}
	for _, tc := range []struct {
		name  string
		joint []referenceframe.Input
	}{
		{"forward reach", reported(0, 0.5, 1.0, 0.3, 0.8, 0.2)},
		{"turned waist", reported(2.1, 0.3, 1.4, -1.0, 1.2, -2.5)},
		{"negative waist", reported(-1.3, 0.9, 0.6, 2.4, 2.0, 1.1)},
		{"high elbow", reported(0.7, -0.2, 2.5, 0, 0.4, 0)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pose, err := arm.Transform(tc.joint, origin)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, pose.IsFinite(), test.ShouldBeTrue)

			sol, err := arm.InverseKinematics(pose, origin)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, sol.Status, test.ShouldEqual, kinematics.Reachable)
			for i := range tc.joint {
				test.That(t, utils.WrapAngle(sol.Inputs[i].Value-tc.joint[i].Value), test.ShouldAlmostEqual, 0, 1e-6)
			}

			back, err := arm.Transform(sol.Inputs, origin)
			test.That(t, err, test.ShouldBeNil)
			samePose(t, back, pose)
		})
	}
}

func TestReachBoundary(t *testing.T) {
	t.Run("extended", func(t *testing.T) {
		arm := newTestArm(t, testLengths)
		sol, err := arm.InverseKinematics(spatialmath.NewPose(350, 0, 300, 0, 180, 0), spatialmath.NewZeroOrigin())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, sol.Status, test.ShouldNotEqual, kinematics.Unreachable)
		test.That(t, allFinite(sol.Inputs), test.ShouldBeTrue)
		test.That(t, sol.Inputs[2].Value, test.ShouldAlmostEqual, 0, 1e-6)
	})
	t.Run("folded", func(t *testing.T) {
		arm := newTestArm(t, []float64{300, 300, 150, 50, 100, 50})
		sol, err := arm.InverseKinematics(spatialmath.NewPose(-50, 0, 300, 0, 180, 0), spatialmath.NewZeroOrigin())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, sol.Status, test.ShouldNotEqual, kinematics.Unreachable)
		test.That(t, allFinite(sol.Inputs), test.ShouldBeTrue)
		test.That(t, sol.Inputs[2].Value, test.ShouldAlmostEqual, -math.Pi, 1e-6)
	})
}

func TestSingularWrist(t *testing.T) {
	arm := newTestArm(t, testLengths)
	origin := spatialmath.NewZeroOrigin()
	pose, err := arm.Transform(reported(0.4, 0.5, 1.0, 0.7, 0, 0.3), origin)
	test.That(t, err, test.ShouldBeNil)

	sol, err := arm.InverseKinematics(pose, origin)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sol.Status, test.ShouldEqual, kinematics.Singular)
	test.That(t, allFinite(sol.Inputs), test.ShouldBeTrue)

	// only the sum of joints 4 and 6 is defined; the pose must still be reproduced
	back, err := arm.Transform(sol.Inputs, origin)
	test.That(t, err, test.ShouldBeNil)
	samePose(t, back, pose)
}

func TestNotConfigured(t *testing.T) {
	arm := newTestArm(t, nil)
	test.That(t, arm.ConfigState(), test.ShouldEqual, kinematics.Unconfigured)
	_, err := arm.InverseKinematics(spatialmath.NewZeroPose(), spatialmath.NewZeroOrigin())
	test.That(t, errors.Is(err, kinematics.ErrNotConfigured), test.ShouldBeTrue)
	_, err = arm.Transform(make([]referenceframe.Input, 6), spatialmath.NewZeroOrigin())
	test.That(t, errors.Is(err, kinematics.ErrNotConfigured), test.ShouldBeTrue)
	test.That(t, errors.Is(arm.UpdateLinkGeometry(), kinematics.ErrNotConfigured), test.ShouldBeTrue)
}

func TestNonFiniteTarget(t *testing.T) {
	arm := newTestArm(t, testLengths)
	sol, err := arm.InverseKinematics(spatialmath.NewPose(math.NaN(), 0, 0, 0, 0, 0), spatialmath.NewZeroOrigin())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, sol.Inputs, test.ShouldBeNil)

	origin := spatialmath.Origin{Location: r3.Vector{Y: math.Inf(-1)}}
	_, err = arm.InverseKinematics(spatialmath.NewPose(400, 0, 300, 0, 180, 0), origin)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInvalidLengths(t *testing.T) {
	_, err := NewArm([]float64{300, 250}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewArm([]float64{300, 0, 200, 50, 100, 50}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewArm([]float64{300, 250, 0, 0, 100, 50}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	arm := newTestArm(t, testLengths)
	test.That(t, arm.SetLengths([]float64{1, 2, 3}), test.ShouldNotBeNil)
	test.That(t, arm.Lengths(), test.ShouldResemble, testLengths)
}

func TestConnectDerivesLengths(t *testing.T) {
	lengths := []float64{310, 260, 190, 40, 90, 60, 120}
	root, err := NewScene("arm", lengths)
	test.That(t, err, test.ShouldBeNil)

	arm := newTestArm(t, nil)
	test.That(t, arm.Connect(root), test.ShouldBeNil)
	test.That(t, arm.Connected(), test.ShouldBeTrue)
	test.That(t, arm.ConfigState(), test.ShouldEqual, kinematics.Configured)
	test.That(t, arm.Lengths(), test.ShouldResemble, lengths)

	// connecting again is a no-op
	test.That(t, arm.Connect(root), test.ShouldBeNil)
	test.That(t, arm.Lengths(), test.ShouldResemble, lengths)

	// a configured arm keeps its lengths against a scene built with others
	other, err := NewScene("other", testLengths)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arm.Connect(other), test.ShouldBeNil)
	test.That(t, arm.Lengths(), test.ShouldResemble, lengths)

	arm.Disconnect()
	test.That(t, arm.Connected(), test.ShouldBeFalse)
	test.That(t, arm.Lengths(), test.ShouldResemble, lengths)
}

func TestConnectMissingNodes(t *testing.T) {
	root := scene.NewNode("arm", r3.Vector{})
	root.AddChild(scene.NewNode("d0", r3.Vector{}))
	arm := newTestArm(t, nil)
	err := arm.Connect(root)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"d1"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"base"`)
	test.That(t, arm.Connected(), test.ShouldBeFalse)
	test.That(t, arm.ConfigState(), test.ShouldEqual, kinematics.Unconfigured)
}

func TestUpdateLinkPlacement(t *testing.T) {
	root, err := NewScene("arm", testLengths)
	test.That(t, err, test.ShouldBeNil)
	arm := newTestArm(t, testLengths)

	joints := referenceframe.FloatsToInputs([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	test.That(t, errors.Is(arm.UpdateLinkPlacement(joints), kinematics.ErrNotConnected), test.ShouldBeTrue)

	test.That(t, arm.Connect(root), test.ShouldBeNil)
	test.That(t, arm.UpdateLinkPlacement(joints[:5]), test.ShouldNotBeNil)
	test.That(t, arm.UpdateLinkPlacement(joints), test.ShouldBeNil)

	euler := func(name string) r3.Vector {
		return root.ChildNode(name, true).EulerAngles()
	}
	test.That(t, euler("d0"), test.ShouldResemble, r3.Vector{Y: 0.1})
	test.That(t, euler("d1"), test.ShouldResemble, r3.Vector{Z: 0.2})
	test.That(t, euler("d2"), test.ShouldResemble, r3.Vector{Z: 0.3})
	test.That(t, euler("d3"), test.ShouldResemble, r3.Vector{Y: 0.4})
	test.That(t, euler("d4"), test.ShouldResemble, r3.Vector{Z: 0.5})
	test.That(t, euler("d5"), test.ShouldResemble, r3.Vector{Y: 0.6})
	test.That(t, euler("d6"), test.ShouldResemble, r3.Vector{})
	test.That(t, arm.Placed(), test.ShouldResemble, joints)
}

func TestUpdateLinkGeometry(t *testing.T) {
	root, err := NewScene("arm", testLengths)
	test.That(t, err, test.ShouldBeNil)
	d3 := root.ChildNode("d3", true)
	d3.SetPosition(r3.Vector{X: 5, Y: 1, Z: -7})

	arm := newTestArm(t, nil)
	test.That(t, arm.Connect(root), test.ShouldBeNil)

	updated := []float64{320, 270, 210, 30, 80, 40, 150}
	test.That(t, arm.SetLengths(updated), test.ShouldBeNil)

	test.That(t, root.ChildNode("d0", true).Position().Y, test.ShouldEqual, 150)
	for i := 0; i < 6; i++ {
		test.That(t, root.ChildNode(jointNodeNames[i+1], true).Position().Y, test.ShouldEqual, updated[i])
	}
	test.That(t, d3.Position(), test.ShouldResemble, r3.Vector{X: 5, Y: 210, Z: -7})

	base := root.ChildNode("base", true)
	test.That(t, base.Geometry(), test.ShouldResemble, scene.Cylinder{Radius: 80, Height: 150})
	test.That(t, base.Position().Y, test.ShouldEqual, 75)

	test.That(t, root.ChildNode("link0", true).Geometry(), test.ShouldResemble,
		scene.Box{Width: 80, Height: 320, Length: 80, ChamferRadius: 8})
	test.That(t, root.ChildNode("link2", true).Geometry(), test.ShouldResemble,
		scene.Box{Width: 80, Height: 210, Length: 80, ChamferRadius: 8})
	test.That(t, root.ChildNode("link3", true).Geometry(), test.ShouldResemble,
		scene.Box{Width: 60, Height: 30, Length: 60, ChamferRadius: 6})
	link4 := root.ChildNode("link4", true)
	test.That(t, link4.Geometry(), test.ShouldResemble, scene.Box{Width: 40, Height: 80, Length: 40})
	test.That(t, link4.Position().Y, test.ShouldEqual, 40)
	test.That(t, link4.Parent().Name(), test.ShouldEqual, "d4")

	arm.Disconnect()
	test.That(t, errors.Is(arm.UpdateLinkGeometry(), kinematics.ErrNotConnected), test.ShouldBeTrue)
}

func TestStatistics(t *testing.T) {
	root, err := NewScene("arm", testLengths)
	test.That(t, err, test.ShouldBeNil)
	arm := newTestArm(t, testLengths)
	test.That(t, arm.Connect(root), test.ShouldBeNil)
	origin := spatialmath.NewZeroOrigin()
	test.That(t, arm.Statistics(0, origin), test.ShouldBeNil)

	joints := reported(0, 0.5, 1.0, 0.3, 0.8, 0.2)
	test.That(t, arm.UpdateLinkPlacement(joints), test.ShouldBeNil)
	samples := arm.Statistics(3, origin)
	test.That(t, samples, test.ShouldHaveLength, 12)
	test.That(t, samples[1].Series, test.ShouldEqual, kinematics.SeriesJoints)
	test.That(t, samples[1].Channel, test.ShouldEqual, "J2")
	test.That(t, samples[1].Value, test.ShouldAlmostEqual, utils.RadToDeg(-0.5))
	// J1 is reported as -pi and displayed wrapped onto (-180, 180]
	test.That(t, samples[0].Value, test.ShouldAlmostEqual, 180.0)

	pose, err := arm.Transform(joints, origin)
	test.That(t, err, test.ShouldBeNil)
	store := stats.NewStore()
	store.Record(samples...)
	test.That(t, store.Series(), test.ShouldResemble, []string{
		kinematics.SeriesJoints, kinematics.SeriesToolLocation, kinematics.SeriesToolRotation,
	})
	z := store.Points(kinematics.SeriesToolLocation, "Z")
	test.That(t, z, test.ShouldHaveLength, 1)
	test.That(t, z[0].Index, test.ShouldEqual, 3)
	test.That(t, z[0].Value, test.ShouldAlmostEqual, pose.Location.Z)
}

func TestState(t *testing.T) {
	root, err := NewScene("arm", testLengths)
	test.That(t, err, test.ShouldBeNil)
	arm := newTestArm(t, nil)
	test.That(t, arm.Connect(root), test.ShouldBeNil)
	test.That(t, arm.UpdateLinkPlacement(make([]referenceframe.Input, 6)), test.ShouldBeNil)

	items := arm.State()
	test.That(t, items[0], test.ShouldResemble, stats.StateItem{Name: "topology", Value: "6DOF"})
	test.That(t, items[1].Value, test.ShouldEqual, "configured")
	test.That(t, items[2].Value, test.ShouldEqual, "connected")
	test.That(t, items[3].Children, test.ShouldHaveLength, 7)
	joints := items[len(items)-1]
	test.That(t, joints.Name, test.ShouldEqual, "joints")
	test.That(t, joints.Children[5], test.ShouldResemble, stats.StateItem{Name: "J6", Value: "0.00°"})

	// a full turn of the waist displays as no turn
	test.That(t, arm.UpdateLinkPlacement(referenceframe.FloatsToInputs([]float64{-2 * math.Pi, 0, 0, 0, 0, 0})), test.ShouldBeNil)
	joints = arm.State()[len(items)-1]
	test.That(t, joints.Children[0], test.ShouldResemble, stats.StateItem{Name: "J1", Value: "0.00°"})
}

func TestRegistered(t *testing.T) {
	model, err := kinematics.New(kinematics.SixAxis, testLengths, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	_, ok := model.(*Arm)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, model.RequiredLengthCount(), test.ShouldEqual, 6)
	test.That(t, model.DoF(), test.ShouldHaveLength, 6)
}
