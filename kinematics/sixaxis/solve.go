package sixaxis

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/utils"
)

const (
	// reachTolerance is how far past ±1 the elbow cosine may drift before a pose counts as unreachable.
	reachTolerance = 1e-9
	// singularTolerance is the |sin θ5| below which the wrist is treated as singular.
	singularTolerance = 1e-6
)

// toolSwap maps the arm flange axes onto the pose axes: the approach direction is the flange Z axis
// and the pose X axis, the secondary direction is the flange X axis and the pose Z axis.
var toolSwap = mgl64.Mat3{
	0, 0, 1,
	0, -1, 0,
	1, 0, 0,
}

// armFrame is a pose expressed in the arm base frame: a tool tip point and the approach (a) and
// secondary (b) directions of the tool.
type armFrame struct {
	p, a, b r3.Vector
}

// toArmFrame removes the origin transform from pointer. The x component and all rotations flip sign
// and pitch gains a half turn so the tool approach convention lines up with the arm base.
func toArmFrame(pointer spatialmath.Pose, origin spatialmath.Origin) armFrame {
	eff := spatialmath.Compose(pointer, origin)
	rx := -utils.DegToRad(eff.Rotation.X)
	ry := -utils.DegToRad(eff.Rotation.Y) + math.Pi
	rz := -utils.DegToRad(eff.Rotation.Z)

	r := spatialmath.RotationZYX(rx, ry, rz)
	return armFrame{
		p: r3.Vector{X: -eff.Location.X, Y: eff.Location.Y, Z: eff.Location.Z},
		a: spatialmath.Vec3ToR3(r.Col(0)),
		b: spatialmath.Vec3ToR3(r.Col(2)),
	}
}

// fromArmFrame is the inverse of toArmFrame given the flange rotation.
func fromArmFrame(p r3.Vector, flange mgl64.Mat3, origin spatialmath.Origin) spatialmath.Pose {
	rx, ry, rz := spatialmath.EulerZYX(flange.Mul3(toolSwap))
	eff := spatialmath.Pose{
		Location: r3.Vector{X: -p.X, Y: p.Y, Z: p.Z},
		Rotation: r3.Vector{
			X: -utils.RadToDeg(rx),
			Y: utils.RadToDeg(math.Pi - ry),
			Z: -utils.RadToDeg(rz),
		},
	}
	return spatialmath.Decompose(eff, origin)
}

// solve is the closed form inverse kinematics. lengths holds L0..L6. The joints are returned in the
// reported convention together with the reachability of the pose.
func solve(lengths []float64, pointer spatialmath.Pose, origin spatialmath.Origin) ([]float64, kinematics.Status) {
	var theta [numJoints + 1]float64
	status := kinematics.Reachable

	f := toArmFrame(pointer, origin)
	l0, l1 := lengths[0], lengths[1]
	forearm := lengths[2] + lengths[3]
	wrist := lengths[4] + lengths[5]

	// wrist centre
	p5 := f.p.Sub(f.a.Mul(wrist))

	c3 := (p5.X*p5.X + p5.Y*p5.Y + utils.Square(p5.Z-l0) - l1*l1 - forearm*forearm) / (2 * l1 * forearm)
	if math.Abs(c3) > 1+reachTolerance {
		status = kinematics.Unreachable
	}
	// the abs keeps out of reach poses defined: the elbow folds to the nearest real angle
	theta[3] = math.Atan2(math.Sqrt(math.Abs(1-c3*c3)), c3)

	m := l1 + forearm*c3
	n := forearm * math.Sin(theta[3])
	reach := math.Hypot(p5.X, p5.Y)
	height := p5.Z - l0
	theta[2] = math.Atan2(m*reach-n*height, n*reach+m*height)
	theta[1] = math.Atan2(p5.Y, p5.X)

	s1, c1 := math.Sincos(theta[1])
	s23, c23 := math.Sincos(theta[2] + theta[3])

	// approach and secondary axes in the frame of joints 1..3
	as := r3.Vector{
		X: c23*(c1*f.a.X+s1*f.a.Y) - s23*f.a.Z,
		Y: -s1*f.a.X + c1*f.a.Y,
		Z: s23*(c1*f.a.X+s1*f.a.Y) + c23*f.a.Z,
	}
	bs := r3.Vector{
		X: c23*(c1*f.b.X+s1*f.b.Y) - s23*f.b.Z,
		Y: -s1*f.b.X + c1*f.b.Y,
		Z: s23*(c1*f.b.X+s1*f.b.Y) + c23*f.b.Z,
	}

	theta[4] = math.Atan2(as.Y, as.X)
	s4, c4 := math.Sincos(theta[4])
	theta[5] = math.Atan2(c4*as.X+s4*as.Y, as.Z)
	s5, c5 := math.Sincos(theta[5])

	if math.Abs(s5) < singularTolerance {
		// Axes 4 and 6 line up and only their sum is defined. Keep θ4 and take θ6 from the cosine
		// form, which does not divide by sin θ5.
		if status == kinematics.Reachable {
			status = kinematics.Singular
		}
		theta[6] = math.Atan2(c4*bs.Y-s4*bs.X, (c4*bs.X+s4*bs.Y)*math.Copysign(1, c5))
	} else {
		theta[6] = math.Atan2(c4*bs.Y-s4*bs.X, -bs.Z/s5)
	}

	return []float64{
		-(theta[1] + math.Pi),
		-theta[2],
		-theta[3],
		-(theta[4] + math.Pi),
		theta[5],
		-theta[6],
	}, status
}

// flangeRotation is R06 = Rz(θ1)·Ry(θ2+θ3)·Rz(θ4)·Ry(θ5)·Rz(θ6) for internal angles θ.
func flangeRotation(theta [numJoints + 1]float64) mgl64.Mat3 {
	return mgl64.Rotate3DZ(theta[1]).
		Mul3(mgl64.Rotate3DY(theta[2] + theta[3])).
		Mul3(mgl64.Rotate3DZ(theta[4])).
		Mul3(mgl64.Rotate3DY(theta[5])).
		Mul3(mgl64.Rotate3DZ(theta[6]))
}

// internalAngles undoes the reported sign and offset conventions.
func internalAngles(joints []float64) [numJoints + 1]float64 {
	return [numJoints + 1]float64{
		0,
		-joints[0] - math.Pi,
		-joints[1],
		-joints[2],
		-joints[3] - math.Pi,
		joints[4],
		-joints[5],
	}
}

// forward is the forward kinematics matching solve.
func forward(lengths, joints []float64, origin spatialmath.Origin) spatialmath.Pose {
	theta := internalAngles(joints)
	l0, l1 := lengths[0], lengths[1]
	forearm := lengths[2] + lengths[3]
	wrist := lengths[4] + lengths[5]

	reach := l1*math.Sin(theta[2]) + forearm*math.Sin(theta[2]+theta[3])
	height := l1*math.Cos(theta[2]) + forearm*math.Cos(theta[2]+theta[3])
	s1, c1 := math.Sincos(theta[1])
	p5 := r3.Vector{X: reach * c1, Y: reach * s1, Z: l0 + height}

	r06 := flangeRotation(theta)
	approach := spatialmath.Vec3ToR3(r06.Col(2))
	return fromArmFrame(p5.Add(approach.Mul(wrist)), r06, origin)
}
