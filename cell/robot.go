// Package cell places robots in the cell and plays their programs back on the render loop.
package cell

import (
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/robotcell/cellsim/config"
	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/kinematics/portal"
	"github.com/robotcell/cellsim/kinematics/sixaxis"
	"github.com/robotcell/cellsim/logging"
	"github.com/robotcell/cellsim/scene"
	"github.com/robotcell/cellsim/spatialmath"
)

// defaultScenes build a scene for a robot whose description names no scene file.
var defaultScenes = map[kinematics.Topology]func(name string, lengths []float64) (*scene.BasicNode, error){
	kinematics.SixAxis: sixaxis.NewScene,
	kinematics.Portal:  portal.NewScene,
}

// lengthTolerance is the largest length change, in mm, that Apply treats as no edit.
const lengthTolerance = 1e-9

// A Robot is a kinematic model connected to its scene and placed at an origin.
type Robot struct {
	name   string
	model  kinematics.Model
	logger logging.Logger

	mu     sync.RWMutex
	origin spatialmath.Origin
	root   scene.Node
	last   kinematics.Solution
}

// NewRobot returns a robot that is not yet connected to a scene.
func NewRobot(name string, model kinematics.Model, origin spatialmath.Origin, logger logging.Logger) *Robot {
	return &Robot{name: name, model: model, origin: origin, logger: logger}
}

// FromConfig builds the robot described by r and connects it to its scene: the scene file when one
// is named, otherwise a scene laid out from the configured lengths.
func FromConfig(cfg *config.Config, r *config.Robot, logger logging.Logger) (*Robot, error) {
	logger = logger.Sublogger(r.Name)
	model, err := r.NewModel(logger)
	if err != nil {
		return nil, err
	}
	var root scene.Node
	if r.Scene != "" {
		root, err = scene.ReadFile(cfg.ResolvePath(r.Scene))
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read scene of robot %q", r.Name)
		}
	} else {
		if model.ConfigState() != kinematics.Configured {
			return nil, errors.Errorf("robot %q has neither lengths nor a scene to derive them from", r.Name)
		}
		root, err = defaultScenes[model.Topology()](r.Name, model.Lengths())
		if err != nil {
			return nil, err
		}
	}
	robot := NewRobot(r.Name, model, r.Origin.ParseConfig(), logger)
	if err := robot.Connect(root); err != nil {
		return nil, err
	}
	return robot, nil
}

// Name returns the robot name.
func (r *Robot) Name() string {
	return r.name
}

// Model returns the kinematic model.
func (r *Robot) Model() kinematics.Model {
	return r.model
}

// Origin returns the robot placement.
func (r *Robot) Origin() spatialmath.Origin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.origin
}

// Scene returns the connected scene root, or nil.
func (r *Robot) Scene() scene.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// Last returns the most recent solution computed by MoveTo.
func (r *Robot) Last() kinematics.Solution {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Connect attaches the model to root, deriving lengths if it has none, and sizes the links.
func (r *Robot) Connect(root scene.Node) error {
	if err := r.model.Connect(root); err != nil {
		return errors.Wrapf(err, "cannot connect robot %q", r.name)
	}
	if err := r.model.UpdateLinkGeometry(); err != nil {
		return err
	}
	r.mu.Lock()
	r.root = root
	r.mu.Unlock()
	r.logger.Infow("robot connected", "topology", r.model.Topology().String(), "lengths", r.model.Lengths())
	return nil
}

// MoveTo solves the pose and, when connected, places the links in the same call.
func (r *Robot) MoveTo(pose spatialmath.Pose) (kinematics.Solution, error) {
	origin := r.Origin()
	sol, err := r.model.InverseKinematics(pose, origin)
	if err != nil {
		return kinematics.Solution{}, err
	}
	if r.model.Connected() {
		if err := r.model.UpdateLinkPlacement(sol.Inputs); err != nil {
			return kinematics.Solution{}, err
		}
	}
	r.mu.Lock()
	r.last = sol
	r.mu.Unlock()
	return sol, nil
}

// Apply takes over an edited description of the robot: new lengths resize the links and a new
// origin moves the robot. The topology cannot change.
func (r *Robot) Apply(desc *config.Robot) error {
	if desc.Topology != r.model.Topology().String() {
		return errors.Errorf("robot %q cannot change topology from %q to %q", r.name, r.model.Topology(), desc.Topology)
	}
	if len(desc.Lengths) != 0 && !floats.EqualApprox(desc.Lengths, r.model.Lengths(), lengthTolerance) {
		if err := r.model.SetLengths(desc.Lengths); err != nil {
			return errors.Wrapf(err, "cannot apply lengths to robot %q", r.name)
		}
		r.logger.Infow("link lengths changed", "lengths", desc.Lengths)
	}
	r.mu.Lock()
	r.origin = desc.Origin.ParseConfig()
	r.mu.Unlock()
	return nil
}
