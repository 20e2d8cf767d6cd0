// Package config reads and writes the description of a robot cell: one entry per robot naming its
// topology, link lengths, cell placement and optional scene and program files.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/logging"
	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/utils"
)

// A Config describes a robot cell.
type Config struct {
	Robots []Robot `json:"robots"`

	// ConfigFilePath is the path the config was read from, if any. Relative scene and program paths
	// are resolved against its directory.
	ConfigFilePath string `json:"-"`
}

// A Robot describes one robot of the cell.
type Robot struct {
	Name     string    `json:"name"`
	Topology string    `json:"topology"`
	Lengths  []float64 `json:"lengths,omitempty"`
	Origin   Origin    `json:"origin"`
	Scene    string    `json:"scene,omitempty"`
	Program  string    `json:"program,omitempty"`
}

// Origin places a robot in the cell. Location is in millimetres and rotation in degrees. SpaceScale
// bounds the reachable box per axis; zero components are unbounded.
type Origin struct {
	Location   r3.Vector `json:"location"`
	Rotation   r3.Vector `json:"rotation"`
	SpaceScale r3.Vector `json:"space_scale"`
}

// ParseConfig converts the origin into a spatialmath.Origin.
func (o Origin) ParseConfig() spatialmath.Origin {
	return spatialmath.Origin{Location: o.Location, Rotation: o.Rotation, SpaceScale: o.SpaceScale}
}

// Validate ensures the robot description is usable. Every problem found is reported.
func (r *Robot) Validate(path string) error {
	var errAll error
	if r.Name == "" {
		multierr.AppendInto(&errAll, utils.NewConfigValidationFieldRequiredError(path, "name"))
	}
	if r.Topology == "" {
		multierr.AppendInto(&errAll, utils.NewConfigValidationFieldRequiredError(path, "topology"))
	} else if _, err := kinematics.ParseTopology(r.Topology); err != nil {
		multierr.AppendInto(&errAll, utils.NewConfigValidationError(path, err))
	}
	for i, l := range r.Lengths {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			multierr.AppendInto(&errAll, utils.NewConfigValidationError(
				fmt.Sprintf("%s.lengths.%d", path, i), errors.New("length must be a finite number")))
		}
	}
	if s := r.Origin.SpaceScale; s.X < 0 || s.Y < 0 || s.Z < 0 {
		multierr.AppendInto(&errAll, utils.NewConfigValidationError(
			path+".origin", errors.New("space_scale must not be negative")))
	}
	return errAll
}

// NewModel constructs the kinematic model the robot describes.
func (r *Robot) NewModel(logger logging.Logger) (kinematics.Model, error) {
	topology, err := kinematics.ParseTopology(r.Topology)
	if err != nil {
		return nil, err
	}
	model, err := kinematics.New(topology, r.Lengths, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "robot %q", r.Name)
	}
	return model, nil
}

// Ensure validates every robot and checks robot names are unique.
func (c *Config) Ensure() error {
	var errAll error
	for idx := range c.Robots {
		multierr.AppendInto(&errAll, c.Robots[idx].Validate(fmt.Sprintf("%s.%d", "robots", idx)))
	}
	names := lo.Map(c.Robots, func(r Robot, _ int) string { return r.Name })
	for _, dup := range lo.FindDuplicates(names) {
		if dup == "" {
			continue
		}
		multierr.AppendInto(&errAll, errors.Errorf("robot name %q is used more than once", dup))
	}
	return errAll
}

// FindRobot finds a robot by name.
func (c *Config) FindRobot(name string) (*Robot, bool) {
	for idx := range c.Robots {
		if c.Robots[idx].Name == name {
			return &c.Robots[idx], true
		}
	}
	return nil, false
}

// ResolvePath resolves a scene or program path relative to the config file.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.ConfigFilePath == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.ConfigFilePath), path)
}

// Read reads a config from the given file, expanding ${VAR} references from the environment.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file the
// reader originated from.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	cfg.ConfigFilePath = originalPath
	if err := cfg.Ensure(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write writes the config as indented JSON.
func Write(w io.Writer, cfg *Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// WriteFile persists the config to path, replacing the file atomically.
func WriteFile(path string, cfg *Config) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck
		os.Remove(tmp.Name())
	}()
	if err := Write(tmp, cfg); err != nil {
		return multierr.Combine(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// StoreLengths records the current lengths of model on the named robot, as after a derivation or an
// explicit geometry edit.
func (c *Config) StoreLengths(name string, model kinematics.Model) error {
	r, ok := c.FindRobot(name)
	if !ok {
		return errors.Errorf("no robot named %q", name)
	}
	r.Lengths = model.Lengths()
	return nil
}
