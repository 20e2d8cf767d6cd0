package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/robotcell/cellsim/cell"
	"github.com/robotcell/cellsim/config"
	"github.com/robotcell/cellsim/logging"
	"github.com/robotcell/cellsim/program"
	"github.com/robotcell/cellsim/scene"
	"github.com/robotcell/cellsim/spatialmath"
	"github.com/robotcell/cellsim/stats"
)

// reachTolerance bounds the per component difference between a target and the reached pose.
const reachTolerance = 1e-3

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func newLogger(c *cli.Context) logging.Logger {
	level := logging.INFO
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}
	var logger logging.Logger
	switch path := c.String(flagLogFile); {
	case path != "":
		logger = logging.NewFileLogger("cellsim", level, path)
	case level == logging.DEBUG:
		logger = logging.NewDebugLogger("cellsim")
	default:
		logger = logging.NewLogger("cellsim")
	}
	logging.ReplaceGlobal(logger)
	return logger
}

// loadRobot reads the cell description and builds the selected robot.
func loadRobot(c *cli.Context, logger logging.Logger) (*config.Config, *config.Robot, *cell.Robot, error) {
	cfg, desc, err := loadDescription(c)
	if err != nil {
		return nil, nil, nil, err
	}
	robot, err := cell.FromConfig(cfg, desc, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, desc, robot, nil
}

func loadDescription(c *cli.Context) (*config.Config, *config.Robot, error) {
	cfg, err := config.Read(c.String(flagConfig))
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Robots) == 0 {
		return nil, nil, errors.New("cell description has no robots")
	}
	name := c.String(flagRobot)
	if name == "" {
		return cfg, &cfg.Robots[0], nil
	}
	desc, ok := cfg.FindRobot(name)
	if !ok {
		return nil, nil, errors.Errorf("no robot named %q in %s", name, c.String(flagConfig))
	}
	return cfg, desc, nil
}

// SolveAction is the corresponding Action for 'solve'.
func SolveAction(c *cli.Context) error {
	if c.Args().Len() != 6 {
		return errors.New("solve needs exactly six pose values: x y z r p w")
	}
	values := make([]float64, 0, 6)
	for _, arg := range c.Args().Slice() {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return errors.Wrapf(err, "pose value %q", arg)
		}
		values = append(values, v)
	}
	pose, err := spatialmath.NewPoseFromSlice(values)
	if err != nil {
		return err
	}

	logger := newLogger(c)
	_, _, robot, err := loadRobot(c, logger)
	if err != nil {
		return err
	}
	sol, err := robot.MoveTo(pose)
	if err != nil {
		return err
	}
	reached, err := robot.Model().Transform(sol.Inputs, robot.Origin())
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", solutionTable(robot, sol))
	printf(c.App.Writer, "status: %s", sol.Status)
	printf(c.App.Writer, "reached %s", reached)
	if !spatialmath.PoseAlmostEqual(reached, pose, reachTolerance) {
		printf(c.App.Writer, "target not reached, off by %.3f mm", reached.Location.Distance(pose.Location))
	}
	return nil
}

// playback is one robot's run of the play command.
type playback struct {
	robot  *cell.Robot
	prog   *program.Program
	store  *stats.Store
	result cell.Result
}

func newPlayback(c *cli.Context, cfg *config.Config, desc *config.Robot, path string, logger logging.Logger) (*playback, error) {
	if path == "" {
		if desc.Program == "" {
			return nil, errors.Errorf("robot %q has no program, pass --%s", desc.Name, flagProgram)
		}
		path = cfg.ResolvePath(desc.Program)
	}
	prog, err := program.ReadFile(path)
	if err != nil {
		return nil, err
	}
	robot, err := cell.FromConfig(cfg, desc, logger)
	if err != nil {
		return nil, err
	}
	pb := &playback{robot: robot, prog: prog}
	if c.Bool(flagStats) {
		pb.store = stats.NewStore()
	}
	return pb, nil
}

func (pb *playback) run(ctx context.Context, rate float64, logger logging.Logger) error {
	opts := cell.RunnerOptions{FrameRate: rate}
	if pb.store != nil {
		opts.Recorder = pb.store
	}
	res, err := cell.NewRunner(pb.robot, pb.prog, opts, logger).Run(ctx)
	if err != nil {
		return errors.Wrapf(err, "playing %q on %q", pb.prog.Name, pb.robot.Name())
	}
	pb.result = res
	return nil
}

// PlayAction is the corresponding Action for 'play'.
func PlayAction(c *cli.Context) error {
	logger := newLogger(c)
	var playbacks []*playback
	if c.Bool(flagAll) {
		cfg, err := config.Read(c.String(flagConfig))
		if err != nil {
			return err
		}
		for idx := range cfg.Robots {
			desc := &cfg.Robots[idx]
			if desc.Program == "" {
				continue
			}
			pb, err := newPlayback(c, cfg, desc, "", logger)
			if err != nil {
				return err
			}
			playbacks = append(playbacks, pb)
		}
		if len(playbacks) == 0 {
			return errors.New("no robot in the cell has a program")
		}
	} else {
		cfg, desc, err := loadDescription(c)
		if err != nil {
			return err
		}
		pb, err := newPlayback(c, cfg, desc, c.String(flagProgram), logger)
		if err != nil {
			return err
		}
		playbacks = append(playbacks, pb)
	}

	errs, ctx := errgroup.WithContext(c.Context)
	for _, pb := range playbacks {
		pb := pb
		errs.Go(func() error {
			return pb.run(ctx, c.Float64(flagRate), logger.Sublogger(pb.robot.Name()))
		})
	}
	if err := errs.Wait(); err != nil {
		return err
	}
	for _, pb := range playbacks {
		printf(c.App.Writer, "played %q on %q: %d frames, %d degenerate",
			pb.prog.Name, pb.robot.Name(), pb.result.Frames, pb.result.Degenerate)
		if pb.store != nil {
			printf(c.App.Writer, "%s", summaryTable(pb.store))
		}
	}
	return nil
}

// LengthsAction is the corresponding Action for 'lengths'.
func LengthsAction(c *cli.Context) error {
	logger := newLogger(c)
	var (
		cfg   *config.Config
		desc  *config.Robot
		robot *cell.Robot
		err   error
	)
	if scenePath := c.String(flagScene); scenePath != "" {
		cfg, desc, err = loadDescription(c)
		if err != nil {
			return err
		}
		root, err := scene.ReadFile(scenePath)
		if err != nil {
			return err
		}
		model, err := desc.NewModel(logger)
		if err != nil {
			return err
		}
		robot = cell.NewRobot(desc.Name, model, desc.Origin.ParseConfig(), logger)
		if err := robot.Connect(root); err != nil {
			return err
		}
	} else {
		cfg, desc, robot, err = loadRobot(c, logger)
		if err != nil {
			return err
		}
	}

	printf(c.App.Writer, "%s", stateTable(robot.Model().State()))
	if !c.Bool(flagSave) {
		return nil
	}
	if err := cfg.StoreLengths(desc.Name, robot.Model()); err != nil {
		return err
	}
	if err := config.WriteFile(c.String(flagConfig), cfg); err != nil {
		return err
	}
	printf(c.App.Writer, "saved lengths of %q to %s", desc.Name, c.String(flagConfig))
	return nil
}

// WatchAction is the corresponding Action for 'watch'.
func WatchAction(c *cli.Context) error {
	logger := newLogger(c)
	path := c.String(flagConfig)
	cfg, err := config.Read(path)
	if err != nil {
		return err
	}
	robots := map[string]*cell.Robot{}
	for idx := range cfg.Robots {
		robot, err := cell.FromConfig(cfg, &cfg.Robots[idx], logger)
		if err != nil {
			return err
		}
		robots[robot.Name()] = robot
	}

	watcher, err := config.NewWatcher(c.Context, path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warnw("closing config watcher", "error", err)
		}
	}()
	logger.Infow("watching cell description", "path", path, "robots", len(robots))
	for {
		select {
		case <-c.Context.Done():
			return nil
		case changed := <-watcher.Config():
			for idx := range changed.Robots {
				desc := &changed.Robots[idx]
				robot, ok := robots[desc.Name]
				if !ok {
					logger.Warnw("ignoring robot added while watching", "robot", desc.Name)
					continue
				}
				if err := robot.Apply(desc); err != nil {
					logger.Errorw("cannot apply edit", "robot", desc.Name, "error", err)
					continue
				}
			}
			printf(c.App.Writer, "%s", robotsTable(robots))
		}
	}
}
