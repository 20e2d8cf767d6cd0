package cell

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/robotcell/cellsim/kinematics"
	"github.com/robotcell/cellsim/logging"
	"github.com/robotcell/cellsim/program"
	"github.com/robotcell/cellsim/stats"
)

// DefaultFrameRate is the render loop rate used when none is given.
const DefaultFrameRate = 30

// RunnerOptions configure a Runner. Zero values select the defaults.
type RunnerOptions struct {
	FrameRate float64
	Clock     clock.Clock
	// Recorder receives the model statistics of every frame. Nil disables collection.
	Recorder stats.Recorder
}

// A Runner plays a program on a robot: every frame it samples the program, solves the pose once and
// places the links before the frame ends.
type Runner struct {
	robot    *Robot
	program  *program.Program
	period   time.Duration
	clock    clock.Clock
	recorder stats.Recorder
	logger   logging.Logger
}

// Result summarizes a playback.
type Result struct {
	Frames     int
	Degenerate int
}

// NewRunner returns a runner for prog on robot.
func NewRunner(robot *Robot, prog *program.Program, opts RunnerOptions, logger logging.Logger) *Runner {
	rate := opts.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = stats.Discard
	}
	return &Runner{
		robot:    robot,
		program:  prog,
		period:   time.Duration(float64(time.Second) / rate),
		clock:    clk,
		recorder: recorder,
		logger:   logger,
	}
}

// Period is the time between frames.
func (r *Runner) Period() time.Duration {
	return r.period
}

// Step renders frame index at program time t.
func (r *Runner) Step(index int, t time.Duration) (kinematics.Solution, error) {
	sol, err := r.robot.MoveTo(r.program.PoseAt(t))
	if err != nil {
		return kinematics.Solution{}, errors.Wrapf(err, "frame %d", index)
	}
	if sol.Degenerate() {
		r.logger.Debugw("degenerate frame", "frame", index, "at", t, "status", sol.Status.String())
	}
	r.recorder.Record(r.robot.Model().Statistics(index, r.robot.Origin())...)
	return sol, nil
}

// Run plays the program until it ends or ctx is done. Looping programs only stop with ctx.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result
	r.recorder.Clear()
	ticker := r.clock.Ticker(r.period)
	defer ticker.Stop()
	start := r.clock.Now()
	r.logger.Debugw("playback started", "program", r.program.Name, "period", r.period)
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-ticker.C:
		}
		elapsed := r.clock.Since(start)
		sol, err := r.Step(res.Frames, elapsed)
		if err != nil {
			return res, err
		}
		res.Frames++
		if sol.Degenerate() {
			res.Degenerate++
		}
		if !r.program.Loop && elapsed >= r.program.Duration() {
			r.logger.Debugw("playback finished", "program", r.program.Name, "frames", res.Frames)
			return res, nil
		}
	}
}
