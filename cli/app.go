// Package cli contains the cellsim command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	flagConfig  = "config"
	flagRobot   = "robot"
	flagDebug   = "debug"
	flagLogFile = "log-file"
	flagAll     = "all"
	flagProgram = "program"
	flagRate    = "rate"
	flagStats   = "stats"
	flagScene   = "scene"
	flagSave    = "save"
)

var (
	configFlag = &cli.StringFlag{
		Name:     flagConfig,
		Aliases:  []string{"c"},
		Usage:    "load the cell description from `FILE`",
		Required: true,
	}
	robotFlag = &cli.StringFlag{
		Name:  flagRobot,
		Usage: "robot `NAME` within the cell, defaults to the first robot",
	}
)

var app = &cli.App{
	Name:            "cellsim",
	Usage:           "solve and play back robot cell kinematics",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "also write JSON logs to the rotated log `FILE`",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "solve",
			Usage:     "solve the inverse kinematics of one pose",
			ArgsUsage: "<x> <y> <z> <r> <p> <w>",
			Flags:     []cli.Flag{configFlag, robotFlag},
			Action:    SolveAction,
		},
		{
			Name:  "play",
			Usage: "play a taught point program on the render loop",
			Flags: []cli.Flag{
				configFlag,
				robotFlag,
				&cli.StringFlag{
					Name:  flagProgram,
					Usage: "program `FILE`, defaults to the robot's program",
				},
				&cli.Float64Flag{
					Name:  flagRate,
					Usage: "frames per second",
					Value: 30,
				},
				&cli.BoolFlag{
					Name:  flagAll,
					Usage: "play the program of every robot in the cell at once",
				},
				&cli.BoolFlag{
					Name:  flagStats,
					Usage: "print a summary of the recorded statistics",
				},
			},
			Action: PlayAction,
		},
		{
			Name:  "lengths",
			Usage: "show the link lengths of a robot, deriving them from its scene when unset",
			Flags: []cli.Flag{
				configFlag,
				robotFlag,
				&cli.StringFlag{
					Name:  flagScene,
					Usage: "derive from scene `FILE` instead of the robot's scene",
				},
				&cli.BoolFlag{
					Name:  flagSave,
					Usage: "store the lengths in the cell description",
				},
			},
			Action: LengthsAction,
		},
		{
			Name:   "watch",
			Usage:  "apply edits of the cell description to the robots as they are saved",
			Flags:  []cli.Flag{configFlag},
			Action: WatchAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
