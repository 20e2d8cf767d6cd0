// Package main is the cellsim command itself.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robotcell/cellsim/cli"
	"github.com/robotcell/cellsim/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}
