// Package main is the depthcloud command.
package main

import (
	"os"

	"go.viam.com/depthcloud/cli"
	"go.viam.com/depthcloud/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr, nil)
	if err := app.Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}
