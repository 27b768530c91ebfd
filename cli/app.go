// Package cli contains the depthcloud command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/depthcloud/logging"
)

const (
	// Flags.
	flagDebug  = "debug"
	flagConfig = "config"
	flagOut    = "out"
	flagIn     = "in"
	flagWidth  = "width"
	flagHeight = "height"
	flagDepth  = "depth"
	flagNear   = "near"
	flagFar    = "far"
	flagSize   = "size"

	loggerMetadataKey = "logger"
)

// NewApp returns the depthcloud application writing to out and errOut. If logger is nil
// one is created when the app runs, at debug level when --debug is given.
func NewApp(out, errOut io.Writer, logger logging.Logger) *cli.App {
	return &cli.App{
		Name:            "depthcloud",
		Usage:           "reconstruct point clouds from virtual camera depth buffers",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			l := logger
			if l == nil {
				if c.Bool(flagDebug) {
					l = logging.NewDebugLogger("depthcloud")
				} else {
					l = logging.NewLogger("depthcloud")
				}
			}
			if c.App.Metadata == nil {
				c.App.Metadata = map[string]interface{}{}
			}
			c.App.Metadata[loggerMetadataKey] = l
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "export",
				Usage:     "reconstruct every camera of a capture config and export the merged cloud",
				UsageText: "depthcloud export --config FILE [--out FILE]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "load capture configuration from `FILE`",
					},
					&cli.PathFlag{
						Name:  flagOut,
						Usage: "write the cloud to `FILE` (.ply, .pcd or .las) instead of the configured output",
					},
				},
				Action: ExportAction,
			},
			{
				Name:  "synthesize",
				Usage: "write a depth buffer of a flat wall at a constant distance",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagWidth, Value: 64, Usage: "buffer width in pixels"},
					&cli.IntFlag{Name: flagHeight, Value: 48, Usage: "buffer height in pixels"},
					&cli.Float64Flag{Name: flagDepth, Value: 5, Usage: "distance of the wall along the view axis"},
					&cli.Float64Flag{Name: flagNear, Value: 0.3, Usage: "near clip plane"},
					&cli.Float64Flag{Name: flagFar, Value: 1000, Usage: "far clip plane"},
					&cli.PathFlag{
						Name:     flagOut,
						Required: true,
						Usage:    "write the buffer to `FILE` (.dat or .dat.gz)",
					},
				},
				Action: SynthesizeAction,
			},
			{
				Name:      "inspect",
				Usage:     "print a summary of a point cloud file",
				ArgsUsage: "<file>",
				Action:    InspectAction,
			},
			{
				Name:  "preview",
				Usage: "render a depth buffer as a color image",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: flagIn, Required: true, Usage: "read the depth buffer from `FILE`"},
					&cli.PathFlag{Name: flagOut, Required: true, Usage: "write the image to `FILE` (.webp or .png)"},
					&cli.IntFlag{Name: flagSize, Value: 512, Usage: "longest side of the image, 0 keeps the buffer size"},
				},
				Action: PreviewAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of capture configs",
				Action: SchemaAction,
			},
		},
	}
}

func loggerFromContext(c *cli.Context) logging.Logger {
	if l, ok := c.App.Metadata[loggerMetadataKey].(logging.Logger); ok {
		return l
	}
	return logging.Global()
}
