package cli

import (
	"fmt"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/depthcloud/config"
	"go.viam.com/depthcloud/pointcloud"
	"go.viam.com/depthcloud/rimage"
	"go.viam.com/depthcloud/rimage/transform"
)

func printf(c *cli.Context, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(c.App.Writer, format+"\n", a...)
}

// ExportAction reconstructs every camera of a capture config and writes the merged cloud.
func ExportAction(c *cli.Context) error {
	logger := loggerFromContext(c)
	cfg, err := config.Read(c.Path(flagConfig), logger)
	if err != nil {
		return err
	}
	out := cfg.Output.Path
	if c.IsSet(flagOut) {
		out = c.Path(flagOut)
	}

	agg := pointcloud.NewAggregator(logger)
	agg.ZeroIsInvalid = cfg.Output.ZeroIsInvalid
	for _, camera := range cfg.Cameras {
		cameraLogger := logger.Sublogger(camera.Name)
		db, err := rimage.ParseDepthBuffer(cfg.DepthFilePath(camera))
		if err != nil {
			return errors.Wrapf(err, "camera %q", camera.Name)
		}
		params, err := camera.CameraParameters(db.Width(), db.Height())
		if err != nil {
			return err
		}
		dr, err := transform.NewDepthReconstructor(*params, cameraLogger)
		if err != nil {
			return errors.Wrapf(err, "camera %q", camera.Name)
		}
		points, err := dr.ReconstructPointCloud(c.Context, db)
		if err != nil {
			return errors.Wrapf(err, "camera %q", camera.Name)
		}
		var normals pointcloud.PointCloud
		if camera.Normals {
			dense, err := dr.EstimateNormals(c.Context, db)
			if err != nil {
				return errors.Wrapf(err, "camera %q", camera.Name)
			}
			normals = dense
		}
		cameraLogger.Debugw("reconstructed", "points", points.Size(), "normals", camera.Normals)
		if err := agg.Add(points, normals); err != nil {
			return err
		}
	}

	records := agg.Records()
	if err := pointcloud.WriteToFile(out, records, logger); err != nil {
		return err
	}
	printf(c, "exported %d points (normals: %t) to %s", records.Len(), records.HasNormals(), out)
	return nil
}

// SynthesizeAction writes a depth buffer of a wall at constant eye depth, as a camera with
// the given clip planes would render it.
func SynthesizeAction(c *cli.Context) error {
	near, far, depth := c.Float64(flagNear), c.Float64(flagFar), c.Float64(flagDepth)
	if near <= 0 || far <= near {
		return errors.Wrapf(transform.ErrInvalidCameraParameters, "near=%v far=%v", near, far)
	}
	if depth < near || depth > far {
		return errors.Errorf("depth %v must lie between the clip planes [%v, %v]", depth, near, far)
	}
	z := transform.EncodeEyeDepth(depth, transform.NewZBufferParams(near, far))
	db, err := rimage.NewConstantDepthBuffer(c.Int(flagWidth), c.Int(flagHeight), z)
	if err != nil {
		return err
	}
	out := c.Path(flagOut)
	if err := db.WriteToFile(out); err != nil {
		return err
	}
	loggerFromContext(c).Debugw("synthesized depth buffer", "path", out, "raw", z)
	printf(c, "wrote %dx%d depth buffer to %s", db.Width(), db.Height(), out)
	return nil
}

// InspectAction prints the size and bounds of a point cloud file.
func InspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("inspect takes exactly one file")
	}
	fn := c.Args().First()
	records, err := pointcloud.NewFromFile(fn, loggerFromContext(c))
	if err != nil {
		return err
	}

	meta := pointcloud.NewMetaData()
	lo.ForEach(records.Points, func(p r3.Vector, _ int) { meta.Merge(p) })

	printf(c, "file: %s", filepath.Base(fn))
	printf(c, "points: %d", records.Len())
	printf(c, "normals: %t", records.HasNormals())
	if meta.Valid > 0 {
		printf(c, "min: %v %v %v", meta.MinX, meta.MinY, meta.MinZ)
		printf(c, "max: %v %v %v", meta.MaxX, meta.MaxY, meta.MaxZ)
	}
	return nil
}

// PreviewAction renders a depth buffer file as an image.
func PreviewAction(c *cli.Context) error {
	db, err := rimage.ParseDepthBuffer(c.Path(flagIn))
	if err != nil {
		return err
	}
	out := c.Path(flagOut)
	if err := db.WritePreview(out, c.Int(flagSize)); err != nil {
		return err
	}
	printf(c, "wrote preview of %s to %s", db, out)
	return nil
}

// SchemaAction prints the JSON schema of capture configs.
func SchemaAction(c *cli.Context) error {
	data, err := config.Schema()
	if err != nil {
		return err
	}
	printf(c, "%s", data)
	return nil
}
