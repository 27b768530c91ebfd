// Package config defines the JSON description of a capture: the cameras whose depth
// buffers are reconstructed and where the merged cloud is exported.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/depthcloud/rimage/transform"
	"go.viam.com/depthcloud/spatialmath"
)

// Defaults applied to fields left unset.
const (
	DefaultFOVDegrees = 60.0
	DefaultNear       = 0.3
	DefaultFar        = 1000.0
	DefaultOutputPath = "pointcloud.ply"
)

// Vector3 is a position or set of angles.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// R3 converts to an r3.Vector.
func (v Vector3) R3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// A Config describes a capture made of one or more cameras.
type Config struct {
	Cameras []CameraConfig `json:"cameras" jsonschema:"minItems=1"`
	Output  OutputConfig   `json:"output"`

	// ConfigFilePath is where the config was read from, if anywhere. Relative depth files
	// are resolved against its directory.
	ConfigFilePath string `json:"-"`
}

// CameraConfig describes one virtual camera and the depth buffer it rendered.
type CameraConfig struct {
	Name      string `json:"name"`
	DepthFile string `json:"depth_file" jsonschema:"description=binary depth buffer (.dat or .dat.gz) or gray image (.png or .tga)"`

	// Width and Height default to the size of the depth buffer.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	FOVDegrees float64 `json:"fov_degrees,omitempty" jsonschema:"exclusiveMinimum=0,exclusiveMaximum=180"`
	Near       float64 `json:"near,omitempty"`
	Far        float64 `json:"far,omitempty"`

	Position Vector3 `json:"position"`

	// At most one of Orientation and EulerDegrees may be set.
	Orientation  *spatialmath.R4AA `json:"orientation,omitempty"`
	EulerDegrees *Vector3          `json:"euler_degrees,omitempty"`

	Normals bool `json:"normals,omitempty"`
}

// OutputConfig describes where and how the merged cloud is written.
type OutputConfig struct {
	Path          string `json:"path,omitempty" jsonschema:"description=.ply .pcd or .las"`
	ZeroIsInvalid bool   `json:"zero_is_invalid,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if len(config.Cameras) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "cameras")
	}
	names := map[string]bool{}
	for idx, conf := range config.Cameras {
		if err := conf.Validate(fmt.Sprintf("%s.%s.%d", path, "cameras", idx)); err != nil {
			return err
		}
		if names[conf.Name] {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.%s.%d", path, "cameras", idx),
				errors.Errorf("duplicate camera name %q", conf.Name))
		}
		names[conf.Name] = true
	}
	return config.Output.Validate(fmt.Sprintf("%s.%s", path, "output"))
}

// Validate ensures all parts of the config are valid.
func (config *CameraConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.DepthFile == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "depth_file")
	}
	if config.Width < 0 || config.Height < 0 {
		return utils.NewConfigValidationError(path, errors.New("width and height cannot be negative"))
	}
	if config.FOVDegrees < 0 || config.FOVDegrees >= 180 {
		return utils.NewConfigValidationError(path, errors.New("fov_degrees must be in (0, 180)"))
	}
	if config.Near < 0 || config.Far < 0 {
		return utils.NewConfigValidationError(path, errors.New("near and far cannot be negative"))
	}
	if config.Near != 0 && config.Far != 0 && config.Far <= config.Near {
		return utils.NewConfigValidationError(path, errors.New("far must be greater than near"))
	}
	if config.Orientation != nil && config.EulerDegrees != nil {
		return utils.NewConfigValidationError(path, errors.New("only one of orientation and euler_degrees can be set"))
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (config *OutputConfig) Validate(path string) error {
	if config.Path == "" {
		return nil
	}
	switch filepath.Ext(config.Path) {
	case ".ply", ".pcd", ".las":
		return nil
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unsupported output format for %q", config.Path))
	}
}

// ApplyDefaults fills in unset optional fields.
func (config *Config) ApplyDefaults() {
	for i := range config.Cameras {
		config.Cameras[i].ApplyDefaults()
	}
	if config.Output.Path == "" {
		config.Output.Path = DefaultOutputPath
	}
}

// ApplyDefaults fills in unset optional fields.
func (config *CameraConfig) ApplyDefaults() {
	if config.FOVDegrees == 0 {
		config.FOVDegrees = DefaultFOVDegrees
	}
	if config.Near == 0 {
		config.Near = DefaultNear
	}
	if config.Far == 0 {
		config.Far = DefaultFar
	}
}

// DepthFilePath resolves the camera's depth file relative to the config file.
func (config *Config) DepthFilePath(camera CameraConfig) string {
	if filepath.IsAbs(camera.DepthFile) || config.ConfigFilePath == "" {
		return camera.DepthFile
	}
	return filepath.Join(filepath.Dir(config.ConfigFilePath), camera.DepthFile)
}

// OrientationQuat returns the camera's orientation, the identity when none is set.
func (config *CameraConfig) OrientationQuat() quat.Number {
	switch {
	case config.Orientation != nil:
		return config.Orientation.ToQuat()
	case config.EulerDegrees != nil:
		return spatialmath.NewQuatFromEulerDegrees(config.EulerDegrees.X, config.EulerDegrees.Y, config.EulerDegrees.Z)
	default:
		return spatialmath.NewZeroOrientation()
	}
}

// CameraParameters builds the camera for a depth buffer of the given size. Width and
// Height from the config take precedence.
func (config *CameraConfig) CameraParameters(width, height int) (*transform.CameraParameters, error) {
	if config.Width != 0 {
		width = config.Width
	}
	if config.Height != 0 {
		height = config.Height
	}
	params, err := transform.NewPerspectiveCamera(
		width, height, config.FOVDegrees, config.Near, config.Far, config.Position.R3(), config.OrientationQuat())
	if err != nil {
		return nil, errors.Wrapf(err, "camera %q", config.Name)
	}
	return params, nil
}
