package pointcloud

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/depthcloud/logging"
	rutils "go.viam.com/depthcloud/utils"
)

// ErrExportFailed is returned when records could not be written to their destination.
var ErrExportFailed = errors.New("point cloud export failed")

func newExportError(err error, fn string) error {
	return errors.Wrapf(ErrExportFailed, "%q: %v", fn, err)
}

// WriteToFile exports the records to fn, choosing the format from the extension: .ply,
// .pcd (binary) or .las. Nothing is left at fn, and no temporary file remains, if the
// export fails.
func WriteToFile(fn string, records Records, logger logging.Logger) error {
	var err error
	switch ext := filepath.Ext(fn); ext {
	case ".ply":
		err = rutils.AtomicWriteFile(fn, func(w io.Writer) error {
			return ToPLY(w, records.Points, records.Normals)
		})
	case ".pcd":
		err = rutils.AtomicWriteFile(fn, func(w io.Writer) error {
			return ToPCD(records, w, PCDBinary)
		})
	case ".las":
		err = writeLASFileAtomic(records, fn)
	default:
		return errors.Wrapf(ErrExportFailed, "do not know how to write file %q", fn)
	}
	if err != nil {
		logger.Errorw("cannot save point cloud", "path", fn, "error", err)
		return newExportError(err, fn)
	}
	logger.Infow("saved point cloud", "path", fn, "vertices", records.Len(), "normals", records.HasNormals())
	return nil
}

// NewFromFile reads back a file written by WriteToFile.
func NewFromFile(fn string, logger logging.Logger) (Records, error) {
	switch filepath.Ext(fn) {
	case ".las":
		return NewFromLASFile(fn, logger)
	case ".ply", ".pcd":
	default:
		return Records{}, errors.Errorf("do not know how to read file %q", fn)
	}

	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return Records{}, err
	}
	defer utils.UncheckedErrorFunc(f.Close)

	if filepath.Ext(fn) == ".pcd" {
		return ReadPCD(f)
	}
	return ReadPLY(f)
}
