package pointcloud

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edaniels/lidario"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/depthcloud/logging"
	rutils "go.viam.com/depthcloud/utils"
)

// Coordinates outside this range cannot be stored in a LAS file without losing precision.
const (
	maxPreciseFloat64 = float64(9007199254740992)
	minPreciseFloat64 = -maxPreciseFloat64
)

func isPrecise(v r3.Vector) bool {
	return v.X >= minPreciseFloat64 && v.X <= maxPreciseFloat64 &&
		v.Y >= minPreciseFloat64 && v.Y <= maxPreciseFloat64 &&
		v.Z >= minPreciseFloat64 && v.Z <= maxPreciseFloat64
}

// NewFromLASFile reads the points of a LAS file. If any lossiness of points could occur
// from reading it in, it's reported but is not an error.
func NewFromLASFile(fn string, logger logging.Logger) (Records, error) {
	lf, err := lidario.NewLasFile(fn, "r")
	if err != nil {
		return Records{}, err
	}
	defer utils.UncheckedErrorFunc(lf.Close)

	records := Records{Points: make([]r3.Vector, 0, lf.Header.NumberPoints)}
	for i := 0; i < lf.Header.NumberPoints; i++ {
		p, err := lf.LasPoint(i)
		if err != nil {
			return Records{}, err
		}
		data := p.PointData()

		v := r3.Vector{X: data.X, Y: data.Y, Z: data.Z}
		if !isPrecise(v) {
			logger.Warnw("potential floating point lossiness for LAS point",
				"point", v, "range", fmt.Sprintf("[%f,%f]", minPreciseFloat64, maxPreciseFloat64))
		}
		records.Points = append(records.Points, v)
	}
	return records, nil
}

// WriteToLASFile writes the points out to a LAS file. LAS point records have no room for
// normals, so only positions are written.
func WriteToLASFile(records Records, fn string) (err error) {
	for _, p := range records.Points {
		if !isPrecise(p) {
			return errors.Errorf("point %v cannot be stored precisely in a LAS file", p)
		}
	}

	lf, err := lidario.NewLasFile(fn, "w")
	if err != nil {
		return
	}
	defer func() {
		cerr := lf.Close()
		err = multierr.Combine(err, cerr)
	}()

	if err = lf.AddHeader(lidario.LasHeader{
		PointFormatID: 0,
	}); err != nil {
		return
	}

	for _, pos := range records.Points {
		pr0 := &lidario.PointRecord0{
			X: pos.X,
			Y: pos.Y,
			Z: pos.Z,
			BitField: lidario.PointBitField{
				Value: (1) | (1 << 3) | (0 << 6) | (0 << 7),
			},
			ClassBitField: lidario.ClassificationBitField{
				Value: 0,
			},
			PointSourceID: 1,
		}
		if err = lf.AddLasPoint(pr0); err != nil {
			return
		}
	}

	// nolint:nakedret
	return
}

// writeLASFileAtomic writes the LAS file next to fn and renames it into place once the
// writer has closed cleanly.
func writeLASFileAtomic(records Records, fn string) error {
	tmp, err := os.CreateTemp(filepath.Dir(fn), "."+filepath.Base(fn)+".tmp-*.las")
	if err != nil {
		return errors.Wrapf(err, "cannot open %q for writing", fn)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		rutils.RemoveFileNoError(tmpPath)
		return err
	}

	if err := WriteToLASFile(records, tmpPath); err != nil {
		rutils.RemoveFileNoError(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, fn); err != nil {
		rutils.RemoveFileNoError(tmpPath)
		return errors.Wrapf(err, "error moving output into place at %q", fn)
	}
	return nil
}
