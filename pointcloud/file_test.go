package pointcloud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/depthcloud/logging"
)

func testRecords() Records {
	return Records{
		Points:  []r3.Vector{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 5, Z: -6}, {X: 7, Y: -8, Z: 9}},
		Normals: []r3.Vector{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}},
	}
}

func TestWriteToFile(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	dir := t.TempDir()
	records := testRecords()

	for _, name := range []string{"cloud.ply", "cloud.pcd"} {
		t.Run(name, func(t *testing.T) {
			fn := filepath.Join(dir, name)
			test.That(t, WriteToFile(fn, records, logger), test.ShouldBeNil)

			back, err := NewFromFile(fn, logger)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, back, test.ShouldResemble, records)

			info, err := os.Stat(fn)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, info.Mode().Perm(), test.ShouldEqual, os.FileMode(0o644))
		})
	}

	saved := logs.FilterMessage("saved point cloud").All()
	test.That(t, saved, test.ShouldHaveLength, 2)
	test.That(t, saved[0].ContextMap()["vertices"], test.ShouldEqual, int64(3))
}

func TestWriteToLASFile(t *testing.T) {
	logger := logging.NewTestLogger(t)
	fn := filepath.Join(t.TempDir(), "cloud.las")
	records := testRecords()
	test.That(t, WriteToFile(fn, records, logger), test.ShouldBeNil)

	back, err := NewFromFile(fn, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Len(), test.ShouldEqual, 3)
	test.That(t, back.HasNormals(), test.ShouldBeFalse)
	for i, p := range records.Points {
		test.That(t, back.Points[i].X, test.ShouldAlmostEqual, p.X, 1e-6)
		test.That(t, back.Points[i].Y, test.ShouldAlmostEqual, p.Y, 1e-6)
		test.That(t, back.Points[i].Z, test.ShouldAlmostEqual, p.Z, 1e-6)
	}

	entries, err := os.ReadDir(filepath.Dir(fn))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)
}

func TestWriteToFileFailure(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	dir := t.TempDir()

	fn := filepath.Join(dir, "missing", "cloud.ply")
	err := WriteToFile(fn, testRecords(), logger)
	test.That(t, errors.Is(err, ErrExportFailed), test.ShouldBeTrue)
	test.That(t, logs.FilterMessage("cannot save point cloud").Len(), test.ShouldEqual, 1)
	_, statErr := os.Stat(fn)
	test.That(t, os.IsNotExist(statErr), test.ShouldBeTrue)

	err = WriteToFile(filepath.Join(dir, "cloud.xyz"), testRecords(), logger)
	test.That(t, errors.Is(err, ErrExportFailed), test.ShouldBeTrue)

	// the destination is a directory, so the final rename fails
	target := filepath.Join(dir, "taken.ply")
	test.That(t, os.Mkdir(target, 0o755), test.ShouldBeNil)
	err = WriteToFile(target, testRecords(), logger)
	test.That(t, errors.Is(err, ErrExportFailed), test.ShouldBeTrue)

	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].Name(), test.ShouldEqual, "taken.ply")

	_, err = NewFromFile(filepath.Join(dir, "cloud.xyz"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}
