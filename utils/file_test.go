package utils

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	err := AtomicWriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello\n")
		return err
	})
	test.That(t, err, test.ShouldBeNil)
	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, "hello\n")

	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)
}

func TestAtomicWriteFileFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	test.That(t, os.WriteFile(path, []byte("original"), 0o600), test.ShouldBeNil)

	boom := errors.New("disk full")
	err := AtomicWriteFile(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "partial"); err != nil {
			return err
		}
		return boom
	})
	test.That(t, errors.Is(err, boom), test.ShouldBeTrue)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, "original")

	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)
}

func TestAtomicWriteFileUnwritableDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.txt")
	err := AtomicWriteFile(path, func(w io.Writer) error { return nil })
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot open")
	_, statErr := os.Stat(path)
	test.That(t, os.IsNotExist(statErr), test.ShouldBeTrue)
}

func TestFloat32Text(t *testing.T) {
	test.That(t, Float32Text(0.5), test.ShouldEqual, "0.5")
	test.That(t, Float32Text(-3), test.ShouldEqual, "-3")
	test.That(t, Float32Text(0.1), test.ShouldEqual, "0.1")
	test.That(t, IsFinite(1), test.ShouldBeTrue)
	test.That(t, Clamp(2, 0, 1), test.ShouldEqual, 1.)
}
