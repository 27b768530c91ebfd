package utils

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

const defaultFilePerm = 0o644

// AtomicWriteFile writes the output of write to path. Data goes to a temporary file in the
// same directory which is synced and renamed over path only once write, the flush, and the
// close all succeed. On any failure the temporary file is removed and path is left untouched.
func AtomicWriteFile(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "cannot open %q for writing", path)
	}
	tmpPath := tmp.Name()
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			err = multierr.Combine(err, tmp.Close())
		}
		RemoveFileNoError(tmpPath)
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "error flushing %q", path)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "error syncing %q", path)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %q", path)
	}
	if err = os.Chmod(tmpPath, defaultFilePerm); err != nil {
		return errors.Wrapf(err, "error setting permissions on %q", path)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "error moving output into place at %q", path)
	}
	return nil
}

// RemoveFileNoError will remove the file at the given path if it exists. Any
// errors will be suppressed.
func RemoveFileNoError(path string) {
	utils.UncheckedErrorFunc(func() error {
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
		return nil
	})
}
