package rimage

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	rutils "go.viam.com/depthcloud/utils"
)

// ParseDepthBuffer reads a depth buffer file. Files ending in .gz are gunzipped,
// .png and .tga files are decoded as grayscale images.
func ParseDepthBuffer(fn string) (*DepthBuffer, error) {
	switch filepath.Ext(fn) {
	case ".png", ".tga":
		return ReadDepthImageFile(fn)
	}

	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)

	var r io.Reader = f
	if filepath.Ext(fn) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer utils.UncheckedErrorFunc(gz.Close)
		r = gz
	}

	return ReadDepthBuffer(bufio.NewReader(r))
}

func readNext(r io.Reader) (uint64, error) {
	data := make([]byte, 8)
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

// ReadDepthBuffer reads the binary depth format: little endian uint64 width, uint64
// height, then width*height float32 samples in row-major order.
func ReadDepthBuffer(r io.Reader) (*DepthBuffer, error) {
	rawWidth, err := readNext(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading depth buffer width")
	}
	rawHeight, err := readNext(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading depth buffer height")
	}
	if rawWidth == 0 || rawWidth >= MaxDimension || rawHeight == 0 || rawHeight >= MaxDimension {
		return nil, NewDimensionMismatchError("bad width or height for depth buffer %v %v", rawWidth, rawHeight)
	}

	db, err := NewEmptyDepthBuffer(int(rawWidth), int(rawHeight))
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4)
	for i := range db.data {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrapf(err, "error reading depth sample %d of %d", i, len(db.data))
		}
		db.data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	}
	return db, nil
}

// WriteToFile writes the buffer to fn in the binary depth format, gzipped when fn ends
// in .gz. The file only appears once it is complete.
func (db *DepthBuffer) WriteToFile(fn string) error {
	return rutils.AtomicWriteFile(fn, func(w io.Writer) (err error) {
		if filepath.Ext(fn) != ".gz" {
			return db.WriteRawTo(w)
		}
		gout := gzip.NewWriter(w)
		defer func() {
			err = multierr.Combine(err, gout.Close())
		}()
		return db.WriteRawTo(gout)
	})
}

// WriteRawTo writes the buffer in the binary depth format.
func (db *DepthBuffer) WriteRawTo(out io.Writer) error {
	buf := make([]byte, 8)

	binary.LittleEndian.PutUint64(buf, uint64(db.width))
	if _, err := out.Write(buf); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf, uint64(db.height))
	if _, err := out.Write(buf); err != nil {
		return err
	}

	sample := make([]byte, 4)
	for _, z := range db.data {
		binary.LittleEndian.PutUint32(sample, math.Float32bits(float32(z)))
		if _, err := out.Write(sample); err != nil {
			return err
		}
	}
	return nil
}
