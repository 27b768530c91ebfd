package rimage

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// DepthBufferFromImage converts a grayscale render into a depth buffer. Gray levels are
// scaled to [0, 1]. Images have their origin at the top left, so rows are flipped to keep
// row 0 at the bottom.
func DepthBufferFromImage(img image.Image) (*DepthBuffer, error) {
	bounds := img.Bounds()
	db, err := NewEmptyDepthBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < db.height; y++ {
		row := db.height - 1 - y
		for x := 0; x < db.width; x++ {
			g, ok := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			if !ok {
				return nil, errors.Errorf("cannot convert pixel (%d, %d) to gray", x, y)
			}
			db.Set(x, row, float64(g.Y)/0xffff)
		}
	}
	return db, nil
}

// ReadDepthImageFile decodes a .png or .tga depth render.
func ReadDepthImageFile(fn string) (*DepthBuffer, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)

	var img image.Image
	switch ext := filepath.Ext(fn); ext {
	case ".tga":
		img, err = tga.Decode(f)
	case ".png":
		img, err = png.Decode(f)
	default:
		return nil, errors.Errorf("unsupported depth image extension %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode depth image %q", fn)
	}
	return DepthBufferFromImage(img)
}
