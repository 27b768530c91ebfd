package rimage

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	rutils "go.viam.com/depthcloud/utils"
)

// ToPrettyPicture renders the buffer as a hue ramp between its nearest and farthest
// surface samples. Pixels with no surface stay transparent. The picture has its origin at
// the top left like any other image.
func (db *DepthBuffer) ToPrettyPicture() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, db.width, db.height))

	lo, hi, ok := db.MinMax()
	if !ok {
		return img
	}
	span := hi - lo

	for y := 0; y < db.height; y++ {
		for x := 0; x < db.width; x++ {
			z := db.Get(x, y)
			if !IsSurface(z) {
				continue
			}
			ratio := 0.0
			if span > 0 {
				ratio = rutils.Clamp((z-lo)/span, 0, 1)
			}
			// reversed-Z: large values are close, so near surfaces end up blue
			hue := 30 + (200.0 * ratio)
			r, g, b := colorful.Hsv(hue, 1.0, 1.0).RGB255()
			img.SetRGBA(x, db.height-1-y, color.RGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	return img
}

// ScaleToFit shrinks img so its longer side is at most size pixels. Images that already
// fit, or a non-positive size, are returned unchanged.
func ScaleToFit(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	longest := bounds.Dx()
	if bounds.Dy() > longest {
		longest = bounds.Dy()
	}
	if size <= 0 || longest <= size {
		return img
	}
	w := bounds.Dx() * size / longest
	h := bounds.Dy() * size / longest
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodePreview writes img as WebP when fn ends in .webp and PNG otherwise.
func EncodePreview(out io.Writer, fn string, img image.Image) error {
	switch ext := filepath.Ext(fn); ext {
	case ".webp":
		return nativewebp.Encode(out, img, nil)
	case ".png":
		return png.Encode(out, img)
	default:
		return errors.Errorf("unsupported preview extension %q", ext)
	}
}

// WritePreview renders the buffer, scales it to size and writes it to fn.
func (db *DepthBuffer) WritePreview(fn string, size int) error {
	switch filepath.Ext(fn) {
	case ".webp", ".png":
	default:
		return errors.Errorf("unsupported preview extension %q", filepath.Ext(fn))
	}
	img := ScaleToFit(db.ToPrettyPicture(), size)
	return rutils.AtomicWriteFile(fn, func(w io.Writer) error {
		return EncodePreview(w, fn, img)
	})
}
