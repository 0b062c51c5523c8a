package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"regexp"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"choromap/internal/scene"
)

var ErrEmptyImage = errors.New("image has no area")

// rgba() colors are not understood by the rasterizer; the alpha is dropped.
var rgbaColor = regexp.MustCompile(`rgba\(\s*([^,]+),\s*([^,]+),\s*([^,]+),\s*[^)]+\)`)

// WritePNG rasterizes the scene in its final state. Zero width or height
// keep the scene size; text is not rasterized.
func WritePNG(w io.Writer, s *scene.Scene, width, height int) error {
	img, err := Rasterize(s, width, height)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Rasterize draws the scene onto a new RGBA image.
func Rasterize(s *scene.Scene, width, height int) (*image.RGBA, error) {
	if width <= 0 {
		width = int(s.Width + 0.5)
	}
	if height <= 0 {
		height = int(s.Height + 0.5)
	}
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, s, SVGOptions{}); err != nil {
		return nil, err
	}
	src := rgbaColor.ReplaceAll(buf.Bytes(), []byte("rgb($1,$2,$3)"))

	icon, err := oksvg.ReadIconStream(bytes.NewReader(src), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}
