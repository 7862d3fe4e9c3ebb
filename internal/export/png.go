package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// maxRasterSide caps either side of a rasterized export.
const maxRasterSide = 8192

// RasterizeSVG renders an SVG document to PNG at the given scale. The
// background, if set, is painted under the drawing; otherwise the image
// is transparent. Elements the rasterizer does not support, such as text,
// are skipped.
func RasterizeSVG(svg string, scale float64, background string) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}

	w := int(math.Ceil(icon.ViewBox.W * scale))
	h := int(math.Ceil(icon.ViewBox.H * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rasterize svg: empty viewBox %.0fx%.0f", icon.ViewBox.W, icon.ViewBox.H)
	}
	if w > maxRasterSide || h > maxRasterSide {
		return nil, fmt.Errorf("rasterize svg: %dx%d exceeds %d px", w, h, maxRasterSide)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if background != "" && background != "transparent" {
		draw.Draw(img, img.Bounds(), image.NewUniform(gg.Hex(background).Color()), image.Point{}, draw.Src)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail downsizes a PNG so its longer side is at most maxSide,
// keeping the aspect ratio. Images already small enough are returned
// unchanged.
func Thumbnail(data []byte, maxSide int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	b := src.Bounds()
	longest := max(b.Dx(), b.Dy())
	if maxSide <= 0 || longest <= maxSide {
		return data, nil
	}

	ratio := float64(maxSide) / float64(longest)
	w := max(1, int(math.Round(float64(b.Dx())*ratio)))
	h := max(1, int(math.Round(float64(b.Dy())*ratio)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
