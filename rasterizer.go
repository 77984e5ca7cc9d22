package favicons

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/paul-vd/favicons/utils"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// maxDensity bounds the rasterization density of vector sources.
const maxDensity = 100000.0

// maxRasterSide is the default bound of either side of a rasterized vector source.
const maxRasterSide = 8192

// Rasterizer turns a vector source into pixels.
type Rasterizer interface {
	// Rasterize renders src at density dots per inch. The natural size of the
	// source corresponds to its Metadata.Density.
	Rasterize(src *Source, density float64) (*image.NRGBA, error)
}

// SVGDensity returns the density at which a vector source has to be
// rasterized so that its natural size covers a width x height plane.
func SVGDensity(m Metadata, width, height int) float64 {
	current := m.Density
	if current <= 0 {
		current = defaultDensity
	}
	if m.Width <= 0 || m.Height <= 0 {
		return current
	}

	density := math.Max(1, current)
	density = math.Max(density, current*float64(width)/float64(m.Width))
	density = math.Max(density, current*float64(height)/float64(m.Height))
	return math.Min(density, maxDensity)
}

// SVGRasterizer rasterizes SVG sources with oksvg.
type SVGRasterizer struct {
	// MaxSide bounds the longer side of the rasterized image. The density is
	// lowered to fit when needed. Zero means 8192.
	MaxSide int
}

// Rasterize implements Rasterizer. The SVG document is parsed on every call,
// since the parsed icon is mutated while drawing.
func (r SVGRasterizer) Rasterize(src *Source, density float64) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse the svg source: %w", err)
	}

	base := src.Metadata.Density
	if base <= 0 {
		base = defaultDensity
	}
	if src.Metadata.Width <= 0 || src.Metadata.Height <= 0 || density <= 0 {
		return nil, fmt.Errorf("svg source has no size at density %v", density)
	}
	w, h := rasterSize(src.Metadata.Width, src.Metadata.Height, density/base, r.maxSide())

	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	return imaging.Clone(img), nil
}

func (r SVGRasterizer) maxSide() int {
	if r.MaxSide > 0 {
		return r.MaxSide
	}
	return maxRasterSide
}

// rasterSize scales a natural size, keeping the longer side within maxSide
// and both sides at least one pixel.
func rasterSize(width, height int, scale float64, maxSide int) (int, int) {
	w := float64(width) * scale
	h := float64(height) * scale
	if longer := math.Max(w, h); longer > float64(maxSide) {
		w *= float64(maxSide) / longer
		h *= float64(maxSide) / longer
	}
	return utils.Clamp(int(math.Round(w)), 1, maxSide), utils.Clamp(int(math.Round(h)), 1, maxSide)
}
