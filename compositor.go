package favicons

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paul-vd/favicons/imop"
	"github.com/paul-vd/favicons/utils"
	"golang.org/x/image/colornames"
)

// Kernel selects the resampling filter of a resize.
type Kernel int

const (
	// KernelLanczos is a high quality smoothing filter.
	KernelLanczos Kernel = iota
	// KernelNearest repeats source pixels, keeping pixel art crisp.
	KernelNearest
)

func (k Kernel) String() string {
	if k == KernelNearest {
		return "nearest"
	}
	return "lanczos"
}

func (k Kernel) filter() imaging.ResampleFilter {
	if k == KernelNearest {
		return imaging.NearestNeighbor
	}
	return imaging.Lanczos
}

// Compositor is the raster engine used to build a plane.
type Compositor interface {
	// Contain scales img to fit inside width x height preserving its aspect
	// ratio and centers it on a fully transparent width x height image.
	Contain(img image.Image, width, height int, kernel Kernel) (*image.NRGBA, error)
	// Canvas creates a width x height image filled with background.
	Canvas(width, height int, background string) (*image.NRGBA, error)
	// Composite draws src over dst with its top-left corner at pt.
	Composite(dst, src *image.NRGBA, pt image.Point) (*image.NRGBA, error)
	// Rotate turns img by 90 degrees clockwise.
	Rotate(img *image.NRGBA) *image.NRGBA
	// EncodePNG encodes img as a PNG image.
	EncodePNG(img image.Image) ([]byte, error)
}

// ImagingCompositor implements Compositor on top of the imaging package.
type ImagingCompositor struct{}

// Contain implements Compositor.
func (ImagingCompositor) Contain(img image.Image, width, height int, kernel Kernel) (*image.NRGBA, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw <= 0 || sh <= 0 {
		return nil, errors.New("empty image")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	scale := math.Min(float64(width)/float64(sw), float64(height)/float64(sh))
	rw := utils.Clamp(int(math.Round(float64(sw)*scale)), 1, width)
	rh := utils.Clamp(int(math.Round(float64(sh)*scale)), 1, height)

	var resized *image.NRGBA
	if rw == sw && rh == sh {
		resized = imaging.Clone(img)
	} else {
		resized = imaging.Resize(img, rw, rh, kernel.filter())
	}
	if rw == width && rh == height {
		return resized, nil
	}

	dst := imaging.New(width, height, color.NRGBA{})
	op := imop.InitOp()
	op.Set(imop.Copy)
	op.Draw(dst, resized, image.Pt((width-rw)/2, (height-rh)/2))
	return dst, nil
}

// Canvas implements Compositor.
func (ImagingCompositor) Canvas(width, height int, background string) (*image.NRGBA, error) {
	c, err := ParseBackground(background)
	if err != nil {
		return nil, err
	}
	return imaging.New(width, height, c), nil
}

// Composite implements Compositor using the source-over operator.
func (ImagingCompositor) Composite(dst, src *image.NRGBA, pt image.Point) (*image.NRGBA, error) {
	if dst == nil || src == nil {
		return nil, errors.New("nil image")
	}
	out := imaging.Clone(dst)
	imop.InitOp().Draw(out, src, pt)
	return out, nil
}

// Rotate implements Compositor.
func (ImagingCompositor) Rotate(img *image.NRGBA) *image.NRGBA {
	return imaging.Rotate270(img)
}

// EncodePNG implements Compositor.
func (ImagingCompositor) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsTransparent reports whether a background leaves the canvas fully transparent.
func IsTransparent(background string) bool {
	bg := strings.TrimSpace(background)
	return bg == "" || strings.EqualFold(bg, "transparent")
}

// ParseBackground parses a background color. The empty string and
// "transparent" give a fully transparent color; hex colors (#rgb, #rrggbb)
// and CSS color names give an opaque one.
func ParseBackground(background string) (color.NRGBA, error) {
	if IsTransparent(background) {
		return color.NRGBA{}, nil
	}
	bg := strings.ToLower(strings.TrimSpace(background))

	if c, ok := colornames.Map[bg]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}, nil
	}

	c, err := colorful.Hex(bg)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid background color %q: %w", background, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
