package favicons

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/paul-vd/favicons/ico"
	"github.com/paul-vd/favicons/utils"
)

// PlaneSpec describes one target plane.
type PlaneSpec struct {
	Width  int
	Height int
	// Offset is the padding applied inward from every edge, as a percentage
	// of the larger plane side.
	Offset   float64
	PixelArt bool
	// Background is a color understood by ParseBackground. The empty string
	// and "transparent" leave the canvas transparent.
	Background string
	// Transparent keeps the alpha channel when an opaque background is set.
	Transparent bool
	// Rotate turns the finished plane by 90 degrees clockwise.
	Rotate bool
}

// Validate checks the plane dimensions and offset.
func (s PlaneSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: invalid plane size %dx%d", ErrRender, s.Width, s.Height)
	}
	if s.Offset < 0 || s.Offset >= 100 || math.IsNaN(s.Offset) {
		return fmt.Errorf("%w: offset %v outside [0, 100)", ErrRender, s.Offset)
	}
	return nil
}

// OffsetPixels returns the padding in pixels applied on each edge.
func (s PlaneSpec) OffsetPixels() int {
	offset := int(math.Round(float64(utils.Max(s.Width, s.Height)) * s.Offset / 100))
	if offset <= 0 {
		return 0
	}
	return offset
}

func (s PlaneSpec) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Plane is a rendered plane: either an *EncodedPlane or a *RawPlane.
type Plane interface {
	Size() (width, height int)
	plane()
}

// EncodedPlane is a plane encoded as a standalone PNG image.
type EncodedPlane struct {
	Data   []byte
	Width  int
	Height int
}

// RawPlane holds the uncompressed sRGB pixels of a plane, ready to be packed
// into an icon container. Pixels are non-premultiplied RGBA.
type RawPlane struct {
	Name     string
	Pix      []byte
	Width    int
	Height   int
	Channels int
	Stride   int
}

// Size implements Plane.
func (p *EncodedPlane) Size() (int, int) { return p.Width, p.Height }

// Size implements Plane.
func (p *RawPlane) Size() (int, int) { return p.Width, p.Height }

func (*EncodedPlane) plane() {}
func (*RawPlane) plane()     {}

// alphaImage reports itself as translucent so that encoders keep the alpha
// channel even when every pixel is opaque.
type alphaImage struct {
	*image.NRGBA
}

func (alphaImage) Opaque() bool { return false }

func (p *RawPlane) icoPlane() ico.Plane {
	return ico.Plane{
		Pix:      p.Pix,
		Width:    p.Width,
		Height:   p.Height,
		Channels: p.Channels,
		Stride:   p.Stride,
	}
}

// RenderPlane renders spec from the best of sources. With raw set it returns
// a *RawPlane, otherwise an *EncodedPlane.
func (p *Processor) RenderPlane(ctx context.Context, sources []*Source, spec PlaneSpec, raw bool) (Plane, error) {
	if raw {
		return p.RenderRaw(ctx, sources, spec)
	}
	return p.RenderPNG(ctx, sources, spec)
}

// RenderPNG renders spec and encodes it as a PNG image.
func (p *Processor) RenderPNG(ctx context.Context, sources []*Source, spec PlaneSpec) (*EncodedPlane, error) {
	img, err := p.render(ctx, sources, spec)
	if err != nil {
		return nil, err
	}
	var out image.Image = img
	if spec.Transparent || IsTransparent(spec.Background) {
		out = alphaImage{img}
	}
	data, err := p.compositor().EncodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, spec, err)
	}
	b := img.Bounds()
	return &EncodedPlane{Data: data, Width: b.Dx(), Height: b.Dy()}, nil
}

// RenderRaw renders spec and returns its raw pixels.
func (p *Processor) RenderRaw(ctx context.Context, sources []*Source, spec PlaneSpec) (*RawPlane, error) {
	img, err := p.render(ctx, sources, spec)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	row := w * 4
	pix := make([]byte, row*h)
	for y := 0; y < h; y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*row:(y+1)*row], img.Pix[i:i+row])
	}

	return &RawPlane{
		Name:     fmt.Sprintf("%dx%d", w, h),
		Pix:      pix,
		Width:    w,
		Height:   h,
		Channels: 4,
		Stride:   row,
	}, nil
}

// render builds the plane: resize the selected source, composite it on the
// background canvas at the offset and rotate it if requested.
func (p *Processor) render(ctx context.Context, sources []*Source, spec PlaneSpec) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	offset := spec.OffsetPixels()
	width := spec.Width - 2*offset
	height := spec.Height - 2*offset
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s: offset %v leaves no room for the icon", ErrRender, spec, spec.Offset)
	}

	src := SelectSource(sources, width, height)
	if src == nil {
		return nil, ErrEmptySourceList
	}

	log := p.logger()
	content, kernel, err := p.contain(src, width, height, spec.PixelArt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, spec, err)
	}

	c := p.compositor()
	canvas, err := c.Canvas(spec.Width, spec.Height, spec.Background)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, spec, err)
	}
	img, err := c.Composite(canvas, content, image.Pt(offset, offset))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, spec, err)
	}
	if spec.Rotate {
		img = c.Rotate(img)
	}

	log.Debug().
		Str("plane", spec.String()).
		Str("source", src.Metadata.Format).
		Int("source_width", src.Metadata.Width).
		Int("source_height", src.Metadata.Height).
		Int("offset", offset).
		Stringer("kernel", kernel).
		Bool("rotate", spec.Rotate).
		Msg("plane rendered")

	return img, nil
}

// contain resizes src to fit inside width x height.
func (p *Processor) contain(src *Source, width, height int, pixelArt bool) (*image.NRGBA, Kernel, error) {
	c := p.compositor()

	if src.Metadata.IsVector() {
		density := SVGDensity(src.Metadata, width, height)
		img, err := p.rasterizer().Rasterize(src, density)
		if err != nil {
			return nil, KernelLanczos, err
		}
		content, err := c.Contain(img, width, height, KernelLanczos)
		return content, KernelLanczos, err
	}

	kernel := KernelLanczos
	if pixelArt && width >= src.Metadata.Width && height >= src.Metadata.Height {
		kernel = KernelNearest
	}
	content, err := c.Contain(src.Image, width, height, kernel)
	return content, kernel, err
}
