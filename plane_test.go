package favicons

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCompositor records the kernel of every resize.
type recordingCompositor struct {
	ImagingCompositor

	mu      sync.Mutex
	kernels []Kernel
}

func (c *recordingCompositor) Contain(img image.Image, width, height int, kernel Kernel) (*image.NRGBA, error) {
	c.mu.Lock()
	c.kernels = append(c.kernels, kernel)
	c.mu.Unlock()
	return c.ImagingCompositor.Contain(img, width, height, kernel)
}

type failingRasterizer struct{}

func (failingRasterizer) Rasterize(*Source, float64) (*image.NRGBA, error) {
	return nil, errors.New("rasterizer unavailable")
}

func TestPlane_Dimensions(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 512, 512, red)}
	p := &Processor{}

	sizes := []image.Point{
		{16, 16}, {32, 32}, {48, 48}, {57, 57}, {180, 180},
		{150, 100}, {100, 150}, {1, 1}, {256, 256},
	}
	for _, s := range sizes {
		spec := PlaneSpec{Width: s.X, Height: s.Y}
		t.Run(spec.String(), func(t *testing.T) {
			enc, err := p.RenderPNG(ctx, sources, spec)
			require.NoError(t, err)
			img := decodePNG(t, enc.Data)
			assert.Equal(t, s.X, img.Bounds().Dx())
			assert.Equal(t, s.Y, img.Bounds().Dy())
			w, h := enc.Size()
			assert.Equal(t, s.X, w)
			assert.Equal(t, s.Y, h)

			raw, err := p.RenderRaw(ctx, sources, spec)
			require.NoError(t, err)
			assert.Equal(t, s.X, raw.Width)
			assert.Equal(t, s.Y, raw.Height)
			assert.Equal(t, 4, raw.Channels)
			assert.Equal(t, 4*s.X, raw.Stride)
			assert.Len(t, raw.Pix, 4*s.X*s.Y)
			assert.Equal(t, spec.String(), raw.Name)
		})
	}
}

func TestPlane_RenderPlane(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 64, 64, red)}
	p := &Processor{}

	pl, err := p.RenderPlane(ctx, sources, PlaneSpec{Width: 16, Height: 16}, true)
	require.NoError(t, err)
	assert.IsType(t, &RawPlane{}, pl)

	pl, err = p.RenderPlane(ctx, sources, PlaneSpec{Width: 16, Height: 16}, false)
	require.NoError(t, err)
	assert.IsType(t, &EncodedPlane{}, pl)
}

func TestPlane_Offset(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 100, 100, blue)}
	p := &Processor{}

	testCases := []struct {
		offset float64
		want   image.Rectangle
	}{
		{offset: 0, want: image.Rect(0, 0, 100, 100)},
		{offset: 10, want: image.Rect(10, 10, 90, 90)},
		{offset: 25, want: image.Rect(25, 25, 75, 75)},
	}

	for _, tc := range testCases {
		spec := PlaneSpec{Width: 100, Height: 100, Offset: tc.offset}
		raw, err := p.RenderRaw(ctx, sources, spec)
		require.NoError(t, err)

		img := &image.NRGBA{Pix: raw.Pix, Stride: raw.Stride, Rect: image.Rect(0, 0, raw.Width, raw.Height)}
		assert.Equal(t, tc.want, alphaBounds(img), "offset %v", tc.offset)
	}
}

func TestPlane_OffsetPixels(t *testing.T) {
	assert.Equal(t, 0, PlaneSpec{Width: 16, Height: 16}.OffsetPixels())
	assert.Equal(t, 2, PlaneSpec{Width: 16, Height: 16, Offset: 10}.OffsetPixels())
	assert.Equal(t, 15, PlaneSpec{Width: 100, Height: 150, Offset: 10}.OffsetPixels())
}

func TestPlane_Idempotent(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 300, 200, green), vectorSource(t)}
	p := &Processor{}
	spec := PlaneSpec{Width: 48, Height: 48, Offset: 5, Background: "#336699"}

	a, err := p.RenderRaw(ctx, sources, spec)
	require.NoError(t, err)
	b, err := p.RenderRaw(ctx, sources, spec)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPlane_OpaqueScenario(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 512, 512, red)}

	enc, err := (&Processor{}).RenderPNG(ctx, sources, PlaneSpec{Width: 32, Height: 32})
	require.NoError(t, err)

	img := decodePNG(t, enc.Data)
	assert.IsType(t, &image.NRGBA{}, img)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			require.Equal(t, uint8(0xff), nrgbaAt(img, x, y).A, "pixel %d,%d", x, y)
		}
	}
}

func TestPlane_Background(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 64, 32, red)}
	p := &Processor{}

	enc, err := p.RenderPNG(ctx, sources, PlaneSpec{Width: 32, Height: 32, Background: "#00ff00"})
	require.NoError(t, err)
	img := decodePNG(t, enc.Data)
	assert.IsType(t, &image.RGBA{}, img)
	assert.Equal(t, green, nrgbaAt(img, 0, 0))
	assert.Equal(t, red, nrgbaAt(img, 16, 16))

	enc, err = p.RenderPNG(ctx, sources, PlaneSpec{Width: 32, Height: 32, Background: "#00ff00", Transparent: true})
	require.NoError(t, err)
	img = decodePNG(t, enc.Data)
	assert.IsType(t, &image.NRGBA{}, img)
	assert.Equal(t, green, nrgbaAt(img, 0, 0))
}

func TestPlane_Vector(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 1024, 1024, blue), vectorSource(t)}

	raw, err := (&Processor{}).RenderRaw(ctx, sources, PlaneSpec{Width: 32, Height: 32})
	require.NoError(t, err)
	img := &image.NRGBA{Pix: raw.Pix, Stride: raw.Stride, Rect: image.Rect(0, 0, raw.Width, raw.Height)}

	assert.Equal(t, red, img.NRGBAAt(16, 16))
	assert.Equal(t, uint8(0), img.NRGBAAt(16, 2).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(16, 29).A)
}

func TestPlane_LargeVector(t *testing.T) {
	ctx := context.Background()
	src, err := LoadBuffer([]byte(hugeSVG))
	require.NoError(t, err)
	sources := []*Source{src}

	p := &Processor{Rasterizer: SVGRasterizer{MaxSide: 512}}
	for _, side := range []int{16, 32, 256} {
		enc, err := p.RenderPNG(ctx, sources, PlaneSpec{Width: side, Height: side})
		require.NoError(t, err)
		img := decodePNG(t, enc.Data)
		assert.Equal(t, image.Rect(0, 0, side, side), img.Bounds())
		assert.Equal(t, red, nrgbaAt(img, side/2, side/2))
	}

	if testing.Short() {
		t.Skip("skipping full size rasterization in short mode")
	}
	enc, err := (&Processor{}).RenderPNG(ctx, sources, PlaneSpec{Width: 32, Height: 32})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), decodePNG(t, enc.Data).Bounds())
}

func TestPlane_PixelArt(t *testing.T) {
	ctx := context.Background()

	checker := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	checker.SetNRGBA(0, 0, red)
	checker.SetNRGBA(1, 0, blue)
	checker.SetNRGBA(0, 1, blue)
	checker.SetNRGBA(1, 1, red)
	src, err := LoadBuffer(encodePNG(t, checker))
	require.NoError(t, err)
	sources := []*Source{src}

	rec := &recordingCompositor{}
	p := &Processor{Compositor: rec}

	raw, err := p.RenderRaw(ctx, sources, PlaneSpec{Width: 4, Height: 4, PixelArt: true})
	require.NoError(t, err)
	img := &image.NRGBA{Pix: raw.Pix, Stride: raw.Stride, Rect: image.Rect(0, 0, 4, 4)}

	want := [4][4]color.NRGBA{
		{red, red, blue, blue},
		{red, red, blue, blue},
		{blue, blue, red, red},
		{blue, blue, red, red},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, want[y][x], img.NRGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}

	_, err = p.RenderRaw(ctx, sources, PlaneSpec{Width: 4, Height: 4})
	require.NoError(t, err)

	big := []*Source{rasterSource(t, 64, 64, red)}
	_, err = p.RenderRaw(ctx, big, PlaneSpec{Width: 16, Height: 16, PixelArt: true})
	require.NoError(t, err)

	assert.Equal(t, []Kernel{KernelNearest, KernelLanczos, KernelLanczos}, rec.kernels)
}

func TestPlane_Rotate(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 64, 64, red)}

	raw, err := (&Processor{}).RenderRaw(ctx, sources, PlaneSpec{Width: 40, Height: 20, Rotate: true})
	require.NoError(t, err)
	assert.Equal(t, 20, raw.Width)
	assert.Equal(t, 40, raw.Height)
}

func TestPlane_Errors(t *testing.T) {
	ctx := context.Background()
	sources := []*Source{rasterSource(t, 64, 64, red)}
	p := &Processor{}

	testCases := []struct {
		name string
		spec PlaneSpec
	}{
		{name: "zero width", spec: PlaneSpec{Width: 0, Height: 16}},
		{name: "negative height", spec: PlaneSpec{Width: 16, Height: -1}},
		{name: "full offset", spec: PlaneSpec{Width: 16, Height: 16, Offset: 100}},
		{name: "negative offset", spec: PlaneSpec{Width: 16, Height: 16, Offset: -1}},
		{name: "offset leaves nothing", spec: PlaneSpec{Width: 10, Height: 10, Offset: 49}},
		{name: "bad background", spec: PlaneSpec{Width: 16, Height: 16, Background: "notacolor"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.RenderRaw(ctx, sources, tc.spec)
			assert.ErrorIs(t, err, ErrRender)
		})
	}

	_, err := p.RenderRaw(ctx, nil, PlaneSpec{Width: 16, Height: 16})
	assert.ErrorIs(t, err, ErrEmptySourceList)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.RenderPNG(canceled, sources, PlaneSpec{Width: 16, Height: 16})
	assert.ErrorIs(t, err, context.Canceled)

	broken := &Processor{Rasterizer: failingRasterizer{}}
	_, err = broken.RenderPNG(ctx, []*Source{vectorSource(t)}, PlaneSpec{Width: 16, Height: 16})
	assert.ErrorIs(t, err, ErrRender)
}
