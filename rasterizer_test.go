package favicons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterizer_Density(t *testing.T) {
	testCases := []struct {
		name string
		meta Metadata
		w, h int
		want float64
	}{
		{name: "natural size covers target", meta: Metadata{Width: 64, Height: 32, Density: 72}, w: 32, h: 32, want: 72},
		{name: "height drives the density", meta: Metadata{Width: 64, Height: 32, Density: 72}, w: 128, h: 128, want: 288},
		{name: "width drives the density", meta: Metadata{Width: 16, Height: 64, Density: 72}, w: 64, h: 64, want: 288},
		{name: "default density", meta: Metadata{Width: 10, Height: 10}, w: 20, h: 20, want: 144},
		{name: "never below one", meta: Metadata{Width: 100, Height: 100, Density: 0.5}, w: 10, h: 10, want: 1},
		{name: "capped", meta: Metadata{Width: 1, Height: 1, Density: 72}, w: 10000, h: 10000, want: maxDensity},
		{name: "unknown size", meta: Metadata{Density: 72}, w: 32, h: 32, want: 72},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, SVGDensity(tc.meta, tc.w, tc.h), 1e-9)
		})
	}
}

func TestRasterizer_SVG(t *testing.T) {
	src := vectorSource(t)

	img, err := SVGRasterizer{}.Rasterize(src, 144)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
	assert.Equal(t, red, img.NRGBAAt(64, 32))

	img, err = SVGRasterizer{}.Rasterize(src, 72)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestRasterizer_MaxSide(t *testing.T) {
	img, err := SVGRasterizer{MaxSide: 256}.Rasterize(vectorSource(t), maxDensity)
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
	assert.Equal(t, red, img.NRGBAAt(128, 64))

	testCases := []struct {
		name          string
		width, height int
		scale         float64
		maxSide       int
		wantW, wantH  int
	}{
		{name: "within bounds", width: 64, height: 32, scale: 2, maxSide: 8192, wantW: 128, wantH: 64},
		{name: "wide", width: 10000, height: 5000, scale: 1, maxSide: 8192, wantW: 8192, wantH: 4096},
		{name: "tall", width: 100, height: 400, scale: 10, maxSide: 1000, wantW: 250, wantH: 1000},
		{name: "thin side keeps a pixel", width: 100000, height: 1, scale: 1, maxSide: 8192, wantW: 8192, wantH: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := rasterSize(tc.width, tc.height, tc.scale, tc.maxSide)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestRasterizer_NaturalSize(t *testing.T) {
	src, err := LoadBuffer([]byte(iconSVG))
	require.NoError(t, err)

	img, err := SVGRasterizer{}.Rasterize(src, SVGDensity(src.Metadata, 48, 48))
	require.NoError(t, err)
	assert.Equal(t, 96, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())
	assert.Equal(t, red, img.NRGBAAt(48, 48))
}

func TestRasterizer_Errors(t *testing.T) {
	bad := &Source{Data: []byte("<svg"), Metadata: Metadata{Format: FormatSVG, Width: 1, Height: 1}}
	_, err := SVGRasterizer{}.Rasterize(bad, 72)
	assert.Error(t, err)
}
