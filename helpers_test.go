package favicons

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
)

const rectSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="64" height="32" viewBox="0 0 64 32">
  <rect x="0" y="0" width="64" height="32" fill="#ff0000"/>
</svg>`

// iconSVG declares a 96x96 natural size over a 24x24 user space.
const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="96" height="96px" viewBox="0 0 24 24">
  <rect width="24" height="24" fill="#ff0000"/>
</svg>`

// hugeSVG has a natural size far beyond the raster bounds.
const hugeSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10000 10000">
  <rect width="10000" height="10000" fill="#ff0000"/>
</svg>`

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
	green = color.NRGBA{G: 0xff, A: 0xff}
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("could not encode the test image: %v", err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("could not decode the generated image: %v", err)
	}
	return img
}

func rasterSource(t *testing.T, w, h int, c color.NRGBA) *Source {
	t.Helper()
	src, err := LoadBuffer(encodePNG(t, solidImage(w, h, c)))
	if err != nil {
		t.Fatalf("could not load the test source: %v", err)
	}
	return src
}

func vectorSource(t *testing.T) *Source {
	t.Helper()
	src, err := LoadBuffer([]byte(rectSVG))
	if err != nil {
		t.Fatalf("could not load the svg source: %v", err)
	}
	return src
}

// alphaBounds returns the bounding box of the pixels that are not fully transparent.
func alphaBounds(img image.Image) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}
