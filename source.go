package favicons

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paul-vd/favicons/utils"
	"github.com/srwiley/oksvg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FormatSVG is the format tag of vector sources.
const FormatSVG = "svg"

// defaultDensity is the resolution, in dots per inch, at which the natural
// size of a vector source is measured.
const defaultDensity = 72.0

// Metadata describes a decoded source image.
type Metadata struct {
	Width    int
	Height   int
	Format   string
	Channels int
	Density  float64
}

// IsVector reports whether the source scales without quality loss.
func (m Metadata) IsVector() bool {
	return m.Format == FormatSVG
}

// Source is a decoded source image. Sources are never modified after
// loading and may be shared by any number of concurrent renders.
type Source struct {
	// Data holds the encoded bytes the source was loaded from.
	Data []byte
	// Image holds the decoded pixels of raster sources. It is nil for vector sources.
	Image    image.Image
	Metadata Metadata
}

// LoadSources turns a source argument into decoded sources. The argument may be
// an in-memory image ([]byte), a file path (string), or a flat list of those
// ([]any, [][]byte or []string). Nested lists are rejected with
// ErrInvalidSourceType. The result keeps the order of the input.
func LoadSources(src any) ([]*Source, error) {
	switch s := src.(type) {
	case []byte:
		return single(LoadBuffer(s))
	case string:
		return single(LoadFile(s))
	case [][]byte:
		list := make([]any, len(s))
		for i, b := range s {
			list[i] = b
		}
		return loadList(list)
	case []string:
		list := make([]any, len(s))
		for i, p := range s {
			list[i] = p
		}
		return loadList(list)
	case []any:
		return loadList(s)
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidSourceType, src)
}

func single(s *Source, err error) ([]*Source, error) {
	if err != nil {
		return nil, err
	}
	return []*Source{s}, nil
}

func loadList(list []any) ([]*Source, error) {
	if len(list) == 0 {
		return nil, ErrEmptySourceList
	}
	for i, el := range list {
		switch el.(type) {
		case []byte, string:
		default:
			return nil, fmt.Errorf("%w: element %d is %T", ErrInvalidSourceType, i, el)
		}
	}

	sources := make([]*Source, 0, len(list))
	for _, el := range list {
		s, err := LoadSources(el)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s...)
	}
	return sources, nil
}

// LoadFile reads and decodes the image stored at path.
func LoadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read the source file: %w", err)
	}
	s, err := LoadBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadBuffer decodes an in-memory image.
func LoadBuffer(data []byte) (*Source, error) {
	if utils.DetectContentType(data) == utils.SVGContentType {
		return loadVector(data)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidSource)
	}

	return &Source{
		Data:  data,
		Image: img,
		Metadata: Metadata{
			Width:    b.Dx(),
			Height:   b.Dy(),
			Format:   format,
			Channels: channels(img),
			Density:  defaultDensity,
		},
	}, nil
}

func loadVector(data []byte) (*Source, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	width, height := svgSize(data, icon.ViewBox.W, icon.ViewBox.H)
	w := int(math.Round(width))
	h := int(math.Round(height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: svg without dimensions", ErrInvalidSource)
	}

	return &Source{
		Data: data,
		Metadata: Metadata{
			Width:    w,
			Height:   h,
			Format:   FormatSVG,
			Channels: 4,
			Density:  defaultDensity,
		},
	}, nil
}

// svgSize returns the natural size of an SVG document. The width and height
// attributes of the root element win over the viewBox size (vbW, vbH). When
// only one of them is set the other follows the viewBox aspect ratio.
func svgSize(data []byte, vbW, vbH float64) (float64, float64) {
	var width, height float64

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local == "svg" {
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "width":
					width = svgLength(attr.Value)
				case "height":
					height = svgLength(attr.Value)
				}
			}
		}
		break
	}

	switch {
	case width > 0 && height > 0:
		return width, height
	case width > 0 && vbW > 0:
		return width, width * vbH / vbW
	case height > 0 && vbH > 0:
		return height * vbW / vbH, height
	}
	return vbW, vbH
}

// svgLength parses an absolute length in user units. Relative lengths such
// as percentages give 0.
func svgLength(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// channels reports how many channels the decoded pixels carry.
func channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr:
		return 3
	case *image.CMYK:
		return 4
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}
