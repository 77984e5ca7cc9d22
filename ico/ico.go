// Package ico writes and reads the legacy Windows icon container.
//
// An ICO file starts with a 6 byte header declaring the number of images,
// followed by one 16 byte directory entry per image and finally the image
// data itself. Every image produced by this package is stored as an
// uncompressed 32 bit BGRA device independent bitmap, rows bottom-up, the
// same layout the Windows shell expects for icons with an alpha channel.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

const (
	headerSize       = 6
	entrySize        = 16
	bitmapHeaderSize = 40

	// MaxDimension is the largest width or height an entry can describe.
	// A single byte holds the size, so 256 is written as 0.
	MaxDimension = 256

	iconType = 1
	depth    = 4
)

// ErrEncode is returned when a set of planes cannot be packed into a container.
var ErrEncode = errors.New("ico: cannot encode planes")

// ErrFormat is returned when the data does not hold a valid container.
var ErrFormat = errors.New("ico: invalid format")

// Plane holds the raw non-premultiplied RGBA pixels of one icon image.
type Plane struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
	Stride   int
}

// Entry describes one image of the container directory.
type Entry struct {
	Width    int
	Height   int
	BitDepth int
	Size     uint32
	Offset   uint32
}

// Encode packs the planes into an ICO container, preserving their order.
// All planes must carry 4 channels.
func Encode(planes []Plane) ([]byte, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: no planes", ErrEncode)
	}
	if len(planes) > 0xffff {
		return nil, fmt.Errorf("%w: too many planes (%d)", ErrEncode, len(planes))
	}
	for i, p := range planes {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("%w: plane %d: %v", ErrEncode, i, err)
		}
	}

	var buf bytes.Buffer
	write := func(v any) {
		// Writes into a bytes.Buffer never fail.
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	write(uint16(0))
	write(uint16(iconType))
	write(uint16(len(planes)))

	offset := uint32(headerSize + entrySize*len(planes))
	for _, p := range planes {
		size := uint32(bitmapHeaderSize + p.Width*p.Height*p.Channels)

		buf.WriteByte(dimensionByte(p.Width))
		buf.WriteByte(dimensionByte(p.Height))
		buf.WriteByte(0) // color count, 0 for true color
		buf.WriteByte(0) // reserved
		write(uint16(1))
		write(uint16(p.Channels * 8))
		write(size)
		write(offset)

		offset += size
	}

	for _, p := range planes {
		dib := p.dib()

		write(uint32(bitmapHeaderSize))
		write(int32(p.Width))
		write(int32(p.Height * 2)) // XOR and AND masks share the declared height
		write(uint16(1))
		write(uint16(p.Channels * 8))
		write(uint32(0)) // BI_RGB
		write(uint32(len(dib)))
		write(int32(0))
		write(int32(0))
		write(uint32(0))
		write(uint32(0))

		buf.Write(dib)
	}

	return buf.Bytes(), nil
}

func (p Plane) validate() error {
	if p.Width <= 0 || p.Height <= 0 || p.Width > MaxDimension || p.Height > MaxDimension {
		return fmt.Errorf("dimensions %dx%d outside 1..%d", p.Width, p.Height, MaxDimension)
	}
	if p.Channels != depth {
		return fmt.Errorf("expected %d channels, got %d", depth, p.Channels)
	}
	if p.Stride < p.Width*depth {
		return fmt.Errorf("stride %d shorter than a row", p.Stride)
	}
	if len(p.Pix) < p.Stride*(p.Height-1)+p.Width*depth {
		return fmt.Errorf("pixel buffer holds %d bytes", len(p.Pix))
	}
	return nil
}

// dib converts the RGBA rows into bottom-up BGRA rows.
func (p Plane) dib() []byte {
	row := p.Width * depth
	out := make([]byte, row*p.Height)

	for y := 0; y < p.Height; y++ {
		src := p.Pix[y*p.Stride : y*p.Stride+row]
		dst := out[(p.Height-1-y)*row:]
		for x := 0; x < row; x += depth {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return out
}

func dimensionByte(v int) byte {
	if v == MaxDimension {
		return 0
	}
	return byte(v)
}

// DecodeDirectory parses the container header and returns its entries in file order.
func DecodeDirectory(data []byte) ([]Entry, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: short header", ErrFormat)
	}
	if binary.LittleEndian.Uint16(data[0:]) != 0 || binary.LittleEndian.Uint16(data[2:]) != iconType {
		return nil, fmt.Errorf("%w: not an icon", ErrFormat)
	}

	n := int(binary.LittleEndian.Uint16(data[4:]))
	if len(data) < headerSize+n*entrySize {
		return nil, fmt.Errorf("%w: truncated directory", ErrFormat)
	}

	entries := make([]Entry, n)
	for i := range entries {
		e := data[headerSize+i*entrySize:]
		entries[i] = Entry{
			Width:    dimension(e[0]),
			Height:   dimension(e[1]),
			BitDepth: int(binary.LittleEndian.Uint16(e[6:])),
			Size:     binary.LittleEndian.Uint32(e[8:]),
			Offset:   binary.LittleEndian.Uint32(e[12:]),
		}
		if uint64(entries[i].Offset)+uint64(entries[i].Size) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: entry %d points past the end of data", ErrFormat, i)
		}
	}
	return entries, nil
}

func dimension(b byte) int {
	if b == 0 {
		return MaxDimension
	}
	return int(b)
}

// DecodeImage reads back the 32 bit bitmap an entry points to.
func DecodeImage(data []byte, e Entry) (*image.NRGBA, error) {
	if e.BitDepth != depth*8 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrFormat, e.BitDepth)
	}
	end := uint64(e.Offset) + uint64(e.Size)
	if end > uint64(len(data)) || e.Size < bitmapHeaderSize {
		return nil, fmt.Errorf("%w: entry out of range", ErrFormat)
	}

	bmp := data[e.Offset:end]
	if binary.LittleEndian.Uint32(bmp[0:]) != bitmapHeaderSize {
		return nil, fmt.Errorf("%w: unsupported bitmap header", ErrFormat)
	}
	w := int(int32(binary.LittleEndian.Uint32(bmp[4:])))
	h := int(int32(binary.LittleEndian.Uint32(bmp[8:]))) / 2
	if w != e.Width || h != e.Height {
		return nil, fmt.Errorf("%w: bitmap is %dx%d, directory says %dx%d", ErrFormat, w, h, e.Width, e.Height)
	}

	row := w * depth
	pix := bmp[bitmapHeaderSize:]
	if len(pix) < row*h {
		return nil, fmt.Errorf("%w: truncated bitmap", ErrFormat)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := pix[(h-1-y)*row:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < row; x += depth {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return img, nil
}
