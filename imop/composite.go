// Package imop implements the Porter-Duff operators used to place a rendered
// icon on its backdrop. The image/draw package only offers source-over on
// premultiplied colors; the operators here work directly on non-premultiplied
// NRGBA buffers and round every channel, so results are reproducible byte for byte.
package imop

import (
	"image"
	"math"
)

const (
	Copy    = "copy"
	SrcOver = "src_over"
)

// Composite holds the currently active composition operator.
type Composite struct {
	current string
	ops     []string
}

// InitOp returns a Composite using source-over.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops:     []string{Copy, SrcOver},
	}
}

// Set activates one of the supported operators. Unknown operators are ignored.
func (op *Composite) Set(cop string) {
	for _, o := range op.ops {
		if o == cop {
			op.current = cop
			return
		}
	}
}

// Draw composites src onto dst with its top-left corner at pt.
// Pixels of src falling outside dst are clipped.
func (op *Composite) Draw(dst, src *image.NRGBA, pt image.Point) {
	sb := src.Bounds()
	r := image.Rectangle{Min: pt, Max: pt.Add(sb.Size())}.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(sb.Min.X+r.Min.X-pt.X, sb.Min.Y+y-pt.Y)
		for x := r.Min.X; x < r.Max.X; x++ {
			d := dst.Pix[di : di+4 : di+4]
			s := src.Pix[si : si+4 : si+4]

			switch op.current {
			case Copy:
				copy(d, s)
			case SrcOver:
				over(d, s)
			}
			di += 4
			si += 4
		}
	}
}

// over composites top over bottom, in place.
func over(bottom, top []uint8) {
	ta := float64(top[3]) / 255
	ba := float64(bottom[3]) / 255
	oa := ta + ba*(1-ta)

	if oa == 0 {
		bottom[0], bottom[1], bottom[2], bottom[3] = 0, 0, 0, 0
		return
	}

	var c [3]uint8
	for i := 0; i < 3; i++ {
		v := (float64(top[i])*ta + float64(bottom[i])*ba*(1-ta)) / oa
		c[i] = uint8(math.Min(255, math.Round(v)))
	}
	bottom[0], bottom[1], bottom[2] = c[0], c[1], c[2]
	bottom[3] = uint8(math.Round(oa * 255))
}
