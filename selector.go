package favicons

import "github.com/paul-vd/favicons/utils"

// rank orders candidate sources for a target size. Lower is better and the
// fields are compared in declaration order.
type rank struct {
	raster   int // 0 for vector sources
	upscale  int // 1 when the source is smaller than the target
	distance int // gap between the larger source side and the larger target side
}

func rankOf(s *Source, side int) rank {
	r := rank{}
	if !s.Metadata.IsVector() {
		r.raster = 1
	}
	size := utils.Max(s.Metadata.Width, s.Metadata.Height)
	if size < side {
		r.upscale = 1
	}
	r.distance = utils.Abs(size - side)
	return r
}

func (r rank) less(o rank) bool {
	if r.raster != o.raster {
		return r.raster < o.raster
	}
	if r.upscale != o.upscale {
		return r.upscale < o.upscale
	}
	return r.distance < o.distance
}

// SelectSource picks the source best suited to render a width x height plane.
// Vector sources win over raster ones, then sources that do not need to be
// upscaled, then the source whose larger side is closest to the larger target
// side. Ties go to the earliest source. It returns nil for an empty list.
func SelectSource(sources []*Source, width, height int) *Source {
	side := utils.Max(width, height)

	var (
		best     *Source
		bestRank rank
	)
	for _, s := range sources {
		r := rankOf(s, side)
		if best == nil || r.less(bestRank) {
			best, bestRank = s, r
		}
	}
	return best
}
