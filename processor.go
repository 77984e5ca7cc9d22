package favicons

import (
	"github.com/rs/zerolog"
)

// Processor renders icon planes from a set of sources and assembles them
// into finished artifacts. The zero value is ready to use: it rasterizes
// vector sources with SVGRasterizer, composites with ImagingCompositor,
// runs independent work concurrently and does not log.
//
// A Processor holds no per-request state and is safe for concurrent use.
type Processor struct {
	Rasterizer Rasterizer
	Compositor Compositor
	Scheduler  Scheduler
	Logger     *zerolog.Logger
}

func (p *Processor) rasterizer() Rasterizer {
	if p.Rasterizer != nil {
		return p.Rasterizer
	}
	return SVGRasterizer{}
}

func (p *Processor) compositor() Compositor {
	if p.Compositor != nil {
		return p.Compositor
	}
	return ImagingCompositor{}
}

func (p *Processor) scheduler() Scheduler {
	if p.Scheduler != nil {
		return p.Scheduler
	}
	return Concurrent{}
}

var nopLogger = zerolog.Nop()

func (p *Processor) logger() *zerolog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return &nopLogger
}
