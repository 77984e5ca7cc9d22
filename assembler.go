package favicons

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/paul-vd/favicons/ico"
)

// ContainerExt is the file extension of the multi-resolution icon container.
const ContainerExt = ".ico"

// Artifact is a finished, named output file.
type Artifact struct {
	// Name is the file name, extension included.
	Name     string
	Contents []byte
}

// ContainerRequested reports whether an artifact named name made of the given
// number of planes is packed into an icon container. Only a single plane
// under a non-container name is emitted as a standalone PNG image.
func ContainerRequested(name string, planes int) bool {
	return filepath.Ext(name) == ContainerExt || planes != 1
}

// Assemble renders specs from sources and produces the artifact called name.
func (p *Processor) Assemble(ctx context.Context, sources []*Source, name string, specs []PlaneSpec) (*Artifact, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: %s: no planes requested", ErrRender, name)
	}

	log := p.logger().With().Str("artifact", name).Logger()

	if !ContainerRequested(name, len(specs)) {
		plane, err := p.RenderPNG(ctx, sources, specs[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		log.Debug().Int("bytes", len(plane.Data)).Msg("image assembled")
		return &Artifact{Name: name, Contents: plane.Data}, nil
	}

	tasks := make([]func(context.Context) (*RawPlane, error), len(specs))
	for i, spec := range specs {
		tasks[i] = func(ctx context.Context) (*RawPlane, error) {
			return p.RenderRaw(ctx, sources, spec)
		}
	}
	planes, err := RunAll(ctx, p.scheduler(), tasks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	icoPlanes := make([]ico.Plane, len(planes))
	for i, pl := range planes {
		icoPlanes[i] = pl.icoPlane()
	}
	data, err := ico.Encode(icoPlanes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	log.Debug().Int("planes", len(planes)).Int("bytes", len(data)).Msg("container assembled")
	return &Artifact{Name: name, Contents: data}, nil
}
