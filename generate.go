package favicons

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Size is a target plane size in pixels.
type Size struct {
	Width  int
	Height int
}

// IconOptions describes one icon: its sizes and the rendering options shared
// by all of them.
type IconOptions struct {
	Sizes       []Size
	Offset      float64
	PixelArt    bool
	Background  string
	Transparent bool
	Rotate      bool
}

// Planes returns one PlaneSpec per size, carrying the shared options.
func (o IconOptions) Planes() []PlaneSpec {
	specs := make([]PlaneSpec, len(o.Sizes))
	for i, s := range o.Sizes {
		specs[i] = PlaneSpec{
			Width:       s.Width,
			Height:      s.Height,
			Offset:      o.Offset,
			PixelArt:    o.PixelArt,
			Background:  o.Background,
			Transparent: o.Transparent,
			Rotate:      o.Rotate,
		}
	}
	return specs
}

// ArtifactSpec names an output file and the icon it contains.
type ArtifactSpec struct {
	Name    string
	Options IconOptions
	// Maskable renders the artifact from the maskable source set, which
	// leaves room for a platform applied shape mask.
	Maskable bool
}

// Request is a complete generation request.
type Request struct {
	Sources []*Source
	// MaskableSources is used by maskable artifacts. When empty they fall
	// back to Sources.
	MaskableSources []*Source
	Artifacts       []ArtifactSpec
}

// Generate produces every artifact of req, in request order. The request
// fails as a whole on the first error.
func (p *Processor) Generate(ctx context.Context, req Request) ([]*Artifact, error) {
	if len(req.Sources) == 0 {
		return nil, ErrEmptySourceList
	}
	if len(req.Artifacts) == 0 {
		return nil, errors.New("no artifacts requested")
	}

	log := p.logger()
	start := time.Now()

	tasks := make([]func(context.Context) (*Artifact, error), len(req.Artifacts))
	for i, a := range req.Artifacts {
		sources := req.Sources
		if a.Maskable && len(req.MaskableSources) > 0 {
			sources = req.MaskableSources
		}
		tasks[i] = func(ctx context.Context) (*Artifact, error) {
			return p.Assemble(ctx, sources, a.Name, a.Options.Planes())
		}
	}

	artifacts, err := RunAll(ctx, p.scheduler(), tasks)
	if err != nil {
		return nil, fmt.Errorf("generating icons: %w", err)
	}

	log.Info().
		Int("artifacts", len(artifacts)).
		Dur("elapsed", time.Since(start)).
		Msg("icons generated")
	return artifacts, nil
}
