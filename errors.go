package favicons

import (
	"errors"

	"github.com/paul-vd/favicons/ico"
)

var (
	// ErrInvalidSource is returned when a buffer or file cannot be decoded as an image.
	ErrInvalidSource = errors.New("invalid image buffer")

	// ErrEmptySourceList is returned when a source list holds no elements.
	ErrEmptySourceList = errors.New("no source provided")

	// ErrInvalidSourceType is returned for source values that are neither a buffer,
	// a path nor a flat list of those.
	ErrInvalidSourceType = errors.New("invalid source type provided")

	// ErrRender wraps failures of the resize, rasterize and composite steps.
	ErrRender = errors.New("cannot render plane")

	// ErrEncode is returned when the planes of a container cannot be packed.
	ErrEncode = ico.ErrEncode
)
