package favicons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func meta(format string, w, h int) *Source {
	return &Source{Metadata: Metadata{Width: w, Height: h, Format: format, Density: defaultDensity}}
}

func TestSelector_Ranking(t *testing.T) {
	testCases := []struct {
		name    string
		sources []*Source
		w, h    int
		want    int
	}{
		{
			name:    "vector wins over an exact raster",
			sources: []*Source{meta("png", 32, 32), meta(FormatSVG, 16, 16)},
			w:       32, h: 32,
			want: 1,
		},
		{
			name:    "no upscale wins over a closer smaller source",
			sources: []*Source{meta("png", 32, 32), meta("png", 256, 256)},
			w:       64, h: 64,
			want: 1,
		},
		{
			name:    "closest larger source",
			sources: []*Source{meta("png", 512, 512), meta("png", 128, 128)},
			w:       100, h: 100,
			want: 1,
		},
		{
			name:    "closest smaller source when all need upscaling",
			sources: []*Source{meta("png", 16, 16), meta("png", 48, 48)},
			w:       64, h: 64,
			want: 1,
		},
		{
			name:    "larger side decides",
			sources: []*Source{meta("png", 300, 20), meta("png", 200, 200)},
			w:       180, h: 180,
			want: 1,
		},
		{
			name:    "ties go to the first source",
			sources: []*Source{meta("png", 64, 64), meta("png", 64, 64)},
			w:       32, h: 32,
			want: 0,
		},
		{
			name:    "ties between vectors go to the first source",
			sources: []*Source{meta(FormatSVG, 24, 24), meta(FormatSVG, 24, 24)},
			w:       48, h: 48,
			want: 0,
		},
		{
			name:    "non square target uses its larger side",
			sources: []*Source{meta("png", 64, 64), meta("png", 160, 160)},
			w:       150, h: 40,
			want: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectSource(tc.sources, tc.w, tc.h)
			assert.Same(t, tc.sources[tc.want], got)
		})
	}
}

func TestSelector_Deterministic(t *testing.T) {
	sources := []*Source{
		meta("png", 48, 48),
		meta("png", 48, 48),
		meta("jpeg", 512, 512),
		meta("png", 16, 16),
	}

	first := SelectSource(sources, 32, 32)
	for i := 0; i < 50; i++ {
		assert.Same(t, first, SelectSource(sources, 32, 32))
	}
	assert.Same(t, sources[0], first)
}

func TestSelector_Empty(t *testing.T) {
	assert.Nil(t, SelectSource(nil, 16, 16))
	assert.Nil(t, SelectSource([]*Source{}, 16, 16))
}
