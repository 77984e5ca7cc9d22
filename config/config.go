// Package config reads the YAML plan describing which icons to generate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paul-vd/favicons"
	"github.com/paul-vd/favicons/ico"
	"gopkg.in/yaml.v3"
)

// Config represents a generation plan.
type Config struct {
	// Sources are file paths or http(s) URLs of the source images.
	Sources []string `yaml:"sources"`
	// MaskableSources are used by icons marked as maskable.
	MaskableSources []string `yaml:"maskable_sources"`
	// Output is the directory the artifacts are written to.
	Output string `yaml:"output"`
	// Concurrency bounds the number of planes rendered at once. Zero picks
	// the policy of the host.
	Concurrency int    `yaml:"concurrency"`
	Sequential  bool   `yaml:"sequential"`
	Icons       []Icon `yaml:"icons"`
}

// Icon is one output file of the plan.
type Icon struct {
	Name        string  `yaml:"name"`
	Maskable    bool    `yaml:"maskable"`
	Sizes       []Size  `yaml:"sizes"`
	Offset      float64 `yaml:"offset"`
	PixelArt    bool    `yaml:"pixel_art"`
	Background  string  `yaml:"background"`
	Transparent bool    `yaml:"transparent"`
	Rotate      bool    `yaml:"rotate"`
}

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Load reads and parses the plan stored at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML plan. Missing fields keep the values of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Icons = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Icons) == 0 {
		cfg.Icons = Default().Icons
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the plan used when no config file is given: the classic
// browser favicons, the Apple touch icon and the Android home screen icons.
func Default() *Config {
	square := func(sides ...int) []Size {
		sizes := make([]Size, len(sides))
		for i, s := range sides {
			sizes[i] = Size{Width: s, Height: s}
		}
		return sizes
	}

	return &Config{
		Output: ".",
		Icons: []Icon{
			{Name: "favicon.ico", Sizes: square(16, 24, 32, 48, 64)},
			{Name: "favicon-16x16.png", Sizes: square(16)},
			{Name: "favicon-32x32.png", Sizes: square(32)},
			{Name: "favicon-48x48.png", Sizes: square(48)},
			{Name: "apple-touch-icon.png", Sizes: square(180), Background: "#fff"},
			{Name: "android-chrome-192x192.png", Sizes: square(192)},
			{Name: "android-chrome-512x512.png", Sizes: square(512)},
			{Name: "android-chrome-maskable-192x192.png", Sizes: square(192), Maskable: true, Offset: 10, Background: "#fff"},
			{Name: "android-chrome-maskable-512x512.png", Sizes: square(512), Maskable: true, Offset: 10, Background: "#fff"},
		},
	}
}

// Validate checks the plan for values the generator would reject.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if len(c.Icons) == 0 {
		return errors.New("at least one icon is required")
	}

	names := make(map[string]struct{}, len(c.Icons))
	for i, icon := range c.Icons {
		if icon.Name == "" {
			return fmt.Errorf("icons[%d].name is required", i)
		}
		if !filepath.IsLocal(icon.Name) {
			return fmt.Errorf("icons[%d].name %q must be a relative path inside the output directory", i, icon.Name)
		}
		if _, ok := names[icon.Name]; ok {
			return fmt.Errorf("icons[%d].name %q is declared twice", i, icon.Name)
		}
		names[icon.Name] = struct{}{}

		if err := icon.validate(); err != nil {
			return fmt.Errorf("icons[%d] %s: %w", i, icon.Name, err)
		}
	}
	return nil
}

func (i Icon) validate() error {
	if len(i.Sizes) == 0 {
		return errors.New("at least one size is required")
	}
	container := favicons.ContainerRequested(i.Name, len(i.Sizes))
	for _, s := range i.Sizes {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("invalid size %dx%d", s.Width, s.Height)
		}
		if container && (s.Width > ico.MaxDimension || s.Height > ico.MaxDimension) {
			return fmt.Errorf("size %dx%d does not fit an icon container", s.Width, s.Height)
		}
	}
	if i.Offset < 0 || i.Offset >= 100 {
		return fmt.Errorf("offset %v outside [0, 100)", i.Offset)
	}
	if _, err := favicons.ParseBackground(i.Background); err != nil {
		return err
	}
	return nil
}

// Artifacts converts the icons of the plan into artifact specs.
func (c *Config) Artifacts() []favicons.ArtifactSpec {
	specs := make([]favicons.ArtifactSpec, len(c.Icons))
	for i, icon := range c.Icons {
		sizes := make([]favicons.Size, len(icon.Sizes))
		for j, s := range icon.Sizes {
			sizes[j] = favicons.Size{Width: s.Width, Height: s.Height}
		}
		specs[i] = favicons.ArtifactSpec{
			Name:     icon.Name,
			Maskable: icon.Maskable,
			Options: favicons.IconOptions{
				Sizes:       sizes,
				Offset:      icon.Offset,
				PixelArt:    icon.PixelArt,
				Background:  icon.Background,
				Transparent: icon.Transparent,
				Rotate:      icon.Rotate,
			},
		}
	}
	return specs
}

// Scheduler returns the scheduling policy requested by the plan, falling
// back to the policy of the host named by goos.
func (c *Config) Scheduler(goos string) favicons.Scheduler {
	switch {
	case c.Sequential:
		return favicons.Sequential{}
	case c.Concurrency > 0:
		return favicons.Concurrent{Limit: c.Concurrency}
	}
	return favicons.HostScheduler(goos)
}
