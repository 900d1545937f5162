// Package config handles pfmap tool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/pfmap/pkg/formats"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings shared by the pfmap commands.
type Config struct {
	Map       MapConfig       `yaml:"map"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Generator GeneratorConfig `yaml:"generator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MapConfig locates the map and material files to load.
type MapConfig struct {
	BaseDir      string `yaml:"base_dir"`
	MapFile      string `yaml:"map_file"`
	MaterialFile string `yaml:"material_file"`

	// Per-chunk material files keyed by row-major chunk index.
	ChunkMaterials map[int]string `yaml:"chunk_materials"`
}

// ViewerConfig holds window settings for the map viewer.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	ShowGrid   bool `yaml:"show_grid"`
}

// GeneratorConfig holds procedural map settings.
type GeneratorConfig struct {
	Seed        int64   `yaml:"seed"`
	Rows        int     `yaml:"rows"`
	Cols        int     `yaml:"cols"`
	MaxHeight   int     `yaml:"max_height"`
	Materials   int     `yaml:"materials"`
	Scale       float32 `yaml:"scale"`
	Octaves     int     `yaml:"octaves"`
	Lacunarity  float32 `yaml:"lacunarity"`
	Persistence float32 `yaml:"persistence"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Map: MapConfig{
			BaseDir:      ".",
			MapFile:      "map.pfmap",
			MaterialFile: "map.pfmat",
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			ShowGrid:   false,
		},
		Generator: GeneratorConfig{
			Seed:        1,
			Rows:        1,
			Cols:        1,
			MaxHeight:   4,
			Materials:   2,
			Scale:       24,
			Octaves:     3,
			Lacunarity:  2,
			Persistence: 0.5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Map.MapFile == "" || c.Map.MaterialFile == "" {
		return fmt.Errorf("%w: map and material file names are required", ErrInvalidConfig)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("%w: viewer size %dx%d", ErrInvalidConfig, c.Viewer.Width, c.Viewer.Height)
	}
	if c.Generator.Materials <= 0 || c.Generator.Materials > formats.MaxMaterials {
		return fmt.Errorf("%w: generator materials %d out of range 1-%d",
			ErrInvalidConfig, c.Generator.Materials, formats.MaxMaterials)
	}
	for chunk, name := range c.Map.ChunkMaterials {
		if chunk < 0 || name == "" {
			return fmt.Errorf("%w: chunk material override %d=%q", ErrInvalidConfig, chunk, name)
		}
	}
	return nil
}
