package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Map defaults
	if cfg.Map.BaseDir != "." {
		t.Errorf("expected base dir '.', got %s", cfg.Map.BaseDir)
	}
	if cfg.Map.MapFile != "map.pfmap" || cfg.Map.MaterialFile != "map.pfmat" {
		t.Errorf("unexpected file names %s / %s", cfg.Map.MapFile, cfg.Map.MaterialFile)
	}

	// Viewer defaults
	if cfg.Viewer.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Viewer.Height)
	}
	if cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Generator defaults
	if cfg.Generator.Materials != 2 {
		t.Errorf("expected 2 materials, got %d", cfg.Generator.Materials)
	}
	if cfg.Generator.MaxHeight != 4 {
		t.Errorf("expected max height 4, got %d", cfg.Generator.MaxHeight)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pfmap.yaml")

	yamlContent := `
map:
  base_dir: "assets/maps/plain"
  map_file: "plain.pfmap"
  material_file: "plain.pfmat"
  chunk_materials:
    3: "snow.pfmat"

viewer:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  show_grid: true

generator:
  seed: 99
  rows: 2
  cols: 3
  max_height: 7
  materials: 4
  scale: 16.5

logging:
  level: "debug"
  log_file: "pfmap.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Map.BaseDir != "assets/maps/plain" {
		t.Errorf("expected base dir assets/maps/plain, got %s", cfg.Map.BaseDir)
	}
	if cfg.Map.MapFile != "plain.pfmap" || cfg.Map.MaterialFile != "plain.pfmat" {
		t.Errorf("unexpected file names %s / %s", cfg.Map.MapFile, cfg.Map.MaterialFile)
	}
	if cfg.Map.ChunkMaterials[3] != "snow.pfmat" {
		t.Errorf("expected chunk 3 override snow.pfmat, got %v", cfg.Map.ChunkMaterials)
	}

	if cfg.Viewer.Width != 1920 || cfg.Viewer.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if !cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Viewer.VSync {
		t.Error("expected vsync to be false")
	}
	if !cfg.Viewer.ShowGrid {
		t.Error("expected show_grid to be true")
	}

	if cfg.Generator.Seed != 99 || cfg.Generator.Rows != 2 || cfg.Generator.Cols != 3 {
		t.Errorf("unexpected generator layout %+v", cfg.Generator)
	}
	if cfg.Generator.Scale != 16.5 {
		t.Errorf("expected scale 16.5, got %f", cfg.Generator.Scale)
	}
	// Unset keys keep their defaults.
	if cfg.Generator.Octaves != 3 {
		t.Errorf("expected default octaves 3, got %d", cfg.Generator.Octaves)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "pfmap.log" {
		t.Errorf("expected log file 'pfmap.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
viewer:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/pfmap.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no map file", func(c *Config) { c.Map.MapFile = "" }},
		{"no material file", func(c *Config) { c.Map.MaterialFile = "" }},
		{"zero width", func(c *Config) { c.Viewer.Width = 0 }},
		{"too many materials", func(c *Config) { c.Generator.Materials = 11 }},
		{"empty override", func(c *Config) { c.Map.ChunkMaterials = map[int]string{0: ""} }},
		{"negative chunk", func(c *Config) { c.Map.ChunkMaterials = map[int]string{-1: "a.pfmat"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "pfmap.yaml")
	if err := os.WriteFile(configPath, []byte("viewer:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find pfmap.yaml in current directory")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pfmap.yaml")

	cfg := Default()
	cfg.Map.MapFile = "saved.pfmap"
	cfg.Map.ChunkMaterials = map[int]string{1: "rock.pfmat"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Map.MapFile != "saved.pfmap" || loaded.Map.ChunkMaterials[1] != "rock.pfmat" {
		t.Errorf("reloaded config differs: %+v", loaded.Map)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Viewer.ShowGrid {
					t.Error("expected grid overlay with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "map location flags",
			setup: func() {
				*flagDir = "/data/maps"
				*flagMap = "hills.pfmap"
				*flagMat = "hills.pfmat"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Map.BaseDir != "/data/maps" {
					t.Errorf("expected base dir /data/maps, got %s", cfg.Map.BaseDir)
				}
				if cfg.Map.MapFile != "hills.pfmap" || cfg.Map.MaterialFile != "hills.pfmat" {
					t.Errorf("unexpected file names %s / %s", cfg.Map.MapFile, cfg.Map.MaterialFile)
				}
			},
			teardown: func() {
				*flagDir = ""
				*flagMap = ""
				*flagMat = ""
			},
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Viewer.Width != 2560 || cfg.Viewer.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pfmap.yaml")

	yamlContent := `
viewer:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from the flag, height from the file.
	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "pfmap.yaml")
	if err := os.WriteFile(configPath, []byte("generator:\n  materials: 12\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("generator:\n  seed: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("viewer:\n  width: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFile(good)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Generator.Seed != 5 || cfg.Generator.Rows != 1 {
		t.Errorf("unexpected generator section %+v", cfg.Generator)
	}

	if _, err := LoadFile(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
