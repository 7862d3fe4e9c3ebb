// Package config loads the whiteboard YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"whiteboard/internal/guides"
	"whiteboard/internal/layout"
)

type Config struct {
	DataDir   string        `yaml:"dataDir"`
	Storage   StorageConfig `yaml:"storage"`
	Export    ExportConfig  `yaml:"export"`
	Guides    GuidesConfig  `yaml:"guides"`
	Layout    LayoutConfig  `yaml:"layout"`
	Schedules []Schedule    `yaml:"schedules"`
	Watches   []Watch       `yaml:"watches"`
}

// StorageConfig selects the board store. DSN wins over the individual
// connection fields when set.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslMode"`
}

type ExportConfig struct {
	Padding    *float64 `yaml:"padding"`
	Background string   `yaml:"background"`
	Scale      float64  `yaml:"scale"`
	// Renderer picks the PNG backend: "svg" rasterizes the SVG document,
	// "canvas" draws through the shape strategy registry.
	Renderer string `yaml:"renderer"`
	FontPath string `yaml:"fontPath"`
	// OutputDir receives board exports that do not name a path.
	OutputDir string `yaml:"outputDir"`
}

type GuidesConfig struct {
	Threshold *float64 `yaml:"threshold"`
	Snap      *bool    `yaml:"snap"`
}

type LayoutConfig struct {
	Gap    *float64 `yaml:"gap"`
	Center *bool    `yaml:"center"`
}

// Schedule re-exports a stored board on a cron spec.
type Schedule struct {
	BoardID string `yaml:"boardId"`
	Cron    string `yaml:"cron"`
	Format  string `yaml:"format"`
	Output  string `yaml:"output"`
}

// Watch re-exports a document file whenever it changes.
type Watch struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongoDB  = "mongodb"

	RendererSVG    = "svg"
	RendererCanvas = "canvas"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path and applies defaults. A missing file is not an error;
// an empty path means defaults only.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(expandHome(path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		homeDir, _ := os.UserHomeDir()
		c.DataDir = filepath.Join(homeDir, ".local", "share", "whiteboard")
	}
	c.DataDir = expandHome(c.DataDir)

	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.Driver == DriverSQLite && c.Storage.DSN == "" {
		c.Storage.DSN = filepath.Join(c.DataDir, "whiteboard.db")
	}
	if c.Storage.SSLMode == "" {
		c.Storage.SSLMode = "disable"
	}

	if c.Export.Padding == nil {
		p := 20.0
		c.Export.Padding = &p
	}
	if c.Export.Scale <= 0 {
		c.Export.Scale = 1
	}
	if c.Export.Renderer == "" {
		c.Export.Renderer = RendererSVG
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = filepath.Join(c.DataDir, "exports")
	}
	c.Export.FontPath = expandHome(c.Export.FontPath)
	c.Export.OutputDir = expandHome(c.Export.OutputDir)

	if c.Guides.Threshold == nil {
		t := float64(guides.DefaultThreshold)
		c.Guides.Threshold = &t
	}
	if c.Guides.Snap == nil {
		snap := true
		c.Guides.Snap = &snap
	}
	if c.Layout.Gap == nil {
		g := float64(layout.DefaultGap)
		c.Layout.Gap = &g
	}
	if c.Layout.Center == nil {
		center := true
		c.Layout.Center = &center
	}
	for i := range c.Schedules {
		if c.Schedules[i].Format == "" {
			c.Schedules[i].Format = "svg"
		}
	}
	for i := range c.Watches {
		c.Watches[i].Path = expandHome(c.Watches[i].Path)
		if c.Watches[i].Format == "" {
			c.Watches[i].Format = "svg"
		}
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverMySQL, DriverMongoDB:
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	switch c.Export.Renderer {
	case RendererSVG, RendererCanvas:
	default:
		return fmt.Errorf("unsupported export renderer: %s", c.Export.Renderer)
	}
	for i, s := range c.Schedules {
		if s.BoardID == "" || s.Cron == "" {
			return fmt.Errorf("schedule %d: boardId and cron are required", i)
		}
	}
	for i, w := range c.Watches {
		if w.Path == "" {
			return fmt.Errorf("watch %d: path is required", i)
		}
	}
	return nil
}

// GuideOptions returns the snap engine options the config describes.
func (c *Config) GuideOptions() guides.Options {
	return guides.Options{Threshold: *c.Guides.Threshold, Snap: *c.Guides.Snap}
}

// LayoutOptions returns tidy-up options for l with the configured gap and
// centering.
func (c *Config) LayoutOptions(l layout.Layout) layout.Options {
	opts := layout.DefaultOptions(l)
	opts.Gap = *c.Layout.Gap
	opts.Center = *c.Layout.Center
	return opts
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
