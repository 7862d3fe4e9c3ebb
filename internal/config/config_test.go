package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whiteboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, c.Storage.Driver)
	assert.Equal(t, filepath.Join(c.DataDir, "whiteboard.db"), c.Storage.DSN)
	assert.Equal(t, 20.0, *c.Export.Padding)
	assert.Equal(t, 1.0, c.Export.Scale)
	assert.Equal(t, RendererSVG, c.Export.Renderer)
	assert.Equal(t, 5.0, *c.Guides.Threshold)
	assert.True(t, *c.Guides.Snap)
	assert.Equal(t, 20.0, *c.Layout.Gap)
	assert.True(t, *c.Layout.Center)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
dataDir: `+dir+`
storage:
  driver: Postgres
  host: db.local
  port: 5432
  database: boards
export:
  padding: 0
  renderer: canvas
guides:
  threshold: 8
  snap: false
layout:
  center: false
schedules:
  - boardId: b1
    cron: "@hourly"
watches:
  - path: `+dir+`/board.json
    format: png
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, c.DataDir)
	assert.Equal(t, DriverPostgres, c.Storage.Driver)
	assert.Empty(t, c.Storage.DSN, "only sqlite gets a default DSN")
	assert.Equal(t, "disable", c.Storage.SSLMode)
	assert.Equal(t, 0.0, *c.Export.Padding, "explicit zero padding survives defaults")
	assert.Equal(t, RendererCanvas, c.Export.Renderer)
	assert.Equal(t, filepath.Join(dir, "exports"), c.Export.OutputDir)

	g := c.GuideOptions()
	assert.Equal(t, 8.0, g.Threshold)
	assert.False(t, g.Snap)

	l := c.LayoutOptions(layout.Grid)
	assert.Equal(t, layout.Grid, l.Layout)
	assert.Equal(t, 20.0, l.Gap)
	assert.False(t, l.Center)

	require.Len(t, c.Schedules, 1)
	assert.Equal(t, "svg", c.Schedules[0].Format)
	require.Len(t, c.Watches, 1)
	assert.Equal(t, "png", c.Watches[0].Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"driver", "storage:\n  driver: oracle\n"},
		{"renderer", "export:\n  renderer: vulkan\n"},
		{"schedule", "schedules:\n  - boardId: b1\n"},
		{"watch", "watches:\n  - format: svg\n"},
		{"yaml", "storage: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), expandHome("~/x"))
	assert.Equal(t, "/abs", expandHome("/abs"))
}
