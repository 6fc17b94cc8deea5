package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Grid.RowsX)
	assert.Equal(t, [3]float32{0, 1, 2}, cfg.Camera.Eye)
	assert.Equal(t, float32(0.2), cfg.Camera.Speed)
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1.0}, cfg.Render.ClearColor)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  width: 1024
grid:
  rows_x: 4
  spacing: 2.5
camera:
  eye: [0, 5, 10]
render:
  present_mode: uncapped
  profiling: true
assets:
  mesh: tree.glb
  texture: happy-tree.png
debug: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, 4, cfg.Grid.RowsX)
	assert.Equal(t, 10, cfg.Grid.RowsZ)
	assert.Equal(t, float32(2.5), cfg.Grid.Spacing)
	assert.Equal(t, [3]float32{0, 5, 10}, cfg.Camera.Eye)
	assert.Equal(t, float32(45), cfg.Camera.FovY)
	assert.Equal(t, PresentModeUncapped, cfg.Render.PresentMode)
	assert.True(t, cfg.Render.Profiling)
	assert.Equal(t, "tree.glb", cfg.Assets.Mesh)
	assert.Equal(t, "happy-tree.png", cfg.Assets.Texture)
	assert.True(t, cfg.Debug)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Parse([]byte("grid: [1, 2"))
	require.Error(t, err)

	_, err = Parse([]byte("grid:\n  rowz: 3\n"))
	require.Error(t, err, "unknown keys are rejected")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"limits inverted", func(c *Config) { c.Window.MinWidth, c.Window.MaxWidth = 900, 640 }},
		{"negative rows", func(c *Config) { c.Grid.RowsZ = -1 }},
		{"zero spacing", func(c *Config) { c.Grid.Spacing = 0 }},
		{"negative workers", func(c *Config) { c.Grid.Workers = -2 }},
		{"zero speed", func(c *Config) { c.Camera.Speed = 0 }},
		{"fovy too wide", func(c *Config) { c.Camera.FovY = 180 }},
		{"near not positive", func(c *Config) { c.Camera.ZNear = 0 }},
		{"far before near", func(c *Config) { c.Camera.ZFar = 0.05 }},
		{"eye on target", func(c *Config) { c.Camera.Eye = c.Camera.Target }},
		{"zero up", func(c *Config) { c.Camera.Up = [3]float32{} }},
		{"present mode", func(c *Config) { c.Render.PresentMode = "mailbox" }},
		{"frame limit", func(c *Config) { c.Render.FrameLimit = -1 }},
		{"clear colour", func(c *Config) { c.Render.ClearColor[2] = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseCommentOnlyDocument(t *testing.T) {
	cfg, err := Parse([]byte("# nothing set\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
