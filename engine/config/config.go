// Package config loads the viewer configuration from YAML. Every field has a default,
// so a file only needs the values it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Present modes accepted in render.present_mode.
const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

// Config is the complete viewer configuration.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Grid   GridConfig   `yaml:"grid"`
	Camera CameraConfig `yaml:"camera"`
	Render RenderConfig `yaml:"render"`
	Assets AssetsConfig `yaml:"assets"`
	Debug  bool         `yaml:"debug"`
}

// WindowConfig sizes the window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	// Resize bounds; zero keeps the window defaults.
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// GridConfig shapes the instance grid.
type GridConfig struct {
	RowsX   int     `yaml:"rows_x"`
	RowsZ   int     `yaml:"rows_z"`
	Spacing float32 `yaml:"spacing"`
	// Workers packs rows in parallel; 0 picks a default from the CPU count.
	Workers int `yaml:"workers"`
}

// CameraConfig places the camera and sets the controller speed.
type CameraConfig struct {
	Eye    [3]float32 `yaml:"eye"`
	Target [3]float32 `yaml:"target"`
	Up     [3]float32 `yaml:"up"`
	FovY   float32    `yaml:"fovy"`
	ZNear  float32    `yaml:"znear"`
	ZFar   float32    `yaml:"zfar"`
	Speed  float32    `yaml:"speed"`
}

// RenderConfig holds surface and frame loop settings.
type RenderConfig struct {
	ClearColor    [4]float64 `yaml:"clear_color"`
	PresentMode   string     `yaml:"present_mode"`
	FrameLimit    float64    `yaml:"frame_limit"`
	Profiling     bool       `yaml:"profiling"`
	ForceFallback bool       `yaml:"force_fallback_adapter"`
}

// AssetsConfig points at optional files; empty paths use the built-in assets.
type AssetsConfig struct {
	Mesh           string `yaml:"mesh"`
	Texture        string `yaml:"texture"`
	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`
}

// Default returns the built-in configuration: an 800x600 window looking at a 10x10 grid
// from (0, 1, 2).
func Default() Config {
	return Config{
		Window: WindowConfig{Title: "oxy-instanced", Width: 800, Height: 600},
		Grid:   GridConfig{RowsX: 10, RowsZ: 10, Spacing: 1},
		Camera: CameraConfig{
			Eye:    [3]float32{0, 1, 2},
			Target: [3]float32{0, 0, 0},
			Up:     [3]float32{0, 1, 0},
			FovY:   45,
			ZNear:  0.1,
			ZFar:   100,
			Speed:  0.2,
		},
		Render: RenderConfig{
			ClearColor:  [4]float64{0.1, 0.2, 0.3, 1.0},
			PresentMode: PresentModeVSync,
		},
	}
}

// Load reads path over the defaults and validates the result. An empty path returns
// the defaults.
//
// Parameters:
//   - path: the YAML file, or ""
//
// Returns:
//   - Config: the merged configuration
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys are
// rejected so typos do not silently fall back to defaults.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the merged configuration
//   - error: a parse or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(data) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Window.MaxWidth > 0 && c.Window.MinWidth > c.Window.MaxWidth,
		c.Window.MaxHeight > 0 && c.Window.MinHeight > c.Window.MaxHeight:
		return fmt.Errorf("%w: window limits %dx%d above %dx%d", ErrInvalidConfig,
			c.Window.MinWidth, c.Window.MinHeight, c.Window.MaxWidth, c.Window.MaxHeight)
	case c.Grid.RowsX <= 0 || c.Grid.RowsZ <= 0:
		return fmt.Errorf("%w: grid rows %dx%d", ErrInvalidConfig, c.Grid.RowsX, c.Grid.RowsZ)
	case !positive(c.Grid.Spacing):
		return fmt.Errorf("%w: grid spacing %v", ErrInvalidConfig, c.Grid.Spacing)
	case c.Grid.Workers < 0:
		return fmt.Errorf("%w: grid workers %d", ErrInvalidConfig, c.Grid.Workers)
	case !positive(c.Camera.Speed):
		return fmt.Errorf("%w: camera speed %v", ErrInvalidConfig, c.Camera.Speed)
	case !positive(c.Camera.FovY) || c.Camera.FovY >= 180:
		return fmt.Errorf("%w: camera fovy %v", ErrInvalidConfig, c.Camera.FovY)
	case !positive(c.Camera.ZNear) || !(c.Camera.ZFar > c.Camera.ZNear):
		return fmt.Errorf("%w: camera near/far %v/%v", ErrInvalidConfig, c.Camera.ZNear, c.Camera.ZFar)
	case c.Camera.Eye == c.Camera.Target:
		return fmt.Errorf("%w: camera eye equals target", ErrInvalidConfig)
	case c.Camera.Up == [3]float32{}:
		return fmt.Errorf("%w: camera up is zero", ErrInvalidConfig)
	case c.Render.PresentMode != PresentModeVSync && c.Render.PresentMode != PresentModeUncapped:
		return fmt.Errorf("%w: present mode %q", ErrInvalidConfig, c.Render.PresentMode)
	case c.Render.FrameLimit < 0:
		return fmt.Errorf("%w: frame limit %v", ErrInvalidConfig, c.Render.FrameLimit)
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: clear colour component %d is %v", ErrInvalidConfig, i, v)
		}
	}
	return nil
}

func positive(v float32) bool {
	return v > 0 && !math.IsInf(float64(v), 0)
}
