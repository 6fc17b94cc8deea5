// Command oxy-viewer opens a window and draws a grid of textured, instanced pentagons
// (or the first mesh of a glTF model) that can be orbited with the keyboard.
//
// Controls: W/Up and S/Down move toward and away from the target, A/Left and D/Right
// orbit around it, Escape quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine"
	"github.com/Carmen-Shannon/oxy-instanced/engine/camera"
	"github.com/Carmen-Shannon/oxy-instanced/engine/config"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-instanced/engine/instance"
	"github.com/Carmen-Shannon/oxy-instanced/engine/loader"
	"github.com/Carmen-Shannon/oxy-instanced/engine/model"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-instanced/engine/window"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults are used when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		common.Logger().Error("viewer stopped", "err", err)
		fmt.Fprintln(os.Stderr, "oxy-viewer:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// ── Window ──────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithSizeLimits(cfg.Window.MinWidth, cfg.Window.MinHeight, cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── GPU ─────────────────────────────────────────────────────────
	presentMode := wgpu_backend.PresentModeVSync
	if cfg.Render.PresentMode == config.PresentModeUncapped {
		presentMode = wgpu_backend.PresentModeUncapped
	}
	backend, err := wgpu_backend.NewBackend(win.SurfaceDescriptor(), win.Width(), win.Height(),
		wgpu_backend.WithPresentMode(presentMode),
		wgpu_backend.WithForceFallbackAdapter(cfg.Render.ForceFallback),
		wgpu_backend.WithDeviceLabel("oxy-viewer Device"),
	)
	if err != nil {
		return err
	}
	defer backend.Release()
	ctx := backend.Context()

	// ── Camera ──────────────────────────────────────────────────────
	c := cfg.Camera
	camState, err := camera.NewCameraState(ctx, win.Width(), win.Height(),
		camera.WithCamera(camera.NewCamera(
			camera.WithEye(c.Eye[0], c.Eye[1], c.Eye[2]),
			camera.WithTarget(c.Target[0], c.Target[1], c.Target[2]),
			camera.WithUp(c.Up[0], c.Up[1], c.Up[2]),
			camera.WithFovY(c.FovY),
			camera.WithNearFar(c.ZNear, c.ZFar),
		)),
		camera.WithController(camera.NewCameraController(camera.WithSpeed(c.Speed))),
	)
	if err != nil {
		return err
	}
	defer camState.Release()

	// ── Instances ───────────────────────────────────────────────────
	gridOptions := []instance.InstanceGridOption{instance.WithSpacing(cfg.Grid.Spacing)}
	if cfg.Grid.Workers > 0 {
		gridOptions = append(gridOptions, instance.WithWorkers(cfg.Grid.Workers))
	}
	grid, err := instance.NewInstanceGrid(ctx, cfg.Grid.RowsX, cfg.Grid.RowsZ, gridOptions...)
	if err != nil {
		return err
	}
	defer grid.Release()

	// ── Mesh + material ─────────────────────────────────────────────
	mesh, diffuse, err := loadMesh(ctx, cfg.Assets)
	if err != nil {
		return err
	}
	defer mesh.Release()

	if cfg.Assets.Texture != "" {
		diffuse = &common.ImportedTexture{Name: "diffuse", Path: cfg.Assets.Texture}
	}
	materialOptions := []material.MaterialBuilderOption{material.WithName("Diffuse")}
	if diffuse != nil {
		materialOptions = append(materialOptions, material.WithDiffuseTexture(diffuse))
	}
	mat, err := material.NewMaterial(ctx, materialOptions...)
	if err != nil {
		return err
	}
	defer mat.Release()

	// ── Shaders + pipeline ──────────────────────────────────────────
	vs, fs, err := loadShaders(cfg.Assets)
	if err != nil {
		return err
	}
	pipe := pipeline.NewPipeline("Render Pipeline",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithBindGroups(mat, camState),
		pipeline.WithVertexBuffers(model.VertexBufferLayout(), instance.VertexBufferLayout()),
	)
	defer pipe.Release()

	// ── Renderer + loop ─────────────────────────────────────────────
	cc := cfg.Render.ClearColor
	r, err := renderer.NewRenderer(ctx, backend.Surface(), camState, grid, mesh, mat, pipe, win.Width(), win.Height(),
		renderer.WithClearColor(gpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}),
	)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(win, r,
		engine.WithProfiling(cfg.Render.Profiling),
		engine.WithRenderFrameLimit(cfg.Render.FrameLimit),
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return eng.Run(sigCtx)
}

// loadMesh uploads the configured model's first mesh, or the built-in pentagon when
// no model is configured. The returned texture is the model's base color image, if any.
func loadMesh(ctx gpu.Context, assets config.AssetsConfig) (model.Mesh, *common.ImportedTexture, error) {
	if assets.Mesh == "" {
		mesh, err := model.NewPentagonMesh(ctx, model.WithLabel("Pentagon"))
		return mesh, nil, err
	}

	imported, err := loader.NewLoader(loader.BackendTypeGLTF).Load(assets.Mesh)
	if err != nil {
		return nil, nil, err
	}
	if len(imported.Meshes) > 1 {
		common.Logger().Warn("model has several meshes, drawing the first", "path", assets.Mesh, "meshes", len(imported.Meshes))
	}
	first := imported.Meshes[0]
	mesh, err := first.NewMesh(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to upload %s: %w", assets.Mesh, err)
	}
	return mesh, first.BaseColorTexture, nil
}

// loadShaders returns the built-in shaders, replacing either stage with a file when
// its path is configured.
func loadShaders(assets config.AssetsConfig) (shader.Shader, shader.Shader, error) {
	vs, fs, err := shader.NewDefaultShaders()
	if err != nil {
		return nil, nil, err
	}
	if assets.VertexShader != "" {
		if vs, err = shader.NewShader(assets.VertexShader, shader.ShaderTypeVertex, shader.WithSourceFromPath(assets.VertexShader)); err != nil {
			return nil, nil, err
		}
	}
	if assets.FragmentShader != "" {
		if fs, err = shader.NewShader(assets.FragmentShader, shader.ShaderTypeFragment, shader.WithSourceFromPath(assets.FragmentShader)); err != nil {
			return nil, nil, err
		}
	}
	return vs, fs, nil
}
