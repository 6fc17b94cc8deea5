// Package renderer draws one frame of the instanced scene: it keeps the camera uniform
// in sync, then records a single render pass with one indexed, instanced draw call.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/camera"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/instance"
	"github.com/Carmen-Shannon/oxy-instanced/engine/model"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/pipeline"
	"github.com/google/uuid"
)

// Bind group and vertex buffer slots the default shaders are written against.
const (
	MaterialGroup uint32 = 0
	CameraGroup   uint32 = 1

	MeshSlot     uint32 = 0
	InstanceSlot uint32 = 1
)

var (
	// ErrFatalFrame wraps frame failures the loop cannot recover from.
	ErrFatalFrame = errors.New("renderer: fatal frame error")
	// ErrMissingResource is returned by NewRenderer when a collaborator is nil.
	ErrMissingResource = errors.New("renderer: missing resource")
)

// DefaultClearColor is the background of every frame unless WithClearColor overrides it.
var DefaultClearColor = gpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	label string
	ctx   gpu.Context

	surface  gpu.Surface
	camera   camera.CameraState
	grid     instance.InstanceGrid
	mesh     model.Mesh
	material material.Material
	pipeline pipeline.Pipeline

	width, height int
	clearColor    gpu.Color

	frames  uint64
	skipped uint64
}

// Renderer orchestrates a frame. It borrows every GPU resource it draws with; the
// caller keeps ownership and releases them.
type Renderer interface {
	// HandleInput forwards a key event to the camera controller.
	//
	// Parameters:
	//   - ev: the key event
	//
	// Returns:
	//   - bool: true if the event was consumed by the camera
	HandleInput(ev common.KeyEvent) bool

	// Update advances the camera one tick and uploads the new uniform.
	//
	// Returns:
	//   - error: camera.ErrDegenerateCamera or a write failure
	Update() error

	// Resize rebuilds the surface and updates the camera aspect ratio. A zero width
	// or height (minimised window) is ignored.
	//
	// Parameters:
	//   - width, height: the new framebuffer size in pixels
	//
	// Returns:
	//   - error: error if the surface or camera could not be updated
	Resize(width, height int) error

	// Render acquires the next frame and draws the grid into it. Transient acquisition
	// failures skip the frame, a lost surface is rebuilt at the last known size and
	// everything else is returned wrapping ErrFatalFrame.
	//
	// Returns:
	//   - error: nil when the frame was drawn or skipped
	Render() error

	// Frame runs Update then Render. When Update fails no pass is recorded.
	//
	// Returns:
	//   - error: the Update or Render error
	Frame() error

	// Size returns the last size applied through Resize or NewRenderer.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// FrameCount returns how many frames were presented.
	//
	// Returns:
	//   - uint64: presented frames
	FrameCount() uint64

	// SkippedFrames returns how many frames were dropped on transient or lost surfaces.
	//
	// Returns:
	//   - uint64: skipped frames
	SkippedFrames() uint64

	// Camera returns the camera state driven by this renderer.
	//
	// Returns:
	//   - camera.CameraState: the camera state
	Camera() camera.CameraState
}

var _ Renderer = &renderer{}

// NewRenderer wires the scene resources together and creates the render pipeline if it
// has not been initialised yet.
//
// Parameters:
//   - ctx: the device and queue
//   - surface: the presentation surface, already configured at width x height
//   - cam: the camera state bound at CameraGroup
//   - grid: the instance buffer bound at InstanceSlot
//   - mesh: the vertex and index buffers, vertex buffer bound at MeshSlot
//   - mat: the material bound at MaterialGroup
//   - pipe: the render pipeline
//   - width, height: the initial surface size in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: ErrMissingResource or a pipeline creation error
func NewRenderer(
	ctx gpu.Context,
	surface gpu.Surface,
	cam camera.CameraState,
	grid instance.InstanceGrid,
	mesh model.Mesh,
	mat material.Material,
	pipe pipeline.Pipeline,
	width, height int,
	options ...RendererBuilderOption,
) (Renderer, error) {
	switch {
	case ctx.Device == nil || ctx.Queue == nil:
		return nil, fmt.Errorf("%w: gpu context", ErrMissingResource)
	case surface == nil:
		return nil, fmt.Errorf("%w: surface", ErrMissingResource)
	case cam == nil:
		return nil, fmt.Errorf("%w: camera state", ErrMissingResource)
	case grid == nil:
		return nil, fmt.Errorf("%w: instance grid", ErrMissingResource)
	case mesh == nil:
		return nil, fmt.Errorf("%w: mesh", ErrMissingResource)
	case mat == nil:
		return nil, fmt.Errorf("%w: material", ErrMissingResource)
	case pipe == nil:
		return nil, fmt.Errorf("%w: pipeline", ErrMissingResource)
	}

	r := &renderer{
		mu:         &sync.Mutex{},
		label:      "Renderer " + uuid.NewString()[:8],
		ctx:        ctx,
		surface:    surface,
		camera:     cam,
		grid:       grid,
		mesh:       mesh,
		material:   mat,
		pipeline:   pipe,
		width:      width,
		height:     height,
		clearColor: DefaultClearColor,
	}
	for _, option := range options {
		option(r)
	}

	if err := pipe.Init(ctx.Device); err != nil {
		return nil, err
	}

	common.Logger().Info("renderer ready",
		"label", r.label,
		"instances", grid.NumInstances(),
		"indices", mesh.IndexCount(),
		"width", width,
		"height", height,
	)
	return r, nil
}

func (r *renderer) HandleInput(ev common.KeyEvent) bool {
	return r.camera.OnInput(ev)
}

func (r *renderer) Update() error {
	return r.camera.OnUpdate()
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		common.Logger().Debug("ignoring zero-sized resize", "width", width, "height", height)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.surface.Rebuild(width, height); err != nil {
		return fmt.Errorf("failed to rebuild surface at %dx%d: %w", width, height, err)
	}
	r.width, r.height = width, height
	if err := r.camera.OnResize(width, height); err != nil {
		return err
	}
	common.Logger().Info("resized", "width", width, "height", height)
	return nil
}

func (r *renderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	frame, err := r.surface.AcquireNextFrame()
	if err != nil {
		return r.handleAcquireError(err)
	}

	encoder, err := r.ctx.Device.CreateCommandEncoder(r.label + " Encoder")
	if err != nil {
		frame.Release()
		return fmt.Errorf("%w: failed to create command encoder: %w", ErrFatalFrame, err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(gpu.RenderPassDescriptor{
		Label:      r.label + " Pass",
		Target:     frame.View(),
		ClearColor: r.clearColor,
	})
	pass.SetPipeline(r.pipeline.RenderPipeline())
	pass.SetBindGroup(MaterialGroup, r.material.BindGroup())
	pass.SetBindGroup(CameraGroup, r.camera.BindGroup())
	pass.SetVertexBuffer(MeshSlot, r.mesh.VertexBuffer())
	pass.SetVertexBuffer(InstanceSlot, r.grid.Buffer())
	pass.SetIndexBuffer(r.mesh.IndexBuffer(), r.mesh.IndexFormat())
	pass.DrawIndexed(r.mesh.IndexCount(), r.grid.NumInstances(), 0, 0, 0)
	if err := pass.End(); err != nil {
		frame.Release()
		return fmt.Errorf("%w: failed to end render pass: %w", ErrFatalFrame, err)
	}

	cmd, err := encoder.Finish()
	if err != nil {
		frame.Release()
		return fmt.Errorf("%w: failed to finish command encoder: %w", ErrFatalFrame, err)
	}
	r.ctx.Queue.Submit(cmd)
	cmd.Release()

	frame.Present()
	r.frames++
	return nil
}

// handleAcquireError applies the recovery for a failed frame acquisition. Caller must
// hold the mutex.
func (r *renderer) handleAcquireError(err error) error {
	switch kind := gpu.ClassifyFrameError(err); kind {
	case gpu.FrameTransient:
		r.skipped++
		common.Logger().Warn("skipping frame", "kind", kind, "err", err)
		return nil
	case gpu.FrameRecoverable:
		r.skipped++
		common.Logger().Warn("surface lost, rebuilding", "width", r.width, "height", r.height, "err", err)
		if rerr := r.surface.Rebuild(r.width, r.height); rerr != nil {
			return fmt.Errorf("%w: rebuild after %w: %w", ErrFatalFrame, err, rerr)
		}
		return nil
	default:
		common.Logger().Error("fatal frame error", "err", err)
		return fmt.Errorf("%w: %w", ErrFatalFrame, err)
	}
}

func (r *renderer) Frame() error {
	if err := r.Update(); err != nil {
		return err
	}
	return r.Render()
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) FrameCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) SkippedFrames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

func (r *renderer) Camera() camera.CameraState {
	return r.camera
}
