package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/camera"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-instanced/engine/instance"
	"github.com/Carmen-Shannon/oxy-instanced/engine/model"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingController fails every Update with err.
type failingController struct {
	camera.CameraController
	err error
}

func (c *failingController) Update(*camera.Camera) error { return c.err }

type scene struct {
	cam  camera.CameraState
	grid instance.InstanceGrid
	mesh model.Mesh
	mat  material.Material
	pipe pipeline.Pipeline
}

func newScene(t *testing.T, rec *gputest.Recorder, camOpts ...camera.CameraStateOption) scene {
	t.Helper()
	ctx := rec.Context()

	cam, err := camera.NewCameraState(ctx, 800, 600, append([]camera.CameraStateOption{camera.WithLabel("Cam")}, camOpts...)...)
	require.NoError(t, err)
	grid, err := instance.NewInstanceGrid(ctx, 10, 10, instance.WithLabel("Instances"))
	require.NoError(t, err)
	mesh, err := model.NewPentagonMesh(ctx, model.WithLabel("Pentagon"))
	require.NoError(t, err)
	mat, err := material.NewMaterial(ctx, material.WithName("Mat"))
	require.NoError(t, err)
	vs, fs, err := shader.NewDefaultShaders()
	require.NoError(t, err)
	pipe := pipeline.NewPipeline("Render Pipeline",
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithBindGroups(mat, cam),
		pipeline.WithVertexBuffers(model.VertexBufferLayout(), instance.VertexBufferLayout()),
	)
	return scene{cam: cam, grid: grid, mesh: mesh, mat: mat, pipe: pipe}
}

func newTestRenderer(t *testing.T, rec *gputest.Recorder, options ...RendererBuilderOption) Renderer {
	t.Helper()
	s := newScene(t, rec)
	r, err := NewRenderer(rec.Context(), rec.Surface, s.cam, s.grid, s.mesh, s.mat, s.pipe, 800, 600, options...)
	require.NoError(t, err)
	rec.ResetOps()
	return r
}

var drawSequence = []string{
	"acquire",
	"create_encoder",
	"begin_pass 0.10 0.20 0.30 1.00",
	"set_pipeline Render Pipeline",
	"set_bind_group 0 Mat Bind Group",
	"set_bind_group 1 Cam Bind Group",
	"set_vertex_buffer 0 Pentagon Vertex Buffer",
	"set_vertex_buffer 1 Instances Buffer",
	"set_index_buffer Pentagon Index Buffer 0",
	"draw_indexed 9 100 0 0 0",
	"end_pass",
	"finish",
	"submit 1",
	"present",
}

func TestNewRendererInitsPipeline(t *testing.T) {
	rec := gputest.NewRecorder()
	s := newScene(t, rec)
	rec.ResetOps()

	r, err := NewRenderer(rec.Context(), rec.Surface, s.cam, s.grid, s.mesh, s.mat, s.pipe, 800, 600)
	require.NoError(t, err)
	assert.Contains(t, rec.Ops(), "create_render_pipeline Render Pipeline")
	assert.NotNil(t, s.pipe.RenderPipeline())
	assert.Same(t, s.cam, r.Camera())

	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestNewRendererMissingResources(t *testing.T) {
	rec := gputest.NewRecorder()
	s := newScene(t, rec)
	ctx := rec.Context()

	tests := []struct {
		name string
		make func() (Renderer, error)
	}{
		{"context", func() (Renderer, error) {
			return NewRenderer(gpu.Context{}, rec.Surface, s.cam, s.grid, s.mesh, s.mat, s.pipe, 1, 1)
		}},
		{"surface", func() (Renderer, error) {
			return NewRenderer(ctx, nil, s.cam, s.grid, s.mesh, s.mat, s.pipe, 1, 1)
		}},
		{"camera", func() (Renderer, error) {
			return NewRenderer(ctx, rec.Surface, nil, s.grid, s.mesh, s.mat, s.pipe, 1, 1)
		}},
		{"grid", func() (Renderer, error) {
			return NewRenderer(ctx, rec.Surface, s.cam, nil, s.mesh, s.mat, s.pipe, 1, 1)
		}},
		{"mesh", func() (Renderer, error) {
			return NewRenderer(ctx, rec.Surface, s.cam, s.grid, nil, s.mat, s.pipe, 1, 1)
		}},
		{"material", func() (Renderer, error) {
			return NewRenderer(ctx, rec.Surface, s.cam, s.grid, s.mesh, nil, s.pipe, 1, 1)
		}},
		{"pipeline", func() (Renderer, error) {
			return NewRenderer(ctx, rec.Surface, s.cam, s.grid, s.mesh, s.mat, nil, 1, 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.make()
			require.ErrorIs(t, err, ErrMissingResource)
		})
	}
}

func TestNewRendererPipelineFailure(t *testing.T) {
	rec := gputest.NewRecorder()
	s := newScene(t, rec)
	rec.Device.Fail["CreateRenderPipeline"] = nil

	_, err := NewRenderer(rec.Context(), rec.Surface, s.cam, s.grid, s.mesh, s.mat, s.pipe, 800, 600)
	require.ErrorIs(t, err, gputest.ErrInjected)
}

func TestRenderDrawSequence(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, rec)

	require.NoError(t, r.Render())
	assert.Equal(t, drawSequence, rec.Ops())
	assert.Len(t, rec.Queue.Submitted, 1)
	assert.Equal(t, uint64(1), r.FrameCount())
}

func TestRenderClearColor(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, rec, WithClearColor(gpu.Color{R: 1, A: 0.5}))

	require.NoError(t, r.Render())
	assert.Contains(t, rec.Ops(), "begin_pass 1.00 0.00 0.00 0.50")
}

func TestFrameWritesUniformBeforePass(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, rec)

	require.True(t, r.HandleInput(common.KeyEvent{Code: common.KeyW, Pressed: true}))
	before := r.Camera().Camera().Eye

	require.NoError(t, r.Frame())
	ops := rec.Ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, "write Cam Buffer 0 64", ops[0])
	assert.Equal(t, drawSequence, ops[1:])
	assert.NotEqual(t, before, r.Camera().Camera().Eye)
}

func TestFrameDegenerateCameraSkipsPass(t *testing.T) {
	rec := gputest.NewRecorder()
	s := newScene(t, rec, camera.WithController(&failingController{err: camera.ErrDegenerateCamera}))
	r, err := NewRenderer(rec.Context(), rec.Surface, s.cam, s.grid, s.mesh, s.mat, s.pipe, 800, 600)
	require.NoError(t, err)
	rec.ResetOps()

	err = r.Frame()
	require.ErrorIs(t, err, camera.ErrDegenerateCamera)
	assert.Empty(t, rec.Ops())
	assert.Zero(t, r.FrameCount())
}

func TestRenderAcquireErrors(t *testing.T) {
	t.Run("transient frames are skipped", func(t *testing.T) {
		rec := gputest.NewRecorder()
		r := newTestRenderer(t, rec)
		rec.Surface.AcquireErrs = []error{gpu.ErrSurfaceTimeout, gpu.ErrSurfaceOutdated}

		require.NoError(t, r.Render())
		require.NoError(t, r.Render())
		assert.Equal(t, []string{"acquire_failed", "acquire_failed"}, rec.Ops())
		assert.Equal(t, uint64(2), r.SkippedFrames())

		rec.ResetOps()
		require.NoError(t, r.Render())
		assert.Equal(t, drawSequence, rec.Ops())
	})

	t.Run("lost surface is rebuilt at the last size", func(t *testing.T) {
		rec := gputest.NewRecorder()
		r := newTestRenderer(t, rec)
		require.NoError(t, r.Resize(1024, 768))
		rec.ResetOps()
		rec.Surface.AcquireErrs = []error{gpu.ErrSurfaceLost}

		require.NoError(t, r.Render())
		assert.Equal(t, []string{"acquire_failed", "rebuild 1024 768"}, rec.Ops())
	})

	t.Run("lost surface rebuild failure is fatal", func(t *testing.T) {
		rec := gputest.NewRecorder()
		r := newTestRenderer(t, rec)
		rec.Surface.AcquireErrs = []error{gpu.ErrSurfaceLost}
		rec.Surface.RebuildErr = errors.New("no adapter")

		err := r.Render()
		require.ErrorIs(t, err, ErrFatalFrame)
		assert.ErrorIs(t, err, gpu.ErrSurfaceLost)
	})

	t.Run("out of memory is fatal", func(t *testing.T) {
		rec := gputest.NewRecorder()
		r := newTestRenderer(t, rec)
		rec.Surface.AcquireErrs = []error{gpu.ErrSurfaceOutOfMemory}

		err := r.Render()
		require.ErrorIs(t, err, ErrFatalFrame)
		assert.ErrorIs(t, err, gpu.ErrSurfaceOutOfMemory)
		assert.Zero(t, r.FrameCount())
	})

	t.Run("unknown errors are fatal", func(t *testing.T) {
		rec := gputest.NewRecorder()
		r := newTestRenderer(t, rec)
		rec.Surface.AcquireErrs = []error{errors.New("device lost")}

		require.ErrorIs(t, r.Render(), ErrFatalFrame)
	})
}

func TestRenderEncoderErrors(t *testing.T) {
	t.Run("encoder creation releases frame", func(t *testing.T) {
		rec := gputest.NewRecorder()
		r := newTestRenderer(t, rec)
		rec.Device.Fail["CreateCommandEncoder"] = nil

		require.ErrorIs(t, r.Render(), ErrFatalFrame)
		assert.Equal(t, []string{"acquire", "release_frame"}, rec.Ops())
	})

	t.Run("finish failure releases frame without submitting", func(t *testing.T) {
		rec := gputest.NewRecorder()
		r := newTestRenderer(t, rec)
		rec.Device.Fail["Finish"] = nil

		require.ErrorIs(t, r.Render(), gputest.ErrInjected)
		ops := rec.Ops()
		assert.Equal(t, "release_frame", ops[len(ops)-1])
		assert.NotContains(t, ops, "submit 1")
		assert.Empty(t, rec.Queue.Submitted)
	})
}

func TestResize(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, rec)
	before := r.Camera().Camera()

	require.NoError(t, r.Resize(0, 600))
	require.NoError(t, r.Resize(800, 0))
	assert.Empty(t, rec.Ops())

	require.NoError(t, r.Resize(1024, 768))
	assert.Equal(t, []string{"rebuild 1024 768", "write Cam Buffer 0 64"}, rec.Ops())

	after := r.Camera().Camera()
	assert.InDelta(t, 1024.0/768.0, after.Aspect, 1e-6)
	assert.Equal(t, before.Eye, after.Eye)
	assert.Equal(t, before.Target, after.Target)
	assert.Equal(t, before.FovYDegrees, after.FovYDegrees)

	w, h := r.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)

	rec.Surface.RebuildErr = errors.New("configure failed")
	require.Error(t, r.Resize(640, 480))
	w, _ = r.Size()
	assert.Equal(t, 1024, w)
}
