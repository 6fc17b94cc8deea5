package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-instanced/engine/camera"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-instanced/engine/instance"
	"github.com/Carmen-Shannon/oxy-instanced/engine/model"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rec    *gputest.Recorder
	mat    material.Material
	cam    camera.CameraState
	vs, fs shader.Shader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := gputest.NewRecorder()
	mat, err := material.NewMaterial(rec.Context(), material.WithName("Mat"))
	require.NoError(t, err)
	cam, err := camera.NewCameraState(rec.Context(), 800, 600, camera.WithLabel("Cam"))
	require.NoError(t, err)
	vs, fs, err := shader.NewDefaultShaders()
	require.NoError(t, err)
	rec.ResetOps()
	return &fixture{rec: rec, mat: mat, cam: cam, vs: vs, fs: fs}
}

func (f *fixture) options() []PipelineBuilderOption {
	return []PipelineBuilderOption{
		WithVertexShader(f.vs),
		WithFragmentShader(f.fs),
		WithBindGroups(f.mat, f.cam),
		WithVertexBuffers(model.VertexBufferLayout(), instance.VertexBufferLayout()),
	}
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("Empty")
	assert.Equal(t, "Empty", p.PipelineKey())
	assert.Equal(t, gpu.CullModeNone, p.CullMode())
	assert.Equal(t, gpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, gpu.FrontFaceCCW, p.FrontFace())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
	assert.Nil(t, p.RenderPipeline())
	assert.Zero(t, p.BindGroupCount())
}

func TestPipelineInit(t *testing.T) {
	f := newFixture(t)
	p := NewPipeline("Render Pipeline", f.options()...)

	require.NoError(t, p.Init(f.rec.Device))
	assert.Equal(t, []string{
		"create_shader_module Default Vertex Shader",
		"create_shader_module Default Fragment Shader",
		"create_render_pipeline Render Pipeline",
	}, f.rec.Ops())

	require.Len(t, f.rec.Device.Pipelines, 1)
	created := f.rec.Device.Pipelines[0]
	assert.Same(t, created, p.RenderPipeline())

	desc := created.Desc
	assert.Equal(t, []gpu.BindGroupLayout{f.mat.BindGroupLayout(), f.cam.BindGroupLayout()}, desc.BindGroupLayouts)
	assert.Equal(t, "main", desc.VertexEntryPoint)
	assert.Equal(t, "main", desc.FragmentEntryPoint)
	require.Len(t, desc.VertexBuffers, 2)
	assert.Equal(t, gpu.VertexStepModeVertex, desc.VertexBuffers[0].StepMode)
	assert.Equal(t, gpu.VertexStepModeInstance, desc.VertexBuffers[1].StepMode)
	assert.Equal(t, gpu.PrimitiveTopologyTriangleList, desc.Topology)
	assert.Equal(t, gpu.CullModeNone, desc.CullMode)

	// modules are released once the pipeline holds them
	require.Len(t, f.rec.Device.Modules, 2)
	assert.True(t, f.rec.Device.Modules[0].Released)
	assert.True(t, f.rec.Device.Modules[1].Released)

	// second Init is a no-op
	f.rec.ResetOps()
	require.NoError(t, p.Init(f.rec.Device))
	assert.Empty(t, f.rec.Ops())

	p.Release()
	assert.True(t, created.Released)
	assert.Nil(t, p.RenderPipeline())
}

func TestPipelineInitOptions(t *testing.T) {
	f := newFixture(t)
	opts := append(f.options(), WithCullMode(gpu.CullModeBack), WithFrontFace(gpu.FrontFaceCW))
	p := NewPipeline("Culled", opts...)
	require.NoError(t, p.Init(f.rec.Device))

	assert.Equal(t, gpu.CullModeBack, f.rec.Device.Pipelines[0].Desc.CullMode)
	assert.Equal(t, gpu.FrontFaceCW, f.rec.Device.Pipelines[0].Desc.FrontFace)
	assert.Same(t, f.vs, p.Shader(shader.ShaderTypeVertex))
	assert.Same(t, f.fs, p.Shader(shader.ShaderTypeFragment))
	assert.Equal(t, 2, p.BindGroupCount())
}

func TestPipelineInitErrors(t *testing.T) {
	f := newFixture(t)

	t.Run("missing shader", func(t *testing.T) {
		err := NewPipeline("x", WithVertexShader(f.vs)).Init(f.rec.Device)
		require.ErrorIs(t, err, ErrMissingShader)
	})

	t.Run("missing instance buffer", func(t *testing.T) {
		p := NewPipeline("x", WithVertexShader(f.vs), WithFragmentShader(f.fs),
			WithBindGroups(f.mat, f.cam), WithVertexBuffers(model.VertexBufferLayout()))
		err := p.Init(f.rec.Device)
		require.ErrorIs(t, err, ErrLayoutMismatch)
		assert.Contains(t, err.Error(), "location 5")
	})

	t.Run("duplicate location", func(t *testing.T) {
		p := NewPipeline("x", WithVertexShader(f.vs), WithFragmentShader(f.fs),
			WithBindGroups(f.mat, f.cam),
			WithVertexBuffers(model.VertexBufferLayout(), model.VertexBufferLayout()))
		require.ErrorIs(t, p.Init(f.rec.Device), ErrLayoutMismatch)
	})

	t.Run("wrong format", func(t *testing.T) {
		bad := model.VertexBufferLayout()
		bad.Attributes[1].Format = gpu.VertexFormatFloat32x3
		p := NewPipeline("x", WithVertexShader(f.vs), WithFragmentShader(f.fs),
			WithBindGroups(f.mat, f.cam), WithVertexBuffers(bad, instance.VertexBufferLayout()))
		require.ErrorIs(t, p.Init(f.rec.Device), ErrLayoutMismatch)
	})

	t.Run("groups swapped", func(t *testing.T) {
		p := NewPipeline("x", WithVertexShader(f.vs), WithFragmentShader(f.fs),
			WithBindGroups(f.cam, f.mat),
			WithVertexBuffers(model.VertexBufferLayout(), instance.VertexBufferLayout()))
		require.ErrorIs(t, p.Init(f.rec.Device), ErrLayoutMismatch)
	})

	t.Run("camera group missing", func(t *testing.T) {
		p := NewPipeline("x", WithVertexShader(f.vs), WithFragmentShader(f.fs),
			WithBindGroups(f.mat),
			WithVertexBuffers(model.VertexBufferLayout(), instance.VertexBufferLayout()))
		err := p.Init(f.rec.Device)
		require.ErrorIs(t, err, ErrLayoutMismatch)
		assert.Contains(t, err.Error(), "group 1")
	})

	t.Run("create failure", func(t *testing.T) {
		rec := gputest.NewRecorder()
		rec.Device.Fail["CreateRenderPipeline"] = nil
		p := NewPipeline("x", f.options()...)
		require.ErrorIs(t, p.Init(rec.Device), gputest.ErrInjected)
		assert.Nil(t, p.RenderPipeline())
		for _, m := range rec.Device.Modules {
			assert.True(t, m.Released)
		}
	})

	assert.Empty(t, f.rec.Device.Pipelines)
}

func TestPipelineSkipsSPIRVReflection(t *testing.T) {
	f := newFixture(t)
	blob := []byte{
		0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	vs, err := shader.NewShader("spv", shader.ShaderTypeVertex, shader.WithSPIRV(blob))
	require.NoError(t, err)

	p := NewPipeline("spv", WithVertexShader(vs), WithFragmentShader(f.fs),
		WithBindGroups(f.mat, f.cam), WithVertexBuffers(model.VertexBufferLayout()))
	require.NoError(t, p.Init(f.rec.Device))
	assert.Equal(t, gpu.ShaderLanguageSPIRV, f.rec.Device.Modules[0].Source.Language)
}
