// Package pipeline describes and creates the render pipeline: the shader pair, the
// bind group layouts in slot order, the vertex buffer layouts in slot order, and the
// primitive state.
package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/shader"
)

var (
	// ErrMissingShader is returned by Init when the vertex or fragment shader is not set.
	ErrMissingShader = errors.New("pipeline: missing shader")
	// ErrLayoutMismatch is returned by Init when a shader declares an input or binding
	// the configured layouts do not provide.
	ErrLayoutMismatch = errors.New("pipeline: shader does not match layouts")
)

// LayoutSource is anything that owns a bind group layout: the material and the camera state.
type LayoutSource interface {
	BindGroupLayout() gpu.BindGroupLayout
	LayoutEntries() []gpu.BindGroupLayoutEntry
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	mu *sync.Mutex

	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// bindGroups and vertexBuffers are indexed by slot.
	bindGroups    []LayoutSource
	vertexBuffers []gpu.VertexBufferLayout

	cullMode  gpu.CullMode
	topology  gpu.PrimitiveTopology
	frontFace gpu.FrontFace

	renderPipeline gpu.RenderPipeline
}

// Pipeline is a render pipeline description that creates its GPU pipeline once on Init.
type Pipeline interface {
	// PipelineKey returns the unique key of the pipeline, also used as its debug label.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader of the given stage, nil if not set.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// VertexBuffers returns the vertex buffer layouts in slot order.
	//
	// Returns:
	//   - []gpu.VertexBufferLayout: the layouts
	VertexBuffers() []gpu.VertexBufferLayout

	// BindGroupCount returns how many bind group slots the pipeline layout has.
	//
	// Returns:
	//   - int: the slot count
	BindGroupCount() int

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - gpu.CullMode: the cull mode
	CullMode() gpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - gpu.PrimitiveTopology: the primitive topology
	Topology() gpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - gpu.FrontFace: the winding order
	FrontFace() gpu.FrontFace

	// Init validates the shaders against the layouts, compiles them and creates the
	// render pipeline. Calling Init again after success is a no-op.
	//
	// Parameters:
	//   - device: the device used to create the pipeline
	//
	// Returns:
	//   - error: ErrMissingShader, ErrLayoutMismatch or a creation error
	Init(device gpu.Device) error

	// RenderPipeline returns the created pipeline, nil before Init.
	//
	// Returns:
	//   - gpu.RenderPipeline: the render pipeline
	RenderPipeline() gpu.RenderPipeline

	// Release frees the render pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline. Defaults match a flat
// textured mesh: triangle list, counter-clockwise front faces and no culling.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		mu:          &sync.Mutex{},
		pipelineKey: pipelineKey,
		cullMode:    gpu.CullModeNone,
		topology:    gpu.PrimitiveTopologyTriangleList,
		frontFace:   gpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) VertexBuffers() []gpu.VertexBufferLayout {
	out := make([]gpu.VertexBufferLayout, len(p.vertexBuffers))
	copy(out, p.vertexBuffers)
	return out
}

func (p *pipeline) BindGroupCount() int {
	return len(p.bindGroups)
}

func (p *pipeline) CullMode() gpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() gpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() gpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) RenderPipeline() gpu.RenderPipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderPipeline
}

func (p *pipeline) Init(device gpu.Device) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.renderPipeline != nil {
		return nil
	}
	if p.vertexShader == nil || p.fragmentShader == nil {
		return fmt.Errorf("%w: %s needs a vertex and a fragment shader", ErrMissingShader, p.pipelineKey)
	}
	if err := p.validate(); err != nil {
		return fmt.Errorf("%s: %w", p.pipelineKey, err)
	}

	vs, err := p.vertexShader.Compile(device)
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := p.fragmentShader.Compile(device)
	if err != nil {
		return err
	}
	defer fs.Release()

	layouts := make([]gpu.BindGroupLayout, len(p.bindGroups))
	for i, src := range p.bindGroups {
		layouts[i] = src.BindGroupLayout()
	}

	rp, err := device.CreateRenderPipeline(gpu.RenderPipelineDescriptor{
		Label:              p.pipelineKey,
		BindGroupLayouts:   layouts,
		VertexModule:       vs,
		VertexEntryPoint:   p.vertexShader.EntryPoint(),
		VertexBuffers:      p.vertexBuffers,
		FragmentModule:     fs,
		FragmentEntryPoint: p.fragmentShader.EntryPoint(),
		Topology:           p.topology,
		FrontFace:          p.frontFace,
		CullMode:           p.cullMode,
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline %s: %w", p.pipelineKey, err)
	}
	p.renderPipeline = rp

	common.Logger().Debug("render pipeline created",
		"key", p.pipelineKey,
		"bind_groups", len(layouts),
		"vertex_buffers", len(p.vertexBuffers),
	)
	return nil
}

func (p *pipeline) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
