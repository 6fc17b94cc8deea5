// Package gpu defines the graphics capabilities the engine depends on: a device that creates
// resources, a queue that writes buffers and submits work, and a presentation surface.
// The engine only talks to these interfaces; wgpu_backend implements them on WebGPU.
package gpu

import "github.com/Carmen-Shannon/oxy-instanced/common"

// Buffer is a GPU buffer handle.
type Buffer interface {
	Label() string
	// Size returns the buffer size in bytes.
	Size() uint64
	Release()
}

// BindGroupLayout is the shape of a bind group.
type BindGroupLayout interface {
	Label() string
	Release()
}

// BindGroup is a set of resources bound to a bind group slot.
type BindGroup interface {
	Label() string
	Release()
}

// ShaderModule is a compiled shader.
type ShaderModule interface {
	Label() string
	Release()
}

// RenderPipeline is a compiled render pipeline.
type RenderPipeline interface {
	Label() string
	Release()
}

// TextureView is a view of a texture usable as a binding or render target.
type TextureView interface {
	Release()
}

// Sampler is a texture sampler.
type Sampler interface {
	Release()
}

// CommandBuffer is a finished, submittable list of GPU commands.
type CommandBuffer interface {
	Release()
}

// Device creates GPU resources.
type Device interface {
	// CreateBufferWithData creates a buffer initialized with contents.
	//
	// Parameters:
	//   - label: debug label
	//   - contents: initial bytes; the buffer size equals len(contents)
	//   - usage: how the buffer will be used
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: error if creation fails
	CreateBufferWithData(label string, contents []byte, usage BufferUsage) (Buffer, error)

	// CreateBindGroupLayout creates a bind group layout from its entries.
	//
	// Parameters:
	//   - label: debug label
	//   - entries: the binding slots
	//
	// Returns:
	//   - BindGroupLayout: the created layout
	//   - error: error if creation fails
	CreateBindGroupLayout(label string, entries []BindGroupLayoutEntry) (BindGroupLayout, error)

	// CreateBindGroup binds resources against a layout.
	//
	// Parameters:
	//   - label: debug label
	//   - layout: the layout the bind group conforms to
	//   - entries: the resources to bind
	//
	// Returns:
	//   - BindGroup: the created bind group
	//   - error: error if creation fails
	CreateBindGroup(label string, layout BindGroupLayout, entries []BindGroupEntry) (BindGroup, error)

	// CreateShaderModule compiles a WGSL or SPIR-V shader.
	CreateShaderModule(src ShaderSource) (ShaderModule, error)

	// CreateRenderPipeline creates a render pipeline whose color target matches the presentation surface.
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)

	// CreateTextureWithData creates an RGBA8 sRGB 2D texture, uploads the pixels and returns a view of it.
	CreateTextureWithData(label string, data common.TextureStagingData) (TextureView, error)

	// CreateSampler creates a texture sampler.
	CreateSampler(desc SamplerDescriptor) (Sampler, error)

	// CreateCommandEncoder starts recording a new command buffer.
	CreateCommandEncoder(label string) (CommandEncoder, error)
}

// Queue writes buffers and submits recorded work.
type Queue interface {
	// WriteBuffer schedules a write of data into buf at offset. The write is ordered
	// before any work submitted afterwards.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: byte offset into buf
	//   - data: bytes to write
	//
	// Returns:
	//   - error: error if the write is rejected
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// Submit submits command buffers for execution in order.
	Submit(cmds ...CommandBuffer)
}

// CommandEncoder records GPU commands.
type CommandEncoder interface {
	BeginRenderPass(desc RenderPassDescriptor) RenderPass
	Finish() (CommandBuffer, error)
	Release()
}

// RenderPass records draw commands into a render pass.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format IndexFormat)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End() error
}

// Context is the device and queue pair handed to every component that creates or
// writes GPU resources. It is owned by the caller; there is no process-wide instance.
type Context struct {
	Device Device
	Queue  Queue
}
