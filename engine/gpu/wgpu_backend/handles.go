package wgpu_backend

import (
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

type buffer struct {
	label string
	size  uint64
	buf   *wgpu.Buffer
}

func (b *buffer) Label() string { return b.label }
func (b *buffer) Size() uint64  { return b.size }
func (b *buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type bindGroupLayout struct {
	label  string
	layout *wgpu.BindGroupLayout
}

func (l *bindGroupLayout) Label() string { return l.label }
func (l *bindGroupLayout) Release() {
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
}

type bindGroup struct {
	label string
	group *wgpu.BindGroup
}

func (g *bindGroup) Label() string { return g.label }
func (g *bindGroup) Release() {
	if g.group != nil {
		g.group.Release()
		g.group = nil
	}
}

type shaderModule struct {
	label  string
	module *wgpu.ShaderModule
}

func (m *shaderModule) Label() string { return m.label }
func (m *shaderModule) Release() {
	if m.module != nil {
		m.module.Release()
		m.module = nil
	}
}

type renderPipeline struct {
	label    string
	pipeline *wgpu.RenderPipeline
}

func (p *renderPipeline) Label() string { return p.label }
func (p *renderPipeline) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
}

// textureView owns its texture when created by CreateTextureWithData.
type textureView struct {
	view    *wgpu.TextureView
	texture *wgpu.Texture
}

func (t *textureView) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

type sampler struct {
	sampler *wgpu.Sampler
}

func (s *sampler) Release() {
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
}

type commandBuffer struct {
	cmd *wgpu.CommandBuffer
}

func (c *commandBuffer) Release() {
	if c.cmd != nil {
		c.cmd.Release()
		c.cmd = nil
	}
}

type commandEncoder struct {
	encoder *wgpu.CommandEncoder
}

var _ gpu.CommandEncoder = &commandEncoder{}

func (e *commandEncoder) BeginRenderPass(desc gpu.RenderPassDescriptor) gpu.RenderPass {
	var view *wgpu.TextureView
	if tv, ok := desc.Target.(*textureView); ok {
		view = tv.view
	}
	pass := e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: desc.ClearColor.R,
					G: desc.ClearColor.G,
					B: desc.ClearColor.B,
					A: desc.ClearColor.A,
				},
			},
		},
	})
	return &renderPass{pass: pass}
}

func (e *commandEncoder) Finish() (gpu.CommandBuffer, error) {
	cmd, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &commandBuffer{cmd: cmd}, nil
}

func (e *commandEncoder) Release() {
	if e.encoder != nil {
		e.encoder.Release()
		e.encoder = nil
	}
}

type renderPass struct {
	pass *wgpu.RenderPassEncoder
}

var _ gpu.RenderPass = &renderPass{}

func (p *renderPass) SetPipeline(pl gpu.RenderPipeline) {
	if rp, ok := pl.(*renderPipeline); ok {
		p.pass.SetPipeline(rp.pipeline)
	}
}

func (p *renderPass) SetBindGroup(index uint32, group gpu.BindGroup) {
	if bg, ok := group.(*bindGroup); ok {
		p.pass.SetBindGroup(index, bg.group, nil)
	}
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	if b, ok := buf.(*buffer); ok {
		p.pass.SetVertexBuffer(slot, b.buf, 0, wgpu.WholeSize)
	}
}

func (p *renderPass) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat) {
	if b, ok := buf.(*buffer); ok {
		p.pass.SetIndexBuffer(b.buf, toIndexFormat(format), 0, wgpu.WholeSize)
	}
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) End() error {
	p.pass.End()
	p.pass.Release()
	return nil
}
