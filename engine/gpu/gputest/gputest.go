// Package gputest provides recording fakes of the gpu interfaces.
// Every call is appended to a shared op journal so tests can assert both
// what was created and the order commands were issued in.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("gputest: injected failure")

// Recorder owns a fake Device, Queue and Surface that share one op journal.
type Recorder struct {
	mu  sync.Mutex
	ops []string

	Device  *Device
	Queue   *Queue
	Surface *Surface
}

// NewRecorder creates a Recorder with fresh fakes.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.Device = &Device{rec: r, Fail: map[string]error{}}
	r.Queue = &Queue{rec: r}
	r.Surface = &Surface{rec: r}
	return r
}

// Context returns a gpu.Context backed by the fake device and queue.
func (r *Recorder) Context() gpu.Context {
	return gpu.Context{Device: r.Device, Queue: r.Queue}
}

// Ops returns a copy of the journal.
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ops))
	copy(out, r.ops)
	return out
}

// ResetOps clears the journal.
func (r *Recorder) ResetOps() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}

func (r *Recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

// Handle is a generic labelled resource.
type Handle struct {
	Name     string
	Released bool
}

func (h *Handle) Label() string { return h.Name }
func (h *Handle) Release()      { h.Released = true }

// Buffer is a fake buffer holding its contents in memory.
type Buffer struct {
	Handle
	Usage gpu.BufferUsage
	Data  []byte
}

func (b *Buffer) Size() uint64 { return uint64(len(b.Data)) }

// BindGroupLayout is a fake layout.
type BindGroupLayout struct {
	Handle
	Entries []gpu.BindGroupLayoutEntry
}

// BindGroup is a fake bind group.
type BindGroup struct {
	Handle
	Layout  gpu.BindGroupLayout
	Entries []gpu.BindGroupEntry
}

// ShaderModule is a fake shader module.
type ShaderModule struct {
	Handle
	Source gpu.ShaderSource
}

// RenderPipeline is a fake render pipeline.
type RenderPipeline struct {
	Handle
	Desc gpu.RenderPipelineDescriptor
}

// TextureView is a fake texture view.
type TextureView struct {
	Handle
	Data common.TextureStagingData
}

// Sampler is a fake sampler.
type Sampler struct {
	Handle
	Desc gpu.SamplerDescriptor
}

// Device is a fake gpu.Device.
type Device struct {
	rec *Recorder

	// Fail maps a method name (e.g. "CreateBindGroup") to the error it returns.
	Fail map[string]error

	Buffers   []*Buffer
	Layouts   []*BindGroupLayout
	Groups    []*BindGroup
	Modules   []*ShaderModule
	Pipelines []*RenderPipeline
	Textures  []*TextureView
	Samplers  []*Sampler
}

var _ gpu.Device = &Device{}

func (d *Device) fail(method string) error {
	if err, ok := d.Fail[method]; ok {
		if err == nil {
			err = ErrInjected
		}
		return err
	}
	return nil
}

func (d *Device) CreateBufferWithData(label string, contents []byte, usage gpu.BufferUsage) (gpu.Buffer, error) {
	if err := d.fail("CreateBufferWithData"); err != nil {
		return nil, err
	}
	data := make([]byte, len(contents))
	copy(data, contents)
	b := &Buffer{Handle: Handle{Name: label}, Usage: usage, Data: data}
	d.Buffers = append(d.Buffers, b)
	d.rec.record("create_buffer %s %d", label, len(contents))
	return b, nil
}

func (d *Device) CreateBindGroupLayout(label string, entries []gpu.BindGroupLayoutEntry) (gpu.BindGroupLayout, error) {
	if err := d.fail("CreateBindGroupLayout"); err != nil {
		return nil, err
	}
	l := &BindGroupLayout{Handle: Handle{Name: label}, Entries: entries}
	d.Layouts = append(d.Layouts, l)
	d.rec.record("create_bind_group_layout %s", label)
	return l, nil
}

func (d *Device) CreateBindGroup(label string, layout gpu.BindGroupLayout, entries []gpu.BindGroupEntry) (gpu.BindGroup, error) {
	if err := d.fail("CreateBindGroup"); err != nil {
		return nil, err
	}
	g := &BindGroup{Handle: Handle{Name: label}, Layout: layout, Entries: entries}
	d.Groups = append(d.Groups, g)
	d.rec.record("create_bind_group %s", label)
	return g, nil
}

func (d *Device) CreateShaderModule(src gpu.ShaderSource) (gpu.ShaderModule, error) {
	if err := d.fail("CreateShaderModule"); err != nil {
		return nil, err
	}
	m := &ShaderModule{Handle: Handle{Name: src.Label}, Source: src}
	d.Modules = append(d.Modules, m)
	d.rec.record("create_shader_module %s", src.Label)
	return m, nil
}

func (d *Device) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if err := d.fail("CreateRenderPipeline"); err != nil {
		return nil, err
	}
	p := &RenderPipeline{Handle: Handle{Name: desc.Label}, Desc: desc}
	d.Pipelines = append(d.Pipelines, p)
	d.rec.record("create_render_pipeline %s", desc.Label)
	return p, nil
}

func (d *Device) CreateTextureWithData(label string, data common.TextureStagingData) (gpu.TextureView, error) {
	if err := d.fail("CreateTextureWithData"); err != nil {
		return nil, err
	}
	t := &TextureView{Handle: Handle{Name: label}, Data: data}
	d.Textures = append(d.Textures, t)
	d.rec.record("create_texture %s %dx%d", label, data.Width, data.Height)
	return t, nil
}

func (d *Device) CreateSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	if err := d.fail("CreateSampler"); err != nil {
		return nil, err
	}
	s := &Sampler{Handle: Handle{Name: desc.Label}, Desc: desc}
	d.Samplers = append(d.Samplers, s)
	d.rec.record("create_sampler %s", desc.Label)
	return s, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	if err := d.fail("CreateCommandEncoder"); err != nil {
		return nil, err
	}
	d.rec.record("create_encoder")
	return &CommandEncoder{rec: d.rec, FinishErr: d.fail("Finish")}, nil
}

// BufferByLabel returns the first created buffer with the given label, or nil.
func (d *Device) BufferByLabel(label string) *Buffer {
	for _, b := range d.Buffers {
		if b.Name == label {
			return b
		}
	}
	return nil
}

// Write is one recorded Queue.WriteBuffer call.
type Write struct {
	Buffer gpu.Buffer
	Offset uint64
	Data   []byte
}

// Queue is a fake gpu.Queue. Writes are applied to fake Buffers.
type Queue struct {
	rec *Recorder

	// WriteErr, when set, is returned by every WriteBuffer call.
	WriteErr error

	Writes    []Write
	Submitted []gpu.CommandBuffer
}

var _ gpu.Queue = &Queue{}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	if q.WriteErr != nil {
		return q.WriteErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	if b, ok := buf.(*Buffer); ok {
		if int(offset)+len(cp) > len(b.Data) {
			return fmt.Errorf("write of %d bytes at %d overflows %q (%d bytes)", len(cp), offset, b.Name, len(b.Data))
		}
		copy(b.Data[offset:], cp)
	}
	q.Writes = append(q.Writes, Write{Buffer: buf, Offset: offset, Data: cp})
	q.rec.record("write %s %d %d", buf.Label(), offset, len(data))
	return nil
}

func (q *Queue) Submit(cmds ...gpu.CommandBuffer) {
	q.Submitted = append(q.Submitted, cmds...)
	q.rec.record("submit %d", len(cmds))
}

// CommandEncoder is a fake gpu.CommandEncoder.
type CommandEncoder struct {
	rec       *Recorder
	FinishErr error
	Released  bool
}

func (e *CommandEncoder) BeginRenderPass(desc gpu.RenderPassDescriptor) gpu.RenderPass {
	e.rec.record("begin_pass %.2f %.2f %.2f %.2f", desc.ClearColor.R, desc.ClearColor.G, desc.ClearColor.B, desc.ClearColor.A)
	return &RenderPass{rec: e.rec}
}

func (e *CommandEncoder) Finish() (gpu.CommandBuffer, error) {
	if e.FinishErr != nil {
		return nil, e.FinishErr
	}
	e.rec.record("finish")
	return &Handle{Name: "command buffer"}, nil
}

func (e *CommandEncoder) Release() { e.Released = true }

// RenderPass is a fake gpu.RenderPass.
type RenderPass struct {
	rec *Recorder
}

func (p *RenderPass) SetPipeline(pl gpu.RenderPipeline) {
	p.rec.record("set_pipeline %s", pl.Label())
}

func (p *RenderPass) SetBindGroup(index uint32, group gpu.BindGroup) {
	p.rec.record("set_bind_group %d %s", index, group.Label())
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	p.rec.record("set_vertex_buffer %d %s", slot, buf.Label())
}

func (p *RenderPass) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat) {
	p.rec.record("set_index_buffer %s %d", buf.Label(), format)
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.rec.record("draw_indexed %d %d %d %d %d", indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *RenderPass) End() error {
	p.rec.record("end_pass")
	return nil
}

// Surface is a fake gpu.Surface.
type Surface struct {
	rec *Recorder

	// AcquireErrs are returned by successive AcquireNextFrame calls; a nil entry succeeds.
	// Once exhausted every call succeeds.
	AcquireErrs []error
	// RebuildErr, when set, is returned by Rebuild.
	RebuildErr error

	Rebuilds [][2]int
}

var _ gpu.Surface = &Surface{}

func (s *Surface) AcquireNextFrame() (gpu.FrameTarget, error) {
	if len(s.AcquireErrs) > 0 {
		err := s.AcquireErrs[0]
		s.AcquireErrs = s.AcquireErrs[1:]
		if err != nil {
			s.rec.record("acquire_failed")
			return nil, err
		}
	}
	s.rec.record("acquire")
	return &Frame{rec: s.rec}, nil
}

func (s *Surface) Rebuild(width, height int) error {
	if s.RebuildErr != nil {
		return s.RebuildErr
	}
	s.Rebuilds = append(s.Rebuilds, [2]int{width, height})
	s.rec.record("rebuild %d %d", width, height)
	return nil
}

// Frame is a fake gpu.FrameTarget.
type Frame struct {
	rec  *Recorder
	view Handle
}

func (f *Frame) View() gpu.TextureView { return &f.view }
func (f *Frame) Present()              { f.rec.record("present") }
func (f *Frame) Release()              { f.rec.record("release_frame") }
