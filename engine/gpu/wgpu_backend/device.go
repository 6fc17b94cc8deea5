package wgpu_backend

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// device implements gpu.Device on the backend's wgpu.Device.
type device struct {
	b *backendImpl
}

var _ gpu.Device = &device{}

func (d *device) CreateBufferWithData(label string, contents []byte, usage gpu.BufferUsage) (gpu.Buffer, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("buffer %q has no contents", label)
	}
	buf, err := d.b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    toBufferUsage(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}
	common.Logger().Debug("buffer created", "label", label, "size", len(contents))
	return &buffer{label: label, size: uint64(len(contents)), buf: buf}, nil
}

func (d *device) CreateBindGroupLayout(label string, entries []gpu.BindGroupLayoutEntry) (gpu.BindGroupLayout, error) {
	wgpuEntries := make([]wgpu.BindGroupLayoutEntry, len(entries))
	for i, e := range entries {
		wgpuEntries[i] = toBindGroupLayoutEntry(e)
	}
	l, err := d.b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: wgpuEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %w", label, err)
	}
	return &bindGroupLayout{label: label, layout: l}, nil
}

func (d *device) CreateBindGroup(label string, layout gpu.BindGroupLayout, entries []gpu.BindGroupEntry) (gpu.BindGroup, error) {
	l, ok := layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q: layout was not created by this backend", label)
	}
	wgpuEntries := make([]wgpu.BindGroupEntry, len(entries))
	for i, e := range entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			buf, ok := e.Buffer.(*buffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: foreign buffer", label, e.Binding)
			}
			entry.Buffer = buf.buf
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
		case e.TextureView != nil:
			tv, ok := e.TextureView.(*textureView)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: foreign texture view", label, e.Binding)
			}
			entry.TextureView = tv.view
		case e.Sampler != nil:
			s, ok := e.Sampler.(*sampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: foreign sampler", label, e.Binding)
			}
			entry.Sampler = s.sampler
		default:
			return nil, fmt.Errorf("bind group %q binding %d has no resource", label, e.Binding)
		}
		wgpuEntries[i] = entry
	}
	bg, err := d.b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  l.layout,
		Entries: wgpuEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", label, err)
	}
	return &bindGroup{label: label, group: bg}, nil
}

func (d *device) CreateShaderModule(src gpu.ShaderSource) (gpu.ShaderModule, error) {
	desc := &wgpu.ShaderModuleDescriptor{Label: src.Label}
	switch src.Language {
	case gpu.ShaderLanguageWGSL:
		desc.WGSLDescriptor = &wgpu.ShaderModuleWGSLDescriptor{Code: string(src.Code)}
	case gpu.ShaderLanguageSPIRV:
		desc.SPIRVDescriptor = &wgpu.ShaderModuleSPIRVDescriptor{Code: src.Code}
	default:
		return nil, fmt.Errorf("shader %q: unknown language %d", src.Label, src.Language)
	}
	m, err := d.b.device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module %q: %w", src.Label, err)
	}
	return &shaderModule{label: src.Label, module: m}, nil
}

func (d *device) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	vs, ok := desc.VertexModule.(*shaderModule)
	if !ok {
		return nil, errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}
	fs, ok := desc.FragmentModule.(*shaderModule)
	if !ok {
		return nil, errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		bgl, ok := l.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline %q: bind group layout %d was not created by this backend", desc.Label, i)
		}
		layouts[i] = bgl.layout
	}

	pipelineLayout, err := d.b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + " Layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout %q: %w", desc.Label, err)
	}
	defer pipelineLayout.Release()

	vertexLayouts := make([]wgpu.VertexBufferLayout, len(desc.VertexBuffers))
	for i, vb := range desc.VertexBuffers {
		vertexLayouts[i] = toVertexBufferLayout(vb)
	}

	created, err := d.b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format: d.b.surfaceFormat,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorZero,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorZero,
						},
					},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  toTopology(desc.Topology),
			FrontFace: toFrontFace(desc.FrontFace),
			CullMode:  toCullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline %q: %w", desc.Label, err)
	}
	common.Logger().Debug("render pipeline created", "label", desc.Label)
	return &renderPipeline{label: desc.Label, pipeline: created}, nil
}

func (d *device) CreateTextureWithData(label string, data common.TextureStagingData) (gpu.TextureView, error) {
	if data.Width == 0 || data.Height == 0 || len(data.Pixels) < int(data.Width*data.Height*4) {
		return nil, fmt.Errorf("texture %q: invalid staging data %dx%d (%d bytes)", label, data.Width, data.Height, len(data.Pixels))
	}
	size := wgpu.Extent3D{
		Width:              data.Width,
		Height:             data.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := d.b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", label, err)
	}

	d.b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create texture view %q: %w", label, err)
	}
	return &textureView{view: view, texture: tex}, nil
}

func (d *device) CreateSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	s, err := d.b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toAddressMode(desc.AddressModeU),
		AddressModeV:  toAddressMode(desc.AddressModeV),
		AddressModeW:  toAddressMode(desc.AddressModeW),
		MagFilter:     toFilterMode(desc.MagFilter),
		MinFilter:     toFilterMode(desc.MinFilter),
		MipmapFilter:  toMipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", desc.Label, err)
	}
	return &sampler{sampler: s}, nil
}

func (d *device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	enc, err := d.b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	return &commandEncoder{encoder: enc}, nil
}

// queue implements gpu.Queue on a wgpu.Queue.
type queue struct {
	q *wgpu.Queue
}

var _ gpu.Queue = &queue{}

func (q *queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("write to foreign buffer %q", buf.Label())
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("write of %d bytes at %d overflows %q (%d bytes)", len(data), offset, b.label, b.size)
	}
	return q.q.WriteBuffer(b.buf, offset, data)
}

func (q *queue) Submit(cmds ...gpu.CommandBuffer) {
	wgpuCmds := make([]*wgpu.CommandBuffer, 0, len(cmds))
	for _, c := range cmds {
		if cb, ok := c.(*commandBuffer); ok {
			wgpuCmds = append(wgpuCmds, cb.cmd)
		}
	}
	q.q.Submit(wgpuCmds...)
}
