package gpu

// BufferUsage is a bit set describing how a buffer may be used.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageCopyDst
)

// Has reports whether every bit in flag is set.
func (u BufferUsage) Has(flag BufferUsage) bool {
	return u&flag == flag
}

// ShaderStage is a bit set of shader stages a binding is visible to.
type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

// BindingType identifies the kind of resource bound at a bind group layout entry.
type BindingType int

const (
	// BindingTypeUniformBuffer is a uniform buffer binding.
	BindingTypeUniformBuffer BindingType = iota
	// BindingTypeTexture is a filterable 2D float texture binding.
	BindingTypeTexture
	// BindingTypeSampler is a filtering sampler binding.
	BindingTypeSampler
)

// BindGroupLayoutEntry describes one binding slot of a bind group layout.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType
}

// BindGroupEntry binds one resource to a binding slot. Exactly one of Buffer,
// TextureView or Sampler is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	TextureView TextureView
	Sampler     Sampler
}

// VertexFormat is the format of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	}
	return 0
}

// VertexStepMode selects whether a vertex buffer advances per vertex or per instance.
type VertexStepMode int

const (
	VertexStepModeVertex VertexStepMode = iota
	VertexStepModeInstance
)

// VertexAttribute describes one attribute read from a vertex buffer.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes how a vertex buffer slot is laid out in memory.
type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    VertexStepMode
	Attributes  []VertexAttribute
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// PrimitiveTopology selects how vertices are assembled into primitives.
type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLineList
)

// FrontFace selects the winding order of front-facing triangles.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// ShaderLanguage identifies the encoding of a shader blob.
type ShaderLanguage int

const (
	ShaderLanguageWGSL ShaderLanguage = iota
	ShaderLanguageSPIRV
)

// ShaderSource is an opaque shader blob handed to the device.
type ShaderSource struct {
	Label    string
	Language ShaderLanguage
	// Code holds WGSL text or SPIR-V words encoded as little-endian bytes.
	Code []byte
}

// RenderPipelineDescriptor is everything needed to create a render pipeline
// targeting the presentation surface.
type RenderPipelineDescriptor struct {
	Label string

	// BindGroupLayouts are indexed by bind group slot.
	BindGroupLayouts []BindGroupLayout

	VertexModule     ShaderModule
	VertexEntryPoint string
	// VertexBuffers are indexed by vertex buffer slot.
	VertexBuffers []VertexBufferLayout

	FragmentModule     ShaderModule
	FragmentEntryPoint string

	Topology  PrimitiveTopology
	FrontFace FrontFace
	CullMode  CullMode
}

// AddressMode selects how texture coordinates outside [0, 1] are resolved.
type AddressMode int

const (
	AddressModeRepeat AddressMode = iota
	AddressModeClampToEdge
	AddressModeMirrorRepeat
)

// FilterMode selects the texel filter.
type FilterMode int

const (
	FilterModeLinear FilterMode = iota
	FilterModeNearest
)

// SamplerDescriptor configures a texture sampler. The zero value is linear/repeat.
type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
}

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// RenderPassDescriptor describes a single-color-attachment render pass that clears
// its target. No depth attachment is used.
type RenderPassDescriptor struct {
	Label      string
	Target     TextureView
	ClearColor Color
}
