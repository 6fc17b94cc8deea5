package loader

// gltfDocument is the subset of the glTF 2.0 JSON root the loader reads.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
type gltfDocument struct {
	Asset gltfAsset `json:"asset"`

	Scene *int `json:"scene,omitempty"`

	Scenes []gltfScene `json:"scenes,omitempty"`

	Meshes []gltfMesh `json:"meshes,omitempty"`

	Accessors []gltfAccessor `json:"accessors,omitempty"`

	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`

	Buffers []gltfBuffer `json:"buffers,omitempty"`

	Materials []gltfMaterial `json:"materials,omitempty"`

	Textures []gltfTexture `json:"textures,omitempty"`

	Images []gltfImage `json:"images,omitempty"`
}

type gltfAsset struct {
	Version string `json:"version"`

	Generator string `json:"generator,omitempty"`
}

type gltfScene struct {
	Name string `json:"name,omitempty"`

	Nodes []int `json:"nodes,omitempty"`
}

// --- Meshes ---

type gltfMesh struct {
	Name string `json:"name,omitempty"`

	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`

	Indices *int `json:"indices,omitempty"`

	Material *int `json:"material,omitempty"`

	Mode *int `json:"mode,omitempty"`
}

const (
	gltfPrimitiveModeTriangles = 4
)

// --- Accessors & Buffers ---

type gltfAccessor struct {
	Name string `json:"name,omitempty"`

	BufferView *int `json:"bufferView,omitempty"`

	ByteOffset int `json:"byteOffset,omitempty"`

	ComponentType int `json:"componentType"`

	Normalized bool `json:"normalized,omitempty"`

	Count int `json:"count"`

	Type string `json:"type"`

	Sparse *gltfAccessorSparse `json:"sparse,omitempty"`
}

const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

const (
	gltfAccessorTypeScalar = "SCALAR"
	gltfAccessorTypeVec2   = "VEC2"
	gltfAccessorTypeVec3   = "VEC3"
	gltfAccessorTypeVec4   = "VEC4"
)

type gltfAccessorSparse struct {
	Count int `json:"count"`
}

type gltfBufferView struct {
	Buffer int `json:"buffer"`

	ByteOffset int `json:"byteOffset,omitempty"`

	ByteLength int `json:"byteLength"`

	ByteStride *int `json:"byteStride,omitempty"`
}

type gltfBuffer struct {
	URI string `json:"uri,omitempty"`

	ByteLength int `json:"byteLength"`

	// Data is filled in by the parser after the document is decoded.
	Data []byte `json:"-"`
}

// --- Materials & Textures ---

type gltfMaterial struct {
	Name string `json:"name,omitempty"`

	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
}

type gltfPbrMetallicRoughness struct {
	BaseColorTexture *gltfTextureInfo `json:"baseColorTexture,omitempty"`
}

type gltfTextureInfo struct {
	Index int `json:"index"`

	TexCoord int `json:"texCoord,omitempty"`
}

type gltfTexture struct {
	Source *int `json:"source,omitempty"`
}

type gltfImage struct {
	Name string `json:"name,omitempty"`

	URI string `json:"uri,omitempty"`

	MimeType string `json:"mimeType,omitempty"`

	BufferView *int `json:"bufferView,omitempty"`
}

// --- GLB container ---

// gltfGLBHeader is the header of a GLB file (12 bytes).
type gltfGLBHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// gltfGLBChunkHeader is the header of a GLB chunk (8 bytes).
type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

const (
	gltfGLBMagic     = 0x46546C67 // "glTF"
	gltfGLBVersion   = 2
	gltfGLBChunkJSON = 0x4E4F534A // "JSON"
	gltfGLBChunkBIN  = 0x004E4942 // "BIN\0"
)
