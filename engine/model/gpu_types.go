package model

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (20 bytes, locations 0 and 1).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU representation of a single mesh vertex.
// Size: 20 bytes, tightly packed.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	TexCoord [2]float32 // offset 12: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32s(buf, g.Position[0], g.Position[1], g.Position[2], g.TexCoord[0], g.TexCoord[1])
	return buf
}

// VertexBufferLayout describes vertex buffer slot 0: stride 20, stepped per vertex,
// position at location 0 and texture coordinates at location 1.
//
// Returns:
//   - gpu.VertexBufferLayout: the mesh vertex layout
func VertexBufferLayout() gpu.VertexBufferLayout {
	var v GPUVertex
	return gpu.VertexBufferLayout{
		ArrayStride: uint64(v.Size()),
		StepMode:    gpu.VertexStepModeVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gpu.VertexFormatFloat32x2, Offset: uint64(unsafe.Offsetof(v.TexCoord)), ShaderLocation: 1},
		},
	}
}

// MarshalVertices packs vertices back to back.
func MarshalVertices(vertices []GPUVertex) []byte {
	var v GPUVertex
	stride := v.Size()
	buf := make([]byte, 0, len(vertices)*stride)
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}
