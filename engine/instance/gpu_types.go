package instance

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
)

// GPUInstanceInputSource is the canonical WGSL definition of the InstanceInput struct.
// Matches the InstanceRaw layout and VertexBufferLayout exactly (locations 5-8).
//
//go:embed assets/instance_input.wgsl
var GPUInstanceInputSource string

// FirstShaderLocation is the shader location of the model matrix's first column.
const FirstShaderLocation = 5

// InstanceRaw is the GPU-aligned per-instance vertex data.
// Size: 64 bytes, four vec4<f32> columns.
type InstanceRaw struct {
	Model [16]float32 // offset 0: column-major model matrix
}

// Size returns the size of the InstanceRaw struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (r *InstanceRaw) Size() int {
	return int(unsafe.Sizeof(*r))
}

// Marshal serializes the InstanceRaw struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (r *InstanceRaw) Marshal() []byte {
	buf := make([]byte, r.Size())
	r.MarshalTo(buf)
	return buf
}

// MarshalTo writes the 64-byte encoding into dst, which must hold at least Size bytes.
func (r *InstanceRaw) MarshalTo(dst []byte) {
	common.PutFloat32s(dst, r.Model[:]...)
}

// VertexBufferLayout describes the instance buffer: stride 64, stepped once per
// instance, four Float32x4 attributes at locations 5 through 8.
//
// Returns:
//   - gpu.VertexBufferLayout: the layout for vertex buffer slot 1
func VertexBufferLayout() gpu.VertexBufferLayout {
	var raw InstanceRaw
	attrs := make([]gpu.VertexAttribute, 4)
	for i := range attrs {
		attrs[i] = gpu.VertexAttribute{
			Format:         gpu.VertexFormatFloat32x4,
			Offset:         uint64(i * 16),
			ShaderLocation: uint32(FirstShaderLocation + i),
		}
	}
	return gpu.VertexBufferLayout{
		ArrayStride: uint64(raw.Size()),
		StepMode:    gpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}
