// Package model holds mesh geometry: the vertex format bound at vertex buffer slot 0,
// and the vertex and index buffers drawn once per frame.
package model

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/google/uuid"
)

var (
	// ErrEmptyMesh is returned when a mesh has no vertices or no indices.
	ErrEmptyMesh = errors.New("model: mesh has no geometry")
	// ErrIndexOutOfRange is returned when an index references a missing vertex.
	ErrIndexOutOfRange = errors.New("model: index out of range")
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	label        string
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	indexCount   uint32
	vertexCount  int
}

// Mesh is an uploaded, immutable indexed triangle mesh with uint16 indices.
type Mesh interface {
	// Label returns the debug label shared by the mesh buffers.
	//
	// Returns:
	//   - string: the label
	Label() string

	// VertexBuffer returns the buffer bound at vertex slot 0.
	//
	// Returns:
	//   - gpu.Buffer: the vertex buffer
	VertexBuffer() gpu.Buffer

	// IndexBuffer returns the index buffer.
	//
	// Returns:
	//   - gpu.Buffer: the index buffer
	IndexBuffer() gpu.Buffer

	// IndexFormat returns the index element type.
	//
	// Returns:
	//   - gpu.IndexFormat: always gpu.IndexFormatUint16
	IndexFormat() gpu.IndexFormat

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// VertexCount returns the number of uploaded vertices.
	VertexCount() int

	// Release frees both buffers.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh validates the geometry and uploads it into a vertex and an index buffer.
//
// Parameters:
//   - ctx: the device used to create the buffers
//   - vertices: the mesh vertices
//   - indices: triangle list indices into vertices
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the uploaded mesh
//   - error: ErrEmptyMesh, ErrIndexOutOfRange or a buffer creation error
func NewMesh(ctx gpu.Context, vertices []GPUVertex, indices []uint16, options ...MeshOption) (Mesh, error) {
	m := &mesh{label: "Mesh " + uuid.NewString()[:8]}
	for _, option := range options {
		option(m)
	}

	if len(vertices) == 0 || len(indices) == 0 {
		return nil, ErrEmptyMesh
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexOutOfRange, idx, i, len(vertices))
		}
	}

	vb, err := ctx.Device.CreateBufferWithData(m.label+" Vertex Buffer", MarshalVertices(vertices), gpu.BufferUsageVertex)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer: %w", err)
	}

	ib, err := ctx.Device.CreateBufferWithData(m.label+" Index Buffer", marshalIndices(indices), gpu.BufferUsageIndex)
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("failed to create index buffer: %w", err)
	}

	m.vertexBuffer = vb
	m.indexBuffer = ib
	m.indexCount = uint32(len(indices))
	m.vertexCount = len(vertices)

	common.Logger().Debug("mesh uploaded", "label", m.label, "vertices", len(vertices), "indices", len(indices))
	return m, nil
}

// NewPentagonMesh uploads the built-in pentagon.
func NewPentagonMesh(ctx gpu.Context, options ...MeshOption) (Mesh, error) {
	return NewMesh(ctx, PentagonVertices(), PentagonIndices(), options...)
}

// marshalIndices encodes little-endian uint16 indices, zero padded to a multiple of
// 4 bytes to satisfy buffer copy alignment.
func marshalIndices(indices []uint16) []byte {
	size := (len(indices)*2 + 3) &^ 3
	buf := make([]byte, size)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[i*2:], idx)
	}
	return buf
}

func (m *mesh) Label() string {
	return m.label
}

func (m *mesh) VertexBuffer() gpu.Buffer {
	return m.vertexBuffer
}

func (m *mesh) IndexBuffer() gpu.Buffer {
	return m.indexBuffer
}

func (m *mesh) IndexFormat() gpu.IndexFormat {
	return gpu.IndexFormatUint16
}

func (m *mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *mesh) VertexCount() int {
	return m.vertexCount
}

func (m *mesh) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
}
