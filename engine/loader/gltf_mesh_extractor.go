package loader

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-instanced/engine/model"
)

// ErrIndexOverflow is returned when merged geometry cannot be addressed with 16-bit indices.
var ErrIndexOverflow = errors.New("mesh needs more than 65536 vertices for uint16 indices")

type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF mesh primitives into GPUVertex and uint16 index data.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index, merging all of its primitives
	// into one vertex and index list.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - *ImportedMesh: the merged mesh
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) (*ImportedMesh, error)

	// ExtractAllMeshes extracts every mesh in the document.
	//
	// Returns:
	//   - []*ImportedMesh: one merged mesh per glTF mesh
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]*ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (*ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := &ImportedMesh{Name: mesh.Name, Material: -1}
	if result.Name == "" {
		result.Name = fmt.Sprintf("mesh_%d", meshIndex)
	}

	for primIdx := range mesh.Primitives {
		prim := &mesh.Primitives[primIdx]
		vertices, indices, err := e.extractPrimitive(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}

		// Offset each index by the vertices already merged.
		base := uint32(len(result.Vertices))
		if int(base)+len(vertices) > math.MaxUint16+1 {
			return nil, fmt.Errorf("mesh %d: %w", meshIndex, ErrIndexOverflow)
		}
		for _, idx := range indices {
			result.Indices = append(result.Indices, uint16(base+idx))
		}
		result.Vertices = append(result.Vertices, vertices...)

		if result.Material < 0 && prim.Material != nil {
			result.Material = *prim.Material
		}
	}

	if len(result.Indices) == 0 {
		return nil, fmt.Errorf("mesh %d has no triangles", meshIndex)
	}
	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]*ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	meshes := make([]*ImportedMesh, 0, len(doc.Meshes))
	for i := range doc.Meshes {
		m, err := e.ExtractMesh(i)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// extractPrimitive reads POSITION, optional TEXCOORD_0 and optional indices.
// Non-indexed primitives get sequential indices.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive) ([]model.GPUVertex, []uint32, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, nil, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, nil, errors.New("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read positions: %w", err)
	}

	vertexCount := len(positions)
	if vertexCount > math.MaxUint16+1 {
		return nil, nil, ErrIndexOverflow
	}
	vertices := make([]model.GPUVertex, vertexCount)
	for i, pos := range positions {
		vertices[i].Position = pos
	}

	if texCoordAccessor, ok := prim.Attributes["TEXCOORD_0"]; ok {
		texCoords, err := e.parser.ReadVec2Accessor(texCoordAccessor)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
		for i := range min(len(texCoords), vertexCount) {
			vertices[i].TexCoord = texCoords[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= vertexCount {
				return nil, nil, fmt.Errorf("%w: index %d out of range for %d vertices", ErrInvalidGLTF, idx, vertexCount)
			}
		}
	} else {
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if len(indices)%3 != 0 {
		return nil, nil, fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidGLTF, len(indices))
	}
	return vertices, indices, nil
}
