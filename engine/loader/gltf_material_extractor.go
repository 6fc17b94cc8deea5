package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-instanced/common"
)

type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor resolves the base color texture of a glTF material.
type gltfMaterialExtractor interface {
	// ExtractBaseColorTexture returns the base color texture of a material.
	// Embedded images carry their encoded bytes; external images carry a path
	// resolved against the document's directory and are read at decode time.
	//
	// Parameters:
	//   - materialIndex: the index of the material
	//
	// Returns:
	//   - *common.ImportedTexture: the texture, or nil when the material has none
	//   - error: error if the material or its image cannot be resolved
	ExtractBaseColorTexture(materialIndex int) (*common.ImportedTexture, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractBaseColorTexture(materialIndex int) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]
	if mat.PbrMetallicRoughness == nil || mat.PbrMetallicRoughness.BaseColorTexture == nil {
		return nil, nil
	}
	info := mat.PbrMetallicRoughness.BaseColorTexture
	if info.TexCoord != 0 {
		return nil, fmt.Errorf("material %d: base color texture uses TEXCOORD_%d, only TEXCOORD_0 is loaded", materialIndex, info.TexCoord)
	}

	tex, err := e.loadTexture(info.Index)
	if err != nil {
		return nil, fmt.Errorf("material %d: %w", materialIndex, err)
	}
	if tex != nil && tex.Name == "" {
		tex.Name = mat.Name
	}
	return tex, nil
}

// loadTexture resolves a texture index through its image source.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}

	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	imageIndex := *tex.Source
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", imageIndex)
	}

	img := &doc.Images[imageIndex]
	result := &common.ImportedTexture{Name: img.Name}

	switch {
	case img.BufferView != nil:
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		result.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, _, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		result.Data = data
	case img.URI != "":
		result.Path = filepath.Join(e.parser.BaseDir(), img.URI)
	default:
		return nil, fmt.Errorf("image %d has neither bufferView nor uri", imageIndex)
	}

	return result, nil
}
