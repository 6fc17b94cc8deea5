package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend for glTF/GLB files.
// Each import runs a fresh parser followed by the mesh and material extractors.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return b.importFromParser(parser, path)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader, isGLB bool) (*ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return b.importFromParser(parser, "")
}

func (b *gltfLoaderBackendImpl) importFromParser(parser gltfParser, fallbackPath string) (*ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	if len(doc.Meshes) == 0 {
		return nil, fmt.Errorf("%w: document has no meshes", ErrInvalidGLTF)
	}

	meshes, err := newGLTFMeshExtractor(parser).ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	materials := newGLTFMaterialExtractor(parser)
	for _, m := range meshes {
		if m.Material < 0 {
			continue
		}
		tex, err := materials.ExtractBaseColorTexture(m.Material)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		m.BaseColorTexture = tex
	}

	return &ImportedModel{
		Name:   gltfModelName(doc, fallbackPath),
		Meshes: meshes,
	}, nil
}

// gltfModelName prefers the default scene's name, then the file name without extension.
func gltfModelName(doc *gltfDocument, fallbackPath string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallbackPath != "" {
		base := filepath.Base(fallbackPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "unnamed_model"
}
