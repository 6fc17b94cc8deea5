package loader

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/model"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// ErrUnsupportedFormat is returned for file extensions no backend handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// ImportedMesh is one glTF mesh with all of its primitives merged.
type ImportedMesh struct {
	// Name is the glTF mesh name, or mesh_<index> when unnamed.
	Name string

	// Vertices holds position and TEXCOORD_0 per vertex.
	Vertices []model.GPUVertex

	// Indices is a triangle list into Vertices.
	Indices []uint16

	// Material is the glTF material index of the first primitive that has one, or -1.
	Material int

	// BaseColorTexture is the material's base color image, or nil.
	BaseColorTexture *common.ImportedTexture
}

// NewMesh uploads the mesh into GPU vertex and index buffers labelled with its name.
//
// Parameters:
//   - ctx: the device used to create the buffers
//   - options: extra mesh options, applied after the name label
//
// Returns:
//   - model.Mesh: the GPU mesh
//   - error: error if buffer creation fails
func (m *ImportedMesh) NewMesh(ctx gpu.Context, options ...model.MeshOption) (model.Mesh, error) {
	opts := append([]model.MeshOption{model.WithLabel(m.Name)}, options...)
	return model.NewMesh(ctx, m.Vertices, m.Indices, opts...)
}

// ImportedModel is the CPU-side result of importing a model file.
type ImportedModel struct {
	Name   string
	Meshes []*ImportedMesh
}

type loader struct {
	mu sync.RWMutex

	modelCache map[string]*ImportedModel

	backend loaderBackend
}

// Loader loads and caches model files. It abstracts the file format behind a
// backend and keys the cache by file path or caller-supplied name.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the model file (.gltf or .glb)
	//
	// Returns:
	//   - *ImportedModel: the loaded model
	//   - error: ErrUnsupportedFormat or the backend's import error
	Load(path string) (*ImportedModel, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *ImportedModel: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*ImportedModel, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	Get(name string) *ImportedModel

	// Models returns a copy of the model cache.
	Models() map[string]*ImportedModel
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]*ImportedModel),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*ImportedModel, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	l.store(path, imported)
	return imported, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*ImportedModel, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, ErrUnsupportedFormat
	}

	imported, err := l.backend.LoadReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	l.store(name, imported)
	return imported, nil
}

func (l *loader) Get(name string) *ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]*ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.modelCache)
}

func (l *loader) store(key string, imported *ImportedModel) {
	l.mu.Lock()
	l.modelCache[key] = imported
	l.mu.Unlock()

	vertices, indices := 0, 0
	for _, m := range imported.Meshes {
		vertices += len(m.Vertices)
		indices += len(m.Indices)
	}
	common.Logger().Info("model loaded", "key", key, "name", imported.Name,
		"meshes", len(imported.Meshes), "vertices", vertices, "indices", indices)
}

// resolveBackend selects a backend from the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend != nil {
			return l.backend, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}
