// Package shader loads vertex and fragment shaders as WGSL text or SPIR-V blobs.
// WGSL sources are pre-processed for @oxy: annotations and reflected for their vertex
// inputs and bind group layouts so the pipeline can check them against its layouts.
package shader

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
)

// DefaultEntryPoint is the entry point used when none is given or found.
const DefaultEntryPoint = "main"

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

var (
	// ErrNoSource is returned when a shader is created without a source.
	ErrNoSource = errors.New("shader: no source provided")
	// ErrInvalidSPIRV is returned for blobs that are not SPIR-V modules.
	ErrInvalidSPIRV = errors.New("shader: invalid SPIR-V module")
)

//go:embed assets/shader.vert.wgsl
var defaultVertexSource string

//go:embed assets/shader.frag.wgsl
var defaultFragmentSource string

// ShaderType identifies the pipeline stage a shader runs in.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, paired with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	}
	return "unknown"
}

// visibility returns the shader stage flag for bindings declared by this shader type.
func (t ShaderType) visibility() gpu.ShaderStage {
	if t == ShaderTypeFragment {
		return gpu.ShaderStageFragment
	}
	return gpu.ShaderStageVertex
}

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	shaderType ShaderType
	language   gpu.ShaderLanguage
	source     string
	spirv      []byte
	path       string
	entryPoint string

	vertexInputs    map[uint32]gpu.VertexFormat
	bindGroups      map[int][]gpu.BindGroupLayoutEntry
	bindingVarNames map[int]map[int]string

	pp PreProcessor
}

// Shader is a loaded shader stage ready for pipeline creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, also used as its debug label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// ShaderType returns the stage of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// Source returns the blob handed to the device: processed WGSL text or SPIR-V words.
	//
	// Returns:
	//   - gpu.ShaderSource: the shader source
	Source() gpu.ShaderSource

	// Reflected reports whether the vertex inputs and bind groups were parsed from the
	// source. SPIR-V shaders are not reflected.
	//
	// Returns:
	//   - bool: true for WGSL shaders
	Reflected() bool

	// VertexInputs returns the vertex attribute formats keyed by shader location.
	// Empty for fragment and SPIR-V shaders.
	//
	// Returns:
	//   - map[uint32]gpu.VertexFormat: the declared vertex inputs
	VertexInputs() map[uint32]gpu.VertexFormat

	// BindGroupLayouts returns the declared bindings keyed by group index.
	//
	// Returns:
	//   - map[int][]gpu.BindGroupLayoutEntry: the declared bindings
	BindGroupLayouts() map[int][]gpu.BindGroupLayoutEntry

	// BindGroupVarName retrieves the WGSL variable name bound at group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// Declarations returns the @oxy:group and @oxy:provider annotations of the source.
	//
	// Returns:
	//   - []Annotation: the parsed declarations
	Declarations() []Annotation

	// Compile creates the shader module on the device.
	//
	// Parameters:
	//   - device: the device to compile on
	//
	// Returns:
	//   - gpu.ShaderModule: the compiled module
	//   - error: error if compilation fails
	Compile(device gpu.Device) (gpu.ShaderModule, error)
}

var _ Shader = &shader{}

// NewShader creates a Shader from exactly one of WithSource, WithSourceFromPath or
// WithSPIRV. WGSL sources are pre-processed and reflected; the entry point defaults to
// the first @vertex or @fragment function, then to "main".
//
// Parameters:
//   - key: a unique identifier for the shader, used as its debug label
//   - shaderType: the pipeline stage of the shader
//   - options: functional options that provide the source
//
// Returns:
//   - Shader: the loaded shader
//   - error: error if the source is missing, unreadable or malformed
func NewShader(key string, shaderType ShaderType, options ...ShaderOption) (Shader, error) {
	s := &shader{
		key:             key,
		shaderType:      shaderType,
		vertexInputs:    make(map[uint32]gpu.VertexFormat),
		bindGroups:      make(map[int][]gpu.BindGroupLayoutEntry),
		bindingVarNames: make(map[int]map[int]string),
		pp:              NewPreProcessor(),
	}
	for _, option := range options {
		option(s)
	}

	if s.path != "" {
		if err := s.loadPath(); err != nil {
			return nil, err
		}
	}

	switch {
	case s.spirv != nil:
		if err := validateSPIRV(s.spirv); err != nil {
			return nil, fmt.Errorf("shader %s: %w", key, err)
		}
		s.language = gpu.ShaderLanguageSPIRV
		common.Logger().Debug("loaded SPIR-V shader; skipping reflection", "key", key, "bytes", len(s.spirv))
	case s.source != "":
		s.language = gpu.ShaderLanguageWGSL
		if err := s.parseSource(); err != nil {
			return nil, fmt.Errorf("shader %s: %w", key, err)
		}
	default:
		return nil, fmt.Errorf("shader %s: %w", key, ErrNoSource)
	}

	s.entryPoint = common.Coalesce(s.entryPoint, DefaultEntryPoint)
	return s, nil
}

// NewDefaultShaders returns the built-in vertex and fragment shaders, which draw the
// instanced mesh with a diffuse texture and the camera uniform.
//
// Returns:
//   - Shader: the vertex shader
//   - Shader: the fragment shader
//   - error: error if either fails to load
func NewDefaultShaders() (Shader, Shader, error) {
	vs, err := NewShader("Default Vertex Shader", ShaderTypeVertex, WithSource(defaultVertexSource))
	if err != nil {
		return nil, nil, err
	}
	fs, err := NewShader("Default Fragment Shader", ShaderTypeFragment, WithSource(defaultFragmentSource))
	if err != nil {
		return nil, nil, err
	}
	return vs, fs, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Source() gpu.ShaderSource {
	if s.language == gpu.ShaderLanguageSPIRV {
		return gpu.ShaderSource{Label: s.key, Language: gpu.ShaderLanguageSPIRV, Code: s.spirv}
	}
	return gpu.ShaderSource{Label: s.key, Language: gpu.ShaderLanguageWGSL, Code: []byte(s.source)}
}

func (s *shader) Reflected() bool {
	return s.language == gpu.ShaderLanguageWGSL
}

func (s *shader) VertexInputs() map[uint32]gpu.VertexFormat {
	return s.vertexInputs
}

func (s *shader) BindGroupLayouts() map[int][]gpu.BindGroupLayoutEntry {
	return s.bindGroups
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) Compile(device gpu.Device) (gpu.ShaderModule, error) {
	module, err := device.CreateShaderModule(s.Source())
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s shader %s: %w", s.shaderType, s.key, err)
	}
	return module, nil
}

// loadPath reads the shader file. Files ending in .spv are SPIR-V; anything else is WGSL.
func (s *shader) loadPath() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("shader %s: failed to read source file %q: %w", s.key, s.path, err)
	}
	if strings.EqualFold(filepath.Ext(s.path), ".spv") {
		s.spirv = data
		s.source = ""
		return nil
	}
	s.source = string(data)
	s.spirv = nil
	return nil
}

// parseSource pre-processes the WGSL source and reflects its entry point, vertex
// inputs and bind group layouts.
func (s *shader) parseSource() error {
	processed, err := s.pp.Process(s.source)
	if err != nil {
		return fmt.Errorf("failed to pre-process source: %w", err)
	}
	s.source = processed

	if s.entryPoint == "" {
		s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	}
	if s.shaderType == ShaderTypeVertex {
		if s.vertexInputs, err = parseVertexInputs(s.source); err != nil {
			return err
		}
	}
	s.bindGroups, s.bindingVarNames, err = parseBindGroupLayouts(s.source, s.shaderType.visibility())
	return err
}

// validateSPIRV checks word alignment and the module magic number.
func validateSPIRV(blob []byte) error {
	if len(blob) < 20 || len(blob)%4 != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole module", ErrInvalidSPIRV, len(blob))
	}
	if magic := binary.LittleEndian.Uint32(blob); magic != spirvMagic {
		return fmt.Errorf("%w: magic %#08x", ErrInvalidSPIRV, magic)
	}
	return nil
}
