package shader

// ShaderOption is a functional option for configuring a Shader via NewShader.
type ShaderOption func(*shader)

// WithSource sets WGSL source text.
//
// Parameters:
//   - source: the WGSL source, may contain @oxy: annotations
//
// Returns:
//   - ShaderOption: a function that applies the source option to a shader
func WithSource(source string) ShaderOption {
	return func(s *shader) {
		s.source = source
		s.spirv = nil
	}
}

// WithSourceFromPath reads the shader from a file when NewShader runs. A .spv
// extension selects SPIR-V; any other extension is read as WGSL.
//
// Parameters:
//   - path: the shader file path
//
// Returns:
//   - ShaderOption: a function that applies the path option to a shader
func WithSourceFromPath(path string) ShaderOption {
	return func(s *shader) {
		s.path = path
	}
}

// WithSPIRV sets a SPIR-V blob encoded as little-endian words.
//
// Parameters:
//   - blob: the SPIR-V module bytes
//
// Returns:
//   - ShaderOption: a function that applies the SPIR-V option to a shader
func WithSPIRV(blob []byte) ShaderOption {
	return func(s *shader) {
		s.spirv = blob
		s.source = ""
	}
}

// WithEntryPoint overrides the entry point name.
//
// Parameters:
//   - name: the entry point function name
//
// Returns:
//   - ShaderOption: a function that applies the entry point option to a shader
func WithEntryPoint(name string) ShaderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}
