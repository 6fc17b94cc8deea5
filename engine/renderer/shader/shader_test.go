package shader

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spirvBlob(words ...uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

func TestDefaultShaders(t *testing.T) {
	vs, fs, err := NewDefaultShaders()
	require.NoError(t, err)

	assert.Equal(t, ShaderTypeVertex, vs.ShaderType())
	assert.Equal(t, "main", vs.EntryPoint())
	assert.True(t, vs.Reflected())
	assert.Equal(t, map[uint32]gpu.VertexFormat{
		0: gpu.VertexFormatFloat32x3,
		1: gpu.VertexFormatFloat32x2,
		5: gpu.VertexFormatFloat32x4,
		6: gpu.VertexFormatFloat32x4,
		7: gpu.VertexFormatFloat32x4,
		8: gpu.VertexFormatFloat32x4,
	}, vs.VertexInputs())
	assert.Equal(t, map[int][]gpu.BindGroupLayoutEntry{
		1: {{Binding: 0, Visibility: gpu.ShaderStageVertex, Type: gpu.BindingTypeUniformBuffer}},
	}, vs.BindGroupLayouts())
	assert.Equal(t, "camera", vs.BindGroupVarName(1, 0))

	src := string(vs.Source().Code)
	assert.Contains(t, src, "struct CameraUniform")
	assert.Contains(t, src, "struct InstanceInput")
	assert.Contains(t, src, "@group(1) @binding(0) var<uniform> camera: CameraUniform;")
	assert.NotContains(t, src, "@oxy:")

	assert.Equal(t, "main", fs.EntryPoint())
	assert.Empty(t, fs.VertexInputs())
	assert.Equal(t, map[int][]gpu.BindGroupLayoutEntry{
		0: {
			{Binding: 0, Visibility: gpu.ShaderStageFragment, Type: gpu.BindingTypeTexture},
			{Binding: 1, Visibility: gpu.ShaderStageFragment, Type: gpu.BindingTypeSampler},
		},
	}, fs.BindGroupLayouts())
	assert.Equal(t, "s_diffuse", fs.BindGroupVarName(0, 1))
	assert.Equal(t, "", fs.BindGroupVarName(3, 0))

	decls := fs.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, AnnotationTypeProvider, decls[0].Type)
	assert.Equal(t, []AnnotationArg{AnnotationArgMaterial, AnnotationArgDiffuseTexture}, decls[0].Args)
	assert.Equal(t, 0, *decls[1].Group)
	assert.Equal(t, 1, *decls[1].Binding)

	vdecls := vs.Declarations()
	require.Len(t, vdecls, 1)
	assert.Equal(t, AnnotationTypeBindingGroup, vdecls[0].Type)
	assert.Equal(t, 1, *vdecls[0].Group)
}

func TestNewShaderEntryPoint(t *testing.T) {
	src := "@fragment\nfn shade() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }\n"

	s, err := NewShader("parsed", ShaderTypeFragment, WithSource(src))
	require.NoError(t, err)
	assert.Equal(t, "shade", s.EntryPoint())

	s, err = NewShader("explicit", ShaderTypeFragment, WithSource(src), WithEntryPoint("other"))
	require.NoError(t, err)
	assert.Equal(t, "other", s.EntryPoint())

	s, err = NewShader("fallback", ShaderTypeVertex, WithSource("// nothing here\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultEntryPoint, s.EntryPoint())
}

func TestNewShaderSPIRV(t *testing.T) {
	blob := spirvBlob(spirvMagic, 0x00010000, 0, 1, 0)

	s, err := NewShader("spv", ShaderTypeVertex, WithSPIRV(blob))
	require.NoError(t, err)
	assert.False(t, s.Reflected())
	assert.Empty(t, s.VertexInputs())
	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, gpu.ShaderSource{Label: "spv", Language: gpu.ShaderLanguageSPIRV, Code: blob}, s.Source())

	path := filepath.Join(t.TempDir(), "shader.vert.spv")
	require.NoError(t, os.WriteFile(path, blob, 0o644))
	s, err = NewShader("spv file", ShaderTypeVertex, WithSourceFromPath(path))
	require.NoError(t, err)
	assert.Equal(t, gpu.ShaderLanguageSPIRV, s.Source().Language)

	_, err = NewShader("short", ShaderTypeVertex, WithSPIRV(blob[:10]))
	require.ErrorIs(t, err, ErrInvalidSPIRV)

	_, err = NewShader("magic", ShaderTypeVertex, WithSPIRV(spirvBlob(1, 2, 3, 4, 5)))
	require.ErrorIs(t, err, ErrInvalidSPIRV)
}

func TestNewShaderFromWGSLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shader.frag.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(defaultFragmentSource), 0o644))

	s, err := NewShader("file", ShaderTypeFragment, WithSourceFromPath(path))
	require.NoError(t, err)
	assert.True(t, s.Reflected())
	assert.Len(t, s.BindGroupLayouts()[0], 2)
}

func TestNewShaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		options []ShaderOption
		target  error
	}{
		{name: "no source", target: ErrNoSource},
		{name: "missing file", options: []ShaderOption{WithSourceFromPath(filepath.Join(t.TempDir(), "nope.wgsl"))}, target: os.ErrNotExist},
		{name: "bad annotation", options: []ShaderOption{WithSource("//@oxy:include nothing\n")}},
		{name: "unsupported attribute", options: []ShaderOption{WithSource("struct In {\n@location(0) v: mat4x4<f32>,\n};\n")}},
		{name: "duplicate location", options: []ShaderOption{WithSource("struct A { @location(0) a: vec2<f32> };\nstruct B { @location(0) b: vec2<f32> };\n")}},
		{name: "storage binding", options: []ShaderOption{WithSource("@group(0) @binding(0) var<storage, read> data: array<f32>;\n")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShader(tt.name, ShaderTypeVertex, tt.options...)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	rec := gputest.NewRecorder()
	vs, _, err := NewDefaultShaders()
	require.NoError(t, err)

	module, err := vs.Compile(rec.Device)
	require.NoError(t, err)
	assert.Equal(t, "Default Vertex Shader", module.Label())
	assert.Equal(t, []string{"create_shader_module Default Vertex Shader"}, rec.Ops())
	assert.Equal(t, gpu.ShaderLanguageWGSL, rec.Device.Modules[0].Source.Language)

	rec.Device.Fail["CreateShaderModule"] = nil
	_, err = vs.Compile(rec.Device)
	require.ErrorIs(t, err, gputest.ErrInjected)
}
