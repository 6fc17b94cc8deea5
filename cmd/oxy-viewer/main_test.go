package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-instanced/engine/config"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := config.Load("viewer.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadShaders(t *testing.T) {
	vs, fs, err := loadShaders(config.AssetsConfig{})
	require.NoError(t, err)
	assert.Equal(t, "Default Vertex Shader", vs.Key())
	assert.Equal(t, "Default Fragment Shader", fs.Key())

	path := filepath.Join(t.TempDir(), "flat.frag.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("@fragment\nfn flat() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }\n"), 0o644))
	_, fs, err = loadShaders(config.AssetsConfig{FragmentShader: path})
	require.NoError(t, err)
	assert.Equal(t, shader.ShaderTypeFragment, fs.ShaderType())
	assert.Equal(t, "flat", fs.EntryPoint())

	_, _, err = loadShaders(config.AssetsConfig{VertexShader: filepath.Join(t.TempDir(), "missing.wgsl")})
	require.Error(t, err)
}

// triangleGLTF is one textured triangle; the image file is not present on disk.
const triangleGLTF = `{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": 44, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAAAAABAAIAAAA="}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}, {"buffer": 0, "byteOffset": 36, "byteLength": 6}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "type": "VEC3", "count": 3},
    {"bufferView": 1, "componentType": 5123, "type": "SCALAR", "count": 3}
  ],
  "meshes": [{"name": "Leaf", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}],
  "textures": [{"source": 0}],
  "images": [{"uri": "leaf.png"}]
}`

func TestLoadMesh(t *testing.T) {
	rec := gputest.NewRecorder()
	mesh, tex, err := loadMesh(rec.Context(), config.AssetsConfig{})
	require.NoError(t, err)
	assert.Nil(t, tex)
	assert.Equal(t, uint32(9), mesh.IndexCount())
	assert.Equal(t, "Pentagon", mesh.Label())

	dir := t.TempDir()
	path := filepath.Join(dir, "leaf.gltf")
	require.NoError(t, os.WriteFile(path, []byte(triangleGLTF), 0o644))

	rec = gputest.NewRecorder()
	mesh, tex, err = loadMesh(rec.Context(), config.AssetsConfig{Mesh: path})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), mesh.IndexCount())
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, []string{
		"create_buffer Leaf Vertex Buffer 60",
		"create_buffer Leaf Index Buffer 8",
	}, rec.Ops())
	require.NotNil(t, tex)
	assert.Equal(t, filepath.Join(dir, "leaf.png"), tex.Path)

	_, _, err = loadMesh(rec.Context(), config.AssetsConfig{Mesh: filepath.Join(dir, "missing.glb")})
	require.Error(t, err)
}
