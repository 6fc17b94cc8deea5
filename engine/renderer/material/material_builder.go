package material

import (
	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
)

// MaterialBuilderOption is a functional option for configuring a Material via NewMaterial.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the Material.
// The name prefixes the labels of every GPU resource the material creates.
//
// Parameters:
//   - name: the material identifier
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		if name != "" {
			m.name = name
		}
	}
}

// WithDiffuseTexture is an option builder that sets the diffuse texture of the Material.
//
// Parameters:
//   - tex: the diffuse texture to decode and upload
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse texture option to a material
func WithDiffuseTexture(tex *common.ImportedTexture) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseTexture = tex
	}
}

// WithSamplerDescriptor is an option builder that replaces the default sampler
// (clamp to edge, linear magnification, nearest minification).
//
// Parameters:
//   - desc: the sampler descriptor; an empty label is filled from the material name
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sampler option to a material
func WithSamplerDescriptor(desc gpu.SamplerDescriptor) MaterialBuilderOption {
	return func(m *material) {
		m.samplerDesc = desc
	}
}
