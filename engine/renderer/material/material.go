// Package material owns the diffuse texture and sampler bound at bind group slot 0.
package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/bind_group_provider"
	"github.com/google/uuid"
)

const (
	// DiffuseTextureBinding is the binding of the diffuse texture within the material group.
	DiffuseTextureBinding = 0
	// DiffuseSamplerBinding is the binding of the diffuse sampler within the material group.
	DiffuseSamplerBinding = 1
)

// Checkerboard colours used when no diffuse texture is configured.
var (
	fallbackLight = [4]uint8{230, 230, 230, 255}
	fallbackDark  = [4]uint8{40, 90, 160, 255}
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	diffuseTexture    *common.ImportedTexture
	samplerDesc       gpu.SamplerDescriptor
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material is the surface bound at bind group slot 0: a diffuse texture at binding 0
// and its sampler at binding 1, both visible to the fragment stage.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// DiffuseTexture retrieves the configured diffuse texture, or nil when the generated
	// checkerboard is used.
	//
	// Returns:
	//   - *common.ImportedTexture: the diffuse texture, or nil
	DiffuseTexture() *common.ImportedTexture

	// BindGroupProvider retrieves the bind group provider holding the GPU-side resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// BindGroupLayout returns the material bind group layout.
	BindGroupLayout() gpu.BindGroupLayout

	// BindGroup returns the material bind group.
	BindGroup() gpu.BindGroup

	// LayoutEntries returns the texture and sampler layout entries.
	LayoutEntries() []gpu.BindGroupLayoutEntry

	// Release frees the texture, sampler and bind group.
	Release()
}

var _ Material = &material{}

// NewMaterial decodes the diffuse texture, uploads it, creates the sampler and builds
// the bind group. Without a diffuse texture a checkerboard is generated.
//
// Parameters:
//   - ctx: the device used to create the resources
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the GPU-ready material
//   - error: error if decoding or any resource creation fails
func NewMaterial(ctx gpu.Context, options ...MaterialBuilderOption) (Material, error) {
	m := &material{
		name: "Material " + uuid.NewString()[:8],
		samplerDesc: gpu.SamplerDescriptor{
			AddressModeU: gpu.AddressModeClampToEdge,
			AddressModeV: gpu.AddressModeClampToEdge,
			AddressModeW: gpu.AddressModeClampToEdge,
			MagFilter:    gpu.FilterModeLinear,
			MinFilter:    gpu.FilterModeNearest,
			MipmapFilter: gpu.FilterModeNearest,
		},
	}
	for _, opt := range options {
		opt(m)
	}

	pixels, err := m.stagingData()
	if err != nil {
		return nil, err
	}

	view, err := ctx.Device.CreateTextureWithData(m.name+" Diffuse Texture", pixels)
	if err != nil {
		return nil, fmt.Errorf("failed to create diffuse texture: %w", err)
	}

	desc := m.samplerDesc
	desc.Label = common.Coalesce(desc.Label, m.name+" Sampler")
	sampler, err := ctx.Device.CreateSampler(desc)
	if err != nil {
		view.Release()
		return nil, fmt.Errorf("failed to create diffuse sampler: %w", err)
	}

	provider := bind_group_provider.NewBindGroupProvider(m.name,
		bind_group_provider.WithLayoutEntry(gpu.BindGroupLayoutEntry{
			Binding:    DiffuseTextureBinding,
			Visibility: gpu.ShaderStageFragment,
			Type:       gpu.BindingTypeTexture,
		}),
		bind_group_provider.WithLayoutEntry(gpu.BindGroupLayoutEntry{
			Binding:    DiffuseSamplerBinding,
			Visibility: gpu.ShaderStageFragment,
			Type:       gpu.BindingTypeSampler,
		}),
		bind_group_provider.WithTextureView(DiffuseTextureBinding, view),
		bind_group_provider.WithSampler(DiffuseSamplerBinding, sampler),
	)
	if err := provider.Init(ctx.Device); err != nil {
		provider.Release()
		return nil, fmt.Errorf("failed to init material %s: %w", m.name, err)
	}
	m.bindGroupProvider = provider

	common.Logger().Debug("material created", "name", m.name, "width", pixels.Width, "height", pixels.Height)
	return m, nil
}

// stagingData decodes the diffuse texture or generates the fallback checkerboard.
func (m *material) stagingData() (common.TextureStagingData, error) {
	if m.diffuseTexture == nil {
		return common.Checkerboard(256, 32, fallbackLight, fallbackDark), nil
	}
	data, err := m.diffuseTexture.Decode()
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to decode diffuse texture for %s: %w", m.name, err)
	}
	return data, nil
}

func (m *material) Name() string {
	return m.name
}

func (m *material) DiffuseTexture() *common.ImportedTexture {
	return m.diffuseTexture
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) BindGroupLayout() gpu.BindGroupLayout {
	return m.bindGroupProvider.BindGroupLayout()
}

func (m *material) BindGroup() gpu.BindGroup {
	return m.bindGroupProvider.BindGroup()
}

func (m *material) LayoutEntries() []gpu.BindGroupLayoutEntry {
	return m.bindGroupProvider.LayoutEntries()
}

func (m *material) Release() {
	if m.bindGroupProvider != nil {
		m.bindGroupProvider.Release()
	}
}
