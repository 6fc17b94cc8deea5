package bind_group_provider

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
)

// ErrMissingResource is returned by Init when a layout entry has no matching resource.
var ErrMissingResource = errors.New("bind group provider: no resource for binding")

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label, also used to derive the layout and group labels.
	label string

	// layoutEntries describes the shape of the bind group, one entry per binding.
	layoutEntries []gpu.BindGroupLayoutEntry

	// The following fields are GPU allocated resources owned by the provider and released with it.

	// bindGroup is the GPU bind group, or nil before Init.
	bindGroup gpu.BindGroup
	// bindGroupLayout is the GPU bind group layout, or nil before Init.
	bindGroupLayout gpu.BindGroupLayout
	// buffers holds the GPU buffers for this provider, keyed by binding index.
	buffers map[int]gpu.Buffer
	// textureViews holds the GPU texture views for this provider, keyed by binding index.
	textureViews map[int]gpu.TextureView
	// samplers holds the GPU samplers for this provider, keyed by binding index.
	samplers map[int]gpu.Sampler
}

// BindGroupProvider owns one bind group, its layout and the resources bound into it.
// Components (CameraState, Material) describe their bindings with layout entries and
// resources, then call Init once to create the layout and group on the device.
//
// Usage pattern:
//  1. Component creates the resources (buffers, textures, samplers) it binds
//  2. Component creates a provider with WithLayoutEntry/WithBuffer/... options
//  3. Component calls Init(device) to create the layout and bind group
//  4. Component writes uniforms through WriteBuffers and hands BindGroup() to the renderer
type BindGroupProvider interface {
	// Init creates the bind group layout and bind group from the configured layout entries
	// and resources. Calling Init again is a no-op.
	//
	// Parameters:
	//   - device: the device used to create the layout and group
	//
	// Returns:
	//   - error: ErrMissingResource or a device error
	Init(device gpu.Device) error

	// Release releases the bind group, its layout and every owned resource.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// LayoutEntries returns the layout entries sorted by binding.
	//
	// Returns:
	//   - []gpu.BindGroupLayoutEntry: a copy of the layout entries
	LayoutEntries() []gpu.BindGroupLayoutEntry

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if Init has not run.
	//
	// Returns:
	//   - gpu.BindGroup: the bind group or nil
	BindGroup() gpu.BindGroup

	// BindGroupLayout returns the created bind group layout for this provider.
	// Returns nil if Init has not run.
	//
	// Returns:
	//   - gpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() gpu.BindGroupLayout

	// Buffer returns the buffer bound at binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.Buffer: the buffer or nil
	Buffer(binding int) gpu.Buffer

	// TextureView returns the texture view bound at binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.TextureView: the texture view or nil
	TextureView(binding int) gpu.TextureView

	// Sampler returns the sampler bound at binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.Sampler: the sampler or nil
	Sampler(binding int) gpu.Sampler
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
// GPU objects are not created until Init.
//
// Parameters:
//   - label: the debug label for the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new provider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]gpu.Buffer),
		textureViews: make(map[int]gpu.TextureView),
		samplers:     make(map[int]gpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	sort.Slice(p.layoutEntries, func(i, j int) bool {
		return p.layoutEntries[i].Binding < p.layoutEntries[j].Binding
	})
	return p
}

func (p *bindGroupProvider) Init(device gpu.Device) error {
	if p.bindGroup != nil {
		return nil
	}

	entries := make([]gpu.BindGroupEntry, 0, len(p.layoutEntries))
	for _, le := range p.layoutEntries {
		binding := int(le.Binding)
		entry := gpu.BindGroupEntry{Binding: le.Binding}
		switch le.Type {
		case gpu.BindingTypeUniformBuffer:
			entry.Buffer = p.buffers[binding]
			if entry.Buffer == nil {
				return fmt.Errorf("%w %d (uniform buffer) in %q", ErrMissingResource, binding, p.label)
			}
		case gpu.BindingTypeTexture:
			entry.TextureView = p.textureViews[binding]
			if entry.TextureView == nil {
				return fmt.Errorf("%w %d (texture) in %q", ErrMissingResource, binding, p.label)
			}
		case gpu.BindingTypeSampler:
			entry.Sampler = p.samplers[binding]
			if entry.Sampler == nil {
				return fmt.Errorf("%w %d (sampler) in %q", ErrMissingResource, binding, p.label)
			}
		}
		entries = append(entries, entry)
	}

	layout, err := device.CreateBindGroupLayout(p.label+" Bind Group Layout", p.layoutEntries)
	if err != nil {
		return fmt.Errorf("failed to create bind group layout for %q: %w", p.label, err)
	}
	group, err := device.CreateBindGroup(p.label+" Bind Group", layout, entries)
	if err != nil {
		layout.Release()
		return fmt.Errorf("failed to create bind group for %q: %w", p.label, err)
	}

	p.bindGroupLayout = layout
	p.bindGroup = group
	common.Logger().Debug("bind group created", "label", p.label, "bindings", len(entries))
	return nil
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) LayoutEntries() []gpu.BindGroupLayoutEntry {
	out := make([]gpu.BindGroupLayoutEntry, len(p.layoutEntries))
	copy(out, p.layoutEntries)
	return out
}

func (p *bindGroupProvider) BindGroup() gpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() gpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) gpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) gpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) gpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for i, tv := range p.textureViews {
		if tv != nil {
			tv.Release()
		}
		delete(p.textureViews, i)
	}
	for i, s := range p.samplers {
		if s != nil {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
}
