package pipeline

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/shader"
)

// validate checks reflected shaders against the configured layouts. Shaders that were
// not reflected (SPIR-V) are trusted as-is.
func (p *pipeline) validate() error {
	provided := make(map[uint32]gpu.VertexFormat)
	for slot, vb := range p.vertexBuffers {
		for _, attr := range vb.Attributes {
			if _, dup := provided[attr.ShaderLocation]; dup {
				return fmt.Errorf("%w: location %d provided twice (slot %d)", ErrLayoutMismatch, attr.ShaderLocation, slot)
			}
			provided[attr.ShaderLocation] = attr.Format
		}
	}

	if p.vertexShader.Reflected() {
		inputs := p.vertexShader.VertexInputs()
		for _, loc := range slices.Sorted(maps.Keys(inputs)) {
			format := inputs[loc]
			got, ok := provided[loc]
			if !ok {
				return fmt.Errorf("%w: vertex input location %d has no buffer attribute", ErrLayoutMismatch, loc)
			}
			if got != format {
				return fmt.Errorf("%w: vertex input location %d format %d, buffer provides %d", ErrLayoutMismatch, loc, format, got)
			}
		}
	}

	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if !s.Reflected() {
			continue
		}
		groups := s.BindGroupLayouts()
		for _, group := range slices.Sorted(maps.Keys(groups)) {
			entries := groups[group]
			if group >= len(p.bindGroups) {
				return fmt.Errorf("%w: %s uses group %d, pipeline has %d", ErrLayoutMismatch, s.Key(), group, len(p.bindGroups))
			}
			for _, want := range entries {
				if !hasBinding(p.bindGroups[group].LayoutEntries(), want) {
					return fmt.Errorf("%w: %s group %d binding %d (%s) not in layout", ErrLayoutMismatch, s.Key(), group, want.Binding, s.BindGroupVarName(group, int(want.Binding)))
				}
			}
		}
	}
	return nil
}

// hasBinding reports whether entries contain want's binding with the same type and
// visible to want's stage.
func hasBinding(entries []gpu.BindGroupLayoutEntry, want gpu.BindGroupLayoutEntry) bool {
	for _, e := range entries {
		if e.Binding == want.Binding && e.Type == want.Type && e.Visibility&want.Visibility != 0 {
			return true
		}
	}
	return false
}
