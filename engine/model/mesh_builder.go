package model

// MeshOption is a functional option for configuring a Mesh via NewMesh.
type MeshOption func(*mesh)

// WithLabel is an option builder that sets the debug label of the Mesh buffers.
//
// Parameters:
//   - label: the label prefix for the vertex and index buffers
//
// Returns:
//   - MeshOption: a function that applies the label option to a mesh
func WithLabel(label string) MeshOption {
	return func(m *mesh) {
		if label != "" {
			m.label = label
		}
	}
}
