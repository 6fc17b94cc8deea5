package instance

// InstanceGridOption is a functional option for configuring an InstanceGrid.
type InstanceGridOption func(*instanceGridImpl)

// WithSpacing sets the distance between neighbouring cells. Defaults to 1.
//
// Parameters:
//   - spacing: cell spacing in world units, must be positive
//
// Returns:
//   - InstanceGridOption: functional option to set the spacing
func WithSpacing(spacing float32) InstanceGridOption {
	return func(g *instanceGridImpl) {
		g.spacing = spacing
	}
}

// WithWorkers sets how many workers pack rows. Defaults to NumCPU-1, minimum 1.
//
// Parameters:
//   - n: worker count; values below 1 are ignored
//
// Returns:
//   - InstanceGridOption: functional option to set the worker count
func WithWorkers(n int) InstanceGridOption {
	return func(g *instanceGridImpl) {
		if n >= 1 {
			g.workers = n
		}
	}
}

// WithLabel overrides the generated debug label.
func WithLabel(label string) InstanceGridOption {
	return func(g *instanceGridImpl) {
		if label != "" {
			g.label = label
		}
	}
}
