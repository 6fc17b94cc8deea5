package wgpu_backend

import "github.com/cogentcore/webgpu/wgpu"

// BackendBuilderOption is a functional option for configuring a Backend.
type BackendBuilderOption func(*backendImpl)

// WithPresentMode sets how frames are presented. Defaults to PresentModeVSync.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - BackendBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(b *backendImpl) {
		switch mode {
		case PresentModeUncapped:
			b.presentMode = wgpu.PresentModeImmediate
		default:
			b.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: if true, only a fallback adapter is accepted
//
// Returns:
//   - BackendBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) BackendBuilderOption {
	return func(b *backendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithDeviceLabel sets the debug label of the logical device.
func WithDeviceLabel(label string) BackendBuilderOption {
	return func(b *backendImpl) {
		b.deviceLabel = label
	}
}
