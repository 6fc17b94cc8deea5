package gpu

// FrameTarget is an acquired presentable frame.
// Exactly one of Present or Release must be called once the frame is no longer needed.
type FrameTarget interface {
	// View returns the render target view for this frame.
	View() TextureView

	// Present queues the frame for display and releases it.
	Present()

	// Release drops the frame without presenting it.
	Release()
}

// Surface is the presentation target of a window.
type Surface interface {
	// AcquireNextFrame returns the next frame to render into.
	// Failures wrap one of ErrSurfaceTimeout, ErrSurfaceOutdated, ErrSurfaceLost or
	// ErrSurfaceOutOfMemory; see ClassifyFrameError.
	//
	// Returns:
	//   - FrameTarget: the acquired frame
	//   - error: error if no frame could be acquired
	AcquireNextFrame() (FrameTarget, error)

	// Rebuild reconfigures the surface at a new size in pixels.
	//
	// Parameters:
	//   - width, height: new size in pixels, both non-zero
	//
	// Returns:
	//   - error: error if the surface could not be configured
	Rebuild(width, height int) error
}
