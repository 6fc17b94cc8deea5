package camera

// CameraStateOption is a functional option for configuring a CameraState.
type CameraStateOption func(*cameraStateImpl)

// WithCamera sets the initial camera. Its aspect ratio is overwritten from the
// viewport size passed to NewCameraState.
//
// Parameters:
//   - cam: the camera to start from
//
// Returns:
//   - CameraStateOption: functional option to set the camera
func WithCamera(cam Camera) CameraStateOption {
	return func(s *cameraStateImpl) {
		s.camera = cam
	}
}

// WithController attaches a controller. Defaults to NewCameraController().
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraStateOption: functional option to set the controller
func WithController(ctrl CameraController) CameraStateOption {
	return func(s *cameraStateImpl) {
		s.controller = ctrl
	}
}

// WithLabel overrides the generated debug label.
func WithLabel(label string) CameraStateOption {
	return func(s *cameraStateImpl) {
		if label != "" {
			s.label = label
		}
	}
}
