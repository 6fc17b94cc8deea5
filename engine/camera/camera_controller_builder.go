package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithSpeed sets the per-tick step. Non-positive values are ignored.
//
// Parameters:
//   - speed: dolly distance and orbit blend factor per tick
//
// Returns:
//   - CameraControllerOption: functional option to set the speed
func WithSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if speed > 0 {
			cc.speed = speed
		}
	}
}

// WithKeyMap replaces the key bindings.
//
// Parameters:
//   - keyMap: the bindings to use; nil keeps DefaultKeyMap
//
// Returns:
//   - CameraControllerOption: functional option to set the key map
func WithKeyMap(keyMap KeyMap) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if keyMap != nil {
			cc.keyMap = keyMap
		}
	}
}
