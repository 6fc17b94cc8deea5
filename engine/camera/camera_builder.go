package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*Camera)

// WithEye sets the camera's world-space position.
//
// Parameters:
//   - x, y, z: eye position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the eye position
func WithEye(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Eye = mgl32.Vec3{x, y, z}
	}
}

// WithTarget sets the look-at point.
//
// Parameters:
//   - x, y, z: world-space target position
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Target = mgl32.Vec3{x, y, z}
	}
}

// WithUp sets the camera's up vector. The vector is normalized; a zero vector is
// kept as-is and rejected later by Validate.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *Camera) {
		up := mgl32.Vec3{x, y, z}
		if up.Len() > 0 {
			up = up.Normalize()
		}
		c.Up = up
	}
}

// WithFovY sets the vertical field of view in degrees.
//
// Parameters:
//   - degrees: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFovY(degrees float32) CameraBuilderOption {
	return func(c *Camera) {
		c.FovYDegrees = degrees
	}
}

// WithNearFar sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithNearFar(near, far float32) CameraBuilderOption {
	return func(c *Camera) {
		c.ZNear = near
		c.ZFar = far
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Aspect = aspect
	}
}
