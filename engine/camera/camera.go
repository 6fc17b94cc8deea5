package camera

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrDegenerateCamera is returned when the eye and target coincide, the up vector is zero
	// or parallel to the viewing direction, or a computation would produce NaN/Inf.
	ErrDegenerateCamera = errors.New("camera: degenerate view geometry")

	// ErrInvalidProjection is returned when the projection parameters are out of range.
	ErrInvalidProjection = errors.New("camera: invalid projection parameters")

	// ErrInvalidViewport is returned when a viewport dimension is not positive.
	ErrInvalidViewport = errors.New("camera: invalid viewport size")
)

// Camera is the geometric and projection model of the view.
// It holds no GPU state and never allocates; CameraState handles synchronization.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	// Aspect is width / height.
	Aspect float32
	// FovYDegrees is the vertical field of view in degrees.
	FovYDegrees float32
	ZNear       float32
	ZFar        float32
}

// NewCamera creates a Camera at (0, 1, 2) looking at the origin with +Y up,
// a 45 degree vertical field of view and clip planes at 0.1 and 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := Camera{
		Eye:         mgl32.Vec3{0, 1, 2},
		Target:      mgl32.Vec3{0, 0, 0},
		Up:          mgl32.Vec3{0, 1, 0},
		Aspect:      1.0,
		FovYDegrees: 45.0,
		ZNear:       0.1,
		ZFar:        100.0,
	}
	for _, option := range options {
		option(&c)
	}
	return c
}

// Validate checks the projection parameters and the view geometry.
//
// Returns:
//   - error: ErrInvalidProjection or ErrDegenerateCamera wrapped with detail, or nil
func (c *Camera) Validate() error {
	if !(c.Aspect > 0) {
		return fmt.Errorf("%w: aspect %v", ErrInvalidProjection, c.Aspect)
	}
	if !(c.FovYDegrees > 0 && c.FovYDegrees < 180) {
		return fmt.Errorf("%w: fovy %v", ErrInvalidProjection, c.FovYDegrees)
	}
	if !(c.ZNear > 0) || !(c.ZFar > c.ZNear) {
		return fmt.Errorf("%w: near %v far %v", ErrInvalidProjection, c.ZNear, c.ZFar)
	}
	if !common.IsFiniteVec3(c.Eye) || !common.IsFiniteVec3(c.Target) || !common.IsFiniteVec3(c.Up) {
		return fmt.Errorf("%w: non-finite eye, target or up", ErrDegenerateCamera)
	}

	forward := c.Target.Sub(c.Eye)
	if forward.Len() < common.Epsilon {
		return fmt.Errorf("%w: eye %v equals target", ErrDegenerateCamera, c.Eye)
	}
	if c.Up.Len() < common.Epsilon {
		return fmt.Errorf("%w: zero up vector", ErrDegenerateCamera)
	}
	if forward.Normalize().Cross(c.Up.Normalize()).Len() < common.Epsilon {
		return fmt.Errorf("%w: up is parallel to the view direction", ErrDegenerateCamera)
	}
	return nil
}

// BuildViewProjection computes ClipCorrection * Perspective * LookAt from the current fields.
// It has no side effects and never returns a matrix containing NaN or Inf.
//
// Returns:
//   - mgl32.Mat4: the column-major view-projection matrix
//   - error: error if the camera fails Validate
func (c *Camera) BuildViewProjection() (mgl32.Mat4, error) {
	if err := c.Validate(); err != nil {
		return mgl32.Ident4(), err
	}

	view := mgl32.LookAtV(c.Eye, c.Target, c.Up)
	proj := mgl32.Perspective(mgl32.DegToRad(c.FovYDegrees), c.Aspect, c.ZNear, c.ZFar)
	vp := common.ClipCorrection.Mul4(proj).Mul4(view)

	if !common.IsFiniteMat4(vp) {
		return mgl32.Ident4(), fmt.Errorf("%w: view-projection is not finite", ErrDegenerateCamera)
	}
	return vp, nil
}

// UpdateAspectRatio sets Aspect to width / height. Eye, target and up are untouched.
//
// Parameters:
//   - width, height: the viewport size in pixels
//
// Returns:
//   - error: ErrInvalidViewport if either dimension is not positive; the camera is unchanged
func (c *Camera) UpdateAspectRatio(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	c.Aspect = float32(width) / float32(height)
	return nil
}

// Distance returns |eye - target|.
func (c Camera) Distance() float32 {
	return c.Target.Sub(c.Eye).Len()
}
