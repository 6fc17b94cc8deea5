package camera

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	keyMap KeyMap
	active [commandCount]bool

	// speed is both the dolly distance and the orbit blend factor per tick.
	speed float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller with speed 0.2 and DefaultKeyMap.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:     &sync.Mutex{},
		keyMap: DefaultKeyMap(),
		speed:  0.2,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) ProcessInput(ev common.KeyEvent) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cmd, ok := cc.keyMap.Lookup(ev.Code)
	if !ok {
		return false
	}
	cc.active[cmd] = ev.Pressed
	return true
}

func (cc *cameraControllerImpl) Update(cam *Camera) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	forward := cam.Target.Sub(cam.Eye)
	forwardMag := forward.Len()
	if forwardMag < common.Epsilon || !common.IsFiniteVec3(forward) {
		return fmt.Errorf("%w: eye %v equals target", ErrDegenerateCamera, cam.Eye)
	}
	forwardDir := forward.Mul(1 / forwardMag)
	eye := cam.Eye

	// the step is clamped so the eye stops at least one speed short of the target
	if cc.active[CommandForward] && forwardMag > cc.speed {
		step := min(cc.speed, forwardMag-cc.speed)
		eye = eye.Add(forwardDir.Mul(step))
	}
	if cc.active[CommandBackward] {
		eye = eye.Sub(forwardDir.Mul(cc.speed))
	}

	right := forwardDir.Cross(cam.Up)

	forward = cam.Target.Sub(eye)
	forwardMag = forward.Len()

	if cc.active[CommandRight] {
		eye = orbit(cam.Target, forward.Add(right.Mul(cc.speed)), forwardMag, eye)
	}
	if cc.active[CommandLeft] {
		eye = orbit(cam.Target, forward.Sub(right.Mul(cc.speed)), forwardMag, eye)
	}

	if !common.IsFiniteVec3(eye) {
		return fmt.Errorf("%w: update produced a non-finite eye", ErrDegenerateCamera)
	}
	cam.Eye = eye
	return nil
}

func (cc *cameraControllerImpl) Active(cmd Command) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cmd < 0 || cmd >= commandCount {
		return false
	}
	return cc.active[cmd]
}

func (cc *cameraControllerImpl) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.active = [commandCount]bool{}
}

func (cc *cameraControllerImpl) Speed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}

// orbit places the eye on the sphere of radius around target so that dir points from eye to target.
// A zero dir leaves eye where it is.
func orbit(target, dir mgl32.Vec3, radius float32, eye mgl32.Vec3) mgl32.Vec3 {
	if dir.Len() < common.Epsilon {
		return eye
	}
	return target.Sub(dir.Normalize().Mul(radius))
}
