package camera

import "github.com/Carmen-Shannon/oxy-instanced/common"

// CameraController turns key input into camera motion. It tracks which movement
// commands are held and, once per tick, dollies the eye along the view axis or
// orbits it around the target at constant distance.
type CameraController interface {
	// ProcessInput records a key press or release.
	//
	// Parameters:
	//   - ev: the key event
	//
	// Returns:
	//   - bool: true iff the key is bound to a movement command
	ProcessInput(ev common.KeyEvent) bool

	// Update applies the held commands to cam's eye, in order: forward dolly,
	// backward dolly, right orbit, left orbit. MoveUp and MoveDown are tracked but
	// do not move the eye. On error cam is left unchanged.
	//
	// The forward step is min(speed, distance-speed), so near the target it is
	// shorter than a full speed step and the eye never ends closer than speed.
	// Forward does nothing once the distance is speed or less.
	//
	// Parameters:
	//   - cam: the camera to mutate
	//
	// Returns:
	//   - error: ErrDegenerateCamera if eye and target coincide or the result is not finite
	Update(cam *Camera) error

	// Active reports whether cmd is currently held.
	//
	// Parameters:
	//   - cmd: the command to query
	//
	// Returns:
	//   - bool: true if the command is held
	Active(cmd Command) bool

	// Reset releases every held command.
	Reset()

	// Speed returns the per-tick step size.
	//
	// Returns:
	//   - float32: the speed
	Speed() float32
}
