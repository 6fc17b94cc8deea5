package common

// Event is a window or input event delivered by the host event loop.
// Concrete types are KeyEvent, ResizeEvent, FocusEvent and CloseEvent.
type Event interface {
	isEvent()
}

// KeyEvent reports a keyboard key press or release.
// Auto-repeat events are delivered with Pressed set to true.
type KeyEvent struct {
	// Code is the GLFW key code, see the Key* constants.
	Code uint32
	// Pressed is true for press and repeat, false for release.
	Pressed bool
}

// ResizeEvent reports a new framebuffer size in pixels.
// Sent for both window resizes and content scale changes.
type ResizeEvent struct {
	Width  int
	Height int
}

// FocusEvent reports the window gaining or losing input focus.
type FocusEvent struct {
	Focused bool
}

// CloseEvent reports that the user asked to close the window.
type CloseEvent struct{}

func (KeyEvent) isEvent()    {}
func (ResizeEvent) isEvent() {}
func (FocusEvent) isEvent()  {}
func (CloseEvent) isEvent()  {}
