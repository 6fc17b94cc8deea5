package gpu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSurfaceTimeout means no frame became available in time.
	ErrSurfaceTimeout = errors.New("surface frame acquisition timed out")
	// ErrSurfaceOutdated means the surface no longer matches the window and the frame was dropped.
	ErrSurfaceOutdated = errors.New("surface is outdated")
	// ErrSurfaceLost means the surface must be reconfigured before it can be used again.
	ErrSurfaceLost = errors.New("surface lost")
	// ErrSurfaceOutOfMemory means the device ran out of memory acquiring a frame.
	ErrSurfaceOutOfMemory = errors.New("surface out of memory")
)

// FrameErrorKind groups frame acquisition failures by how the caller recovers.
type FrameErrorKind int

const (
	// FrameOK means no error.
	FrameOK FrameErrorKind = iota
	// FrameTransient failures are skipped; the next frame retries.
	FrameTransient
	// FrameRecoverable failures need the surface rebuilt at the last known size.
	FrameRecoverable
	// FrameFatal failures end the frame loop.
	FrameFatal
)

func (k FrameErrorKind) String() string {
	switch k {
	case FrameOK:
		return "ok"
	case FrameTransient:
		return "transient"
	case FrameRecoverable:
		return "recoverable"
	case FrameFatal:
		return "fatal"
	}
	return "unknown"
}

// ClassifyFrameError maps a frame acquisition error onto its recovery class.
// Unrecognized errors are fatal.
//
// Parameters:
//   - err: the error returned by Surface.AcquireNextFrame
//
// Returns:
//   - FrameErrorKind: the recovery class
func ClassifyFrameError(err error) FrameErrorKind {
	switch {
	case err == nil:
		return FrameOK
	case errors.Is(err, ErrSurfaceTimeout), errors.Is(err, ErrSurfaceOutdated):
		return FrameTransient
	case errors.Is(err, ErrSurfaceLost):
		return FrameRecoverable
	default:
		return FrameFatal
	}
}

// ErrorFromSurfaceStatus wraps a WebGPU surface texture status (e.g. "Timeout", "Outdated",
// "Lost", "OutOfMemory", "DeviceLost") in the matching sentinel. Unknown statuses are
// returned as a plain error, which ClassifyFrameError treats as fatal.
//
// Parameters:
//   - status: the status text reported by the backend
//
// Returns:
//   - error: the wrapped error
func ErrorFromSurfaceStatus(status string) error {
	s := strings.ToLower(strings.ReplaceAll(status, "_", ""))
	switch {
	case strings.Contains(s, "timeout"):
		return fmt.Errorf("%w (%s)", ErrSurfaceTimeout, status)
	case strings.Contains(s, "outdated"):
		return fmt.Errorf("%w (%s)", ErrSurfaceOutdated, status)
	case strings.Contains(s, "outofmemory"), strings.Contains(s, "out of memory"):
		return fmt.Errorf("%w (%s)", ErrSurfaceOutOfMemory, status)
	case strings.Contains(s, "devicelost"), strings.Contains(s, "device lost"):
		return fmt.Errorf("device lost acquiring frame: %s", status)
	case strings.Contains(s, "lost"):
		return fmt.Errorf("%w (%s)", ErrSurfaceLost, status)
	}
	return fmt.Errorf("frame acquisition failed: %s", status)
}
