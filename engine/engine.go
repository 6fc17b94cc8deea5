package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/camera"
	"github.com/Carmen-Shannon/oxy-instanced/engine/profiler"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer"
)

// EventSource delivers window and input events. window.Window satisfies it.
type EventSource interface {
	PollEvents() []common.Event
	IsRunning() bool
}

// engine implements the Engine interface.
type engine struct {
	events   EventSource
	renderer renderer.Renderer

	quitChannel chan struct{}
	quitOnce    sync.Once

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	frameCallback    func(deltaTime float32)
}

// Engine runs the single-threaded frame loop: poll events, update the camera, render.
type Engine interface {
	// Run drives the loop until Quit is called, the event source stops, ctx is cancelled
	// or a frame fails fatally.
	//
	// Parameters:
	//   - ctx: cancels the loop between frames
	//
	// Returns:
	//   - error: the fatal frame or resize error, nil on a normal quit
	Run(ctx context.Context) error

	// Step runs one iteration of the loop.
	//
	// Returns:
	//   - bool: false once the loop should stop
	//   - error: the fatal error that stopped it, if any
	Step() (bool, error)

	// Quit asks the loop to stop after the current frame. Safe to call multiple times.
	Quit()

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)
}

var _ Engine = &engine{}

// NewEngine creates a new Engine over an event source and a renderer.
//
// Parameters:
//   - events: the window or any other event source
//   - r: the frame renderer
//   - options: functional options for engine configuration (profiling, frame limit, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(events EventSource, r renderer.Renderer, options ...EngineBuilderOption) Engine {
	e := &engine{
		events:      events,
		renderer:    r,
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Run(ctx context.Context) error {
	common.Logger().Info("engine loop started")
	defer common.Logger().Info("engine loop stopped")

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.Quit()
			return nil
		default:
		}

		start := time.Now()
		more, err := e.Step()
		if err != nil || !more {
			return err
		}

		if e.frameCallback != nil {
			e.frameCallback(float32(start.Sub(last).Seconds()))
		}
		last = start

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) Step() (bool, error) {
	if e.quitting() || !e.events.IsRunning() {
		return false, nil
	}

	for _, ev := range e.events.PollEvents() {
		if err := e.handleEvent(ev); err != nil {
			e.Quit()
			return false, err
		}
	}
	if e.quitting() {
		return false, nil
	}

	if err := e.renderer.Frame(); err != nil {
		if !errors.Is(err, camera.ErrDegenerateCamera) {
			e.Quit()
			return false, err
		}
		common.Logger().Warn("skipping frame", "err", err)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return true, nil
}

// handleEvent routes one event. Key events go to the camera first; Escape only quits
// when the camera did not consume it.
func (e *engine) handleEvent(ev common.Event) error {
	switch ev := ev.(type) {
	case common.KeyEvent:
		if e.renderer.HandleInput(ev) {
			return nil
		}
		if ev.Code == common.KeyEsc && ev.Pressed {
			common.Logger().Info("escape pressed, quitting")
			e.Quit()
		}
	case common.ResizeEvent:
		return e.renderer.Resize(ev.Width, ev.Height)
	case common.FocusEvent:
		if !ev.Focused {
			e.renderer.Camera().Controller().Reset()
		}
	case common.CloseEvent:
		common.Logger().Info("close requested")
		e.Quit()
	}
	return nil
}

// Quit closes the quit channel; sync.Once makes repeat calls no-ops.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
