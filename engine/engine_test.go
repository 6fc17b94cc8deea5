package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/camera"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-instanced/engine/profiler"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedEvents returns one batch per PollEvents call, then empty batches.
type scriptedEvents struct {
	batches [][]common.Event
	stopped bool
}

func (s *scriptedEvents) PollEvents() []common.Event {
	if len(s.batches) == 0 {
		return nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b
}

func (s *scriptedEvents) IsRunning() bool { return !s.stopped }

type fakeRenderer struct {
	renderer.Renderer

	cam       camera.CameraState
	frameErrs []error
	frames    int
	resizes   [][2]int
	resizeErr error
}

func (r *fakeRenderer) HandleInput(ev common.KeyEvent) bool { return r.cam.OnInput(ev) }

func (r *fakeRenderer) Resize(w, h int) error {
	if r.resizeErr != nil {
		return r.resizeErr
	}
	r.resizes = append(r.resizes, [2]int{w, h})
	return nil
}

func (r *fakeRenderer) Frame() error {
	r.frames++
	if len(r.frameErrs) > 0 {
		err := r.frameErrs[0]
		r.frameErrs = r.frameErrs[1:]
		return err
	}
	return nil
}

func (r *fakeRenderer) Camera() camera.CameraState { return r.cam }

func newFakeRenderer(t *testing.T) *fakeRenderer {
	t.Helper()
	cam, err := camera.NewCameraState(gputest.NewRecorder().Context(), 800, 600)
	require.NoError(t, err)
	return &fakeRenderer{cam: cam}
}

func press(code uint32) common.KeyEvent { return common.KeyEvent{Code: code, Pressed: true} }

func TestStepRendersAndForwardsInput(t *testing.T) {
	r := newFakeRenderer(t)
	events := &scriptedEvents{batches: [][]common.Event{{press(common.KeyW)}}}
	e := NewEngine(events, r)

	more, err := e.Step()
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 1, r.frames)
	assert.True(t, r.cam.Controller().Active(camera.CommandForward))
}

func TestEscapeQuitsBeforeRendering(t *testing.T) {
	r := newFakeRenderer(t)
	events := &scriptedEvents{batches: [][]common.Event{{press(common.KeyEsc)}}}
	e := NewEngine(events, r)

	more, err := e.Step()
	require.NoError(t, err)
	assert.False(t, more)
	assert.Zero(t, r.frames)

	// stays stopped
	more, _ = e.Step()
	assert.False(t, more)
}

func TestEscapeReleaseDoesNotQuit(t *testing.T) {
	r := newFakeRenderer(t)
	events := &scriptedEvents{batches: [][]common.Event{{common.KeyEvent{Code: common.KeyEsc}}}}
	more, err := NewEngine(events, r).Step()
	require.NoError(t, err)
	assert.True(t, more)
}

func TestCloseQuits(t *testing.T) {
	r := newFakeRenderer(t)
	events := &scriptedEvents{batches: [][]common.Event{{common.CloseEvent{}}}}
	more, err := NewEngine(events, r).Step()
	require.NoError(t, err)
	assert.False(t, more)
}

func TestResizeEvents(t *testing.T) {
	r := newFakeRenderer(t)
	events := &scriptedEvents{batches: [][]common.Event{{
		common.ResizeEvent{Width: 1024, Height: 768},
		common.ResizeEvent{Width: 1280, Height: 720},
	}}}
	more, err := NewEngine(events, r).Step()
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, [][2]int{{1024, 768}, {1280, 720}}, r.resizes)

	r.resizeErr = errors.New("configure failed")
	events.batches = [][]common.Event{{common.ResizeEvent{Width: 1, Height: 1}}}
	e := NewEngine(events, r)
	more, err = e.Step()
	require.Error(t, err)
	assert.False(t, more)
}

func TestFocusLossResetsController(t *testing.T) {
	r := newFakeRenderer(t)
	events := &scriptedEvents{batches: [][]common.Event{
		{press(common.KeyW), press(common.KeyA)},
		{common.FocusEvent{Focused: true}},
		{common.FocusEvent{Focused: false}},
	}}
	e := NewEngine(events, r)

	_, err := e.Step()
	require.NoError(t, err)
	_, err = e.Step()
	require.NoError(t, err)
	assert.True(t, r.cam.Controller().Active(camera.CommandForward))

	_, err = e.Step()
	require.NoError(t, err)
	assert.False(t, r.cam.Controller().Active(camera.CommandForward))
	assert.False(t, r.cam.Controller().Active(camera.CommandLeft))
}

func TestFrameErrors(t *testing.T) {
	t.Run("degenerate camera keeps running", func(t *testing.T) {
		r := newFakeRenderer(t)
		r.frameErrs = []error{fmt.Errorf("update: %w", camera.ErrDegenerateCamera)}
		e := NewEngine(&scriptedEvents{}, r)

		more, err := e.Step()
		require.NoError(t, err)
		assert.True(t, more)
	})

	t.Run("fatal frame stops", func(t *testing.T) {
		r := newFakeRenderer(t)
		r.frameErrs = []error{fmt.Errorf("%w: out of memory", renderer.ErrFatalFrame)}
		e := NewEngine(&scriptedEvents{}, r)

		more, err := e.Step()
		require.ErrorIs(t, err, renderer.ErrFatalFrame)
		assert.False(t, more)
	})
}

func TestRun(t *testing.T) {
	t.Run("returns when the event source stops", func(t *testing.T) {
		r := newFakeRenderer(t)
		events := &scriptedEvents{}
		calls := 0
		e := NewEngine(events, r, WithFrameCallback(func(float32) {
			calls++
			if calls == 3 {
				events.stopped = true
			}
		}))

		require.NoError(t, e.Run(context.Background()))
		assert.Equal(t, 3, r.frames)
	})

	t.Run("returns the fatal error", func(t *testing.T) {
		r := newFakeRenderer(t)
		r.frameErrs = []error{nil, renderer.ErrFatalFrame}
		err := NewEngine(&scriptedEvents{}, r).Run(context.Background())
		require.ErrorIs(t, err, renderer.ErrFatalFrame)
		assert.Equal(t, 2, r.frames)
	})

	t.Run("cancelled context quits", func(t *testing.T) {
		r := newFakeRenderer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := NewEngine(&scriptedEvents{}, r)

		require.NoError(t, e.Run(ctx))
		assert.Zero(t, r.frames)
		more, _ := e.Step()
		assert.False(t, more)
	})

	t.Run("quit from callback", func(t *testing.T) {
		r := newFakeRenderer(t)
		var e Engine
		e = NewEngine(&scriptedEvents{}, r, WithFrameCallback(func(float32) {
			e.Quit()
			e.Quit()
		}))
		require.NoError(t, e.Run(context.Background()))
		assert.Equal(t, 1, r.frames)
	})
}

func TestProfilerTicksWhenEnabled(t *testing.T) {
	r := newFakeRenderer(t)
	now := time.Unix(0, 0)
	p := profiler.NewProfiler(profiler.WithInterval(time.Second), profiler.WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))
	e := NewEngine(&scriptedEvents{}, r, WithProfiler(p))

	_, err := e.Step()
	require.NoError(t, err)
	assert.Zero(t, p.Last().FPS)

	e.EnableProfiler()
	_, err = e.Step()
	require.NoError(t, err)
	assert.Greater(t, p.Last().FPS, 0.0)

	e.DisableProfiler()
	before := p.Last()
	_, err = e.Step()
	require.NoError(t, err)
	assert.Equal(t, before, p.Last())
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := NewEngine(&scriptedEvents{}, newFakeRenderer(t), WithRenderFrameLimit(50)).(*engine)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
	e.SetRenderFrameLimit(4)
	assert.Equal(t, 250*time.Millisecond, e.renderFrameLimit)
}
