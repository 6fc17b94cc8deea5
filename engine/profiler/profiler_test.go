package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second))

	for i := 0; i < 49; i++ {
		clock.advance(20 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, p.Last().FPS)

	clock.advance(20 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 50.0, p.Last().FPS, 1e-9)
	assert.Greater(t, p.Last().SysMB, 0.0)

	// counter resets after a report
	clock.advance(500 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.advance(500 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 2.0, p.Last().FPS, 1e-9)
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithInterval(-time.Second))
	assert.Equal(t, time.Second, p.updateInterval)
}
