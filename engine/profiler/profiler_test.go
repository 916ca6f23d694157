package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfilerTick(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var logs bytes.Buffer
	p := NewProfiler(
		WithClock(clock.now),
		WithInterval(time.Second),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	for i := range 9 {
		p.Begin()
		clock.advance(time.Duration(i+1) * time.Millisecond)
		p.End()
		clock.advance(100*time.Millisecond - time.Duration(i+1)*time.Millisecond)
		assert.False(t, p.Tick(5))
	}
	assert.Empty(t, logs.String())

	p.Begin()
	clock.advance(10 * time.Millisecond)
	p.End()
	clock.advance(90 * time.Millisecond)
	require.True(t, p.Tick(7))

	s := p.Last()
	assert.Equal(t, 10, s.Frames)
	assert.InDelta(t, 10, s.FPS, 1e-9)
	assert.Equal(t, 7, s.Nodes)
	assert.Equal(t, 5500*time.Microsecond, s.UpdateMean)
	assert.Equal(t, 10*time.Millisecond, s.UpdateMax)
	assert.Contains(t, logs.String(), "nodes=7")

	clock.advance(10 * time.Millisecond)
	assert.False(t, p.Tick(7))
}

func TestProfilerDefaults(t *testing.T) {
	p := NewProfiler(WithInterval(-1), WithLogger(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotNil(t, p.logger)
}
