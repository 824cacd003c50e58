package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_FPSAfterOneSecond(t *testing.T) {
	m := NewMetrics()
	refreshed := false
	// 61 frames of 1/60s crosses the one second mark exactly once.
	for i := 0; i < 61; i++ {
		if m.Update(1.0 / 60.0) {
			refreshed = true
		}
	}
	assert.True(t, refreshed)
	assert.InDelta(t, 61, m.FPS(), 1)
	assert.InDelta(t, 1000.0/60.0, m.FrameTime(), 0.01)

	fps, ms := m.Frame()
	assert.Equal(t, m.FPS(), fps)
	assert.Equal(t, m.FrameTime(), ms)
}

func TestMetrics_NoFPSBeforeOneSecond(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 10; i++ {
		assert.False(t, m.Update(0.01))
	}
	assert.Zero(t, m.FPS())
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	first := c.Elapsed()
	assert.Greater(t, first, 0.0)

	c.Stop()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	assert.Equal(t, first, c.Elapsed())
}

func TestParseLogLevel(t *testing.T) {
	l, err := ParseLogLevel("debug")
	assert.NoError(t, err)
	assert.Equal(t, DebugLevel, l)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}
