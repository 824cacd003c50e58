package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueue_DrainPreservesOrder(t *testing.T) {
	eq := NewEventQueue()
	fired := []Event{
		{Code: EVENT_CODE_MOUSE_MOVED, X: 10, Y: 20, Width: 100, Height: 100},
		{Code: EVENT_CODE_RESIZED, Width: 640, Height: 480},
		{Code: EVENT_CODE_MOUSE_MOVED, X: 1, Y: 2, Width: 640, Height: 480},
		{Code: EVENT_CODE_APPLICATION_QUIT},
	}
	for _, e := range fired {
		eq.Fire(e)
	}
	assert.Equal(t, len(fired), eq.Len())

	var got []Event
	eq.Drain(func(e Event) { got = append(got, e) })
	assert.Equal(t, fired, got)
	assert.Zero(t, eq.Len())
}

func TestEventQueue_ManyEventsAreKept(t *testing.T) {
	eq := NewEventQueue()
	for i := 0; i < 1000; i++ {
		eq.Fire(Event{Code: EVENT_CODE_MOUSE_MOVED, X: float64(i)})
	}
	eq.Fire(Event{Code: EVENT_CODE_APPLICATION_QUIT})

	count := 0
	var last Event
	eq.Drain(func(e Event) {
		count++
		last = e
	})
	assert.Equal(t, 1001, count)
	assert.Equal(t, EVENT_CODE_APPLICATION_QUIT, last.Code)
}

func TestEventCode_String(t *testing.T) {
	assert.Equal(t, "quit", EVENT_CODE_APPLICATION_QUIT.String())
	assert.Equal(t, "mouse_moved", EVENT_CODE_MOUSE_MOVED.String())
	assert.Equal(t, "resized", EVENT_CODE_RESIZED.String())
	assert.Equal(t, "unknown", EventCode(0).String())
}
