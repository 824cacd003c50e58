package core

import "github.com/spaghettifunk/wobble/engine/containers"

type EventCode uint8

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = iota + 1

	// Cursor moved.
	/* Context usage:
	 * f64 x = X, f64 y = Y (window coordinates)
	 * i32 width = Width, i32 height = Height (window size at the time of the move)
	 */
	EVENT_CODE_MOUSE_MOVED

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * i32 width = Width, i32 height = Height
	 */
	EVENT_CODE_RESIZED
)

func (c EventCode) String() string {
	switch c {
	case EVENT_CODE_APPLICATION_QUIT:
		return "quit"
	case EVENT_CODE_MOUSE_MOVED:
		return "mouse_moved"
	case EVENT_CODE_RESIZED:
		return "resized"
	default:
		return "unknown"
	}
}

type Event struct {
	Code   EventCode
	X, Y   float64
	Width  int
	Height int
}

// EventQueue buffers window events between two frames. It is owned by the
// main thread; GLFW callbacks run on that thread during PollEvents.
type EventQueue struct {
	queue *containers.Queue[Event]
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		queue: containers.NewQueue[Event](16),
	}
}

func (eq *EventQueue) Fire(e Event) {
	eq.queue.Enqueue(e)
}

// Drain hands every pending event to fn in the order they were fired.
func (eq *EventQueue) Drain(fn func(Event)) {
	for {
		e, ok := eq.queue.Dequeue()
		if !ok {
			return
		}
		fn(e)
	}
}

func (eq *EventQueue) Len() int {
	return eq.queue.Len()
}
