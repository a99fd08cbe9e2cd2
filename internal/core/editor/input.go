package editor

import (
	"sync"
)

// ==============================================
// Host Input Events
// ==============================================

// HostEventKind classifies a raw host input signal.
type HostEventKind uint8

const (
	EventPointerMove HostEventKind = iota
	EventPointerDown
	EventPointerUp
	EventWheel
	EventKeyDown
	EventKeyUp
	EventResize
)

// HostEvent is one raw signal from the host UI, queued until the next tick.
// Only the fields relevant to the kind are populated.
type HostEvent struct {
	Kind HostEventKind

	X, Y     float64 // pointer position / wheel delta
	Button   int     // ButtonLeft..ButtonMiddle bit for pointer down/up
	Pressure float64 // pointer pressure, 0 when the host has none

	Key  int  // key code for key down/up
	Mods int  // modifier bits at event time

	Width, Height, Scale float64 // resize
}

// InputQueue collects host events between ticks. Pushes may come from any
// goroutine; the editor drains the queue into the input singletons at the
// start of each tick.
type InputQueue struct {
	mu     sync.Mutex
	events []HostEvent
}

// NewInputQueue creates an empty queue.
func NewInputQueue() *InputQueue {
	return &InputQueue{}
}

// Push appends one host event.
func (q *InputQueue) Push(ev HostEvent) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain returns every pending event in arrival order and empties the queue.
func (q *InputQueue) Drain() []HostEvent {
	q.mu.Lock()
	out := q.events
	q.events = nil
	q.mu.Unlock()
	return out
}

// Len returns the number of pending events.
func (q *InputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
