package editor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_InputQueue_DrainReturnsEventsInArrivalOrder(t *testing.T) {
	// Arrange
	q := NewInputQueue()
	q.Push(HostEvent{Kind: EventKeyDown, Key: 1})
	q.Push(HostEvent{Kind: EventKeyUp, Key: 1})
	q.Push(HostEvent{Kind: EventPointerMove, X: 3})

	// Act
	events := q.Drain()

	// Assert
	assert.Len(t, events, 3)
	assert.Equal(t, EventKeyDown, events[0].Kind)
	assert.Equal(t, EventKeyUp, events[1].Kind)
	assert.Equal(t, EventPointerMove, events[2].Kind)
	assert.Equal(t, 0, q.Len())
}

func Test_InputQueue_DrainOnEmptyQueue(t *testing.T) {
	// Arrange
	q := NewInputQueue()

	// Act & Assert
	assert.Empty(t, q.Drain())
}

func Test_InputQueue_ConcurrentPushes(t *testing.T) {
	// Arrange
	q := NewInputQueue()
	const pushers = 8
	const perPusher = 200

	// Act
	var wg sync.WaitGroup
	for p := 0; p < pushers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPusher; i++ {
				q.Push(HostEvent{Kind: EventPointerMove, X: float64(p)})
			}
		}(p)
	}
	wg.Wait()

	// Assert
	assert.Equal(t, pushers*perPusher, q.Len())
}
