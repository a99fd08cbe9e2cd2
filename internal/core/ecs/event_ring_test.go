package ecs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EventRing_PushAndRange(t *testing.T) {
	// Arrange
	ring := NewEventRing(8)
	ring.SetTick(3)

	// Act
	ring.Push(EventAdded, 1, 0)
	ring.Push(EventChanged, 1, 2)

	// Assert
	var got []Event
	ring.Range(0, ring.WriteIndex(), func(ev Event) { got = append(got, ev) })
	require.Len(t, got, 2)
	assert.Equal(t, Event{Tick: 3, Entity: 1, Kind: EventAdded}, got[0])
	assert.Equal(t, Event{Tick: 3, Entity: 1, Kind: EventChanged, Component: 2}, got[1])
}

func Test_EventRing_RangeHandlesWrapAround(t *testing.T) {
	// Arrange
	ring := NewEventRing(4)
	for i := 0; i < 6; i++ {
		ring.Push(EventAdded, EntityID(i+1), 0)
	}

	// Act: the reader is 6 behind with capacity 4; only the newest 4 remain.
	var got []EntityID
	ring.Range(0, ring.WriteIndex(), func(ev Event) { got = append(got, ev.Entity) })

	// Assert
	assert.Equal(t, []EntityID{3, 4, 5, 6}, got)
}

func Test_EventRing_CollectEntitiesFiltersAndDeduplicates(t *testing.T) {
	// Arrange
	ring := NewEventRing(16)
	ring.Push(EventChanged, 1, 0)
	ring.Push(EventChanged, 1, 0) // duplicate entity
	ring.Push(EventChanged, 2, 1) // other component
	ring.Push(EventAdded, 3, 0)   // other kind

	// Act
	ids, next, resynced := ring.CollectEntities(0, EventChanged, NewMask(0))

	// Assert
	assert.Equal(t, []EntityID{1}, ids)
	assert.Equal(t, ring.WriteIndex(), next)
	assert.False(t, resynced)
}

func Test_EventRing_CollectEntitiesZeroMaskMatchesAllComponents(t *testing.T) {
	// Arrange
	ring := NewEventRing(16)
	ring.Push(EventChanged, 4, 0)
	ring.Push(EventChanged, 5, 7)

	// Act
	ids, _, _ := ring.CollectEntities(0, EventChanged, Mask{})

	// Assert
	assert.Equal(t, []EntityID{4, 5}, ids)
}

func Test_EventRing_CollectEntitiesResyncWindow(t *testing.T) {
	// Arrange: capacity 8, 20 pushes before the first collect.
	ring := NewEventRing(8)
	for i := 0; i < 20; i++ {
		ring.Push(EventAdded, EntityID(i+1), 0)
	}

	// Act
	ids, next, resynced := ring.CollectEntities(0, EventAdded, Mask{})

	// Assert: only entities from the most recent 8 events, and the reader
	// is caught up afterwards.
	assert.True(t, resynced)
	assert.Equal(t, []EntityID{13, 14, 15, 16, 17, 18, 19, 20}, ids)
	assert.Equal(t, uint64(20), next)

	ids, _, resynced = ring.CollectEntities(next, EventAdded, Mask{})
	assert.Empty(t, ids)
	assert.False(t, resynced)
}

func Test_EventRing_ConcurrentPushersDoNotCollide(t *testing.T) {
	// Arrange
	const pushers = 8
	const perPusher = 100
	ring := NewEventRing(pushers * perPusher)

	// Act
	var wg sync.WaitGroup
	for p := 0; p < pushers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPusher; i++ {
				ring.Push(EventChanged, EntityID(p+1), ComponentID(p))
			}
		}(p)
	}
	wg.Wait()

	// Assert: every reserved slot was written by exactly one pusher.
	assert.Equal(t, uint64(pushers*perPusher), ring.WriteIndex())
	counts := make(map[EntityID]int)
	ring.Range(0, ring.WriteIndex(), func(ev Event) { counts[ev.Entity]++ })
	for p := 0; p < pushers; p++ {
		assert.Equal(t, perPusher, counts[EntityID(p+1)])
	}
}
