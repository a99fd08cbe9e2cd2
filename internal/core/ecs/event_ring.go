package ecs

import (
	"sync/atomic"
)

// ==============================================
// Event Ring
// ==============================================

// EventRing is a fixed-capacity log of entity transitions shared by every
// writer in the world.
//
// Push reserves the next slot with an atomic post-increment, so concurrent
// pushers never collide on a slot; slot order is the only ordering the
// runtime guarantees. Overflow is silent: the ring wraps, and readers that
// fall behind by more than the capacity observe a resync window holding the
// most recent capacity events.
type EventRing struct {
	slots []Event
	next  atomic.Uint64 // monotone write index
	tick  atomic.Uint32 // stamped into pushed events
}

// NewEventRing creates a ring with the given slot capacity.
func NewEventRing(capacity int) *EventRing {
	return &EventRing{slots: make([]Event, capacity)}
}

// Capacity returns the fixed slot count.
func (r *EventRing) Capacity() int {
	return len(r.slots)
}

// WriteIndex returns the monotone index one past the newest event.
func (r *EventRing) WriteIndex() uint64 {
	return r.next.Load()
}

// SetTick sets the tick stamped into subsequently pushed events.
func (r *EventRing) SetTick(tick uint32) {
	r.tick.Store(tick)
}

// Tick returns the current tick stamp.
func (r *EventRing) Tick() uint32 {
	return r.tick.Load()
}

// Push appends an event, reserving its slot atomically.
func (r *EventRing) Push(kind EventKind, entity EntityID, component ComponentID) {
	i := r.next.Add(1) - 1
	r.slots[i%uint64(len(r.slots))] = Event{
		Tick:      r.tick.Load(),
		Entity:    entity,
		Kind:      kind,
		Component: component,
	}
}

// clamp narrows [from, to) to the window a reader may still observe.
// A reader more than capacity behind resyncs to the newest capacity events.
func (r *EventRing) clamp(from, to uint64) (uint64, bool) {
	cap64 := uint64(len(r.slots))
	if to > from && to-from > cap64 {
		return to - cap64, true
	}
	return from, false
}

// Range calls fn for every event with ring index in [from, to), handling
// wrap-around and the fallen-behind window.
func (r *EventRing) Range(from, to uint64, fn func(Event)) {
	from, _ = r.clamp(from, to)
	for i := from; i < to; i++ {
		fn(r.slots[i%uint64(len(r.slots))])
	}
}

// CollectEntities iterates events since lastIndex, filters them by kind and
// (for CHANGED events) by a mask of component ids, and returns the
// deduplicated entity ids together with the index to resume from. resynced
// reports that the caller had fallen behind and observed only the most
// recent window.
//
// A zero mask matches every component.
func (r *EventRing) CollectEntities(lastIndex uint64, kind EventKind, mask Mask) (ids []EntityID, newIndex uint64, resynced bool) {
	newIndex = r.next.Load()
	from, resynced := r.clamp(lastIndex, newIndex)
	if from == newIndex {
		return nil, newIndex, resynced
	}

	seen := make(map[EntityID]struct{})
	anyComponent := mask.IsZero()
	for i := from; i < newIndex; i++ {
		ev := r.slots[i%uint64(len(r.slots))]
		if ev.Kind != kind {
			continue
		}
		if kind == EventChanged && !anyComponent && !mask.Has(ev.Component) {
			continue
		}
		if _, dup := seen[ev.Entity]; dup {
			continue
		}
		seen[ev.Entity] = struct{}{}
		ids = append(ids, ev.Entity)
	}
	return ids, newIndex, resynced
}
