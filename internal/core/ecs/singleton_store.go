package ecs

// ==============================================
// Singleton Store
// ==============================================

// SingletonStore holds one component-shaped record with exactly one
// instance. Field typing and storage semantics match ComponentStore with a
// single row; the record does not participate in entity lifecycle and is
// always present, mutated in place.
//
// Writes surface as CHANGED events carrying a reserved entity id drawn from
// the space above the world's entity capacity, so queries and adapters can
// tell singleton mutations apart from entity traffic.
type SingletonStore struct {
	def     *SingletonDef
	id      ComponentID // dense id shared with the component id space
	tab     *table
	ring    *EventRing
	eventID EntityID // reserved id stamped on CHANGED events
}

func newSingletonStore(def *SingletonDef, id ComponentID, eventID EntityID, ring *EventRing) *SingletonStore {
	s := &SingletonStore{
		def:     def,
		id:      id,
		tab:     newTable(&def.ComponentDef, 1),
		ring:    ring,
		eventID: eventID,
	}
	for i := range def.fields {
		s.tab.applyDefault(0, i)
	}
	return s
}

// Def returns the singleton's schema.
func (s *SingletonStore) Def() *SingletonDef { return s.def }

// ID returns the dense id assigned at world construction.
func (s *SingletonStore) ID() ComponentID { return s.id }

// EventEntity returns the reserved entity id stamped on this singleton's
// CHANGED events.
func (s *SingletonStore) EventEntity() EntityID { return s.eventID }

// Read returns a read-only view of the record.
func (s *SingletonStore) Read() Row {
	return Row{tab: s.tab, row: 0}
}

// Write returns a mutable view; every field assignment through it emits a
// CHANGED event with the reserved entity id.
func (s *SingletonStore) Write() Row {
	return Row{tab: s.tab, row: 0, emit: func() { s.ring.Push(EventChanged, s.eventID, s.id) }}
}

// Copy bulk-overwrites fields from data and emits a single CHANGED event.
func (s *SingletonStore) Copy(data Data) error {
	for name, v := range data {
		i := s.def.FieldIndex(name)
		if i < 0 {
			return NewComponentError(ErrInvalidFieldValue, "unknown field "+name, s.def.name)
		}
		if err := s.tab.applyValue(0, i, v); err != nil {
			return err
		}
	}
	s.ring.Push(EventChanged, s.eventID, s.id)
	return nil
}
