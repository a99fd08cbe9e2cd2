package ecs

import (
	"github.com/google/uuid"
)

// ==============================================
// Store Adapter
// ==============================================

// StoreAdapter is a caller-supplied object notified of lifecycle events for
// synced components. The runtime pushes; it exposes no general observable.
//
// stableID is the UUID drawn from the component's designated id field — the
// identity used for cross-process synchronisation, decoupled from the local
// entity id.
type StoreAdapter interface {
	// Initialize hands the adapter the full schema, once, at installation.
	Initialize(components []*ComponentDef, singletons []*SingletonDef) error

	// OnComponentAdded reports a synced component newly present on an entity.
	OnComponentAdded(def *ComponentDef, stableID string, entity EntityID, data Data)

	// OnComponentUpdated reports field mutation on a previously-added
	// component. Multiple writes within one tick coalesce to one call.
	OnComponentUpdated(def *ComponentDef, stableID string, data Data)

	// OnComponentRemoved reports detachment or entity deletion.
	OnComponentRemoved(def *ComponentDef, stableID string)

	// OnSingletonUpdated reports singleton mutation.
	OnSingletonUpdated(def *SingletonDef, data Data)

	// Commit is invoked at the end of every completed tick; the adapter may
	// coalesce further.
	Commit() error

	// FlushChanges is invoked at the start of every tick, before any phase.
	// The adapter may create entities and components through the context to
	// reflect external changes into the world.
	FlushChanges(ctx *Context) error
}

// ==============================================
// Sync Tracker
// ==============================================

// syncTracker walks the event ring once per tick boundary and translates
// transitions on synced components into adapter notifications.
type syncTracker struct {
	w         *World
	adapter   StoreAdapter
	lastIndex uint64
	synced    Mask
	// known maps component id → entity → stableID for everything currently
	// reported to the adapter as added.
	known map[ComponentID]map[EntityID]string
	// singletons by reserved event id, for CHANGED routing.
	byEventID map[EntityID]*SingletonStore
}

func newSyncTracker(w *World) *syncTracker {
	t := &syncTracker{
		w:         w,
		known:     make(map[ComponentID]map[EntityID]string),
		byEventID: make(map[EntityID]*SingletonStore),
	}
	for _, s := range w.comps {
		if s.def.sync != SyncNone {
			t.synced.Set(s.id)
			t.known[s.id] = make(map[EntityID]string)
		}
	}
	for _, s := range w.singles {
		t.byEventID[s.eventID] = s
	}
	return t
}

func (t *syncTracker) setAdapter(a StoreAdapter) error {
	var comps []*ComponentDef
	for _, s := range t.w.comps {
		comps = append(comps, s.def)
	}
	var singles []*SingletonDef
	for _, s := range t.w.singles {
		singles = append(singles, s.def)
	}
	if err := a.Initialize(comps, singles); err != nil {
		return WrapError(err, ErrInternalError, "adapter initialize")
	}
	t.adapter = a
	t.lastIndex = t.w.ring.WriteIndex()
	return nil
}

func (t *syncTracker) flush(ctx *Context) error {
	if t.adapter == nil {
		return nil
	}
	return t.adapter.FlushChanges(ctx)
}

// commit scans events since the previous commit and pushes coalesced
// notifications, then lets the adapter commit.
func (t *syncTracker) commit() error {
	if t.adapter == nil {
		return nil
	}
	to := t.w.ring.WriteIndex()
	touched := make(map[ComponentID]map[EntityID]bool) // component → entity, dedup
	removedEntities := make(map[EntityID]bool)
	singletonTouched := make(map[EntityID]bool)

	t.w.ring.Range(t.lastIndex, to, func(ev Event) {
		switch ev.Kind {
		case EventRemoved:
			removedEntities[ev.Entity] = true
		case EventChanged:
			if s, ok := t.byEventID[ev.Entity]; ok {
				if s.def.sync != SyncNone {
					singletonTouched[ev.Entity] = true
				}
				return
			}
			if !t.synced.Has(ev.Component) {
				return
			}
			if touched[ev.Component] == nil {
				touched[ev.Component] = make(map[EntityID]bool)
			}
			touched[ev.Component][ev.Entity] = true
		}
	})
	t.lastIndex = to

	// Entity deletions drop every known synced component of the entity.
	for id := range removedEntities {
		for cid, entities := range t.known {
			if sid, ok := entities[id]; ok {
				delete(entities, id)
				t.adapter.OnComponentRemoved(t.w.comps[cid].def, sid)
			}
		}
	}

	for cid, entities := range touched {
		store := t.w.comps[cid]
		for id := range entities {
			if removedEntities[id] {
				continue
			}
			sid, wasKnown := t.known[cid][id]
			if t.w.buf.Has(id, cid) {
				if !wasKnown {
					sid = t.ensureStableID(store, id)
					t.known[cid][id] = sid
					t.adapter.OnComponentAdded(store.def, sid, id, store.snapshot(id))
					continue
				}
				t.adapter.OnComponentUpdated(store.def, sid, store.snapshot(id))
				continue
			}
			if wasKnown {
				delete(t.known[cid], id)
				t.adapter.OnComponentRemoved(store.def, sid)
			}
		}
	}

	for eid := range singletonTouched {
		s := t.byEventID[eid]
		t.adapter.OnSingletonUpdated(s.def, s.snapshot())
	}

	return t.adapter.Commit()
}

// ensureStableID reads the component's id field, minting a fresh UUID when
// the caller did not supply one. The mint writes straight to the column so
// it does not echo another CHANGED event.
func (t *syncTracker) ensureStableID(s *ComponentStore, id EntityID) string {
	i := s.def.FieldIndex(StableIDField)
	if sid := s.tab.cols[i].getStr(int(id)); sid != "" {
		return sid
	}
	sid := uuid.NewString()
	s.tab.cols[i].setStr(int(id), sid)
	return sid
}

// ==============================================
// Snapshots
// ==============================================

// snapshot captures an entity's current field values as Data.
func (s *ComponentStore) snapshot(id EntityID) Data {
	return s.tab.snapshot(int(id))
}

// snapshot captures the singleton's current field values as Data.
func (s *SingletonStore) snapshot() Data {
	return s.tab.snapshot(0)
}

func (t *table) snapshot(row int) Data {
	out := make(Data, len(t.def.fields))
	for i, f := range t.def.fields {
		c := &t.cols[i]
		switch {
		case f.Kind == FieldString:
			out[f.Name] = c.getStr(row)
		case f.Kind == FieldBool:
			out[f.Name] = c.getNum(row, 0) != 0
		case f.Kind == FieldRef:
			out[f.Name] = EntityID(c.getNum(row, 0))
		case f.Kind == FieldEnum:
			out[f.Name] = int64(c.getNum(row, 0))
		case f.Arity > 1:
			vals := make([]float64, f.Arity)
			for k := range vals {
				vals[k] = c.getNum(row, k)
			}
			out[f.Name] = vals
		default:
			out[f.Name] = c.getNum(row, 0)
		}
	}
	return out
}
