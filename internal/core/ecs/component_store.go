package ecs

import (
	"fmt"
)

// ==============================================
// Component Store
// ==============================================

// ComponentStore holds one component's fields as struct-of-arrays storage
// keyed by entity id: reading field F for entity E is a direct index into
// F's column. The layout bounds memory to sum(field_size) * maxEntities,
// shares zero-copy with worker goroutines, and makes CHANGED emission a
// field-level write barrier.
//
// The store does not validate component presence: reading a field of an
// entity that does not have the component yields whatever the column holds.
// Callers gate on HasComponent.
type ComponentStore struct {
	def  *ComponentDef
	id   ComponentID
	tab  *table
	buf  *EntityBuffer
	ring *EventRing
}

func newComponentStore(def *ComponentDef, id ComponentID, maxEntities int, buf *EntityBuffer, ring *EventRing) *ComponentStore {
	return &ComponentStore{
		def:  def,
		id:   id,
		tab:  newTable(def, maxEntities+1), // row 0 is the invalid id
		buf:  buf,
		ring: ring,
	}
}

// Def returns the component's schema.
func (s *ComponentStore) Def() *ComponentDef { return s.def }

// ID returns the dense component id assigned at world construction.
func (s *ComponentStore) ID() ComponentID { return s.id }

// Has tests whether the entity currently carries this component.
func (s *ComponentStore) Has(id EntityID) bool {
	return s.buf.Has(id, s.id)
}

// Add attaches the component to an entity, populating each field from data
// (or the declared defaults) and emitting one CHANGED event per field
// written; a component with no fields emits one CHANGED event. Adding to an
// entity that already has the component overwrites the fields the same way.
func (s *ComponentStore) Add(id EntityID, data Data) error {
	if err := s.tab.populate(int(id), data); err != nil {
		return err
	}
	s.buf.Set(id, s.id, true)
	// Every field landed (from data or from defaults); one CHANGED each.
	for range s.def.fields {
		s.ring.Push(EventChanged, id, s.id)
	}
	if len(s.def.fields) == 0 {
		s.ring.Push(EventChanged, id, s.id)
	}
	return nil
}

// Remove detaches the component. Backing storage is not zeroed; it is
// overwritten on the next Add. The bit transition emits one CHANGED event.
func (s *ComponentStore) Remove(id EntityID) {
	if s.buf.Set(id, s.id, false) {
		s.ring.Push(EventChanged, id, s.id)
	}
}

// Read returns a read-only view of the entity's fields.
func (s *ComponentStore) Read(id EntityID) Row {
	return Row{tab: s.tab, row: int(id)}
}

// Write returns a mutable view; every field assignment through it emits a
// CHANGED event for this component.
func (s *ComponentStore) Write(id EntityID) Row {
	return Row{tab: s.tab, row: int(id), emit: func() { s.ring.Push(EventChanged, id, s.id) }}
}

// Copy bulk-overwrites the entity's fields from data (missing fields keep
// their current values) and emits a single CHANGED event.
func (s *ComponentStore) Copy(id EntityID, data Data) error {
	for name, v := range data {
		i := s.def.FieldIndex(name)
		if i < 0 {
			return NewComponentError(ErrInvalidFieldValue,
				fmt.Sprintf("unknown field %q", name), s.def.name)
		}
		if err := s.tab.applyValue(int(id), i, v); err != nil {
			return err
		}
	}
	s.ring.Push(EventChanged, id, s.id)
	return nil
}

// ==============================================
// Row Views
// ==============================================

// Row is a view over one entity's fields in a store. A row obtained from
// Read is read-only: mutating accessors panic. A row obtained from Write
// emits one CHANGED event per assignment.
type Row struct {
	tab  *table
	row  int
	emit func()
}

func (r Row) field(name string) int {
	i := r.tab.def.FieldIndex(name)
	if i < 0 {
		panic(fmt.Sprintf("ecs: component %q has no field %q", r.tab.def.name, name))
	}
	return i
}

func (r Row) mutate() {
	if r.emit == nil {
		panic(fmt.Sprintf("ecs: write through read-only view of %q", r.tab.def.name))
	}
	r.emit()
}

// Num reads any numeric field as float64.
func (r Row) Num(name string) float64 {
	return r.tab.cols[r.field(name)].getNum(r.row, 0)
}

// SetNum writes any numeric field, truncating to the column type.
func (r Row) SetNum(name string, v float64) {
	r.tab.cols[r.field(name)].setNum(r.row, 0, v)
	r.mutate()
}

// F32 reads a 32-bit float field.
func (r Row) F32(name string) float32 { return float32(r.Num(name)) }

// SetF32 writes a 32-bit float field.
func (r Row) SetF32(name string, v float32) { r.SetNum(name, float64(v)) }

// F64 reads a 64-bit float field.
func (r Row) F64(name string) float64 { return r.Num(name) }

// SetF64 writes a 64-bit float field.
func (r Row) SetF64(name string, v float64) { r.SetNum(name, v) }

// I32 reads a signed 32-bit field.
func (r Row) I32(name string) int32 { return int32(r.Num(name)) }

// SetI32 writes a signed 32-bit field.
func (r Row) SetI32(name string, v int32) { r.SetNum(name, float64(v)) }

// U32 reads an unsigned 32-bit field.
func (r Row) U32(name string) uint32 { return uint32(r.Num(name)) }

// SetU32 writes an unsigned 32-bit field.
func (r Row) SetU32(name string, v uint32) { r.SetNum(name, float64(v)) }

// Bool reads a boolean field.
func (r Row) Bool(name string) bool { return r.Num(name) != 0 }

// SetBool writes a boolean field.
func (r Row) SetBool(name string, v bool) {
	n := 0.0
	if v {
		n = 1.0
	}
	r.SetNum(name, n)
}

// Ref reads an entity-reference field. A stale reference (deleted and not
// reallocated) is returned unchanged; consult IsAlive before following it.
func (r Row) Ref(name string) EntityID { return EntityID(r.Num(name)) }

// SetRef writes an entity-reference field without affecting the referent's
// lifetime.
func (r Row) SetRef(name string, id EntityID) { r.SetNum(name, float64(id)) }

// Enum reads an enum field's integer tag.
func (r Row) Enum(name string) int64 { return int64(r.Num(name)) }

// SetEnum writes an enum field. Tags outside the accepted set panic: enums
// are closed at definition time.
func (r Row) SetEnum(name string, tag int64) {
	i := r.field(name)
	if !acceptedTag(r.tab.cols[i].accepted, tag) {
		panic(fmt.Sprintf("ecs: enum field %q rejects tag %d", name, tag))
	}
	r.tab.cols[i].setNum(r.row, 0, float64(tag))
	r.mutate()
}

// Str reads an inline string field.
func (r Row) Str(name string) string {
	return r.tab.cols[r.field(name)].getStr(r.row)
}

// SetStr writes an inline string field, truncating at its capacity.
func (r Row) SetStr(name string, s string) {
	r.tab.cols[r.field(name)].setStr(r.row, s)
	r.mutate()
}

// NumAt reads element k of a tuple or buffer field.
func (r Row) NumAt(name string, k int) float64 {
	return r.tab.cols[r.field(name)].getNum(r.row, k)
}

// SetNumAt writes element k of a tuple or buffer field.
func (r Row) SetNumAt(name string, k int, v float64) {
	r.tab.cols[r.field(name)].setNum(r.row, k, v)
	r.mutate()
}

// F32At reads element k of an f32 tuple field.
func (r Row) F32At(name string, k int) float32 { return float32(r.NumAt(name, k)) }

// SetF32At writes element k of an f32 tuple field.
func (r Row) SetF32At(name string, k int, v float32) { r.SetNumAt(name, k, float64(v)) }
