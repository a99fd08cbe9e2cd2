package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posDef() *ComponentDef {
	def := NewComponent("pos")
	def.F32("x", 0).F32("y", 0)
	return def
}

func Test_ComponentStore_AddPopulatesFromDataAndDefaults(t *testing.T) {
	// Arrange
	def := NewComponent("style")
	def.F32("width", 2.5).Str("color", 16, "black").Bool("filled", true)
	w := newTestWorld(t, 8, def)
	store := w.MustComponent("style")
	id := mustCreate(t, w)

	// Act
	require.NoError(t, store.Add(id, Data{"color": "red"}))

	// Assert
	row := store.Read(id)
	assert.True(t, store.Has(id))
	assert.Equal(t, float32(2.5), row.F32("width"), "defaulted")
	assert.Equal(t, "red", row.Str("color"), "from data")
	assert.True(t, row.Bool("filled"))
}

func Test_ComponentStore_AddEmitsChangedPerField(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	store := w.MustComponent("pos")
	id := mustCreate(t, w)
	from := w.Ring().WriteIndex()

	// Act
	require.NoError(t, store.Add(id, Data{"x": 1.0}))

	// Assert: two fields, two CHANGED events, all for this component.
	var events []Event
	w.Ring().Range(from, w.Ring().WriteIndex(), func(ev Event) { events = append(events, ev) })
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, EventChanged, ev.Kind)
		assert.Equal(t, store.ID(), ev.Component)
		assert.Equal(t, id, ev.Entity)
	}
}

func Test_ComponentStore_AddRejectsUnknownField(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	store := w.MustComponent("pos")
	id := mustCreate(t, w)

	// Act
	err := store.Add(id, Data{"z": 1.0})

	// Assert
	require.Error(t, err)
	assert.Equal(t, ErrInvalidFieldValue, err.(*ECSError).Code)
	assert.False(t, store.Has(id), "failed add must not set the bit")
}

func Test_ComponentStore_WriteEmitsChangedPerAssignment(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	store := w.MustComponent("pos")
	id := mustCreate(t, w)
	require.NoError(t, store.Add(id, nil))
	from := w.Ring().WriteIndex()

	// Act
	row := store.Write(id)
	row.SetF32("x", 5)
	row.SetF32("y", 6)

	// Assert
	assert.Equal(t, from+2, w.Ring().WriteIndex())
	assert.Equal(t, float32(5), store.Read(id).F32("x"))
	assert.Equal(t, float32(6), store.Read(id).F32("y"))
}

func Test_ComponentStore_ReadOnlyViewPanicsOnWrite(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	store := w.MustComponent("pos")
	id := mustCreate(t, w)
	require.NoError(t, store.Add(id, nil))

	// Act & Assert
	assert.Panics(t, func() { store.Read(id).SetF32("x", 1) })
}

func Test_ComponentStore_CopyEmitsSingleChanged(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	store := w.MustComponent("pos")
	id := mustCreate(t, w)
	require.NoError(t, store.Add(id, nil))
	from := w.Ring().WriteIndex()

	// Act
	require.NoError(t, store.Copy(id, Data{"x": 7.0, "y": 8.0}))

	// Assert
	assert.Equal(t, from+1, w.Ring().WriteIndex())
	assert.Equal(t, float32(7), store.Read(id).F32("x"))
	assert.Equal(t, float32(8), store.Read(id).F32("y"))
}

func Test_ComponentStore_RemoveClearsBitKeepsStorage(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	store := w.MustComponent("pos")
	id := mustCreate(t, w)
	require.NoError(t, store.Add(id, Data{"x": 3.0}))

	// Act
	store.Remove(id)

	// Assert: bit off, storage untouched; a re-add overwrites with fresh values.
	assert.False(t, store.Has(id))
	assert.Equal(t, float32(3), store.Read(id).F32("x"), "storage not zeroed")
	require.NoError(t, store.Add(id, nil))
	assert.Equal(t, float32(0), store.Read(id).F32("x"))
}

func Test_ComponentStore_RefFieldsAndStaleReferences(t *testing.T) {
	// Arrange
	def := NewComponent("part")
	def.Ref("group")
	w := newTestWorld(t, 8, def)
	store := w.MustComponent("part")
	ctx := w.Context()

	group := mustCreate(t, w)
	part := mustCreate(t, w)
	require.NoError(t, store.Add(part, Data{"group": group}))

	// Act: deleting the referent does not touch the reference.
	ctx.RemoveEntity(group)

	// Assert
	got := store.Read(part).Ref("group")
	assert.Equal(t, group, got, "stale ref returned unchanged")
	assert.False(t, ctx.IsAlive(got))
}

func Test_ComponentStore_TupleAndEnumAccess(t *testing.T) {
	// Arrange
	def := NewComponent("shape")
	def.Tuple("size", FieldF32, 2, 10, 20).Enum("kind", 1, 0, 1, 2)
	w := newTestWorld(t, 8, def)
	store := w.MustComponent("shape")
	id := mustCreate(t, w)
	require.NoError(t, store.Add(id, nil))

	// Act
	row := store.Write(id)
	row.SetF32At("size", 1, 99)
	row.SetEnum("kind", 2)

	// Assert
	read := store.Read(id)
	assert.Equal(t, float32(10), read.F32At("size", 0))
	assert.Equal(t, float32(99), read.F32At("size", 1))
	assert.Equal(t, int64(2), read.Enum("kind"))
	assert.Panics(t, func() { store.Write(id).SetEnum("kind", 9) }, "unaccepted tag")
}

func Test_ComponentStore_StringTruncatesAtCapacity(t *testing.T) {
	// Arrange
	def := NewComponent("note")
	def.Str("text", 4, "")
	w := newTestWorld(t, 8, def)
	store := w.MustComponent("note")
	id := mustCreate(t, w)
	require.NoError(t, store.Add(id, nil))

	// Act
	store.Write(id).SetStr("text", "overflow")

	// Assert
	assert.Equal(t, "over", store.Read(id).Str("text"))
}
