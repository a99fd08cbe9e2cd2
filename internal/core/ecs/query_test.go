package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addPos(t *testing.T, w *World, x, y float64) EntityID {
	t.Helper()
	id := mustCreate(t, w)
	require.NoError(t, w.MustComponent("pos").Add(id, Data{"x": x, "y": y}))
	return id
}

func Test_Query_ReactiveAddedAcrossTicks(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	pos := w.MustComponent("pos")
	q := w.NewQuery(Q().With(pos))
	ctx := w.Context()

	// Act: tick 1 creates three entities with pos.
	require.NoError(t, w.Tick(0))
	ids := []EntityID{addPos(t, w, 0, 0), addPos(t, w, 1, 1), addPos(t, w, 2, 2)}

	// Assert
	assert.ElementsMatch(t, ids, q.Added(ctx))
	assert.ElementsMatch(t, ids, q.Current(ctx))

	// Tick 2 with no changes.
	require.NoError(t, w.Tick(0))
	assert.Empty(t, q.Added(ctx))
	assert.ElementsMatch(t, ids, q.Current(ctx))

	// Tick 3 removes one entity.
	require.NoError(t, w.Tick(0))
	ctx.RemoveEntity(ids[1])
	assert.Equal(t, []EntityID{ids[1]}, q.Removed(ctx))
	assert.ElementsMatch(t, []EntityID{ids[0], ids[2]}, q.Current(ctx))
}

func Test_Query_CurrentIsIdempotentWithinTick(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	q := w.NewQuery(Q().With(w.MustComponent("pos")))
	ctx := w.Context()
	require.NoError(t, w.Tick(0))
	addPos(t, w, 0, 0)
	addPos(t, w, 1, 1)

	// Act & Assert
	assert.Equal(t, q.Current(ctx), q.Current(ctx))
}

func Test_Query_TrackingChanged(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	pos := w.MustComponent("pos")
	q := w.NewQuery(Q().With(pos).Tracking(pos))
	ctx := w.Context()

	// Act: tick 1 adds two entities.
	require.NoError(t, w.Tick(0))
	e1 := addPos(t, w, 0, 0)
	e2 := addPos(t, w, 0, 0)

	// Assert
	assert.ElementsMatch(t, []EntityID{e1, e2}, q.Added(ctx))
	assert.Subset(t, q.Changed(ctx), []EntityID{e1, e2})

	// Tick 2 mutates only e1.
	require.NoError(t, w.Tick(0))
	pos.Write(e1).SetF32("x", 5)
	assert.Equal(t, []EntityID{e1}, q.Changed(ctx))
	assert.Empty(t, q.Added(ctx))

	// Second call in the same tick is idempotent.
	assert.Equal(t, []EntityID{e1}, q.Changed(ctx))
}

func Test_Query_ChangedIgnoresUntrackedComponents(t *testing.T) {
	// Arrange
	vel := NewComponent("vel")
	vel.F32("dx", 0)
	w := newTestWorld(t, 8, posDef(), vel)
	pos := w.MustComponent("pos")
	velStore := w.MustComponent("vel")
	q := w.NewQuery(Q().With(pos, velStore).Tracking(pos))
	ctx := w.Context()

	require.NoError(t, w.Tick(0))
	e := addPos(t, w, 0, 0)
	require.NoError(t, velStore.Add(e, nil))
	q.Added(ctx)

	// Act: tick 2 mutates only the untracked component.
	require.NoError(t, w.Tick(0))
	velStore.Write(e).SetF32("dx", 1)

	// Assert
	assert.Empty(t, q.Changed(ctx))
}

func Test_Query_WithoutExcludes(t *testing.T) {
	// Arrange
	hidden := NewComponent("hidden")
	w := newTestWorld(t, 8, posDef(), hidden)
	pos := w.MustComponent("pos")
	hiddenStore := w.MustComponent("hidden")
	q := w.NewQuery(Q().With(pos).Without(hiddenStore))
	ctx := w.Context()

	require.NoError(t, w.Tick(0))
	visible := addPos(t, w, 0, 0)
	shy := addPos(t, w, 1, 1)
	require.NoError(t, hiddenStore.Add(shy, nil))

	// Act & Assert
	assert.Equal(t, []EntityID{visible}, q.Added(ctx))
	assert.Equal(t, []EntityID{visible}, q.Current(ctx))

	// Tick 2: hiding the visible entity removes it from the view.
	require.NoError(t, w.Tick(0))
	require.NoError(t, hiddenStore.Add(visible, nil))
	assert.Equal(t, []EntityID{visible}, q.Removed(ctx))
	assert.Empty(t, q.Current(ctx))
}

func Test_Query_RingOverflowResync(t *testing.T) {
	// Arrange: ring capacity 8, 20 create+add sequences before the first call.
	cfg := DefaultWorldConfig()
	cfg.MaxEntities = 32
	cfg.EventRingCap = 8
	reg := NewRegistry()
	reg.AddComponent(posDef())
	w, err := NewWorld(cfg, reg)
	require.NoError(t, err)
	t.Cleanup(w.Close)

	pos := w.MustComponent("pos")
	q := w.NewQuery(Q().With(pos))
	ctx := w.Context()
	require.NoError(t, w.Tick(0))

	var all []EntityID
	for i := 0; i < 20; i++ {
		all = append(all, addPos(t, w, float64(i), 0))
	}

	// Act
	added := q.Added(ctx)
	current := q.Current(ctx)

	// Assert: added is a subset drawn from the newest 8 events only;
	// current comes from the buffer and sees all 20.
	assert.True(t, q.Resynced())
	assert.NotEmpty(t, added)
	assert.LessOrEqual(t, len(added), 8)
	assert.Subset(t, all[len(all)-8:], added)
	assert.ElementsMatch(t, all, current)
}

func Test_Query_CreatedAgainstExistingWorldSeedsAdded(t *testing.T) {
	// Arrange: population exists before the query does.
	w := newTestWorld(t, 8, posDef())
	ctx := w.Context()
	require.NoError(t, w.Tick(0))
	e1 := addPos(t, w, 0, 0)
	e2 := addPos(t, w, 1, 1)

	// Act
	q := w.NewQuery(Q().With(w.MustComponent("pos")))
	require.NoError(t, w.Tick(0))

	// Assert: the pre-existing world is added on first observation.
	assert.ElementsMatch(t, []EntityID{e1, e2}, q.Added(ctx))

	require.NoError(t, w.Tick(0))
	assert.Empty(t, q.Added(ctx))
}

func Test_Query_EmptyWorldReturnsEmptyViews(t *testing.T) {
	// Arrange
	w := newTestWorld(t, 8, posDef())
	q := w.NewQuery(Q().With(w.MustComponent("pos")))
	ctx := w.Context()
	require.NoError(t, w.Tick(0))

	// Act & Assert
	assert.Empty(t, q.Added(ctx))
	assert.Empty(t, q.Removed(ctx))
	assert.Empty(t, q.Changed(ctx))
	assert.Empty(t, q.Current(ctx))
}
