package ecs

// ==============================================
// Query Engine
// ==============================================

// Query is a reactive view over the event ring and the entity buffer.
//
// A query retains a monotone index into the ring plus a snapshot of the
// entities that satisfied its predicate on the prior observation. The
// added/removed/changed views are materialised together on the first access
// within a tick and memoised until the next tick, so repeated calls inside
// one tick are idempotent. current is never cached: it re-scans the entity
// buffer on every call.
//
// Query state is single-observer. Systems sharing a result set must share
// the *Query value and run on the same schedule, or hold their own query.
type Query struct {
	desc      QueryDesc
	relevance Mask // include ∪ exclude ∪ tracking: CHANGED events worth looking at
	world     *World

	lastIndex uint64
	prev      map[EntityID]struct{}
	seeds     []EntityID // world state at creation, reported as added once
	resynced  bool

	memoTick  uint32
	memoValid bool
	added     []EntityID
	removed   []EntityID
	changed   []EntityID
}

func newQuery(w *World, desc QueryDesc) *Query {
	q := &Query{
		desc:      desc,
		relevance: desc.Include.Or(desc.Exclude).Or(desc.Tracking),
		world:     w,
		lastIndex: w.ring.WriteIndex(),
		prev:      make(map[EntityID]struct{}),
	}
	// A query created against a pre-existing world reports that world as
	// added on its first observation, sourced from the buffer, not the ring.
	w.buf.EachAlive(func(id EntityID) { q.seeds = append(q.seeds, id) })
	return q
}

// Desc returns the descriptor this query was built from.
func (q *Query) Desc() QueryDesc {
	return q.desc
}

// Current returns every alive entity whose buffer bits satisfy
// include ∧ ¬exclude. The result is re-materialised per call; consumers on a
// hot path cache it themselves.
func (q *Query) Current(ctx *Context) []EntityID {
	var out []EntityID
	q.world.buf.EachAlive(func(id EntityID) {
		if q.world.buf.Matches(id, q.desc.Include, q.desc.Exclude) {
			out = append(out, id)
		}
	})
	return out
}

// Added returns the entities newly satisfying the predicate since the last
// observation. A query observed for the first time reports the entire
// pre-existing matching world, seeded from the entity buffer.
func (q *Query) Added(ctx *Context) []EntityID {
	q.observe(ctx)
	return q.added
}

// Removed returns the entities that satisfied the predicate on the prior
// observation but no longer do.
func (q *Query) Removed(ctx *Context) []EntityID {
	q.observe(ctx)
	return q.removed
}

// Changed returns the entities whose tracked components mutated since the
// last observation and that still satisfy the predicate.
func (q *Query) Changed(ctx *Context) []EntityID {
	q.observe(ctx)
	return q.changed
}

// Resynced reports whether the last observation had fallen more than the
// ring capacity behind and saw only the most recent window. Consumers must
// not depend on observing every historical transition, only the steady
// state, so this is informational.
func (q *Query) Resynced() bool {
	return q.resynced
}

// observe advances the query over the ring once per tick and computes the
// three reactive sets together.
func (q *Query) observe(ctx *Context) {
	tick := ctx.Tick()
	if q.memoValid && q.memoTick == tick {
		return
	}

	buf := q.world.buf
	ring := q.world.ring

	last := q.lastIndex
	addedEvs, idx1, rs1 := ring.CollectEntities(last, EventAdded, Mask{})
	removedEvs, idx2, rs2 := ring.CollectEntities(last, EventRemoved, Mask{})
	changedEvs, idx3, rs3 := ring.CollectEntities(last, EventChanged, q.relevance)
	var trackEvs []EntityID
	idx4 := idx3
	if !q.desc.Tracking.IsZero() {
		trackEvs, idx4, _ = ring.CollectEntities(last, EventChanged, q.desc.Tracking)
	}
	q.resynced = rs1 || rs2 || rs3
	q.lastIndex = max64(max64(idx1, idx2), max64(idx3, idx4))

	q.added = q.added[:0]
	q.removed = q.removed[:0]
	q.changed = q.changed[:0]

	appendAdded := func(id EntityID) {
		if _, have := q.prev[id]; have {
			return
		}
		if buf.Matches(id, q.desc.Include, q.desc.Exclude) {
			q.prev[id] = struct{}{}
			q.added = append(q.added, id)
		}
	}

	for _, id := range q.seeds {
		appendAdded(id)
	}
	q.seeds = nil
	for _, id := range addedEvs {
		appendAdded(id)
	}
	for _, id := range changedEvs {
		appendAdded(id)
	}

	// Entities leaving the predicate: every exit produces a REMOVED or a
	// CHANGED on a relevant component, so the event window covers them.
	for _, id := range removedEvs {
		q.dropIfGone(id)
	}
	for _, id := range changedEvs {
		q.dropIfGone(id)
	}

	if !q.desc.Tracking.IsZero() {
		for _, id := range trackEvs {
			if _, member := q.prev[id]; member {
				q.changed = append(q.changed, id)
			}
		}
	}

	q.memoTick = tick
	q.memoValid = true
}

func (q *Query) dropIfGone(id EntityID) {
	if _, member := q.prev[id]; !member {
		return
	}
	if !q.world.buf.Matches(id, q.desc.Include, q.desc.Exclude) {
		delete(q.prev, id)
		q.removed = append(q.removed, id)
	}
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
