package ecs

// ==============================================
// Query Descriptors
// ==============================================

// QueryDesc is the plain descriptor a query is built from: an include mask
// (entity must have all), an exclude mask (entity must have none), and a
// tracking mask (CHANGED events on these drive the changed view).
type QueryDesc struct {
	Include  Mask
	Exclude  Mask
	Tracking Mask
}

// QueryBuilder accumulates a descriptor fluently. It is a write-once value:
//
//	q := ecs.Q().With(pos, shape).Without(hidden).Tracking(pos)
type QueryBuilder struct {
	desc QueryDesc
}

// Q starts a new query descriptor.
func Q() *QueryBuilder {
	return &QueryBuilder{}
}

// With requires every listed component to be present.
func (b *QueryBuilder) With(stores ...*ComponentStore) *QueryBuilder {
	for _, s := range stores {
		b.desc.Include.Set(s.ID())
	}
	return b
}

// Without forbids every listed component.
func (b *QueryBuilder) Without(stores ...*ComponentStore) *QueryBuilder {
	for _, s := range stores {
		b.desc.Exclude.Set(s.ID())
	}
	return b
}

// Tracking observes CHANGED events on the listed components.
func (b *QueryBuilder) Tracking(stores ...*ComponentStore) *QueryBuilder {
	for _, s := range stores {
		b.desc.Tracking.Set(s.ID())
	}
	return b
}

// Desc returns the accumulated descriptor.
func (b *QueryBuilder) Desc() QueryDesc {
	return b.desc
}
