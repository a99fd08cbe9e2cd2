package ecs

// ==============================================
// Context
// ==============================================

// Context is the handle every main-thread system receives: entity
// lifecycle, component access, singleton access, and the current tick.
// One context exists per world; systems must not retain it across worlds.
type Context struct {
	w    *World
	tick uint32
	dt   float64
}

// World returns the owning world.
func (c *Context) World() *World { return c.w }

// Tick returns the current tick counter.
func (c *Context) Tick() uint32 { return c.tick }

// DT returns the host-supplied delta time for this tick, in seconds.
func (c *Context) DT() float64 { return c.dt }

// CreateEntity allocates an id and marks it alive. Exhaustion surfaces as
// an ENTITY_POOL_EXHAUSTED error the calling system must handle or abort on.
func (c *Context) CreateEntity() (EntityID, error) {
	id, err := c.w.pool.Get()
	if err != nil {
		return InvalidEntityID, err
	}
	c.w.buf.Create(id)
	return id, nil
}

// RemoveEntity clears every component bit, emits one REMOVED event, and
// recycles the id.
func (c *Context) RemoveEntity(id EntityID) {
	c.w.buf.Delete(id)
	c.w.pool.Put(id)
}

// IsAlive tests the entity's alive flag.
func (c *Context) IsAlive(id EntityID) bool {
	return c.w.buf.IsAlive(id)
}

// HasComponent tests the entity's bit for a component.
func (c *Context) HasComponent(id EntityID, s *ComponentStore) bool {
	return c.w.buf.Has(id, s.ID())
}

// AddComponent attaches a component with the given initial data (nil for
// defaults).
func (c *Context) AddComponent(id EntityID, s *ComponentStore, data Data) error {
	return s.Add(id, data)
}

// RemoveComponent detaches a component.
func (c *Context) RemoveComponent(id EntityID, s *ComponentStore) {
	s.Remove(id)
}

// Component resolves a registered component store by name.
func (c *Context) Component(name string) (*ComponentStore, error) {
	return c.w.Component(name)
}

// Singleton resolves a registered singleton store by name.
func (c *Context) Singleton(name string) (*SingletonStore, error) {
	return c.w.Singleton(name)
}
