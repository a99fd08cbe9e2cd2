package ecs

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ==============================================
// Registry
// ==============================================

// Registry collects component and singleton definitions ahead of world
// construction. Definitions are immutable once the world is built.
type Registry struct {
	components []*ComponentDef
	singletons []*SingletonDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddComponent registers a component definition.
func (r *Registry) AddComponent(defs ...*ComponentDef) *Registry {
	r.components = append(r.components, defs...)
	return r
}

// AddSingleton registers a singleton definition.
func (r *Registry) AddSingleton(defs ...*SingletonDef) *Registry {
	r.singletons = append(r.singletons, defs...)
	return r
}

// ==============================================
// World
// ==============================================

// World owns one complete runtime: the entity pool, the entity buffer, the
// event ring, every component and singleton store, the scheduler, and the
// external-store tracker. Worlds are independent; tests construct as many
// as they need without cross-contamination.
type World struct {
	cfg WorldConfig
	log zerolog.Logger

	pool *EntityPool
	buf  *EntityBuffer
	ring *EventRing

	comps         []*ComponentStore
	compsByName   map[string]*ComponentStore
	singles       []*SingletonStore
	singlesByName map[string]*SingletonStore

	sched   *Scheduler
	sync    *syncTracker
	metrics *Metrics

	tick uint32
	ctx  Context
}

// NewWorld builds a world from a configuration and a sealed registry.
// Component ids are assigned densely in registration order; singleton ids
// continue the same sequence. Stores, the buffer, the ring and the pool are
// all allocated here and never resized.
func NewWorld(cfg WorldConfig, reg *Registry) (*World, error) {
	if cfg.MaxEntities <= 0 {
		cfg.MaxEntities = DefaultWorldConfig().MaxEntities
	}
	if cfg.EventRingCap <= 0 {
		cfg.EventRingCap = DefaultWorldConfig().EventRingCap
	}
	if cfg.WorkerReplyTimeout <= 0 {
		cfg.WorkerReplyTimeout = DefaultWorldConfig().WorkerReplyTimeout
	}
	total := len(reg.components) + len(reg.singletons)
	if total > MaxComponents {
		return nil, NewECSError(ErrComponentLimit,
			fmt.Sprintf("%d definitions exceed the limit of %d", total, MaxComponents))
	}

	w := &World{
		cfg:           cfg,
		log:           cfg.Logger,
		ring:          NewEventRing(cfg.EventRingCap),
		pool:          NewEntityPool(cfg.MaxEntities),
		compsByName:   make(map[string]*ComponentStore, len(reg.components)),
		singlesByName: make(map[string]*SingletonStore, len(reg.singletons)),
		metrics:       noopMetrics(),
	}
	w.buf = NewEntityBuffer(cfg.MaxEntities, len(reg.components), w.ring)

	next := ComponentID(0)
	for _, def := range reg.components {
		if err := def.validate(); err != nil {
			return nil, err
		}
		if _, dup := w.compsByName[def.name]; dup {
			return nil, NewComponentError(ErrComponentExists,
				fmt.Sprintf("component %q registered twice", def.name), def.name)
		}
		def.sealed = true
		store := newComponentStore(def, next, cfg.MaxEntities, w.buf, w.ring)
		w.comps = append(w.comps, store)
		w.compsByName[def.name] = store
		next++
	}
	for i, def := range reg.singletons {
		if err := def.validate(); err != nil {
			return nil, err
		}
		if _, dup := w.singlesByName[def.name]; dup {
			return nil, NewComponentError(ErrComponentExists,
				fmt.Sprintf("singleton %q registered twice", def.name), def.name)
		}
		def.sealed = true
		// Singleton event ids live above the entity capacity.
		eventID := EntityID(cfg.MaxEntities + 1 + i)
		store := newSingletonStore(def, next, eventID, w.ring)
		w.singles = append(w.singles, store)
		w.singlesByName[def.name] = store
		next++
	}

	w.sched = newScheduler(w, w.log)
	w.sync = newSyncTracker(w)
	w.ctx = Context{w: w}

	w.log.Info().
		Int("max_entities", cfg.MaxEntities).
		Int("components", len(w.comps)).
		Int("singletons", len(w.singles)).
		Int("ring_cap", cfg.EventRingCap).
		Msg("world constructed")
	return w, nil
}

// Config returns the construction-time configuration.
func (w *World) Config() WorldConfig { return w.cfg }

// Ring exposes the event ring (shared with workers and adapters).
func (w *World) Ring() *EventRing { return w.ring }

// Buffer exposes the entity buffer.
func (w *World) Buffer() *EntityBuffer { return w.buf }

// Pool exposes the entity pool.
func (w *World) Pool() *EntityPool { return w.pool }

// Component returns the store for a registered component name.
func (w *World) Component(name string) (*ComponentStore, error) {
	s, ok := w.compsByName[name]
	if !ok {
		return nil, ComponentNotRegisteredErr(name)
	}
	return s, nil
}

// MustComponent is Component for wiring code where absence is a bug.
func (w *World) MustComponent(name string) *ComponentStore {
	s, err := w.Component(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Singleton returns the store for a registered singleton name.
func (w *World) Singleton(name string) (*SingletonStore, error) {
	s, ok := w.singlesByName[name]
	if !ok {
		return nil, ComponentNotRegisteredErr(name)
	}
	return s, nil
}

// MustSingleton is Singleton for wiring code where absence is a bug.
func (w *World) MustSingleton(name string) *SingletonStore {
	s, err := w.Singleton(name)
	if err != nil {
		panic(err)
	}
	return s
}

// NewQuery materialises a reactive query from a descriptor builder.
func (w *World) NewQuery(b *QueryBuilder) *Query {
	return newQuery(w, b.Desc())
}

// Context returns the world's context handle. The same value is passed to
// every main-thread system.
func (w *World) Context() *Context {
	return &w.ctx
}

// ==============================================
// System Registration
// ==============================================

// AddSystem registers a main-thread system.
func (w *World) AddSystem(name string, phase Phase, priority Priority, fn SystemFunc) error {
	return w.sched.register(&system{name: name, phase: phase, priority: priority, fn: fn})
}

// AddWorkerSystem registers a worker system and spawns its replicas. Each
// replica receives one init payload carrying the world's shared regions;
// execution is dispatched per tick and awaited before the next system in
// the same phase.
func (w *World) AddWorkerSystem(cfg WorkerSystemConfig) error {
	if cfg.Entry == nil {
		return NewSystemError(ErrWorkerInitFailure, "worker system needs an entry point", cfg.Name)
	}
	init := &WorkerInit{
		Pool:           w.pool,
		Buffer:         w.buf,
		Ring:           w.ring,
		EntityCapacity: w.cfg.MaxEntities,
		ComponentCount: len(w.comps),
		Components:     w.compsByName,
	}
	group, err := newWorkerGroup(cfg, init, w.cfg.WorkerReplyTimeout, w.log)
	if err != nil {
		return err
	}
	sys := &system{name: cfg.Name, phase: cfg.Phase, priority: cfg.Priority, workers: group}
	if err := w.sched.register(sys); err != nil {
		group.stop()
		return err
	}
	return nil
}

// SetAdapter installs the external store adapter and hands it the schema.
func (w *World) SetAdapter(a StoreAdapter) error {
	return w.sync.setAdapter(a)
}

// RegisterMetrics enables Prometheus instruments on the given registerer.
// Without it the world collects nothing.
func (w *World) RegisterMetrics(reg registerer) error {
	m, err := newMetrics(reg)
	if err != nil {
		return err
	}
	w.metrics = m
	return nil
}

// ==============================================
// Tick
// ==============================================

// Tick runs one complete scheduler iteration: advance the tick counter,
// let the adapter flush external changes in, run every phase in order, then
// commit the adapter. The tick either completes or fails atomically with a
// reported error; on failure the commit is skipped.
func (w *World) Tick(dt float64) error {
	start := time.Now()
	w.tick++
	w.ring.SetTick(w.tick)
	w.ctx.tick = w.tick
	w.ctx.dt = dt

	if err := w.sync.flush(&w.ctx); err != nil {
		return WrapError(err, ErrSystemFailure, "adapter flush")
	}
	if err := w.sched.runTick(&w.ctx); err != nil {
		return err
	}
	if err := w.sync.commit(); err != nil {
		return WrapError(err, ErrSystemFailure, "adapter commit")
	}

	w.metrics.observeTick(w, time.Since(start))
	return nil
}

// TickCount returns the number of completed or in-flight ticks.
func (w *World) TickCount() uint32 {
	return w.tick
}

// Close stops every worker replica. The world must not tick afterwards.
func (w *World) Close() {
	w.sched.stop()
	w.log.Info().Uint32("ticks", w.tick).Msg("world closed")
}
