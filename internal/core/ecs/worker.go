package ecs

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ==============================================
// Worker Transport
// ==============================================

// WorkerEntry is the entry point executed by every replica of a worker
// system, once per tick. Entries run on dedicated goroutines and touch the
// world only through the shared regions of their WorkerContext. Writes to
// the same field of the same entity from two replicas in one tick are a
// program error the runtime does not arbitrate; partition work by replica
// index instead.
type WorkerEntry func(*WorkerContext) error

// WorkerInit is the single initialisation payload a replica receives before
// its first execute: the shared memory regions plus the component map.
// Everything a worker reads or writes flows through these handles.
type WorkerInit struct {
	Pool           *EntityPool
	Buffer         *EntityBuffer
	Ring           *EventRing
	EntityCapacity int
	ComponentCount int
	Components     map[string]*ComponentStore
}

// WorkerContext is a replica's view of the world for one execute message.
type WorkerContext struct {
	init    *WorkerInit
	tick    uint32
	replica int
	total   int
}

// Tick returns the tick the execute message was dispatched for.
func (c *WorkerContext) Tick() uint32 { return c.tick }

// Replica returns this replica's index in [0, Replicas()).
func (c *WorkerContext) Replica() int { return c.replica }

// Replicas returns the replica count of the worker system.
func (c *WorkerContext) Replicas() int { return c.total }

// Component returns the shared store for a component name.
func (c *WorkerContext) Component(name string) (*ComponentStore, error) {
	s, ok := c.init.Components[name]
	if !ok {
		return nil, ComponentNotRegisteredErr(name)
	}
	return s, nil
}

// CreateEntity allocates an id from the shared pool and marks it alive.
func (c *WorkerContext) CreateEntity() (EntityID, error) {
	id, err := c.init.Pool.Get()
	if err != nil {
		return InvalidEntityID, err
	}
	c.init.Buffer.Create(id)
	return id, nil
}

// RemoveEntity clears the entity and returns its id to the shared pool.
func (c *WorkerContext) RemoveEntity(id EntityID) {
	c.init.Buffer.Delete(id)
	c.init.Pool.Put(id)
}

// IsAlive tests the shared alive flag.
func (c *WorkerContext) IsAlive(id EntityID) bool {
	return c.init.Buffer.IsAlive(id)
}

// EachAlive iterates every alive entity.
func (c *WorkerContext) EachAlive(fn func(EntityID)) {
	c.init.Buffer.EachAlive(fn)
}

// ==============================================
// Replica Lifecycle
// ==============================================

// workerMsg is the only traffic on a replica's channel: one init message,
// then execute messages carrying a tick. All data moves through the shared
// regions of the init payload, never through messages.
type workerMsg struct {
	init  *WorkerInit
	tick  uint32
	reply chan error
}

type workerReplica struct {
	index int
	msgs  chan workerMsg
}

// workerGroup owns every replica of one worker system.
type workerGroup struct {
	name     string
	entry    WorkerEntry
	replicas []*workerReplica
	timeout  time.Duration
	log      zerolog.Logger
}

func newWorkerGroup(cfg WorkerSystemConfig, init *WorkerInit, timeout time.Duration, log zerolog.Logger) (*workerGroup, error) {
	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}
	g := &workerGroup{
		name:    cfg.Name,
		entry:   cfg.Entry,
		timeout: timeout,
		log:     log.With().Str("worker", cfg.Name).Logger(),
	}
	for i := 0; i < threads; i++ {
		r := &workerReplica{index: i, msgs: make(chan workerMsg)}
		g.replicas = append(g.replicas, r)
		go g.run(r, threads)
	}
	// Init handshake: each replica must acknowledge the shared-memory
	// payload before its first execute.
	for _, r := range g.replicas {
		reply := make(chan error, 1)
		select {
		case r.msgs <- workerMsg{init: init, reply: reply}:
		case <-time.After(timeout):
			return nil, NewSystemError(ErrWorkerInitFailure,
				fmt.Sprintf("replica %d did not accept init", r.index), cfg.Name)
		}
		select {
		case err := <-reply:
			if err != nil {
				return nil, WrapError(err, ErrWorkerInitFailure,
					fmt.Sprintf("replica %d failed init", r.index))
			}
		case <-time.After(timeout):
			return nil, NewSystemError(ErrWorkerInitFailure,
				fmt.Sprintf("replica %d did not report ready", r.index), cfg.Name)
		}
		g.log.Debug().Int("replica", r.index).Msg("worker replica ready")
	}
	return g, nil
}

// run is a replica's goroutine: consume the init message, then serve
// execute messages until the channel closes.
func (g *workerGroup) run(r *workerReplica, total int) {
	var init *WorkerInit
	for msg := range r.msgs {
		if msg.init != nil {
			init = msg.init
			msg.reply <- nil
			continue
		}
		if init == nil {
			msg.reply <- NewSystemError(ErrWorkerExecuteFailure, "execute before init", g.name)
			continue
		}
		ctx := &WorkerContext{init: init, tick: msg.tick, replica: r.index, total: total}
		msg.reply <- g.entry(ctx)
	}
}

// execute dispatches one tick to every replica and blocks until all of them
// reply, preserving the in-phase barrier.
func (g *workerGroup) execute(tick uint32) error {
	var eg errgroup.Group
	for _, r := range g.replicas {
		eg.Go(func() error {
			reply := make(chan error, 1)
			r.msgs <- workerMsg{tick: tick, reply: reply}
			select {
			case err := <-reply:
				if err != nil {
					return WrapError(err, ErrWorkerExecuteFailure,
						fmt.Sprintf("worker %s replica %d", g.name, r.index))
				}
				return nil
			case <-time.After(g.timeout):
				return NewSystemError(ErrWorkerExecuteFailure,
					fmt.Sprintf("replica %d did not reply within %s", r.index, g.timeout), g.name)
			}
		})
	}
	return eg.Wait()
}

// stop closes every replica channel; goroutines drain and exit.
func (g *workerGroup) stop() {
	for _, r := range g.replicas {
		close(r.msgs)
	}
}
