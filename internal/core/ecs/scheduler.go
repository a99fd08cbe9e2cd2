package ecs

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// ==============================================
// Scheduler
// ==============================================

// Scheduler orders system execution within a tick. Systems are grouped by
// phase; within a phase they run in priority order (higher first), ties
// broken by registration order. Earlier phases complete before later phases
// begin, and a worker system's replicas are awaited before the next system
// of the same phase runs, so two runs with the same registrations produce
// the same observable order.
type Scheduler struct {
	world  *World
	phases [][]*system // indexed by Phase
	names  map[string]bool
	seq    int
	log    zerolog.Logger
}

func newScheduler(w *World, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		world:  w,
		phases: make([][]*system, phaseCount),
		names:  make(map[string]bool),
		log:    log,
	}
}

func (s *Scheduler) register(sys *system) error {
	if !sys.phase.Valid() {
		return NewSystemError(ErrInvalidPhase,
			fmt.Sprintf("phase %d is not in the phase enumeration", sys.phase), sys.name)
	}
	if s.names[sys.name] {
		return NewSystemError(ErrSystemExists,
			fmt.Sprintf("system %q is already registered", sys.name), sys.name)
	}
	s.names[sys.name] = true
	sys.seq = s.seq
	s.seq++

	band := append(s.phases[sys.phase], sys)
	sort.SliceStable(band, func(i, j int) bool {
		if band[i].priority != band[j].priority {
			return band[i].priority > band[j].priority
		}
		return band[i].seq < band[j].seq
	})
	s.phases[sys.phase] = band

	s.log.Debug().
		Str("system", sys.name).
		Stringer("phase", sys.phase).
		Int("priority", int(sys.priority)).
		Bool("worker", sys.workers != nil).
		Msg("system registered")
	return nil
}

// runTick executes every phase in order. The first failing system aborts
// the tick; no later system of any phase runs.
func (s *Scheduler) runTick(ctx *Context) error {
	for phase := PhaseInput; phase < phaseCount; phase++ {
		for _, sys := range s.phases[phase] {
			start := time.Now()
			var err error
			if sys.workers != nil {
				err = sys.workers.execute(ctx.Tick())
			} else {
				err = sys.fn(ctx)
			}
			s.world.metrics.observeSystem(sys.name, time.Since(start))
			if err != nil {
				s.log.Error().
					Err(err).
					Str("system", sys.name).
					Stringer("phase", phase).
					Uint32("tick", ctx.Tick()).
					Msg("tick failed")
				if _, ok := err.(*ECSError); ok {
					return err
				}
				return WrapError(err, ErrSystemFailure,
					fmt.Sprintf("system %q (phase %s)", sys.name, phase))
			}
		}
	}
	return nil
}

// stop shuts down every worker group.
func (s *Scheduler) stop() {
	for _, band := range s.phases {
		for _, sys := range band {
			if sys.workers != nil {
				sys.workers.stop()
			}
		}
	}
}
