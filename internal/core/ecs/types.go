// Package ecs provides the core Entity Component System runtime for Canvas Loom.
//
// The runtime keeps every component as dense columnar storage indexed by
// entity identifier, records lifecycle transitions in a lock-free event ring,
// and executes systems in phase order on the main goroutine or on worker
// goroutines that share the backing memory.
package ecs

import (
	"time"

	"github.com/rs/zerolog"
)

// ==============================================
// Basic Types
// ==============================================

// EntityID represents a unique entity identifier.
// IDs are drawn from a fixed-capacity pool and reused after deletion.
type EntityID uint32

// ComponentID is the dense index assigned to a component definition at
// world construction, in the range [0, componentCount).
type ComponentID uint8

// Priority defines execution priority for systems within a phase.
// Higher values execute first; ties are broken by registration order.
type Priority int

// Priority constants for common system execution order
const (
	PriorityLowest  Priority = 0   // Background/cleanup systems
	PriorityLow     Priority = 25  // Non-critical systems
	PriorityNormal  Priority = 50  // Default priority
	PriorityHigh    Priority = 75  // Important logic
	PriorityHighest Priority = 100 // Critical input systems
)

// ==============================================
// Phases
// ==============================================

// Phase is one of the closed, ordered execution bands a system runs in.
// Earlier phases complete before later phases begin; no system from one
// phase overlaps a system from another.
type Phase int

const (
	PhaseInput Phase = iota
	PhasePreCapture
	PhaseCapture
	PhasePreUpdate
	PhaseUpdate
	PhasePostUpdate
	PhasePreRender
	PhaseRender
	PhasePostRender
	PhaseEpilogue

	phaseCount
)

// Phases returns every phase in execution order.
func Phases() []Phase {
	out := make([]Phase, phaseCount)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreCapture:
		return "preCapture"
	case PhaseCapture:
		return "capture"
	case PhasePreUpdate:
		return "preUpdate"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "postUpdate"
	case PhasePreRender:
		return "preRender"
	case PhaseRender:
		return "render"
	case PhasePostRender:
		return "postRender"
	case PhaseEpilogue:
		return "epilogue"
	default:
		return "unknown"
	}
}

// Valid reports whether p names an actual phase.
func (p Phase) Valid() bool {
	return p >= PhaseInput && p < phaseCount
}

// ==============================================
// Configuration
// ==============================================

// WorldConfig contains world initialization parameters.
type WorldConfig struct {
	MaxEntities  int `json:"max_entities"`   // Fixed entity capacity
	EventRingCap int `json:"event_ring_cap"` // Event ring capacity

	// Logger receives structured runtime logs. Defaults to a disabled logger.
	Logger zerolog.Logger `json:"-"`

	// WorkerReplyTimeout bounds how long the scheduler waits for a worker
	// replica to acknowledge an execute message.
	WorkerReplyTimeout time.Duration `json:"worker_reply_timeout"`
}

// DefaultWorldConfig returns a configuration sized for interactive canvas
// workloads.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		MaxEntities:        10000,
		EventRingCap:       16384,
		Logger:             zerolog.Nop(),
		WorkerReplyTimeout: 5 * time.Second,
	}
}

// ==============================================
// Constants
// ==============================================

const (
	// InvalidEntityID is the reserved "no entity" sentinel.
	InvalidEntityID EntityID = 0

	// MaxComponents bounds how many component definitions one world may
	// register; a component id travels in a single byte on event records.
	MaxComponents = 256
)
