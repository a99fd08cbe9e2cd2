package ecs

import (
	"fmt"
	"time"
)

// ==============================================
// Error Interface and Base Types
// ==============================================

// ECSError represents an error raised by the runtime.
// Provides structured context for debugging and programmatic handling.
type ECSError struct {
	Code      string    `json:"code"`                // Error code for programmatic handling
	Message   string    `json:"message"`             // Human-readable error message
	Component string    `json:"component,omitempty"` // Component involved in error
	Entity    EntityID  `json:"entity,omitempty"`    // Entity involved in error
	System    string    `json:"system,omitempty"`    // System that caused the error
	Timestamp time.Time `json:"timestamp"`           // When the error occurred
	Err       error     `json:"-"`                   // Wrapped cause, if any
}

// Error implements the error interface.
func (e *ECSError) Error() string {
	switch {
	case e.Entity != InvalidEntityID && e.Component != "":
		return fmt.Sprintf("[%s] %s (entity: %d, component: %s)", e.Code, e.Message, e.Entity, e.Component)
	case e.Entity != InvalidEntityID:
		return fmt.Sprintf("[%s] %s (entity: %d)", e.Code, e.Message, e.Entity)
	case e.Component != "":
		return fmt.Sprintf("[%s] %s (component: %s)", e.Code, e.Message, e.Component)
	case e.System != "":
		return fmt.Sprintf("[%s] %s (system: %s)", e.Code, e.Message, e.System)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *ECSError) Unwrap() error {
	return e.Err
}

// ==============================================
// Common Error Codes
// ==============================================

const (
	// Entity-related errors
	ErrEntityPoolExhausted = "ENTITY_POOL_EXHAUSTED" // No free entity ids remain
	ErrInvalidEntityID     = "INVALID_ENTITY_ID"     // EntityID is 0 or out of range

	// Component-related errors
	ErrComponentNotRegistered = "COMPONENT_NOT_REGISTERED" // Definition unknown to this world
	ErrComponentExists        = "COMPONENT_EXISTS"         // Duplicate definition name
	ErrComponentLimit         = "COMPONENT_LIMIT"          // More than MaxComponents definitions
	ErrInvalidFieldValue      = "INVALID_FIELD_VALUE"      // Supplied data does not fit the schema

	// System-related errors
	ErrSystemExists  = "SYSTEM_EXISTS"  // Duplicate system name
	ErrInvalidPhase  = "INVALID_PHASE"  // Phase outside the closed enumeration
	ErrSystemFailure = "SYSTEM_FAILURE" // A system returned an error during a tick

	// Worker-related errors
	ErrWorkerInitFailure    = "WORKER_INIT_FAILURE"    // Replica never reported ready
	ErrWorkerExecuteFailure = "WORKER_EXECUTE_FAILURE" // Replica reported an execute error

	// Query/ring errors
	ErrRingOverflow = "RING_OVERFLOW" // Reader fell behind by more than capacity

	// General errors
	ErrWorldSealed   = "WORLD_SEALED"   // Registration after construction
	ErrInternalError = "INTERNAL_ERROR" // Unexpected internal error
)

// ==============================================
// Error Factory Functions
// ==============================================

// NewECSError creates a new ECS error with the current timestamp.
func NewECSError(code, message string) *ECSError {
	return &ECSError{Code: code, Message: message, Timestamp: time.Now()}
}

// NewEntityError creates an entity-specific error.
func NewEntityError(code, message string, id EntityID) *ECSError {
	return &ECSError{Code: code, Message: message, Entity: id, Timestamp: time.Now()}
}

// NewComponentError creates a component-specific error.
func NewComponentError(code, message, component string) *ECSError {
	return &ECSError{Code: code, Message: message, Component: component, Timestamp: time.Now()}
}

// NewSystemError creates a system-specific error.
func NewSystemError(code, message, system string) *ECSError {
	return &ECSError{Code: code, Message: message, System: system, Timestamp: time.Now()}
}

// WrapError wraps an existing error with runtime context.
func WrapError(err error, code, message string) *ECSError {
	return &ECSError{
		Code:      code,
		Message:   fmt.Sprintf("%s: %v", message, err),
		Timestamp: time.Now(),
		Err:       err,
	}
}

// ==============================================
// Error Helper Functions
// ==============================================

func codeOf(err error) string {
	if e, ok := err.(*ECSError); ok {
		return e.Code
	}
	return ""
}

// IsPoolExhausted checks if an error reports entity pool exhaustion.
func IsPoolExhausted(err error) bool {
	return codeOf(err) == ErrEntityPoolExhausted
}

// IsComponentNotRegistered checks if an error reports an unknown definition.
func IsComponentNotRegistered(err error) bool {
	return codeOf(err) == ErrComponentNotRegistered
}

// IsWorkerError checks if an error is worker-related.
func IsWorkerError(err error) bool {
	c := codeOf(err)
	return c == ErrWorkerInitFailure || c == ErrWorkerExecuteFailure
}

// ==============================================
// Predefined Common Errors
// ==============================================

var (
	// PoolExhaustedErr reports that no free entity id remained.
	PoolExhaustedErr = func(capacity int) *ECSError {
		return NewECSError(ErrEntityPoolExhausted,
			fmt.Sprintf("entity pool of %d ids exhausted", capacity))
	}

	// ComponentNotRegisteredErr reports an unknown component definition.
	ComponentNotRegisteredErr = func(name string) *ECSError {
		return NewComponentError(ErrComponentNotRegistered,
			fmt.Sprintf("component %q is not registered with this world", name), name)
	}
)
