// =======================
// engine/state.go
// =======================

package engine

import "errors"

// ErrInvalidState is returned when an operation is called in a state that
// does not allow it.
var ErrInvalidState = errors.New("invalid engine state")

// State is the lifecycle position of an Engine.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}
