package domain

import "fmt"

// Error types for consistent error handling across the service.
//
// Note the engine itself never returns errors: invalid intents are
// no-ops by contract. These types exist for the layers around it
// (transport validation, auth, persistence).

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates an invalid parent PIN or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrSnapshotStore indicates a failure in the snapshot backend.
// Saves are best-effort so this is logged, never surfaced to intents.
type ErrSnapshotStore struct {
	Backend string
	Err     error
}

func (e *ErrSnapshotStore) Error() string {
	return fmt.Sprintf("snapshot store error [%s]: %v", e.Backend, e.Err)
}

func (e *ErrSnapshotStore) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker for the remote blob
// store is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
