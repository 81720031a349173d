package services

import "fmt"

// ValidationError reports malformed caller input. Always recoverable by the
// caller; controllers surface it as 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing cycle, review or user.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NotAuthorizedError reports an actor lacking the role an operation needs.
type NotAuthorizedError struct {
	UserID       int
	RequiredRole string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("user %d is not authorized (requires %s)", e.UserID, e.RequiredRole)
}

// InvalidStateError kinds.
const (
	StateAlreadyStarted   = "already_started"
	StateAlreadyCompleted = "already_completed"
	StateTemplateRequired = "template_required"
	StateNoValidPhase     = "no_valid_phase"
	StateConflict         = "conflict"
	StateNotApprovable    = "not_approvable"
)

// InvalidStateError reports an operation that is not valid for the current
// state of a cycle or review. CurrentState is included so callers can
// explain the rejection.
type InvalidStateError struct {
	Kind         string
	CurrentState string
}

func (e *InvalidStateError) Error() string {
	if e.CurrentState == "" {
		return fmt.Sprintf("invalid state: %s", e.Kind)
	}
	return fmt.Sprintf("invalid state: %s (current state: %s)", e.Kind, e.CurrentState)
}

// TransientStoreError wraps a persistence failure. All mutating operations
// in this package are idempotent or serialized, so retrying the whole
// operation is safe.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientStoreError{Op: op, Err: err}
}
