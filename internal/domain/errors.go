package domain

import "fmt"

// Error taxonomy for the checkout and lifecycle engine. Handlers map these to
// HTTP statuses; anything else is a 500.

// ValidationError: the request is malformed or violates a business rule
// before any state is touched (empty cart, below minimum order weight).
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError: the commit lost a race, typically an oversell caught by the
// conditional stock decrement. The whole unit of work is rolled back.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

func Conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError: a referenced entity does not exist (or is not owned by the
// caller, which is reported identically).
type NotFoundError struct{ Entity string }

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func NotFound(entity string) error { return &NotFoundError{Entity: entity} }

// IllegalTransitionError: a status change not permitted from the current
// state. Nothing is mutated.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ExternalServiceError: a side call (gateway, notifier) failed. Post-commit
// occurrences are logged and swallowed, never surfaced to the caller.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return e.Service + ": " + e.Err.Error()
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func ExternalError(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}
