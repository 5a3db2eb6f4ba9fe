// Package apperrors defines the engine's error taxonomy: a small, closed set
// of sentinel errors that transport adapters map to status codes. Engine
// code wraps these with fmt.Errorf("...: %w", ...) rather than inventing new
// error types.
package apperrors

import "errors"

var (
	// ErrNotFound: a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the caller is not authorized for this operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState: the operation is meaningful but the target's current
	// state forbids it.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict: a uniqueness or concurrent-mutation violation.
	ErrConflict = errors.New("conflict")
	// ErrInternal: an unexpected storage/infrastructure failure.
	ErrInternal = errors.New("internal error")
)

// Kind classifies an error against the taxonomy for transport adapters.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidState
	KindConflict
	KindInternal
)

// Classify maps err to its Kind by unwrapping against the sentinels above.
// Errors produced outside this package classify as KindInternal.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}
