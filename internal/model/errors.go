package model

import "errors"

// Sentinel errors shared by the store, engine and API layers.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrInvalidInterval     = errors.New("invalid interval")
	ErrOverlappingInterval = errors.New("overlapping interval")
	ErrConflictingIdentity = errors.New("conflicting identity")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInUse               = errors.New("in use")
)

// ErrorKind returns a short label for err, used in metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidInterval):
		return "invalid_interval"
	case errors.Is(err, ErrOverlappingInterval):
		return "overlapping_interval"
	case errors.Is(err, ErrConflictingIdentity):
		return "conflicting_identity"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
