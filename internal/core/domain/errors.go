package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the workflow core. Handlers map these onto HTTP
// statuses; everything else is treated as a transient backend failure.
var (
	ErrEntityNotFound        = errors.New("entity not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrClientAlreadyAssigned = errors.New("client already assigned")
	ErrTherapistUnavailable  = errors.New("therapist not available")
	ErrMutationInFlight      = errors.New("mutation already in flight")
	ErrMutationTimeout       = errors.New("mutation timed out")
	ErrRateLimited           = errors.New("rate limited by backend")
	ErrValidation            = errors.New("validation failed")
	ErrBackendUnavailable    = errors.New("backend unavailable")
)

// TransitionError reports a requested edge that is not in the allowed set.
type TransitionError struct {
	EntityType EntityType
	From       string
	To         string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.EntityType, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
