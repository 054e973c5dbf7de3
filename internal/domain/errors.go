package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage signals a caller contract violation (e.g. wrong argument count).
	ErrUsage = errors.New("usage error")
	// ErrInvalidParams signals a parameter set that cannot be parsed or decoded.
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrSessionNotFound signals a missing search session record.
	ErrSessionNotFound = errors.New("search session not found")
	// ErrInvalidSession signals a malformed search session record.
	ErrInvalidSession = errors.New("invalid search session")
)

// KeyPrefix is the default prefix for keys written to the session store.
const KeyPrefix = "searchstate:"

// UsageError wraps ErrUsage with the offending operation.
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrUsage.Error(), e.Op, e.Reason)
}

func (e *UsageError) Unwrap() error { return ErrUsage }

// NewUsageError creates a usage error for the given operation.
func NewUsageError(op, reason string) error {
	return &UsageError{Op: op, Reason: reason}
}
