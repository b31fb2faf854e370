package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services. Controllers map each to a stable
// HTTP status and error code so callers can branch on cause.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnavailable     = errors.New("service unavailable")
)

// NotFoundIDsError reports a batch lookup where some ids could not be
// resolved. It names every missing id and unwraps to ErrNotFound.
type NotFoundIDsError struct {
	Entity string
	IDs    []int64
}

func (e *NotFoundIDsError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s with ids [%s] not found", e.Entity, strings.Join(parts, ", "))
}

func (e *NotFoundIDsError) Unwrap() error {
	return ErrNotFound
}
