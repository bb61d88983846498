package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (wrapped) when an entity ID is not in the catalog.
var ErrNotFound = errors.New("not found")

// ValidationError reports input the catalog refuses to accept.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError is returned when the store failed to commit a mutation.
// The in-memory graph has already been restored when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: failed to persist changes: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func notFound(kind Kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
