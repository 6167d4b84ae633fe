package store

import (
	"errors"
	"strings"
)

var (
	// ErrParentNotFound is returned when a referenced parent entity doesn't exist.
	ErrParentNotFound = errors.New("store: parent entity not found")

	// ErrNotFound is returned when an entity doesn't exist.
	ErrNotFound = errors.New("store: entity not found")

	// ErrAlreadyExists is returned when attempting to create an entity with an existing ID.
	ErrAlreadyExists = errors.New("store: entity already exists")

	// ErrConcurrentModification is returned when optimistic lock fails (version mismatch).
	ErrConcurrentModification = errors.New("store: entity was modified concurrently")

	// ErrDuplicateValue is returned when a unique constraint is violated.
	ErrDuplicateValue = errors.New("store: duplicate value for unique field")
)

// ParentError reports which parent checks failed on a write.
type ParentError struct {
	// Missing holds the failed checks, in the order the entity declared them.
	Missing []ConditionCheck
}

func (e *ParentError) Error() string {
	refs := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		refs = append(refs, m.TableName+"#"+m.ID)
	}
	return ErrParentNotFound.Error() + ": " + strings.Join(refs, ", ")
}

// Unwrap makes errors.Is(err, ErrParentNotFound) hold.
func (e *ParentError) Unwrap() error { return ErrParentNotFound }

// MissingTable reports whether the check against table failed.
func (e *ParentError) MissingTable(table string) bool {
	for _, m := range e.Missing {
		if m.TableName == table {
			return true
		}
	}
	return false
}
