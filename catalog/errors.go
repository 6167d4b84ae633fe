package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacentio/catalog/store"
)

var (
	// ErrNotFound is returned when the requested identifier doesn't exist.
	ErrNotFound = errors.New("catalog: not found")

	// ErrValidation is returned when input is missing, empty or invalid.
	ErrValidation = errors.New("catalog: validation failed")

	// ErrBrandNotFound is returned when a product references a missing brand.
	ErrBrandNotFound = errors.New("catalog: brand does not exist")

	// ErrCategoryNotFound is returned when a product references a missing category.
	ErrCategoryNotFound = errors.New("catalog: category does not exist")

	// ErrIntegrity is returned when a delete would orphan products.
	ErrIntegrity = errors.New("catalog: referenced by existing products")

	// ErrConflict is returned when a unique value is taken or a record
	// changed underneath the write.
	ErrConflict = errors.New("catalog: conflict")
)

// ValidationError names the offending fields.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, strings.Join(e.Fields, ", "), e.Reason)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func required(fields ...string) error {
	return &ValidationError{Fields: fields, Reason: "required"}
}

func invalid(field, reason string) error {
	return &ValidationError{Fields: []string{field}, Reason: reason}
}

// referenceError builds the error for unresolved product foreign keys.
func referenceError(brandMissing, categoryMissing bool, brandID, categoryID ID) error {
	switch {
	case brandMissing && categoryMissing:
		return &ValidationError{
			Fields: []string{"brandId", "categoryId"},
			Reason: fmt.Sprintf("do not exist (brand %q, category %q)", brandID, categoryID),
		}
	case brandMissing:
		return fmt.Errorf("%w: %q", ErrBrandNotFound, brandID)
	case categoryMissing:
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, categoryID)
	}
	return nil
}

// storeError translates store errors for entity. Unknown errors pass through.
func storeError(err error, entity string, id ID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s %q", ErrNotFound, entity, id)
	case errors.Is(err, store.ErrDuplicateValue):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, store.ErrAlreadyExists):
		return fmt.Errorf("%w: %s %q already exists", ErrConflict, entity, id)
	case errors.Is(err, store.ErrConcurrentModification):
		return fmt.Errorf("%w: %s %q was modified concurrently", ErrConflict, entity, id)
	}
	return err
}
