package store

import "context"

// Entity is the base interface for all storable types.
type Entity interface {
	// TableName returns the table name for this entity type.
	TableName() string

	// EntityType returns the entity type name (e.g., "brand").
	EntityType() string

	// EntityRef returns the type-qualified reference (e.g., "brand#42").
	EntityRef() string

	// GetID returns the entity identifier, empty before creation.
	GetID() string
}

// Record is an Entity that can be copied with a new identifier.
// Tables use it to assign identifiers on create.
type Record[T any] interface {
	Entity

	// WithID returns a copy of the record carrying id.
	WithID(id string) T
}

// ParentChecker is implemented by entities that reference other entities.
type ParentChecker interface {
	// ParentChecks returns one existence check per referenced parent.
	ParentChecks() []ConditionCheck
}

// ConditionCheck defines a parent existence check.
type ConditionCheck struct {
	// TableName is the table the parent lives in.
	TableName string

	// ID is the parent's identifier.
	ID string
}

// UniqueFielder is implemented by entities with unique field constraints.
type UniqueFielder interface {
	// UniqueFields returns field name to value mappings for fields
	// that must be unique within the table.
	UniqueFields() map[string]string
}

// Table is a collection of records of a single entity type.
//
// Implementations live in the memory, dynamo and sqlstore subpackages.
type Table[T Record[T]] interface {
	// Name returns the table name.
	Name() string

	// List returns every record in insertion order.
	List(ctx context.Context) ([]T, error)

	// Get returns the record with id, or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// Create assigns an identifier, validates parents and unique fields,
	// and stores the record.
	Create(ctx context.Context, rec T) (T, error)

	// Put replaces an existing record, keyed by rec.GetID().
	Put(ctx context.Context, rec T) (T, error)

	// Delete removes the record with id and returns it.
	Delete(ctx context.Context, id string) (T, error)

	// Find returns the records whose attribute attr equals value.
	Find(ctx context.Context, attr, value string) ([]T, error)

	// Exists reports whether any record has attribute attr equal to value.
	Exists(ctx context.Context, attr, value string) (bool, error)
}
