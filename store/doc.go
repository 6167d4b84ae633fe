// Package store defines the persistence contract shared by the catalog backends.
//
// A backend exposes one [Table] per entity type. Tables are responsible for
// identifier assignment, parent existence checks and unique constraints, so
// that the domain layer can stay backend-agnostic.
//
// # Key Features
//
//   - Parent validation on child creation and replacement
//   - Unique field constraints within a table
//   - Physical deletes (no tombstones)
//   - Optimistic locking with a version attribute (DynamoDB backend)
//
// # Entity Interfaces
//
// All entities must implement [Record]:
//
//	type Entity interface {
//	    TableName() string
//	    EntityType() string
//	    EntityRef() string
//	    GetID() string
//	}
//
// Entities referencing other entities implement [ParentChecker]:
//
//	type ParentChecker interface {
//	    ParentChecks() []ConditionCheck
//	}
//
// Entities with unique constraints implement [UniqueFielder]:
//
//	type UniqueFielder interface {
//	    UniqueFields() map[string]string
//	}
//
// # Backends
//
//   - store/memory: array-backed, identifiers are max+1
//   - store/dynamo: DynamoDB, identifiers are UUIDs
//   - store/sqlstore: gorm over PostgreSQL, identifiers are UUIDs
//
// # Errors
//
// The package defines backend-independent errors:
//
//   - [ErrNotFound] - entity doesn't exist
//   - [ErrParentNotFound] - parent validation failed, see [ParentError]
//   - [ErrAlreadyExists] - entity with ID already exists
//   - [ErrConcurrentModification] - optimistic lock failed
//   - [ErrDuplicateValue] - unique constraint violated
package store
