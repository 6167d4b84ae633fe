// Package memory provides array-backed store tables.
//
// Records are kept in insertion order and identifiers are assigned as one
// greater than the current maximum. All tables created on the same [DB] share
// one lock, so parent checks and writes see a consistent view.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/jacentio/catalog/store"
)

// DB groups tables so that parent checks can resolve across them.
type DB struct {
	mu     sync.RWMutex
	tables map[string]lookup
}

// lookup is the type-erased view of a table used for parent checks.
type lookup interface {
	has(id string) bool
}

// NewDB creates an empty DB.
func NewDB() *DB {
	return &DB{tables: make(map[string]lookup)}
}

// Table is an array-backed store.Table.
type Table[T store.Record[T]] struct {
	db   *DB
	name string
	rows []T
}

// NewTable creates a table and registers it on db under name.
// Registering the same name twice replaces the earlier table.
func NewTable[T store.Record[T]](db *DB, name string) *Table[T] {
	t := &Table[T]{db: db, name: name}
	db.mu.Lock()
	db.tables[name] = t
	db.mu.Unlock()
	return t
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// List returns a copy of every record in insertion order.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out, nil
}

// Get returns the record with id, or store.ErrNotFound.
func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	i := t.indexOf(id)
	if i < 0 {
		var zero T
		return zero, store.ErrNotFound
	}
	return t.rows[i], nil
}

// Create assigns the next identifier and appends rec.
func (t *Table[T]) Create(ctx context.Context, rec T) (T, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	var zero T
	if err := t.checkParents(rec); err != nil {
		return zero, err
	}
	if err := t.checkUnique(rec, ""); err != nil {
		return zero, err
	}

	rec = rec.WithID(strconv.FormatInt(t.nextID(), 10))
	t.rows = append(t.rows, rec)
	return rec, nil
}

// Put replaces the record with the same identifier, keeping its position.
func (t *Table[T]) Put(ctx context.Context, rec T) (T, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	var zero T
	i := t.indexOf(rec.GetID())
	if i < 0 {
		return zero, store.ErrNotFound
	}
	if err := t.checkParents(rec); err != nil {
		return zero, err
	}
	if err := t.checkUnique(rec, rec.GetID()); err != nil {
		return zero, err
	}
	t.rows[i] = rec
	return rec, nil
}

// Delete removes the record with id and returns it.
func (t *Table[T]) Delete(ctx context.Context, id string) (T, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		var zero T
		return zero, store.ErrNotFound
	}
	rec := t.rows[i]
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return rec, nil
}

// Find returns the records whose attribute attr equals value.
func (t *Table[T]) Find(ctx context.Context, attr, value string) ([]T, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	var out []T
	for _, rec := range t.rows {
		v, err := attribute(rec, attr)
		if err != nil {
			return nil, err
		}
		if v == value {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Exists reports whether any record has attribute attr equal to value.
func (t *Table[T]) Exists(ctx context.Context, attr, value string) (bool, error) {
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	for _, rec := range t.rows {
		v, err := attribute(rec, attr)
		if err != nil {
			return false, err
		}
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

func (t *Table[T]) has(id string) bool {
	return t.indexOf(id) >= 0
}

func (t *Table[T]) indexOf(id string) int {
	for i, rec := range t.rows {
		if rec.GetID() == id {
			return i
		}
	}
	return -1
}

// nextID returns one greater than the largest numeric identifier.
func (t *Table[T]) nextID() int64 {
	var max int64
	for _, rec := range t.rows {
		if n, err := strconv.ParseInt(rec.GetID(), 10, 64); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// checkParents must be called with the DB lock held.
func (t *Table[T]) checkParents(rec T) error {
	pc, ok := any(rec).(store.ParentChecker)
	if !ok {
		return nil
	}
	var missing []store.ConditionCheck
	for _, check := range pc.ParentChecks() {
		parent, ok := t.db.tables[check.TableName]
		if !ok || !parent.has(check.ID) {
			missing = append(missing, check)
		}
	}
	if len(missing) > 0 {
		return &store.ParentError{Missing: missing}
	}
	return nil
}

// checkUnique must be called with the DB lock held. self is skipped.
func (t *Table[T]) checkUnique(rec T, self string) error {
	uf, ok := any(rec).(store.UniqueFielder)
	if !ok {
		return nil
	}
	fields := uf.UniqueFields()
	for _, other := range t.rows {
		if self != "" && other.GetID() == self {
			continue
		}
		for field, value := range any(other).(store.UniqueFielder).UniqueFields() {
			if want, ok := fields[field]; ok && want == value {
				return fmt.Errorf("%w: %s=%q", store.ErrDuplicateValue, field, value)
			}
		}
	}
	return nil
}

// attribute resolves attr against the struct field whose json tag matches.
func attribute(rec any, attr string) (string, error) {
	v := reflect.Indirect(reflect.ValueOf(rec))
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("memory: %T is not a struct", rec)
	}
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := f.Tag.Get("json")
		for j := 0; j < len(name); j++ {
			if name[j] == ',' {
				name = name[:j]
				break
			}
		}
		if name == "" {
			name = f.Name
		}
		if name != attr {
			continue
		}
		fv := v.Field(i)
		switch fv.Kind() {
		case reflect.String:
			return fv.String(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(fv.Int(), 10), nil
		case reflect.Bool:
			return strconv.FormatBool(fv.Bool()), nil
		default:
			return fmt.Sprint(fv.Interface()), nil
		}
	}
	return "", fmt.Errorf("memory: %s has no attribute %q", typ.Name(), attr)
}
