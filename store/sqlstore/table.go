// Package sqlstore provides relational store tables on top of gorm.
//
// Column names follow the entities' gorm column tags, which match their JSON
// attribute names, so Find and Exists accept the same attribute names as the
// other backends.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jacentio/catalog/store"
)

// Open connects to PostgreSQL with driver errors translated to gorm's
// portable errors (e.g. gorm.ErrDuplicatedKey).
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the table for each model.
func AutoMigrate(db *gorm.DB, config store.Config, models ...store.Entity) error {
	for _, m := range models {
		if err := db.Table(config.Table(m.TableName())).AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %s: %w", m.TableName(), err)
		}
	}
	return nil
}

// Table stores one entity type in a SQL table.
type Table[T store.Record[T]] struct {
	db     *gorm.DB
	config store.Config
	name   string
	newID  func() string
}

// NewTable creates a Table for the logical table name.
func NewTable[T store.Record[T]](db *gorm.DB, config store.Config, name string) *Table[T] {
	return &Table[T]{
		db:     db,
		config: config,
		name:   name,
		newID:  uuid.NewString,
	}
}

// Name returns the logical table name.
func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) table(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Table(t.config.Table(t.name))
}

// List returns every row ordered by creation time.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	if err := t.ordered(t.table(ctx, t.db)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns the row with id, or store.ErrNotFound.
func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	return t.get(ctx, t.db, id)
}

// Create assigns a UUID and inserts rec after checking its parents.
func (t *Table[T]) Create(ctx context.Context, rec T) (T, error) {
	rec = rec.WithID(t.newID())
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := t.checkParents(ctx, tx, rec); err != nil {
			return err
		}
		return t.table(ctx, tx).Create(&rec).Error
	})
	if err != nil {
		var zero T
		return zero, mapError(err)
	}
	return rec, nil
}

// Put overwrites every column of the row with rec's identifier.
func (t *Table[T]) Put(ctx context.Context, rec T) (T, error) {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := t.table(ctx, tx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(map[string]any{"id": rec.GetID()}).
			Limit(1).
			Find(new([]T))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		if err := t.checkParents(ctx, tx, rec); err != nil {
			return err
		}
		return t.table(ctx, tx).
			Where(map[string]any{"id": rec.GetID()}).
			Select("*").
			Updates(&rec).Error
	})
	if err != nil {
		var zero T
		return zero, mapError(err)
	}
	return rec, nil
}

// Delete removes the row with id and returns it.
func (t *Table[T]) Delete(ctx context.Context, id string) (T, error) {
	var deleted T
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := t.get(ctx, tx, id)
		if err != nil {
			return err
		}
		res := t.table(ctx, tx).Where(map[string]any{"id": id}).Delete(new(T))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		deleted = rec
		return nil
	})
	if err != nil {
		var zero T
		return zero, mapError(err)
	}
	return deleted, nil
}

// Find returns the rows whose column attr equals value.
func (t *Table[T]) Find(ctx context.Context, attr, value string) ([]T, error) {
	var rows []T
	err := t.ordered(t.table(ctx, t.db).Where(map[string]any{attr: value})).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exists reports whether any row has column attr equal to value.
func (t *Table[T]) Exists(ctx context.Context, attr, value string) (bool, error) {
	var n int64
	if err := t.table(ctx, t.db).Where(map[string]any{attr: value}).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *Table[T]) get(ctx context.Context, db *gorm.DB, id string) (T, error) {
	var rec T
	err := t.table(ctx, db).Where(map[string]any{"id": id}).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, store.ErrNotFound
	}
	return rec, err
}

func (t *Table[T]) ordered(db *gorm.DB) *gorm.DB {
	return db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "createdAt"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

func (t *Table[T]) checkParents(ctx context.Context, tx *gorm.DB, rec T) error {
	pc, ok := any(rec).(store.ParentChecker)
	if !ok {
		return nil
	}
	var missing []store.ConditionCheck
	for _, check := range pc.ParentChecks() {
		var n int64
		err := tx.WithContext(ctx).
			Table(t.config.Table(check.TableName)).
			Where(map[string]any{"id": check.ID}).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n == 0 {
			missing = append(missing, check)
		}
	}
	if len(missing) > 0 {
		return &store.ParentError{Missing: missing}
	}
	return nil
}

// mapError translates gorm errors into store errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrDuplicateValue, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	default:
		return err
	}
}
