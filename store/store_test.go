package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jacentio/catalog/store"
)

// --- Test Entity Types ---

// Parent is a root entity with no parent.
type Parent struct {
	ID   string
	Name string
}

func (p Parent) TableName() string       { return "parents" }
func (p Parent) EntityRef() string       { return "parent#" + p.ID }
func (p Parent) EntityType() string      { return "parent" }
func (p Parent) GetID() string           { return p.ID }
func (p Parent) WithID(id string) Parent { p.ID = id; return p }

// UniqueChild references a Parent and has a unique slug.
type UniqueChild struct {
	ID       string
	ParentID string
	Slug     string
}

func (u UniqueChild) TableName() string            { return "unique_children" }
func (u UniqueChild) EntityRef() string            { return "unique_child#" + u.ID }
func (u UniqueChild) EntityType() string           { return "unique_child" }
func (u UniqueChild) GetID() string                { return u.ID }
func (u UniqueChild) WithID(id string) UniqueChild { u.ID = id; return u }

func (u UniqueChild) ParentChecks() []store.ConditionCheck {
	return []store.ConditionCheck{{TableName: "parents", ID: u.ParentID}}
}

func (u UniqueChild) UniqueFields() map[string]string {
	return map[string]string{"slug": u.Slug}
}

// --- Unit Tests ---

func TestDefaultConfig(t *testing.T) {
	cfg := store.DefaultConfig()

	if cfg.TablePrefix != "" {
		t.Errorf("expected empty TablePrefix, got %q", cfg.TablePrefix)
	}
	if cfg.UniqueTable != "catalog_unique_constraints" {
		t.Errorf("expected UniqueTable catalog_unique_constraints, got %q", cfg.UniqueTable)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		input  store.Config
		unique string
	}{
		{
			name:   "empty config gets default unique table",
			input:  store.Config{},
			unique: "catalog_unique_constraints",
		},
		{
			name:   "prefix applies to default unique table",
			input:  store.Config{TablePrefix: "dev_"},
			unique: "dev_catalog_unique_constraints",
		},
		{
			name:   "explicit unique table is kept",
			input:  store.Config{TablePrefix: "dev_", UniqueTable: "constraints"},
			unique: "constraints",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			cfg.Validate()
			if cfg.UniqueTable != tt.unique {
				t.Errorf("expected UniqueTable %q, got %q", tt.unique, cfg.UniqueTable)
			}
		})
	}
}

func TestConfigTable(t *testing.T) {
	cfg := store.Config{TablePrefix: "prod_"}
	if got := cfg.Table("brands"); got != "prod_brands" {
		t.Errorf("expected prod_brands, got %q", got)
	}
	if got := store.DefaultConfig().Table("brands"); got != "brands" {
		t.Errorf("expected brands, got %q", got)
	}
}

func TestEntityInterfaces(t *testing.T) {
	p := Parent{ID: "p1", Name: "Test Parent"}
	if p.EntityRef() != "parent#p1" {
		t.Errorf("expected parent#p1, got %s", p.EntityRef())
	}
	if got := p.WithID("p2"); got.GetID() != "p2" || p.GetID() != "p1" {
		t.Errorf("expected WithID to return a copy, got %q and %q", got.GetID(), p.GetID())
	}

	var e store.Entity = UniqueChild{ID: "c1", ParentID: "p1", Slug: "s"}
	pc, ok := e.(store.ParentChecker)
	if !ok {
		t.Fatal("expected UniqueChild to implement ParentChecker")
	}
	checks := pc.ParentChecks()
	if len(checks) != 1 || checks[0].TableName != "parents" || checks[0].ID != "p1" {
		t.Errorf("unexpected parent checks %+v", checks)
	}

	uf, ok := e.(store.UniqueFielder)
	if !ok {
		t.Fatal("expected UniqueChild to implement UniqueFielder")
	}
	if uf.UniqueFields()["slug"] != "s" {
		t.Errorf("unexpected unique fields %v", uf.UniqueFields())
	}

	if _, ok := any(p).(store.ParentChecker); ok {
		t.Error("did not expect Parent to implement ParentChecker")
	}
}

// --- Test Errors ---

func TestErrors(t *testing.T) {
	errs := []error{
		store.ErrParentNotFound,
		store.ErrNotFound,
		store.ErrAlreadyExists,
		store.ErrConcurrentModification,
		store.ErrDuplicateValue,
	}

	seen := make(map[string]bool)
	for _, err := range errs {
		msg := err.Error()
		if seen[msg] {
			t.Errorf("duplicate error message: %s", msg)
		}
		seen[msg] = true
	}

	wrapped := fmt.Errorf("%w: slug=%q", store.ErrDuplicateValue, "x")
	if !errors.Is(wrapped, store.ErrDuplicateValue) {
		t.Error("expected wrapped error to match ErrDuplicateValue")
	}
}

func TestParentError(t *testing.T) {
	err := error(&store.ParentError{Missing: []store.ConditionCheck{
		{TableName: "brands", ID: "7"},
		{TableName: "categories", ID: "9"},
	}})

	if !errors.Is(err, store.ErrParentNotFound) {
		t.Error("expected ParentError to match ErrParentNotFound")
	}
	want := "store: parent entity not found: brands#7, categories#9"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	var pe *store.ParentError
	if !errors.As(fmt.Errorf("create: %w", err), &pe) {
		t.Fatal("expected errors.As to find ParentError")
	}
	if !pe.MissingTable("brands") || !pe.MissingTable("categories") {
		t.Error("expected both tables reported missing")
	}
	if pe.MissingTable("users") {
		t.Error("did not expect users reported missing")
	}
}
