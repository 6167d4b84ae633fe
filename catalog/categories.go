package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jacentio/catalog/store"
)

// CategoryDependents reports whether products reference a category.
// *Products implements it.
type CategoryDependents interface {
	ExistsForCategory(ctx context.Context, categoryID ID) (bool, error)
}

// Categories manages category records.
type Categories struct {
	table    store.Table[Category]
	products CategoryDependents
	now      func() time.Time
}

// NewCategories creates the category service. Products are injected later with
// SetProducts, since the product service needs Categories at construction.
func NewCategories(table store.Table[Category]) *Categories {
	return &Categories{table: table, now: time.Now}
}

// SetProducts injects the back-reference consulted by Delete.
func (c *Categories) SetProducts(products CategoryDependents) {
	c.products = products
}

// List returns all categories in insertion order.
func (c *Categories) List(ctx context.Context) ([]Category, error) {
	return c.table.List(ctx)
}

// Get returns the category with id.
func (c *Categories) Get(ctx context.Context, id ID) (Category, error) {
	category, err := c.table.Get(ctx, string(id))
	return category, storeError(err, "category", id)
}

// Create validates in and stores a new category. Active defaults to true.
func (c *Categories) Create(ctx context.Context, in CategoryInput) (Category, error) {
	if err := checkNamed(in.CategoryName, in.Description, "categoryName"); err != nil {
		return Category{}, err
	}
	now := c.now().UTC()
	category, err := c.table.Create(ctx, Category{
		CategoryName: strings.TrimSpace(*in.CategoryName),
		Description:  strings.TrimSpace(*in.Description),
		Active:       boolOr(in.Active, true),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return category, storeError(err, "category", "")
}

// Replace overwrites every field of the category. Absent active resets to true.
func (c *Categories) Replace(ctx context.Context, id ID, in CategoryInput) (Category, error) {
	current, err := c.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if err := checkNamed(in.CategoryName, in.Description, "categoryName"); err != nil {
		return Category{}, err
	}
	category, err := c.table.Put(ctx, Category{
		ID:           current.ID,
		CategoryName: strings.TrimSpace(*in.CategoryName),
		Description:  strings.TrimSpace(*in.Description),
		Active:       boolOr(in.Active, true),
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    c.now().UTC(),
	})
	return category, storeError(err, "category", id)
}

// Update merges the supplied fields into the category.
func (c *Categories) Update(ctx context.Context, id ID, in CategoryInput) (Category, error) {
	category, err := c.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if in.CategoryName != nil {
		if isBlank(in.CategoryName) {
			return Category{}, invalid("categoryName", "must not be empty")
		}
		category.CategoryName = strings.TrimSpace(*in.CategoryName)
	}
	if in.Description != nil {
		if isBlank(in.Description) {
			return Category{}, invalid("description", "must not be empty")
		}
		category.Description = strings.TrimSpace(*in.Description)
	}
	if in.Active != nil {
		category.Active = *in.Active
	}
	category.UpdatedAt = c.now().UTC()
	category, err = c.table.Put(ctx, category)
	return category, storeError(err, "category", id)
}

// Delete removes the category unless a product references it.
func (c *Categories) Delete(ctx context.Context, id ID) (Category, error) {
	if _, err := c.Get(ctx, id); err != nil {
		return Category{}, err
	}
	if c.products != nil {
		used, err := c.products.ExistsForCategory(ctx, id)
		if err != nil {
			return Category{}, err
		}
		if used {
			return Category{}, fmt.Errorf("%w: category %q has products", ErrIntegrity, id)
		}
	}
	category, err := c.table.Delete(ctx, string(id))
	return category, storeError(err, "category", id)
}
