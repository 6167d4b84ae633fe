package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jacentio/catalog/store"
)

// BrandDependents reports whether products reference a brand.
// *Products implements it.
type BrandDependents interface {
	ExistsForBrand(ctx context.Context, brandID ID) (bool, error)
}

// Brands manages brand records.
type Brands struct {
	table    store.Table[Brand]
	products BrandDependents
	now      func() time.Time
}

// NewBrands creates the brand service. Products are injected later with
// SetProducts, since the product service needs Brands at construction.
func NewBrands(table store.Table[Brand]) *Brands {
	return &Brands{table: table, now: time.Now}
}

// SetProducts injects the back-reference consulted by Delete.
func (b *Brands) SetProducts(products BrandDependents) {
	b.products = products
}

// List returns all brands in insertion order.
func (b *Brands) List(ctx context.Context) ([]Brand, error) {
	return b.table.List(ctx)
}

// Get returns the brand with id.
func (b *Brands) Get(ctx context.Context, id ID) (Brand, error) {
	brand, err := b.table.Get(ctx, string(id))
	return brand, storeError(err, "brand", id)
}

// Create validates in and stores a new brand. Active defaults to true.
func (b *Brands) Create(ctx context.Context, in BrandInput) (Brand, error) {
	if err := checkNamed(in.BrandName, in.Description, "brandName"); err != nil {
		return Brand{}, err
	}
	now := b.now().UTC()
	brand, err := b.table.Create(ctx, Brand{
		BrandName:   strings.TrimSpace(*in.BrandName),
		Description: strings.TrimSpace(*in.Description),
		Active:      boolOr(in.Active, true),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return brand, storeError(err, "brand", "")
}

// Replace overwrites every field of the brand. Absent active resets to true.
func (b *Brands) Replace(ctx context.Context, id ID, in BrandInput) (Brand, error) {
	current, err := b.Get(ctx, id)
	if err != nil {
		return Brand{}, err
	}
	if err := checkNamed(in.BrandName, in.Description, "brandName"); err != nil {
		return Brand{}, err
	}
	brand, err := b.table.Put(ctx, Brand{
		ID:          current.ID,
		BrandName:   strings.TrimSpace(*in.BrandName),
		Description: strings.TrimSpace(*in.Description),
		Active:      boolOr(in.Active, true),
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   b.now().UTC(),
	})
	return brand, storeError(err, "brand", id)
}

// Update merges the supplied fields into the brand.
func (b *Brands) Update(ctx context.Context, id ID, in BrandInput) (Brand, error) {
	brand, err := b.Get(ctx, id)
	if err != nil {
		return Brand{}, err
	}
	if in.BrandName != nil {
		if isBlank(in.BrandName) {
			return Brand{}, invalid("brandName", "must not be empty")
		}
		brand.BrandName = strings.TrimSpace(*in.BrandName)
	}
	if in.Description != nil {
		if isBlank(in.Description) {
			return Brand{}, invalid("description", "must not be empty")
		}
		brand.Description = strings.TrimSpace(*in.Description)
	}
	if in.Active != nil {
		brand.Active = *in.Active
	}
	brand.UpdatedAt = b.now().UTC()
	brand, err = b.table.Put(ctx, brand)
	return brand, storeError(err, "brand", id)
}

// Delete removes the brand unless a product references it.
func (b *Brands) Delete(ctx context.Context, id ID) (Brand, error) {
	if _, err := b.Get(ctx, id); err != nil {
		return Brand{}, err
	}
	if b.products != nil {
		used, err := b.products.ExistsForBrand(ctx, id)
		if err != nil {
			return Brand{}, err
		}
		if used {
			return Brand{}, fmt.Errorf("%w: brand %q has products", ErrIntegrity, id)
		}
	}
	brand, err := b.table.Delete(ctx, string(id))
	return brand, storeError(err, "brand", id)
}

// checkNamed validates the name and description required by brands and categories.
func checkNamed(name, description *string, nameField string) error {
	var missing []string
	if isBlank(name) {
		missing = append(missing, nameField)
	}
	if isBlank(description) {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return required(missing...)
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
