package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jacentio/catalog/store"
)

// Product attribute names used for foreign-key lookups.
const (
	brandIDAttr    = "brandId"
	categoryIDAttr = "categoryId"
)

// Products manages product records and guards their foreign keys.
type Products struct {
	table      store.Table[Product]
	brands     *Brands
	categories *Categories
	now        func() time.Time
}

// NewProducts creates the product service. Brands and categories are
// read-only collaborators used to validate foreign keys.
func NewProducts(table store.Table[Product], brands *Brands, categories *Categories) *Products {
	return &Products{
		table:      table,
		brands:     brands,
		categories: categories,
		now:        time.Now,
	}
}

// List returns all products in insertion order.
func (p *Products) List(ctx context.Context) ([]Product, error) {
	return p.table.List(ctx)
}

// Get returns the product with id.
func (p *Products) Get(ctx context.Context, id ID) (Product, error) {
	product, err := p.table.Get(ctx, string(id))
	return product, storeError(err, "product", id)
}

// ListByCategory returns the products in a category, possibly none.
func (p *Products) ListByCategory(ctx context.Context, categoryID ID) ([]Product, error) {
	return p.table.Find(ctx, categoryIDAttr, string(categoryID))
}

// ListByBrand returns the products of a brand, possibly none.
func (p *Products) ListByBrand(ctx context.Context, brandID ID) ([]Product, error) {
	return p.table.Find(ctx, brandIDAttr, string(brandID))
}

// ExistsForBrand reports whether any product references brandID.
func (p *Products) ExistsForBrand(ctx context.Context, brandID ID) (bool, error) {
	return p.table.Exists(ctx, brandIDAttr, string(brandID))
}

// ExistsForCategory reports whether any product references categoryID.
func (p *Products) ExistsForCategory(ctx context.Context, categoryID ID) (bool, error) {
	return p.table.Exists(ctx, categoryIDAttr, string(categoryID))
}

// Create validates in, resolves its brand and category, applies defaults and
// stores the product. Nothing is stored when validation fails.
func (p *Products) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := checkProductRequired(in); err != nil {
		return Product{}, err
	}
	if err := checkProductFields(in); err != nil {
		return Product{}, err
	}
	if err := p.resolve(ctx, in.BrandID, in.CategoryID); err != nil {
		return Product{}, err
	}

	now := p.now().UTC()
	product := Product{
		ProductName: strings.TrimSpace(*in.ProductName),
		Description: strings.TrimSpace(*in.Description),
		Price:       *in.Price,
		Image:       imageOr(in.Image),
		Stock:       intOr(in.Stock, 0),
		CategoryID:  *in.CategoryID,
		BrandID:     *in.BrandID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	product, err := p.table.Create(ctx, product)
	return product, p.writeError(err, "", *in.BrandID, *in.CategoryID)
}

// Replace overwrites every field of the product, with the same requirements
// and defaults as Create.
func (p *Products) Replace(ctx context.Context, id ID, in ProductInput) (Product, error) {
	current, err := p.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := checkProductRequired(in); err != nil {
		return Product{}, err
	}
	if err := checkProductFields(in); err != nil {
		return Product{}, err
	}
	if err := p.resolve(ctx, in.BrandID, in.CategoryID); err != nil {
		return Product{}, err
	}

	product, err := p.table.Put(ctx, Product{
		ID:          current.ID,
		ProductName: strings.TrimSpace(*in.ProductName),
		Description: strings.TrimSpace(*in.Description),
		Price:       *in.Price,
		Image:       imageOr(in.Image),
		Stock:       intOr(in.Stock, 0),
		CategoryID:  *in.CategoryID,
		BrandID:     *in.BrandID,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   p.now().UTC(),
	})
	return product, p.writeError(err, id, *in.BrandID, *in.CategoryID)
}

// Update merges the supplied fields into the product. A supplied brandId or
// categoryId is validated whatever its value.
func (p *Products) Update(ctx context.Context, id ID, in ProductInput) (Product, error) {
	product, err := p.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := checkProductFields(in); err != nil {
		return Product{}, err
	}
	if err := p.resolve(ctx, in.BrandID, in.CategoryID); err != nil {
		return Product{}, err
	}

	if in.ProductName != nil {
		product.ProductName = strings.TrimSpace(*in.ProductName)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Image != nil {
		product.Image = imageOr(in.Image)
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.BrandID != nil {
		product.BrandID = *in.BrandID
	}
	product.UpdatedAt = p.now().UTC()

	product, err = p.table.Put(ctx, product)
	return product, p.writeError(err, id, product.BrandID, product.CategoryID)
}

// Delete removes the product. Products have no dependents.
func (p *Products) Delete(ctx context.Context, id ID) (Product, error) {
	product, err := p.table.Delete(ctx, string(id))
	return product, storeError(err, "product", id)
}

// Expand resolves the brand and category of each product for display.
// Unresolvable references are left nil rather than failing the read.
func (p *Products) Expand(ctx context.Context, products ...Product) ([]ProductDetails, error) {
	brands := make(map[ID]*BrandSummary)
	categories := make(map[ID]*CategorySummary)

	out := make([]ProductDetails, 0, len(products))
	for _, product := range products {
		brand, ok := brands[product.BrandID]
		if !ok {
			b, err := p.brands.Get(ctx, product.BrandID)
			switch {
			case err == nil:
				brand = &BrandSummary{ID: b.ID, BrandName: b.BrandName, Description: b.Description}
			case !errors.Is(err, ErrNotFound):
				return nil, err
			}
			brands[product.BrandID] = brand
		}

		category, ok := categories[product.CategoryID]
		if !ok {
			c, err := p.categories.Get(ctx, product.CategoryID)
			switch {
			case err == nil:
				category = &CategorySummary{ID: c.ID, CategoryName: c.CategoryName, Description: c.Description}
			case !errors.Is(err, ErrNotFound):
				return nil, err
			}
			categories[product.CategoryID] = category
		}

		out = append(out, ProductDetails{Product: product, Brand: brand, Category: category})
	}
	return out, nil
}

// resolve checks each supplied foreign key against its store.
func (p *Products) resolve(ctx context.Context, brandID, categoryID *ID) error {
	var brandMissing, categoryMissing bool
	var bID, cID ID

	if brandID != nil {
		bID = *brandID
		if _, err := p.brands.Get(ctx, bID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			brandMissing = true
		}
	}
	if categoryID != nil {
		cID = *categoryID
		if _, err := p.categories.Get(ctx, cID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			categoryMissing = true
		}
	}
	return referenceError(brandMissing, categoryMissing, bID, cID)
}

// writeError maps a store write error, including parent check failures
// raised by a brand or category deleted after resolve.
func (p *Products) writeError(err error, id, brandID, categoryID ID) error {
	var pe *store.ParentError
	if errors.As(err, &pe) {
		return referenceError(pe.MissingTable(BrandsTable), pe.MissingTable(CategoriesTable), brandID, categoryID)
	}
	return storeError(err, "product", id)
}

func checkProductRequired(in ProductInput) error {
	var missing []string
	if in.ProductName == nil {
		missing = append(missing, "productName")
	}
	if in.Description == nil {
		missing = append(missing, "description")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.CategoryID == nil {
		missing = append(missing, "categoryId")
	}
	if in.BrandID == nil {
		missing = append(missing, "brandId")
	}
	if len(missing) > 0 {
		return required(missing...)
	}
	return nil
}

// checkProductFields validates the supplied fields' values.
func checkProductFields(in ProductInput) error {
	if in.ProductName != nil && isBlank(in.ProductName) {
		return invalid("productName", "must not be empty")
	}
	if in.Description != nil && isBlank(in.Description) {
		return invalid("description", "must not be empty")
	}
	if in.Price != nil && *in.Price < 0 {
		return invalid("price", "must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return invalid("stock", "must not be negative")
	}
	return nil
}

func imageOr(image *string) string {
	if image == nil || strings.TrimSpace(*image) == "" {
		return DefaultImage
	}
	return *image
}

func intOr(n *int, def int) int {
	if n == nil {
		return def
	}
	return *n
}
