package catalog

import "github.com/jacentio/catalog/store"

// Tables holds one table per entity, all from the same backend.
type Tables struct {
	Brands     store.Table[Brand]
	Categories store.Table[Category]
	Products   store.Table[Product]
	Users      store.Table[User]
}

// Catalog is the application-scoped set of services. Build it once per
// process and hand the same value to every request handler.
type Catalog struct {
	Brands     *Brands
	Categories *Categories
	Products   *Products
	Users      *Users
}

// New wires the services in two phases: products are constructed with the
// brand and category services, which then receive products as their
// delete-time dependents.
func New(tables Tables) *Catalog {
	brands := NewBrands(tables.Brands)
	categories := NewCategories(tables.Categories)
	products := NewProducts(tables.Products, brands, categories)

	brands.SetProducts(products)
	categories.SetProducts(products)

	return &Catalog{
		Brands:     brands,
		Categories: categories,
		Products:   products,
		Users:      NewUsers(tables.Users),
	}
}
