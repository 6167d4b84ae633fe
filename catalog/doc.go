// Package catalog implements the catalog domain: brands, categories, products
// and users, with referential integrity between products and the brands and
// categories they reference.
//
// # Wiring
//
// [New] builds exactly one service per entity over a set of [Tables]. The
// [Products] service receives the [Brands] and [Categories] services at
// construction and validates foreign keys through them; the brand and
// category services then receive a back-reference to [Products] so that
// their Delete can refuse to orphan a product. Share the returned [Catalog]
// across all request handlers.
//
// # Presence
//
// Inputs are structs with pointer fields. A nil pointer means the field was
// not supplied; a pointer to a zero value (0, false, "") means it was. Zero
// is a valid price and stock, and a foreign key of "0" is validated like any
// other.
//
// # Errors
//
//   - [ErrNotFound] - the identifier doesn't exist
//   - [ErrValidation] - required field missing, empty or invalid, see [ValidationError]
//   - [ErrBrandNotFound] - brandId doesn't reference an existing brand
//   - [ErrCategoryNotFound] - categoryId doesn't reference an existing category
//   - [ErrIntegrity] - delete blocked by dependent products
//   - [ErrConflict] - unique constraint violated or concurrent write
//
// The package never logs; callers decide how to report errors.
package catalog
