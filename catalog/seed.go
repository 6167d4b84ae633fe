package catalog

import "context"

// SeedBrands are the brands loaded by Seed.
var SeedBrands = []BrandInput{
	{BrandName: ptr("Nike"), Description: ptr("Sportswear and footwear")},
	{BrandName: ptr("Adidas"), Description: ptr("Athletic apparel and shoes")},
	{BrandName: ptr("Apple"), Description: ptr("Electronics and technology products")},
	{BrandName: ptr("Samsung"), Description: ptr("Consumer electronics and appliances")},
	{BrandName: ptr("Sony"), Description: ptr("Electronics, gaming, and entertainment")},
	{BrandName: ptr("Coca-Cola"), Description: ptr("Beverages and soft drinks")},
	{BrandName: ptr("Pepsi"), Description: ptr("Beverages and snacks")},
	{BrandName: ptr("Toyota"), Description: ptr("Automobiles and vehicles")},
	{BrandName: ptr("Honda"), Description: ptr("Automobiles, motorcycles, and engines")},
	{BrandName: ptr("Microsoft"), Description: ptr("Software, devices, and technology")},
}

// SeedCategories are the categories loaded by Seed.
var SeedCategories = []CategoryInput{
	{CategoryName: ptr("Electronics"), Description: ptr("Devices, gadgets, and accessories")},
	{CategoryName: ptr("Books"), Description: ptr("Printed and digital books")},
	{CategoryName: ptr("Clothing"), Description: ptr("Fashion items")},
	{CategoryName: ptr("Sports"), Description: ptr("Sports equipment")},
	{CategoryName: ptr("Home & Kitchen"), Description: ptr("Home appliances"), Active: ptr(false)},
}

// SeedResult counts the records created by Seed.
type SeedResult struct {
	Brands     int
	Categories int
}

// Seed loads SeedBrands and SeedCategories into empty tables. Tables that
// already hold records are left alone, so Seed is safe to run repeatedly.
func Seed(ctx context.Context, c *Catalog) (SeedResult, error) {
	var res SeedResult

	brands, err := c.Brands.List(ctx)
	if err != nil {
		return res, err
	}
	if len(brands) == 0 {
		for _, in := range SeedBrands {
			if _, err := c.Brands.Create(ctx, in); err != nil {
				return res, err
			}
			res.Brands++
		}
	}

	categories, err := c.Categories.List(ctx)
	if err != nil {
		return res, err
	}
	if len(categories) == 0 {
		for _, in := range SeedCategories {
			if _, err := c.Categories.Create(ctx, in); err != nil {
				return res, err
			}
			res.Categories++
		}
	}

	return res, nil
}

func ptr[T any](v T) *T { return &v }
