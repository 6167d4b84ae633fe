// Package httpapi exposes the catalog over HTTP with gin.
//
// Every route shares the single *catalog.Catalog passed to NewRouter.
// Errors are reported as {"message": ...}: unknown identifiers map to 404,
// validation, reference, integrity and conflict failures to 400.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jacentio/catalog/catalog"
)

// Options configures optional router behaviour.
type Options struct {
	// Redis enables the write rate limiter when non-nil.
	Redis redis.Cmdable

	// RateLimit is the number of writes allowed per client per RateWindow.
	RateLimit int

	// RateWindow defaults to one minute.
	RateWindow time.Duration
}

// NewRouter builds the gin engine serving cat.
func NewRouter(cat *catalog.Catalog, opts Options) *gin.Engine {
	if opts.RateWindow == 0 {
		opts.RateWindow = time.Minute
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog())

	r.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limit := RateLimit(opts.Redis, opts.RateLimit, opts.RateWindow)

	resource[catalog.Brand, catalog.Brand, catalog.BrandInput]{
		name:    "brand",
		list:    cat.Brands.List,
		get:     cat.Brands.Get,
		create:  cat.Brands.Create,
		replace: cat.Brands.Replace,
		update:  cat.Brands.Update,
		remove:  cat.Brands.Delete,
	}.register(r.Group("/brands"), limit)

	resource[catalog.Category, catalog.Category, catalog.CategoryInput]{
		name:    "category",
		list:    cat.Categories.List,
		get:     cat.Categories.Get,
		create:  cat.Categories.Create,
		replace: cat.Categories.Replace,
		update:  cat.Categories.Update,
		remove:  cat.Categories.Delete,
	}.register(r.Group("/categories"), limit)

	reads := productReads{products: cat.Products}
	products := r.Group("/products")
	products.GET("/categories/:categoryId", reads.byReference("categoryId", "no products in this category", cat.Products.ListByCategory))
	products.GET("/brands/:brandId", reads.byReference("brandId", "no products for this brand", cat.Products.ListByBrand))
	resource[catalog.ProductDetails, catalog.Product, catalog.ProductInput]{
		name:    "product",
		list:    reads.list,
		get:     reads.get,
		create:  cat.Products.Create,
		replace: cat.Products.Replace,
		update:  cat.Products.Update,
		remove:  cat.Products.Delete,
	}.register(products, limit)

	resource[catalog.User, catalog.User, catalog.UserInput]{
		name:    "user",
		list:    cat.Users.List,
		get:     cat.Users.Get,
		create:  cat.Users.Create,
		replace: cat.Users.Replace,
		update:  cat.Users.Update,
		remove:  cat.Users.Delete,
	}.register(r.Group("/users"), limit)

	return r
}
