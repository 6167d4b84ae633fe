package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacentio/catalog/catalog"
)

// productReads serves product reads with brand and category expanded.
type productReads struct {
	products *catalog.Products
}

func (p productReads) list(ctx context.Context) ([]catalog.ProductDetails, error) {
	products, err := p.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return p.products.Expand(ctx, products...)
}

func (p productReads) get(ctx context.Context, id catalog.ID) (catalog.ProductDetails, error) {
	product, err := p.products.Get(ctx, id)
	if err != nil {
		return catalog.ProductDetails{}, err
	}
	details, err := p.products.Expand(ctx, product)
	if err != nil {
		return catalog.ProductDetails{}, err
	}
	return details[0], nil
}

// byReference serves a filtered product listing. An empty result is a 404.
func (p productReads) byReference(param, empty string, find func(context.Context, catalog.ID) ([]catalog.Product, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		products, err := find(ctx, catalog.ID(c.Param(param)))
		if err != nil {
			respondError(c, err)
			return
		}
		if len(products) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": empty})
			return
		}
		details, err := p.products.Expand(ctx, products...)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, details)
	}
}
