package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacentio/catalog/catalog"
)

// resource binds the CRUD routes of one entity. Reads return R, writes
// return W, and request bodies decode into In.
type resource[R, W, In any] struct {
	name    string
	list    func(context.Context) ([]R, error)
	get     func(context.Context, catalog.ID) (R, error)
	create  func(context.Context, In) (W, error)
	replace func(context.Context, catalog.ID, In) (W, error)
	update  func(context.Context, catalog.ID, In) (W, error)
	remove  func(context.Context, catalog.ID) (W, error)
}

// register mounts the routes on g. writes guard the mutating routes.
func (r resource[R, W, In]) register(g *gin.RouterGroup, writes ...gin.HandlerFunc) {
	g.GET("", r.handleList)
	g.GET("/:id", r.handleGet)

	w := g.Group("", writes...)
	w.POST("", r.handleCreate)
	w.PUT("/:id", r.write(r.replace))
	w.PATCH("/:id", r.write(r.update))
	w.DELETE("/:id", r.handleDelete)
}

func (r resource[R, W, In]) handleList(c *gin.Context) {
	items, err := r.list(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

func (r resource[R, W, In]) handleGet(c *gin.Context) {
	item, err := r.get(c.Request.Context(), catalog.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r resource[R, W, In]) handleCreate(c *gin.Context) {
	var in In
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := r.create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (r resource[R, W, In]) write(op func(context.Context, catalog.ID, In) (W, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		item, err := op(c.Request.Context(), catalog.ID(c.Param("id")), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func (r resource[R, W, In]) handleDelete(c *gin.Context) {
	item, err := r.remove(c.Request.Context(), catalog.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": r.name + " deleted", "deleted": item})
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
