package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jacentio/catalog/catalog"
	"github.com/jacentio/catalog/internal/app"
	"github.com/jacentio/catalog/internal/config"
)

var listable = []string{"brands", "categories", "products", "users"}

func newListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "list <brands|categories|products|users>",
		Short:     "Print every record of an entity as a table",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: listable,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Open(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return renderList(cmd.Context(), cmd.OutOrStdout(), a.Catalog, args[0])
		},
	}
}

func renderList(ctx context.Context, w io.Writer, c *catalog.Catalog, entity string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	switch entity {
	case "brands":
		brands, err := c.Brands.List(ctx)
		if err != nil {
			return err
		}
		t.AppendHeader(table.Row{"ID", "Name", "Description", "Active"})
		for _, b := range brands {
			t.AppendRow(table.Row{b.ID, b.BrandName, b.Description, b.Active})
		}

	case "categories":
		categories, err := c.Categories.List(ctx)
		if err != nil {
			return err
		}
		t.AppendHeader(table.Row{"ID", "Name", "Description", "Active"})
		for _, cat := range categories {
			t.AppendRow(table.Row{cat.ID, cat.CategoryName, cat.Description, cat.Active})
		}

	case "products":
		products, err := c.Products.List(ctx)
		if err != nil {
			return err
		}
		details, err := c.Products.Expand(ctx, products...)
		if err != nil {
			return err
		}
		t.AppendHeader(table.Row{"ID", "Name", "Price", "Stock", "Brand", "Category"})
		for _, p := range details {
			t.AppendRow(table.Row{p.ID, p.ProductName, strconv.FormatFloat(p.Price, 'f', 2, 64), p.Stock, brandName(p.Brand), categoryName(p.Category)})
		}

	case "users":
		users, err := c.Users.List(ctx)
		if err != nil {
			return err
		}
		t.AppendHeader(table.Row{"ID", "Name", "Username"})
		for _, u := range users {
			t.AppendRow(table.Row{u.ID, u.Name, u.Username})
		}

	default:
		return fmt.Errorf("unknown entity %q", entity)
	}

	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", t.Length())})
	t.Render()
	return nil
}

func brandName(b *catalog.BrandSummary) string {
	if b == nil {
		return "-"
	}
	return b.BrandName
}

func categoryName(c *catalog.CategorySummary) string {
	if c == nil {
		return "-"
	}
	return c.CategoryName
}
