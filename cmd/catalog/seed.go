package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacentio/catalog/catalog"
	"github.com/jacentio/catalog/internal/app"
	"github.com/jacentio/catalog/internal/config"
)

func newSeedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample brands and categories into empty tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Open(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := catalog.Seed(cmd.Context(), a.Catalog)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d brands, %d categories\n", res.Brands, res.Categories)
			return nil
		},
	}
}
