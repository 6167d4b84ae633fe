package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacentio/catalog/internal/app"
	"github.com/jacentio/catalog/internal/config"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables the backend needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Migrate(cmd.Context(), *cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s tables ready\n", cfg.Backend)
			return nil
		},
	}
}
