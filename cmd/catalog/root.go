package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacentio/catalog/internal/config"
	"github.com/jacentio/catalog/internal/logger"
)

func newRootCmd() *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Brands, categories, products and users over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if cmd.Flags().Changed("backend") {
				loaded.Backend = strings.ToLower(cfg.Backend)
				err = loaded.Validate()
			}
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Init(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfg.Backend, "backend", config.BackendMemory,
		"storage backend: memory, dynamodb or postgres (overrides CATALOG_BACKEND)")

	root.AddCommand(
		newServeCmd(&cfg),
		newSeedCmd(&cfg),
		newListCmd(&cfg),
		newMigrateCmd(&cfg),
	)
	return root
}
