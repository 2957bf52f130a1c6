package main

import (
	"github.com/spf13/cobra"

	"goflare.io/storefront/driver"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := driver.ConnectSQL(cmd.Context(), cfg.Postgres.DSN, cfg.Postgres.MaxConns)
			if err != nil {
				return err
			}
			defer db.Pool.Close()

			return driver.Migrate(cmd.Context(), db.Pool, logger)
		},
	}
}
