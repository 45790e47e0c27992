package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"workzone_backend/internal/app/di"
	"workzone_backend/internal/platform/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply the embedded goose migrations on PostgreSQL, or auto-migrate the models on SQLite.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, _, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(gdb)

			if err := db.Migrate(cmd.Context(), gdb, di.Models()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
