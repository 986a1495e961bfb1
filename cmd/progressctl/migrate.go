package main

import (
	"fmt"

	"progress-service/internal/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, closeDB, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := db.RunMigrations(ctx, database); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}
