package main

import (
	"fmt"

	"github.com/Veraticus/the-bills-must-flow/internal/cli"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// initStorage migrates as part of opening the database.
			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			defer func() { _ = store.Close() }()

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Database schema is up to date", cli.SuccessIcon)))
			return nil
		},
	}
}
