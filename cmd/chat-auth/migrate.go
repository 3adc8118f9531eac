package main

import (
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users table when missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.repo.CreateSchema(cmd.Context()); err != nil {
				return err
			}

			app.GetLogger("migrate").Info("schema ready")
			return nil
		},
	}
}
