package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vehicle-ticket-service/internal/db"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.close()
		return runMigrate(a, log)
	},
}

func runMigrate(a *app, log zerolog.Logger) error {
	return db.Migrate(a.db, log)
}
