package cmd

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Creates or updates the database schema and exits.",
		PreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
			initLogging()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			conn, err := database.Open(cmd.Context(), config.Get().Database)
			if err != nil {
				log.WithField("error", err).Fatal("failed to open database")
			}
			defer database.Close(conn)

			if err := database.Migrate(conn); err != nil {
				log.WithField("error", err).Fatal("failed to migrate database")
			}
			log.WithField("driver", config.Get().Database.Driver).Info("database schema is up to date")
		},
	}
}
