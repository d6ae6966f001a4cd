package cmd

import (
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// migrateCmd runs the registered table migrations
var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "migrate database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			return err
		}

		logger.FromContext(cmd.Context()).Infoln("database migrated, ledger storage:", cfg.App.Storage)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
