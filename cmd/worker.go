package cmd

import (
	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run the huski keepers without the api",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		store, cleanup, err := provideLedgerStore(database)
		if err != nil {
			log.WithError(err).Fatalln("open ledger store")
		}
		defer cleanup()

		blocks := provideBlockService()
		n, err := provideNode(ctx, provideExecutor(store, blocks), blocks)
		if err != nil {
			log.WithError(err).Fatalln("load node")
		}

		jobs, err := provideKeepers(n, providePropertyStore(database))
		if err != nil {
			log.WithError(err).Fatalln("init keepers")
		}

		for _, job := range jobs {
			if err := job.Start(); err != nil {
				log.WithError(err).Fatalln("start keeper")
			}
		}

		ctx = signal.WithContext(ctx)
		<-ctx.Done()

		for _, job := range jobs {
			_ = job.Stop()
		}

		log.Infoln("keepers stopped")
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
