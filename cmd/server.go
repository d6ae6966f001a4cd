package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"huski/handler"
	"huski/handler/hc"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run huski api server",
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

		withKeepers, _ := cmd.Flags().GetBool("keepers")
		if withKeepers {
			jobs, err := provideKeepers(n, providePropertyStore(database))
			if err != nil {
				log.WithError(err).Fatalln("init keepers")
			}

			for _, job := range jobs {
				_ = job.Start()
				defer job.Stop()
			}
		}

		mux := chi.NewMux()
		mux.Use(middleware.Recoverer)
		mux.Use(middleware.StripSlashes)
		mux.Use(cors.AllowAll().Handler)
		mux.Use(logger.WithRequestID)
		mux.Use(middleware.Logger)

		{
			// hc
			mux.Mount("/hc", hc.Handle(rootCmd.Version, blocks))
		}

		{
			// restful api
			svr := handler.New(n.restConfig(provideTransactionStore(database)))
			mux.Mount("/api", svr.HandleRestAPI())
		}

		{
			// metrics
			mux.Handle("/metrics", promhttp.Handler())
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		logrus.Infoln("serve at", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
	serverCmd.Flags().Bool("keepers", true, "run the keeper jobs in the server process")
}
