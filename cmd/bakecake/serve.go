package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/bakecake/internal/adapters/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the bot behind an HTTP API: a session event endpoint for webhook
transports, read-only admin listings and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildApp(true)
		if err != nil {
			fmt.Printf("Error initializing bakecake: %v\n", err)
			os.Exit(1)
		}
		defer app.close()

		handler := httpapi.NewHandler(app.bot, httpapi.Config{
			Orders:     app.bot.Ledger(),
			Customers:  app.bot.Profiles(),
			Metrics:    promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}),
			PolicyPath: app.cfg.PolicyPath,
			Logger:     app.logger,
		})

		srv := &http.Server{
			Addr:    app.cfg.ListenAddr,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			app.logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			app.logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					app.logger.Error("failed to close server", "err", err)
				}
			}
			app.logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
