package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/akitapower/monitoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the estimators over HTTP.",
	Long: "`serve` starts an HTTP server that answers POST /api/energy " +
		"and POST /api/area queries until interrupted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		port, _ := cmd.Flags().GetInt("port")
		open, _ := cmd.Flags().GetBool("open")
		record, _ := cmd.Flags().GetString("record")

		if !cmd.Flags().Changed("port") {
			port = cfg.Port
		}

		registry, err := buildRegistry(cfg, logger)
		if err != nil {
			return err
		}

		if target := recordTarget(record); target != "" {
			if _, err := attachRecorder(registry, target); err != nil {
				return err
			}
		}

		server := monitoring.NewServer(registry).
			WithLogger(logger).
			WithPortNumber(port)

		addr, err := server.StartServer()
		if err != nil {
			return err
		}

		if open {
			if err := browser.OpenURL(addr + "/api/estimators"); err != nil {
				logger.WithError(err).Warn("cannot open the browser")
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0,
		"The port of the server. 0 picks a random port.")
	serveCmd.Flags().Bool("open", false,
		"Open the estimator list in a browser.")
	serveCmd.Flags().String("record", "",
		"Record the estimates into an SQLite file or a clickhouse:// server.")
}
