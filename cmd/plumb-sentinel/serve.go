package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nholik/plumb-sentinel/internal/api"
	"github.com/nholik/plumb-sentinel/internal/health"
	"github.com/nholik/plumb-sentinel/internal/metrics"
	"github.com/nholik/plumb-sentinel/internal/server"
	"github.com/nholik/plumb-sentinel/internal/state"
	"github.com/spf13/cobra"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port      int
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assessment API without watching any feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := flags.logger("", "")
			cal, err := flags.loadCalibration("")
			if err != nil {
				return err
			}

			var store state.Store
			if statePath != "" {
				store = state.NewFileStore(statePath, logger)
			}
			collector := metrics.New()
			handler := api.New(logger, health.NewEvaluator(cal), store, collector)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			done := server.Start(ctx, logger, server.Options{
				Metrics:     collector,
				API:         handler.RegisterRoutes,
				MetricsPort: port,
				APIPort:     port,
			})
			logger.Info().Int("port", port).Msg("assessment api serving")
			<-done
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8081, "HTTP server port")
	cmd.Flags().StringVar(&statePath, "state", "", "state file of a running sentinel, enables the feed endpoints")
	return cmd
}
