package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/nholik/plumb-sentinel/internal/api"
	"github.com/nholik/plumb-sentinel/internal/config"
	"github.com/nholik/plumb-sentinel/internal/coordinator"
	"github.com/nholik/plumb-sentinel/internal/health"
	"github.com/nholik/plumb-sentinel/internal/healthcheck"
	"github.com/nholik/plumb-sentinel/internal/metrics"
	"github.com/nholik/plumb-sentinel/internal/notify"
	"github.com/nholik/plumb-sentinel/internal/server"
	"github.com/nholik/plumb-sentinel/internal/state"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func runCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch inventory feeds, alert on verdict changes and serve health, metrics and API endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := flags.logger(cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSentinel(ctx, logger, flags, cfg)
		},
	}
}

func runSentinel(ctx context.Context, logger zerolog.Logger, flags *globalFlags, cfg config.Config) error {
	logger.Info().Msg("plumb-sentinel starting")

	cal, err := flags.loadCalibration(cfg.CalibrationFile)
	if err != nil {
		return err
	}
	feeds, err := cfg.Feeds()
	if err != nil {
		return err
	}
	notifier, err := buildNotifier(logger, cfg)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		names = append(names, feed.Name)
	}

	evaluator := health.NewEvaluator(cal)
	store := state.NewFileStore(cfg.StatePath, logger)
	collector := metrics.New()
	tracker := healthcheck.NewTracker(names...)

	// Servers stop with the coordinator even if every runner failed to start.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var apiRoutes func(chi.Router)
	if cfg.APIPort > 0 {
		apiRoutes = api.New(logger, evaluator, store, collector).RegisterRoutes
	}
	done := server.Start(ctx, logger, server.Options{
		PollInterval: cfg.PollInterval,
		Tracker:      tracker,
		Metrics:      collector,
		API:          apiRoutes,
		HealthPort:   cfg.HealthPort,
		MetricsPort:  cfg.MetricsPort,
		APIPort:      cfg.APIPort,
	})

	coord := coordinator.New(logger, cfg, feeds, coordinator.Dependencies{
		Assessor: evaluator,
		Store:    store,
		Notifier: notifier,
		Metrics:  collector,
		Tracker:  tracker,
	})
	runErr := coord.Run(ctx)
	cancel()
	<-done

	if runErr != nil {
		return runErr
	}
	if errs := coord.Errors(); len(errs) == len(feeds) {
		return fmt.Errorf("no feed could start: %d runner error(s)", len(errs))
	}
	logger.Info().Msg("plumb-sentinel stopped")
	return nil
}

func buildNotifier(logger zerolog.Logger, cfg config.Config) (notify.Notifier, error) {
	webhook, err := notify.NewWebhookNotifier(logger, cfg.WebhookURL, cfg.WebhookTemplate)
	if err != nil {
		return nil, err
	}
	multi := notify.NewMultiNotifier(notify.NewSlackNotifier(logger, cfg.SlackWebhookURL), webhook)

	if cfg.DryRun {
		logger.Info().Msg("dry-run enabled; notifications will be logged, not sent")
		return notify.NewDryRunNotifier(logger, multi), nil
	}
	return multi, nil
}
