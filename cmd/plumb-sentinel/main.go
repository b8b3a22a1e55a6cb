package main

import (
	"os"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	logLevel        string
	logFormat       string
	calibrationFile string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "plumb-sentinel",
		Short:        "Equipment health forensics for water heaters and softeners",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (default from PS_LOG_LEVEL, else info)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: json or console (default from PS_LOG_FORMAT, else json)")
	rootCmd.PersistentFlags().StringVar(&flags.calibrationFile, "calibration", "", "calibration YAML overlaid on the defaults")

	rootCmd.AddCommand(assessCmd(flags))
	rootCmd.AddCommand(runCmd(flags))
	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(calibrationCmd(flags))

	return rootCmd
}

func (f *globalFlags) logger(level, format string) zerolog.Logger {
	return logging.NewWriter(os.Stderr, firstNonEmpty(f.logLevel, level, "info"), logging.ParseFormat(firstNonEmpty(f.logFormat, format)))
}

func (f *globalFlags) loadCalibration(fallback string) (calibration.Calibration, error) {
	return calibration.Load(firstNonEmpty(f.calibrationFile, fallback))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
