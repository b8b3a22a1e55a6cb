package main

import (
	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/spf13/cobra"
)

func calibrationCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "calibration",
		Short: "Print the effective calibration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cal, err := flags.loadCalibration("")
			if err != nil {
				return err
			}
			data, err := calibration.Marshal(cal)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
