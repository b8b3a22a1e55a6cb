package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/health"
	"github.com/nholik/plumb-sentinel/internal/inventory"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type inventoryReport struct {
	AsOf   time.Time                `json:"as_of"`
	Units  map[string]health.Report `json:"units"`
	Errors map[string]string        `json:"errors,omitempty"`
}

func assessCmd(flags *globalFlags) *cobra.Command {
	var (
		asOf          string
		inventoryMode bool
	)

	cmd := &cobra.Command{
		Use:   "assess [file]",
		Short: "Assess a profile (or an inventory with --inventory) and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseAsOf(asOf, time.Now())
			if err != nil {
				return err
			}
			cal, err := flags.loadCalibration("")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			evaluator := health.NewEvaluator(cal)
			if inventoryMode {
				return assessInventory(cmd.OutOrStdout(), evaluator, data, when)
			}
			return assessProfile(cmd.OutOrStdout(), evaluator, data, when)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "assessment date, YYYY-MM-DD or RFC 3339 (default now)")
	cmd.Flags().BoolVar(&inventoryMode, "inventory", false, "treat the file as an inventory of units")
	return cmd
}

func assessProfile(w io.Writer, evaluator *health.Evaluator, data []byte, asOf time.Time) error {
	var profile equipment.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("parse profile: %w", err)
	}
	report, err := evaluator.Assess(profile, asOf)
	if err != nil {
		return err
	}
	return writeIndented(w, report)
}

func assessInventory(w io.Writer, evaluator *health.Evaluator, data []byte, asOf time.Time) error {
	inv, err := inventory.Parse(data)
	if err != nil {
		return err
	}

	out := inventoryReport{AsOf: asOf, Units: make(map[string]health.Report, len(inv.Units))}
	for _, id := range inv.IDs() {
		report, err := evaluator.Assess(inv.Units[id], asOf)
		if err != nil {
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[id] = err.Error()
			continue
		}
		out.Units[id] = report
	}

	if err := writeIndented(w, out); err != nil {
		return err
	}
	if len(out.Errors) > 0 {
		return fmt.Errorf("%d unit(s) could not be assessed", len(out.Errors))
	}
	return nil
}

func parseAsOf(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, errors.New("--as-of must be YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
