package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nholik/plumb-sentinel/internal/health"
	"github.com/nholik/plumb-sentinel/internal/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAssessProfile(t *testing.T) {
	path := writeTemp(t, "heater.yaml", `
family: water_heater
variant: electric_tank
age_years: 6
tank_gallons: 50
environment:
  house_psi: 60
  hardness_gpg: 8
  occupants: 3
observations:
  visible_rust: true
`)

	out, err := execute(t, "assess", path, "--as-of", "2025-06-01")
	require.NoError(t, err)

	var report health.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, verdict.ActionReplace, report.Verdict.Action)
	assert.Equal(t, verdict.BadgeCritical, report.Verdict.Badge)
}

func TestAssessInventory(t *testing.T) {
	path := writeTemp(t, "inventory.yaml", `
units:
  utility:
    family: softener
    variant: ion_exchange
    age_years: 5
    capacity_grains: 32000
    environment:
      hardness_gpg: 15
      occupants: 3
      water_source: city
  cellar:
    family: boiler
    variant: gas_tank
    age_years: 2
`)

	out, err := execute(t, "assess", path, "--inventory", "--as-of", "2025-06-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 unit(s)")

	var report inventoryReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), report.AsOf)
	require.Contains(t, report.Units, "utility")
	assert.Equal(t, verdict.BadgeHealthy, report.Units["utility"].Verdict.Badge)
	assert.Contains(t, report.Errors["cellar"], "unknown equipment family")
}

func TestAssessErrors(t *testing.T) {
	unknown := writeTemp(t, "unknown.yaml", "family: furnace\nvariant: gas_tank\n")

	_, err := execute(t, "assess", unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown equipment family")

	_, err = execute(t, "assess", unknown, "--as-of", "last week")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--as-of")

	_, err = execute(t, "assess", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = execute(t, "assess")
	require.Error(t, err)
}

func TestCalibrationCommand(t *testing.T) {
	out, err := execute(t, "calibration")
	require.NoError(t, err)
	assert.Contains(t, out, "seal_limit: 600")

	overlay := writeTemp(t, "cal.yaml", "softener:\n  seal_limit: 450\n")
	out, err = execute(t, "--calibration", overlay, "calibration")
	require.NoError(t, err)
	assert.Contains(t, out, "seal_limit: 450")
	assert.True(t, strings.Contains(out, "motor_limit:"))
}

func TestParseAsOf(t *testing.T) {
	now := time.Date(2025, time.June, 1, 15, 4, 5, 0, time.FixedZone("EST", -5*3600))

	got, err := parseAsOf("", now)
	require.NoError(t, err)
	assert.Equal(t, now.UTC(), got)

	got, err = parseAsOf("2024-02-29", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), got)

	_, err = parseAsOf("29/02/2024", now)
	assert.Error(t, err)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
