package calibration

import (
	"fmt"
	"os"

	"github.com/nholik/plumb-sentinel/internal/equipment"
	"gopkg.in/yaml.v3"
)

// Load overlays a YAML calibration file on the defaults.
// Returns the defaults if path is empty.
func Load(path string) (Calibration, error) {
	cal := Default()
	if path == "" {
		return cal, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("read calibration file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cal); err != nil {
		return Calibration{}, fmt.Errorf("parse calibration file: %w", err)
	}

	if err := cal.Validate(); err != nil {
		return Calibration{}, err
	}

	return cal, nil
}

// Marshal renders the calibration as YAML.
func Marshal(cal Calibration) ([]byte, error) {
	return yaml.Marshal(cal)
}

// Validate ensures coefficients are usable by the engine.
func (c Calibration) Validate() error {
	for _, v := range []equipment.Variant{
		equipment.VariantGasTank,
		equipment.VariantElectricTank,
		equipment.VariantPropaneTank,
		equipment.VariantTanklessGas,
		equipment.VariantTanklessElectric,
		equipment.VariantHybrid,
	} {
		if c.Heater.LifespanYears[v] <= 0 {
			return fmt.Errorf("heater.lifespan_years.%s must be greater than zero", v)
		}
		if c.Heater.Sediment.Precipitation[v] < 0 {
			return fmt.Errorf("heater.sediment.precipitation.%s cannot be negative", v)
		}
		if c.Finance.ReplacementCost[v] <= 0 {
			return fmt.Errorf("finance.replacement_cost.%s must be greater than zero", v)
		}
	}
	if c.Finance.ReplacementCost[equipment.VariantIonExchange] <= 0 {
		return fmt.Errorf("finance.replacement_cost.%s must be greater than zero", equipment.VariantIonExchange)
	}

	if c.Usage.Light <= 0 || c.Usage.Normal <= 0 || c.Usage.Heavy <= 0 {
		return fmt.Errorf("usage multipliers must be greater than zero")
	}

	s := c.Softener
	if s.PerPersonGallons <= 0 || s.LifespanYears <= 0 || s.BaselineRegensPerYear <= 0 || s.BaselineResinRate <= 0 {
		return fmt.Errorf("softener: per_person_gallons, lifespan_years, baseline_regens_per_year and baseline_resin_rate must be greater than zero")
	}
	if s.SafetyFactor <= 0 || s.SafetyFactor > 1 {
		return fmt.Errorf("softener.safety_factor must be in (0, 1]")
	}
	if s.SealLimit <= 0 || s.MotorLimit <= s.SealLimit {
		return fmt.Errorf("softener: seal_limit must be positive and below motor_limit")
	}
	if s.ResinFailurePct < 0 || s.ResinDegradedPct <= s.ResinFailurePct || s.ResinDegradedPct > 100 {
		return fmt.Errorf("softener: resin_failure_pct must be below resin_degraded_pct within [0, 100]")
	}

	h := c.Heater
	if h.Sediment.FlushDueLbs <= 0 || h.Sediment.FlushLockoutLbs <= h.Sediment.FlushDueLbs {
		return fmt.Errorf("heater.sediment: flush_due_lbs must be positive and below flush_lockout_lbs")
	}
	if h.Sediment.DescaleDueLbs <= 0 || h.Sediment.DescaleLockoutLbs <= h.Sediment.DescaleDueLbs {
		return fmt.Errorf("heater.sediment: descale_due_lbs must be positive and below descale_lockout_lbs")
	}
	if h.Anode.LifeYears <= 0 {
		return fmt.Errorf("heater.anode.life_years must be greater than zero")
	}
	if h.Cycling.UsableFraction <= 0 || h.Cycling.UsableFraction > 1 {
		return fmt.Errorf("heater.cycling.usable_fraction must be in (0, 1]")
	}
	if h.Cycling.BaselineDailyHotGallons <= 0 || h.Cycling.ReferenceTankGallons <= 0 || h.Cycling.TanklessEquivalentGal <= 0 {
		return fmt.Errorf("heater.cycling: baseline and reference volumes must be greater than zero")
	}
	if h.Pressure.HighPSI <= h.Pressure.BaselinePSI {
		return fmt.Errorf("heater.pressure.high_psi must exceed baseline_psi")
	}
	v := h.Verdict
	if !(v.OptimalProbability <= v.WatchProbability && v.WatchProbability <= v.ReplaceProbability && v.ReplaceProbability <= v.CriticalProbability) {
		return fmt.Errorf("heater.verdict probabilities must be ordered optimal <= watch <= replace <= critical")
	}

	r := c.Risk
	if r.SecondaryWeight < 0 || r.SecondaryWeight > 1 {
		return fmt.Errorf("risk.secondary_weight must be in [0, 1]")
	}
	if r.MaxAgingRate < 1 {
		return fmt.Errorf("risk.max_aging_rate must be at least 1")
	}
	if r.WeibullShape <= 0 {
		return fmt.Errorf("risk.weibull_shape must be greater than zero")
	}

	f := c.Forecast
	if f.MaxHorizonMonths <= 0 || f.DueWindowMonths < 0 {
		return fmt.Errorf("forecast: max_horizon_months must be positive and due_window_months non-negative")
	}
	if f.ShieldDuePct <= 0 || f.ShieldOptimalPct <= f.ShieldDuePct {
		return fmt.Errorf("forecast: shield_due_pct must be positive and below shield_optimal_pct")
	}

	fin := c.Finance
	if !(fin.ImmediateMonths > 0 && fin.ImmediateMonths < fin.HighMonths && fin.HighMonths < fin.MediumMonths) {
		return fmt.Errorf("finance: urgency tiers must be ordered immediate < high < medium")
	}
	for id, price := range fin.MenuPrices {
		if price < 0 {
			return fmt.Errorf("finance.menu_prices.%s cannot be negative", id)
		}
	}

	return nil
}
