package clocks

import (
	"math"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/equipment"
)

// ResinCause names the chemistry consuming a softener resin bed.
type ResinCause string

const (
	CauseChlorine         ResinCause = "chlorine"
	CauseChlorineFiltered ResinCause = "chlorine_filtered"
	CauseIronFouling      ResinCause = "iron_fouling"
	CauseSediment         ResinCause = "sediment"
)

// Cleanable reports whether a resin cleaner can recover capacity lost to
// this cause. Oxidized resin cannot be restored.
func (c ResinCause) Cleanable() bool {
	return c == CauseIronFouling || c == CauseSediment
}

// Unfiltered reports chlorinated supply reaching the resin without a carbon
// pre-filter.
func (c ResinCause) Unfiltered() bool {
	return c == CauseChlorine
}

// Decay is the linear health clock shared by resin and anode:
// 100 - age*rate, clamped to [0,100].
func Decay(ageYears, ratePerYear float64) float64 {
	return clampPct(100 - math.Max(0, finite(ageYears))*math.Max(0, finite(ratePerYear)))
}

// ResinRate selects the resin decay rate in percentage points per year.
func ResinRate(env equipment.Environment, carbonFilter bool, rates calibration.ResinRates) (float64, ResinCause) {
	if env.WaterSource == equipment.SourceWell {
		if env.WellIron {
			return rates.WellIron, CauseIronFouling
		}
		return rates.Well, CauseSediment
	}
	if carbonFilter {
		return rates.CityCarbon, CauseChlorineFiltered
	}
	return rates.CityChlorine, CauseChlorine
}

// AnodeRate is the sacrificial anode consumption in percentage points per
// year. Hard water and softened water both speed consumption; hardness
// contributes up to the calibrated cap.
func AnodeRate(hardnessGPG float64, softened bool, cal calibration.AnodeCalibration) float64 {
	if cal.LifeYears <= 0 {
		return 0
	}
	hardness := math.Min(math.Max(0, finite(hardnessGPG)), cal.HardnessCap)
	rate := (100 / cal.LifeYears) * (1 + cal.HardnessCoef*hardness)
	if softened {
		rate *= cal.SoftenedFactor
	}
	return rate
}

// CorrosionMultiplier is 1.0 while the shield stays above the protected
// level and rises linearly to depletedFactor at 0%.
func CorrosionMultiplier(shieldPct, protectedPct, depletedFactor float64) float64 {
	shield := clampPct(shieldPct)
	if protectedPct <= 0 || shield >= protectedPct {
		return 1
	}
	exposure := (protectedPct - shield) / protectedPct
	return 1 + exposure*math.Max(0, depletedFactor-1)
}

// ChemicalMultiplier converts a resin decay rate into stress relative to a
// baseline rate.
func ChemicalMultiplier(ratePerYear, baselineRate, sensitivity float64) float64 {
	return CyclingMultiplier(ratePerYear, baselineRate, sensitivity)
}
