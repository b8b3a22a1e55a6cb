package clocks

import "math"

// grainsPerPound converts dissolved hardness (grains) to mass.
const grainsPerPound = 7000.0

// SedimentInput describes hardness deposition in a heater.
type SedimentInput struct {
	HotGallonsPerDay float64
	HardnessGPG      float64
	// Softened uses ResidualGPG in place of the measured hardness.
	Softened    bool
	ResidualGPG float64
	// Fraction of dissolved hardness that precipitates in this variant.
	Fraction   float64
	YearsSince float64
}

// Sediment is the accumulated deposit since the last flush or descale.
type Sediment struct {
	Lbs        float64 `json:"lbs"`
	LbsPerYear float64 `json:"lbs_per_year"`
}

// Accumulate computes pounds of sediment or scale.
func Accumulate(in SedimentInput) Sediment {
	hardness := math.Max(0, finite(in.HardnessGPG))
	if in.Softened {
		hardness = math.Min(hardness, math.Max(0, in.ResidualGPG))
	}
	perYear := math.Max(0, finite(in.HotGallonsPerDay)) * daysPerYear * hardness / grainsPerPound * math.Max(0, in.Fraction)
	perYear = finite(perYear)

	return Sediment{
		Lbs:        perYear * math.Max(0, finite(in.YearsSince)),
		LbsPerYear: perYear,
	}
}

// SedimentMultiplier is the stress from insulating deposits: 1 + perLb*lbs,
// capped at max.
func SedimentMultiplier(lbs, perLb, max float64) float64 {
	m := 1 + math.Max(0, finite(lbs))*math.Max(0, perLb)
	if max >= 1 {
		m = math.Min(m, max)
	}
	return m
}
