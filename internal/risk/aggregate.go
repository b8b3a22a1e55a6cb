// Package risk combines per-axis stress into an aging rate and converts
// calendar age into biological age and failure probability.
package risk

import (
	"math"

	"github.com/nholik/plumb-sentinel/internal/calibration"
)

// Axis names a degradation axis.
type Axis string

const (
	AxisNone        Axis = "none"
	AxisSediment    Axis = "sediment"
	AxisScale       Axis = "scale"
	AxisCorrosion   Axis = "corrosion"
	AxisPressure    Axis = "pressure"
	AxisExpansion   Axis = "thermal_expansion"
	AxisCirculation Axis = "circulation"
	AxisCycling     Axis = "cycling"
	AxisMechanical  Axis = "mechanical"
	AxisChemical    Axis = "chemical"
)

var axisLabels = map[Axis]string{
	AxisNone:        "No significant stressor",
	AxisSediment:    "Sediment buildup",
	AxisScale:       "Heat exchanger scale",
	AxisCorrosion:   "Anode depletion",
	AxisPressure:    "High line pressure",
	AxisExpansion:   "Uncontrolled thermal expansion",
	AxisCirculation: "Recirculation wear",
	AxisCycling:     "Excessive thermal cycling",
	AxisMechanical:  "Regeneration frequency",
	AxisChemical:    "Resin chemistry attack",
}

// Label returns the human-readable axis name.
func (a Axis) Label() string {
	if label, ok := axisLabels[a]; ok {
		return label
	}
	return string(a)
}

// Factor is one stress multiplier. 1.0 is baseline.
type Factor struct {
	Axis       Axis    `json:"axis"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
}

// NewFactor builds a factor, clamping the multiplier to at least 1.0.
func NewFactor(axis Axis, multiplier float64) Factor {
	if math.IsNaN(multiplier) || multiplier < 1 {
		multiplier = 1
	}
	if math.IsInf(multiplier, 1) {
		multiplier = math.MaxFloat64
	}
	return Factor{Axis: axis, Label: axis.Label(), Multiplier: multiplier}
}

// Aggregate is the combined aging rate.
type Aggregate struct {
	Rate           float64 `json:"rate"`
	Primary        Axis    `json:"primary_stressor"`
	PrimaryLabel   string  `json:"primary_stressor_label"`
	PrimaryFactor  float64 `json:"primary_multiplier"`
	FactorsApplied int     `json:"factors_applied"`
}

// Combine folds factors into an aging rate. The dominant factor counts in
// full and every other factor's excess counts at the secondary weight:
//
//	rate = 1 + (max-1) + w*sum(other-1), capped at the maximum rate
//
// The primary stressor is the first factor holding the largest multiplier,
// or none when every factor sits at baseline.
func Combine(factors []Factor, cal calibration.RiskCalibration) Aggregate {
	primary := -1
	for i, f := range factors {
		if f.Multiplier <= 1 {
			continue
		}
		if primary < 0 || f.Multiplier > factors[primary].Multiplier {
			primary = i
		}
	}

	if primary < 0 {
		return Aggregate{
			Rate:          1,
			Primary:       AxisNone,
			PrimaryLabel:  AxisNone.Label(),
			PrimaryFactor: 1,
		}
	}

	rate := factors[primary].Multiplier
	applied := 1
	for i, f := range factors {
		if i == primary || f.Multiplier <= 1 {
			continue
		}
		rate += cal.SecondaryWeight * (f.Multiplier - 1)
		applied++
	}
	if cal.MaxAgingRate >= 1 {
		rate = math.Min(rate, cal.MaxAgingRate)
	}

	return Aggregate{
		Rate:           rate,
		Primary:        factors[primary].Axis,
		PrimaryLabel:   factors[primary].Label,
		PrimaryFactor:  factors[primary].Multiplier,
		FactorsApplied: applied,
	}
}

// RateWithout recomputes the aging rate as if the given axis were fixed.
func RateWithout(factors []Factor, axis Axis, cal calibration.RiskCalibration) float64 {
	rest := make([]Factor, 0, len(factors))
	for _, f := range factors {
		if f.Axis == axis {
			continue
		}
		rest = append(rest, f)
	}
	return Combine(rest, cal).Rate
}
