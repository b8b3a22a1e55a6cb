// Package clocks implements the independent wear models. Each clock turns raw
// readings into a wear quantity (cycles, percentage, pounds) or a stress
// multiplier where 1.0 is baseline. Clocks are pure and never return NaN.
package clocks

import "math"

const (
	daysPerYear = 365.0

	// minDailyLoad keeps the cycle interval finite for empty households.
	minDailyLoad = 1.0
	// minCycleDays bounds the cycle rate at one cycle per hour.
	minCycleDays = 1.0 / 24
)

// CycleInput describes one cyclical unit.
type CycleInput struct {
	Occupants       float64
	PerPersonRate   float64
	UsageMultiplier float64
	// Stressor scales load per gallon: hardness for softeners, 1 for heaters.
	Stressor     float64
	Capacity     float64
	SafetyFactor float64
	AgeYears     float64
}

// Cycle is the mechanical odometer for a unit.
type Cycle struct {
	DailyLoad     float64 `json:"daily_load"`
	DaysPerCycle  float64 `json:"days_per_cycle"`
	CyclesPerYear float64 `json:"cycles_per_year"`
	Odometer      float64 `json:"odometer"`
}

// Mechanical computes the cycle clock.
func Mechanical(in CycleInput) Cycle {
	load := math.Max(minDailyLoad, finite(in.Occupants*in.PerPersonRate*in.UsageMultiplier*in.Stressor))
	usable := math.Max(0, finite(in.Capacity*in.SafetyFactor))

	days := math.Max(minCycleDays, usable/load)
	perYear := daysPerYear / days

	return Cycle{
		DailyLoad:     load,
		DaysPerCycle:  days,
		CyclesPerYear: perYear,
		Odometer:      math.Max(0, finite(in.AgeYears)) * perYear,
	}
}

// CyclingMultiplier converts a cycle rate into stress relative to a baseline
// rate. Cycling at or below baseline is 1.0.
func CyclingMultiplier(cyclesPerYear, baselinePerYear, sensitivity float64) float64 {
	if baselinePerYear <= 0 {
		return 1
	}
	excess := math.Max(0, finite(cyclesPerYear)/baselinePerYear-1)
	return 1 + math.Max(0, sensitivity)*excess
}

// ThermalMultiplier adds stress for setpoints above the threshold.
func ThermalMultiplier(tempF, thresholdF, perDegree float64) float64 {
	return 1 + math.Max(0, finite(tempF)-thresholdF)*math.Max(0, perDegree)
}

func finite(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	if math.IsInf(v, -1) {
		return -math.MaxFloat64
	}
	return v
}

func clampPct(v float64) float64 {
	return math.Min(100, math.Max(0, finite(v)))
}
