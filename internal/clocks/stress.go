package clocks

import (
	"math"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/equipment"
)

// PressureMultiplier models line pressure stress. Pressure at or below the
// baseline is 1.0; it rises gently up to the high limit and steeply past it.
// A failed PRV adds its own factor.
func PressureMultiplier(psi float64, prv equipment.PRVStatus, cal calibration.PressureCalibration) float64 {
	p := math.Max(0, finite(psi))
	m := 1.0
	switch {
	case p > cal.HighPSI:
		m = 1 + (cal.HighPSI-cal.BaselinePSI)*cal.RisePerPSI + (p-cal.HighPSI)*cal.ExcessPerPSI
	case p > cal.BaselinePSI:
		m = 1 + (p-cal.BaselinePSI)*cal.RisePerPSI
	}
	if prv == equipment.PRVFailed && cal.FailedPRVFactor > 0 {
		m *= cal.FailedPRVFactor
	}
	m = math.Max(1, m)
	if cal.MaxMultiplier >= 1 {
		m = math.Min(m, cal.MaxMultiplier)
	}
	return m
}

// ExpansionExposed reports a closed loop without a working expansion tank.
// A waterlogged tank absorbs nothing and counts as missing.
func ExpansionExposed(acc equipment.Accessories) bool {
	return acc.ClosedLoop && acc.ExpansionTank != equipment.ExpansionFunctional
}

// ExpansionMultiplier is the thermal expansion stress.
func ExpansionMultiplier(acc equipment.Accessories, penalty float64) float64 {
	if !ExpansionExposed(acc) {
		return 1
	}
	return math.Max(1, penalty)
}

// CirculationMultiplier is the continuous-flow stress from a recirculation
// pump. Tankless exchangers erode faster under constant flow.
func CirculationMultiplier(recirc, tankless bool, cal calibration.HeaterCalibration) float64 {
	if !recirc {
		return 1
	}
	if tankless {
		return math.Max(1, cal.RecircTankless)
	}
	return math.Max(1, cal.RecircTank)
}
