package risk

import (
	"math"

	"github.com/nholik/plumb-sentinel/internal/calibration"
)

// Breach names a direct observation that forces a terminal risk state.
type Breach string

const (
	BreachNone Breach = ""
	BreachLeak Breach = "active_leak"
	BreachRust Breach = "visible_rust"
)

// TerminalPct is the failure probability reported for a breached unit.
const TerminalPct = 100.0

// Assessment is the age and risk model output.
type Assessment struct {
	BiologicalAge      float64 `json:"biological_age"`
	Lifespan           float64 `json:"lifespan_years"`
	FailureProbability float64 `json:"failure_probability"`
	HealthScore        float64 `json:"health_score"`
	Breach             Breach  `json:"breach,omitempty"`
}

// Breached reports whether a breach override applied.
func (a Assessment) Breached() bool {
	return a.Breach != BreachNone
}

// BreachFor maps observations to a breach. A leak outranks rust.
func BreachFor(leaking, rust bool) Breach {
	switch {
	case leaking:
		return BreachLeak
	case rust:
		return BreachRust
	default:
		return BreachNone
	}
}

// BiologicalAge scales calendar age by the aging rate.
func BiologicalAge(ageYears, rate float64) float64 {
	age := math.Max(0, sanitize(ageYears))
	r := math.Max(1, sanitize(rate))
	return sanitize(age * r)
}

// FailureProbability is the Weibull wear-out probability in percent for a
// unit at the given biological age. A unit at its typical lifespan sits at
// 50%.
func FailureProbability(bioAge, lifespan float64, cal calibration.RiskCalibration) float64 {
	if lifespan <= 0 {
		return TerminalPct
	}
	shape := cal.WeibullShape
	if shape <= 0 {
		shape = 1
	}
	x := math.Max(0, sanitize(bioAge)) / lifespan
	p := 100 * (1 - math.Exp(-math.Ln2*math.Pow(x, shape)))
	return clamp(p)
}

// Assess runs the age and risk model. A breach forces probability to 100 and
// health to 0 regardless of the computed curve.
func Assess(ageYears, rate, lifespan float64, breach Breach, cal calibration.RiskCalibration) Assessment {
	bio := BiologicalAge(ageYears, rate)
	prob := FailureProbability(bio, lifespan, cal)
	if breach != BreachNone {
		prob = TerminalPct
	}
	return Assessment{
		BiologicalAge:      bio,
		Lifespan:           lifespan,
		FailureProbability: prob,
		HealthScore:        clamp(100 - prob),
		Breach:             breach,
	}
}

// RemainingLife is the calendar years left before biological age reaches the
// lifespan at the current aging rate.
func RemainingLife(bioAge, lifespan, rate float64) float64 {
	left := math.Max(0, lifespan-math.Max(0, sanitize(bioAge)))
	return left / math.Max(1, sanitize(rate))
}

func sanitize(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, sanitize(v)))
}
