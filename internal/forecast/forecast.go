// Package forecast projects current wear rates forward into time-to-event
// figures and status bands.
package forecast

import (
	"math"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/risk"
)

// Status is a forecast band.
type Status string

const (
	StatusOptimal       Status = "optimal"
	StatusDue           Status = "due"
	StatusCritical      Status = "critical"
	StatusLockout       Status = "lockout"
	StatusImpossible    Status = "impossible"
	StatusRunToFailure  Status = "run_to_failure"
	StatusDepleted      Status = "depleted"
	StatusNotApplicable Status = "not_applicable"
)

// Service names the recurring maintenance event being forecast.
type Service string

const (
	ServiceFlush        Service = "flush"
	ServiceDescale      Service = "descale"
	ServiceValveRebuild Service = "valve_rebuild"
)

// Thresholds are the service-due and lockout levels of an accumulator.
type Thresholds struct {
	Due     float64 `json:"due"`
	Lockout float64 `json:"lockout"`
}

// Input is everything the forecast needs from upstream stages.
type Input struct {
	Service    Service
	Current    float64
	PerYear    float64
	Thresholds Thresholds
	// Serviceable is false when the service cannot be performed safely,
	// such as a descale without isolation valves.
	Serviceable bool

	// Level is a protective reserve percentage (anode shield, resin bed).
	Level           float64
	LevelApplicable bool
	LevelPerYear    float64

	BiologicalAge float64
	Lifespan      float64
	Rate          float64
}

// Forecast is the projected outlook for one unit.
type Forecast struct {
	Service             Service `json:"service"`
	ServiceStatus       Status  `json:"service_status"`
	MonthsToService     float64 `json:"months_to_service"`
	MonthsToLockout     float64 `json:"months_to_lockout"`
	LevelStatus         Status  `json:"level_status"`
	MonthsToDepletion   float64 `json:"months_to_depletion"`
	RemainingLifeYears  float64 `json:"remaining_life_years"`
	RemainingLifeMonths float64 `json:"remaining_life_months"`
}

// Project builds the forecast.
func Project(in Input, cal calibration.ForecastCalibration) Forecast {
	toDue := MonthsUntil(in.Current, in.Thresholds.Due, in.PerYear, cal.MaxHorizonMonths)
	toLockout := MonthsUntil(in.Current, in.Thresholds.Lockout, in.PerYear, cal.MaxHorizonMonths)

	status := ServiceStatus(in.Current, toDue, in.Thresholds, cal)
	endOfLife := in.Lifespan > 0 && in.BiologicalAge >= in.Lifespan
	switch {
	case status == StatusLockout && endOfLife:
		status = StatusRunToFailure
	case !in.Serviceable && status != StatusOptimal:
		status = StatusImpossible
	}

	out := Forecast{
		Service:         in.Service,
		ServiceStatus:   status,
		MonthsToService: toDue,
		MonthsToLockout: toLockout,
		LevelStatus:     StatusNotApplicable,
	}

	if in.LevelApplicable {
		out.LevelStatus = LevelStatus(in.Level, cal)
		out.MonthsToDepletion = MonthsUntil(100-in.Level, 100, in.LevelPerYear, cal.MaxHorizonMonths)
	} else {
		out.MonthsToDepletion = cal.MaxHorizonMonths
	}

	years := risk.RemainingLife(in.BiologicalAge, in.Lifespan, in.Rate)
	out.RemainingLifeYears = years
	out.RemainingLifeMonths = math.Min(years*12, cal.MaxHorizonMonths)

	return out
}

// MonthsUntil projects when an accumulator growing at perYear reaches the
// threshold. Zero when already reached; maxMonths when it never will.
func MonthsUntil(current, threshold, perYear, maxMonths float64) float64 {
	if current >= threshold {
		return 0
	}
	if perYear <= 0 || math.IsNaN(perYear) {
		return maxMonths
	}
	months := (threshold - current) / perYear * 12
	if math.IsNaN(months) || months > maxMonths {
		return maxMonths
	}
	return months
}

// ServiceStatus bands an accumulator against its thresholds.
func ServiceStatus(current, monthsToDue float64, th Thresholds, cal calibration.ForecastCalibration) Status {
	switch {
	case current >= th.Lockout:
		return StatusLockout
	case current >= th.Due:
		return StatusCritical
	case monthsToDue <= cal.DueWindowMonths:
		return StatusDue
	default:
		return StatusOptimal
	}
}

// LevelStatus bands a protective reserve percentage.
func LevelStatus(pct float64, cal calibration.ForecastCalibration) Status {
	switch {
	case pct >= cal.ShieldOptimalPct:
		return StatusOptimal
	case pct >= cal.ShieldDuePct:
		return StatusDue
	case pct > 0:
		return StatusCritical
	default:
		return StatusDepleted
	}
}

// NeedsAttention reports whether a status calls for action now.
func (s Status) NeedsAttention() bool {
	switch s {
	case StatusCritical, StatusLockout, StatusImpossible, StatusRunToFailure, StatusDepleted:
		return true
	default:
		return false
	}
}
