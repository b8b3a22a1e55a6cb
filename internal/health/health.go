// Package health runs the assessment pipeline for one equipment profile:
// clocks, stress aggregation, age and risk, forecast, verdict ladder, then
// the financial plan and service menu. Every family shares the pipeline and
// supplies its own clock formulas, ladder and menu table.
package health

import (
	"github.com/nholik/plumb-sentinel/internal/clocks"
	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/finance"
	"github.com/nholik/plumb-sentinel/internal/forecast"
	"github.com/nholik/plumb-sentinel/internal/risk"
	"github.com/nholik/plumb-sentinel/internal/verdict"
)

// Metrics are the derived degradation figures for one assessment.
type Metrics struct {
	Family                 equipment.Family  `json:"family"`
	Variant                equipment.Variant `json:"variant"`
	AgeYears               float64           `json:"age_years"`
	Factors                []risk.Factor     `json:"factors"`
	AgingRate              float64           `json:"aging_rate"`
	PrimaryStressor        risk.Axis         `json:"primary_stressor"`
	PrimaryStressorLabel   string            `json:"primary_stressor_label"`
	BiologicalAge          float64           `json:"biological_age"`
	LifespanYears          float64           `json:"lifespan_years"`
	FailureProbability     float64           `json:"failure_probability"`
	HealthScore            float64           `json:"health_score"`
	Breach                 risk.Breach       `json:"breach,omitempty"`
	WarrantyRemainingYears float64           `json:"warranty_remaining_years"`
	InWarranty             bool              `json:"in_warranty"`
	Heater                 *HeaterMetrics    `json:"heater,omitempty"`
	Softener               *SoftenerMetrics  `json:"softener,omitempty"`
	Forecast               forecast.Forecast `json:"forecast"`
}

// HeaterMetrics are the water heater clock readings.
type HeaterMetrics struct {
	HotGallonsPerDay   float64      `json:"hot_gallons_per_day"`
	Cycle              clocks.Cycle `json:"cycle"`
	SedimentLbs        float64      `json:"sediment_lbs"`
	SedimentLbsPerYear float64      `json:"sediment_lbs_per_year"`
	ShieldApplicable   bool         `json:"shield_applicable"`
	ShieldLife         float64      `json:"shield_life"`
	AnodeRate          float64      `json:"anode_rate"`
}

// SoftenerMetrics are the softener clock readings.
type SoftenerMetrics struct {
	DailyLoad      float64           `json:"daily_load"`
	DaysPerCycle   float64           `json:"days_per_cycle"`
	RegensPerYear  float64           `json:"regens_per_year"`
	Odometer       float64           `json:"odometer"`
	SealLimit      float64           `json:"seal_limit"`
	MotorLimit     float64           `json:"motor_limit"`
	ResinHealth    float64           `json:"resin_health"`
	ResinDecayRate float64           `json:"resin_decay_rate"`
	ResinCause     clocks.ResinCause `json:"resin_cause"`
}

// Report is the full result bundle for one profile.
type Report struct {
	Metrics Metrics            `json:"metrics"`
	Verdict verdict.Verdict    `json:"verdict"`
	Plan    *finance.Plan      `json:"financial_plan,omitempty"`
	Menu    []finance.MenuItem `json:"service_menu"`
}
