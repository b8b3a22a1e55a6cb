// Package calibration holds every tunable coefficient used by the assessment
// engine. Values are defaults fitted to field observations and may be
// overridden from a YAML file without code changes.
package calibration

import "github.com/nholik/plumb-sentinel/internal/equipment"

// Calibration is the full coefficient set for one engine instance.
type Calibration struct {
	Usage    UsageMultipliers    `yaml:"usage"`
	Softener SoftenerCalibration `yaml:"softener"`
	Heater   HeaterCalibration   `yaml:"heater"`
	Risk     RiskCalibration     `yaml:"risk"`
	Forecast ForecastCalibration `yaml:"forecast"`
	Finance  FinanceCalibration  `yaml:"finance"`
}

// UsageMultipliers scale per-person consumption by household intensity.
type UsageMultipliers struct {
	Light  float64 `yaml:"light"`
	Normal float64 `yaml:"normal"`
	Heavy  float64 `yaml:"heavy"`
}

// For returns the multiplier for the given usage level.
func (u UsageMultipliers) For(usage equipment.Usage) float64 {
	switch usage {
	case equipment.UsageLight:
		return u.Light
	case equipment.UsageHeavy:
		return u.Heavy
	default:
		return u.Normal
	}
}

// ResinRates are resin health losses in percentage points per year.
type ResinRates struct {
	CityChlorine float64 `yaml:"city_chlorine"`
	CityCarbon   float64 `yaml:"city_carbon"`
	WellIron     float64 `yaml:"well_iron"`
	Well         float64 `yaml:"well"`
}

// SoftenerCalibration covers the ion-exchange softener model.
type SoftenerCalibration struct {
	PerPersonGallons      float64    `yaml:"per_person_gallons"`
	SafetyFactor          float64    `yaml:"safety_factor"`
	SealLimit             float64    `yaml:"seal_limit"`
	MotorLimit            float64    `yaml:"motor_limit"`
	MinDaysPerCycle       float64    `yaml:"min_days_per_cycle"`
	BaselineRegensPerYear float64    `yaml:"baseline_regens_per_year"`
	MechanicalSensitivity float64    `yaml:"mechanical_sensitivity"`
	ResinRates            ResinRates `yaml:"resin_rates"`
	BaselineResinRate     float64    `yaml:"baseline_resin_rate"`
	ChemicalSensitivity   float64    `yaml:"chemical_sensitivity"`
	ResinFailurePct       float64    `yaml:"resin_failure_pct"`
	ResinDegradedPct      float64    `yaml:"resin_degraded_pct"`
	LifespanYears         float64    `yaml:"lifespan_years"`
	MaxPSI                float64    `yaml:"max_psi"`
}

// PressureCalibration shapes the line pressure multiplier.
type PressureCalibration struct {
	BaselinePSI     float64 `yaml:"baseline_psi"`
	HighPSI         float64 `yaml:"high_psi"`
	RisePerPSI      float64 `yaml:"rise_per_psi"`
	ExcessPerPSI    float64 `yaml:"excess_per_psi"`
	FailedPRVFactor float64 `yaml:"failed_prv_factor"`
	MaxMultiplier   float64 `yaml:"max_multiplier"`
}

// AnodeCalibration shapes sacrificial anode consumption.
type AnodeCalibration struct {
	LifeYears      float64 `yaml:"life_years"`
	HardnessCoef   float64 `yaml:"hardness_coef"`
	HardnessCap    float64 `yaml:"hardness_cap"`
	SoftenedFactor float64 `yaml:"softened_factor"`
	ProtectedPct   float64 `yaml:"protected_pct"`
	DepletedFactor float64 `yaml:"depleted_factor"`
}

// SedimentCalibration shapes sediment (tank) and scale (tankless) buildup.
type SedimentCalibration struct {
	Precipitation       map[equipment.Variant]float64 `yaml:"precipitation"`
	SoftenedResidualGPG float64                       `yaml:"softened_residual_gpg"`
	TankStressPerLb     float64                       `yaml:"tank_stress_per_lb"`
	TanklessStressPerLb float64                       `yaml:"tankless_stress_per_lb"`
	MaxMultiplier       float64                       `yaml:"max_multiplier"`
	FlushDueLbs         float64                       `yaml:"flush_due_lbs"`
	FlushLockoutLbs     float64                       `yaml:"flush_lockout_lbs"`
	DescaleDueLbs       float64                       `yaml:"descale_due_lbs"`
	DescaleLockoutLbs   float64                       `yaml:"descale_lockout_lbs"`
	HardWaterGPG        float64                       `yaml:"hard_water_gpg"`
}

// CyclingCalibration shapes the thermal cycling multiplier.
type CyclingCalibration struct {
	PerPersonHotGallons     float64 `yaml:"per_person_hot_gallons"`
	UsableFraction          float64 `yaml:"usable_fraction"`
	TanklessEquivalentGal   float64 `yaml:"tankless_equivalent_gallons"`
	ReferenceTankGallons    float64 `yaml:"reference_tank_gallons"`
	BaselineDailyHotGallons float64 `yaml:"baseline_daily_hot_gallons"`
	Sensitivity             float64 `yaml:"sensitivity"`
	TempThresholdF          float64 `yaml:"temp_threshold_f"`
	TempPerDegree           float64 `yaml:"temp_per_degree"`
}

// HeaterVerdictCalibration holds the water heater ladder thresholds.
type HeaterVerdictCalibration struct {
	CriticalProbability float64 `yaml:"critical_probability"`
	ReplaceProbability  float64 `yaml:"replace_probability"`
	ElevatedAgingRate   float64 `yaml:"elevated_aging_rate"`
	WatchProbability    float64 `yaml:"watch_probability"`
	OptimalProbability  float64 `yaml:"optimal_probability"`
}

// HeaterCalibration covers tank, tankless and hybrid water heaters.
type HeaterCalibration struct {
	LifespanYears    map[equipment.Variant]float64 `yaml:"lifespan_years"`
	Pressure         PressureCalibration           `yaml:"pressure"`
	ExpansionPenalty float64                       `yaml:"expansion_penalty"`
	RecircTank       float64                       `yaml:"recirc_tank"`
	RecircTankless   float64                       `yaml:"recirc_tankless"`
	Anode            AnodeCalibration              `yaml:"anode"`
	Sediment         SedimentCalibration           `yaml:"sediment"`
	Cycling          CyclingCalibration            `yaml:"cycling"`
	Verdict          HeaterVerdictCalibration      `yaml:"verdict"`
}

// RiskCalibration shapes stress aggregation and the failure curve.
type RiskCalibration struct {
	SecondaryWeight float64 `yaml:"secondary_weight"`
	MaxAgingRate    float64 `yaml:"max_aging_rate"`
	WeibullShape    float64 `yaml:"weibull_shape"`
}

// ForecastCalibration holds the status bands.
type ForecastCalibration struct {
	DueWindowMonths  float64 `yaml:"due_window_months"`
	MaxHorizonMonths float64 `yaml:"max_horizon_months"`
	ShieldOptimalPct float64 `yaml:"shield_optimal_pct"`
	ShieldDuePct     float64 `yaml:"shield_due_pct"`
}

// FinanceCalibration holds replacement costs, urgency tiers and menu prices.
type FinanceCalibration struct {
	ReplacementCost         map[equipment.Variant]float64 `yaml:"replacement_cost"`
	ImmediateMonths         float64                       `yaml:"immediate_months"`
	HighMonths              float64                       `yaml:"high_months"`
	MediumMonths            float64                       `yaml:"medium_months"`
	ReplaceHorizonCapMonths float64                       `yaml:"replace_horizon_cap_months"`
	MenuPrices              map[string]float64            `yaml:"menu_prices"`
}
