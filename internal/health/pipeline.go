package health

import (
	"fmt"
	"time"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/finance"
	"github.com/nholik/plumb-sentinel/internal/forecast"
	"github.com/nholik/plumb-sentinel/internal/risk"
	"github.com/nholik/plumb-sentinel/internal/verdict"
)

// model is the family-specific half of the pipeline over facts of type F.
type model[F any] struct {
	// measure runs the clocks. It fills Factors, LifespanYears and the
	// family section of m and returns the forecast input and any breach.
	measure func(p equipment.Profile, m *Metrics) (forecast.Input, risk.Breach)
	facts   func(p equipment.Profile, m Metrics) F
	ladder  []verdict.Rule[F]
	menu    []finance.Trigger[F]
}

// Evaluator assesses profiles against one calibration. It holds no mutable
// state and is safe for concurrent use.
type Evaluator struct {
	cal      calibration.Calibration
	heater   model[heaterFacts]
	softener model[softenerFacts]
}

// NewEvaluator builds an evaluator for the calibration.
func NewEvaluator(cal calibration.Calibration) *Evaluator {
	return &Evaluator{
		cal:      cal,
		heater:   newHeaterModel(cal),
		softener: newSoftenerModel(cal),
	}
}

// Calibration returns the coefficients in use.
func (e *Evaluator) Calibration() calibration.Calibration {
	return e.cal
}

// Assess runs the pipeline. asOf anchors plan target dates. The only error
// is an *equipment.ConfigError for unrecognized equipment.
func (e *Evaluator) Assess(p equipment.Profile, asOf time.Time) (Report, error) {
	n, err := p.Normalize()
	if err != nil {
		return Report{}, err
	}

	switch n.Family {
	case equipment.FamilyWaterHeater:
		return run(e.heater, n, e.cal, asOf)
	case equipment.FamilySoftener:
		return run(e.softener, n, e.cal, asOf)
	default:
		return Report{}, &equipment.ConfigError{Field: "family", Value: string(n.Family), Reason: "no assessment model"}
	}
}

// Assess runs the pipeline with the default calibration.
func Assess(p equipment.Profile, asOf time.Time) (Report, error) {
	return NewEvaluator(calibration.Default()).Assess(p, asOf)
}

func run[F any](md model[F], p equipment.Profile, cal calibration.Calibration, asOf time.Time) (Report, error) {
	warranty := p.WarrantyRemaining()
	m := Metrics{
		Family:                 p.Family,
		Variant:                p.Variant,
		AgeYears:               p.AgeYears,
		WarrantyRemainingYears: warranty,
		InWarranty:             warranty > 0,
	}

	in, breach := md.measure(p, &m)

	agg := risk.Combine(m.Factors, cal.Risk)
	m.AgingRate = agg.Rate
	m.PrimaryStressor = agg.Primary
	m.PrimaryStressorLabel = agg.PrimaryLabel

	assessment := risk.Assess(p.AgeYears, agg.Rate, m.LifespanYears, breach, cal.Risk)
	m.BiologicalAge = assessment.BiologicalAge
	m.FailureProbability = assessment.FailureProbability
	m.HealthScore = assessment.HealthScore
	m.Breach = assessment.Breach

	in.BiologicalAge = m.BiologicalAge
	in.Lifespan = m.LifespanYears
	in.Rate = m.AgingRate
	m.Forecast = forecast.Project(in, cal.Forecast)

	facts := md.facts(p, m)
	v, err := verdict.Evaluate(md.ladder, facts)
	if err != nil {
		return Report{}, fmt.Errorf("evaluate %s verdict: %w", p.Variant, err)
	}
	if v.PrimaryStressor == "" {
		v.PrimaryStressor = m.PrimaryStressor
	}

	cost := cal.Finance.ReplacementCost[p.Variant]
	return Report{
		Metrics: m,
		Verdict: v,
		Plan:    finance.BuildPlan(v, m.Forecast.RemainingLifeMonths, cost, asOf, cal.Finance),
		Menu:    finance.BuildMenu(md.menu, facts, v, cal.Finance.MenuPrices),
	}, nil
}
