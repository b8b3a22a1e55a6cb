package risk

import (
	"math"
	"testing"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/stretchr/testify/assert"
)

var riskCal = calibration.Default().Risk

func TestCombineBaseline(t *testing.T) {
	agg := Combine([]Factor{NewFactor(AxisPressure, 1), NewFactor(AxisSediment, 1)}, riskCal)
	assert.Equal(t, 1.0, agg.Rate)
	assert.Equal(t, AxisNone, agg.Primary)
	assert.Equal(t, 0, agg.FactorsApplied)

	empty := Combine(nil, riskCal)
	assert.Equal(t, 1.0, empty.Rate)
	assert.Equal(t, AxisNone, empty.Primary)
}

func TestCombineDominantPlusWeightedSecondaries(t *testing.T) {
	agg := Combine([]Factor{
		NewFactor(AxisSediment, 1.2),
		NewFactor(AxisPressure, 1.5),
		NewFactor(AxisCirculation, 1.15),
	}, riskCal)

	assert.InDelta(t, 1.5+0.25*0.2+0.25*0.15, agg.Rate, 1e-9)
	assert.Equal(t, AxisPressure, agg.Primary)
	assert.Equal(t, "High line pressure", agg.PrimaryLabel)
	assert.Equal(t, 1.5, agg.PrimaryFactor)
	assert.Equal(t, 3, agg.FactorsApplied)
}

func TestCombineFirstWinsOnTie(t *testing.T) {
	agg := Combine([]Factor{
		NewFactor(AxisExpansion, 1.5),
		NewFactor(AxisCorrosion, 1.5),
	}, riskCal)
	assert.Equal(t, AxisExpansion, agg.Primary)
}

func TestCombineCapsRate(t *testing.T) {
	agg := Combine([]Factor{
		NewFactor(AxisPressure, 3),
		NewFactor(AxisSediment, 2),
		NewFactor(AxisExpansion, 1.5),
		NewFactor(AxisCorrosion, 1.5),
		NewFactor(AxisCycling, 10),
	}, riskCal)
	assert.Equal(t, riskCal.MaxAgingRate, agg.Rate)
}

func TestNewFactorClamps(t *testing.T) {
	assert.Equal(t, 1.0, NewFactor(AxisPressure, 0.4).Multiplier)
	assert.Equal(t, 1.0, NewFactor(AxisPressure, math.NaN()).Multiplier)
	assert.False(t, math.IsInf(NewFactor(AxisPressure, math.Inf(1)).Multiplier, 0))
}

func TestRateWithout(t *testing.T) {
	factors := []Factor{
		NewFactor(AxisSediment, 1.4),
		NewFactor(AxisPressure, 1.2),
	}
	full := Combine(factors, riskCal).Rate
	fixed := RateWithout(factors, AxisSediment, riskCal)

	assert.InDelta(t, 1.4+0.25*0.2, full, 1e-9)
	assert.InDelta(t, 1.2, fixed, 1e-9)
	assert.Equal(t, 1.0, RateWithout(factors[:1], AxisSediment, riskCal))
}

func TestFailureProbabilityCurve(t *testing.T) {
	assert.Equal(t, 0.0, FailureProbability(0, 10, riskCal))
	assert.InDelta(t, 50, FailureProbability(10, 10, riskCal), 1e-9)
	assert.InDelta(t, 100*(1-math.Exp(-math.Ln2*0.125)), FailureProbability(5, 10, riskCal), 1e-9)
	assert.Equal(t, TerminalPct, FailureProbability(5, 0, riskCal))

	prev := -1.0
	for bio := 0.0; bio <= 60; bio += 0.5 {
		p := FailureProbability(bio, 10, riskCal)
		assert.GreaterOrEqual(t, p, prev)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
		prev = p
	}
}

func TestAssess(t *testing.T) {
	a := Assess(6, 1.5, 10, BreachNone, riskCal)
	assert.InDelta(t, 9, a.BiologicalAge, 1e-9)
	assert.InDelta(t, 100-a.FailureProbability, a.HealthScore, 1e-9)
	assert.False(t, a.Breached())
}

func TestAssessBreachOverride(t *testing.T) {
	for _, breach := range []Breach{BreachLeak, BreachRust} {
		a := Assess(1, 1, 10, breach, riskCal)
		assert.Equal(t, TerminalPct, a.FailureProbability)
		assert.Equal(t, 0.0, a.HealthScore)
		assert.True(t, a.Breached())
	}
}

func TestAssessClampsExtremes(t *testing.T) {
	for _, age := range []float64{math.NaN(), math.Inf(1), -5, 1e300} {
		a := Assess(age, math.Inf(1), 10, BreachNone, riskCal)
		assert.False(t, math.IsNaN(a.FailureProbability))
		assert.GreaterOrEqual(t, a.FailureProbability, 0.0)
		assert.LessOrEqual(t, a.FailureProbability, 100.0)
		assert.GreaterOrEqual(t, a.HealthScore, 0.0)
		assert.LessOrEqual(t, a.HealthScore, 100.0)
	}
}

func TestBreachFor(t *testing.T) {
	assert.Equal(t, BreachLeak, BreachFor(true, true))
	assert.Equal(t, BreachRust, BreachFor(false, true))
	assert.Equal(t, BreachNone, BreachFor(false, false))
}

func TestRemainingLife(t *testing.T) {
	assert.InDelta(t, 2, RemainingLife(6, 10, 2), 1e-9)
	assert.Equal(t, 0.0, RemainingLife(12, 10, 2))
	assert.InDelta(t, 10, RemainingLife(0, 10, 0), 1e-9)
}
