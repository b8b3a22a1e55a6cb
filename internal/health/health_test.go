package health

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/finance"
	"github.com/nholik/plumb-sentinel/internal/forecast"
	"github.com/nholik/plumb-sentinel/internal/risk"
	"github.com/nholik/plumb-sentinel/internal/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func assess(t *testing.T, p equipment.Profile) Report {
	t.Helper()
	report, err := NewEvaluator(calibration.Default()).Assess(p, asOf)
	require.NoError(t, err)
	return report
}

func softener(age float64, source equipment.WaterSource) equipment.Profile {
	return equipment.Profile{
		Family:         equipment.FamilySoftener,
		Variant:        equipment.VariantIonExchange,
		AgeYears:       age,
		CapacityGrains: 32000,
		Environment: equipment.Environment{
			HardnessGPG: ptr(15),
			Occupants:   3,
			WaterSource: source,
		},
	}
}

func menuIDs(items []finance.MenuItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestSoftenerScenarioHealthy(t *testing.T) {
	r := assess(t, softener(5, equipment.SourceCity))

	require.NotNil(t, r.Metrics.Softener)
	s := r.Metrics.Softener
	assert.Equal(t, 3375.0, s.DailyLoad)
	assert.InDelta(t, 8.53, s.DaysPerCycle, 0.01)
	assert.InDelta(t, 42.8, s.RegensPerYear, 0.05)
	assert.InDelta(t, 214, s.Odometer, 0.5)
	assert.InDelta(t, 50, s.ResinHealth, 1e-9)

	assert.Equal(t, verdict.ActionMonitor, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeHealthy, r.Verdict.Badge)
	assert.False(t, r.Verdict.Urgent)
	assert.Nil(t, r.Plan)
	assert.Equal(t, []string{calibration.ItemCarbonPrefilter}, menuIDs(r.Menu))
}

func TestSoftenerScenarioSealWear(t *testing.T) {
	r := assess(t, softener(15, equipment.SourceWell))

	assert.InDelta(t, 642, r.Metrics.Softener.Odometer, 0.5)
	assert.Equal(t, verdict.ActionValveRebuild, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeSealWear, r.Verdict.Badge)
	assert.Contains(t, r.Verdict.Reason, "642 regenerations")
	assert.Equal(t, "seal_limit", r.Verdict.RuleID)
	require.NotNil(t, r.Plan)
	assert.Contains(t, menuIDs(r.Menu), calibration.ItemSealKit)
}

func TestSoftenerScenarioResinFailure(t *testing.T) {
	r := assess(t, softener(8, equipment.SourceCity))

	assert.InDelta(t, 20, r.Metrics.Softener.ResinHealth, 1e-9)
	assert.Equal(t, verdict.ActionRebedOrReplace, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeResinFailure, r.Verdict.Badge)
	assert.Contains(t, r.Verdict.Reason, "20%")
	assert.Contains(t, r.Verdict.Reason, "no carbon pre-filter")

	ids := menuIDs(r.Menu)
	assert.Contains(t, ids, calibration.ItemResinRebed)
	assert.Contains(t, ids, calibration.ItemCarbonPrefilter)
}

func TestSoftenerResinOutranksMechanicalRules(t *testing.T) {
	p := softener(8, equipment.SourceCity)
	p.Environment.HardnessGPG = ptr(60)
	p.Environment.Occupants = 8

	r := assess(t, p)
	require.Greater(t, r.Metrics.Softener.Odometer, calibration.Default().Softener.MotorLimit)
	assert.Equal(t, verdict.ActionRebedOrReplace, r.Verdict.Action)

	aged := assess(t, softener(15, equipment.SourceCity))
	assert.Greater(t, aged.Metrics.Softener.Odometer, calibration.Default().Softener.SealLimit)
	assert.Equal(t, verdict.ActionRebedOrReplace, aged.Verdict.Action)
}

func TestSoftenerMotorLimit(t *testing.T) {
	p := softener(14, equipment.SourceWell)
	p.Environment.HardnessGPG = ptr(25)
	p.Environment.Occupants = 5

	r := assess(t, p)
	require.Greater(t, r.Metrics.Softener.Odometer, 1500.0)
	assert.Equal(t, verdict.ActionReplaceUnit, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeMechanicalFailure, r.Verdict.Badge)
	for _, item := range r.Menu {
		assert.Equal(t, finance.KindInfrastructure, item.Kind, "maintenance item %s on a replacement", item.ID)
	}
}

func TestSoftenerChemicalDetox(t *testing.T) {
	p := softener(5, equipment.SourceWell)
	p.Environment.WellIron = true

	r := assess(t, p)
	assert.InDelta(t, 65, r.Metrics.Softener.ResinHealth, 1e-9)
	assert.Equal(t, verdict.ActionChemicalDetox, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeResinDegraded, r.Verdict.Badge)
	assert.Contains(t, menuIDs(r.Menu), calibration.ItemResinCleaner)
}

func TestSoftenerDetoxOnFilteredCityWater(t *testing.T) {
	p := softener(8, equipment.SourceCity)
	p.Accessories.CarbonFilter = true

	r := assess(t, p)
	assert.InDelta(t, 60, r.Metrics.Softener.ResinHealth, 1e-9)
	assert.Less(t, r.Metrics.Softener.Odometer, calibration.Default().Softener.SealLimit)
	assert.Equal(t, verdict.ActionChemicalDetox, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeResinDegraded, r.Verdict.Badge)
	assert.Contains(t, r.Verdict.Reason, "60%")
	assert.Contains(t, r.Verdict.Reason, "only partly recoverable")
	assert.NotNil(t, r.Plan)

	ids := menuIDs(r.Menu)
	assert.Contains(t, ids, calibration.ItemResinCleaner)
	assert.NotContains(t, ids, calibration.ItemCarbonPrefilter)
}

func TestSoftenerUnfilteredCityWaterFlagsPrefilter(t *testing.T) {
	for _, age := range []float64{3, 5} {
		r := assess(t, softener(age, equipment.SourceCity))

		assert.Equal(t, verdict.ActionMonitor, r.Verdict.Action, "age %v", age)
		assert.Contains(t, r.Verdict.Reason, "resin at")
		require.NotEmpty(t, r.Menu)
		assert.Equal(t, calibration.ItemCarbonPrefilter, r.Menu[0].ID)
		assert.Equal(t, finance.PriorityCritical, r.Menu[0].Priority)
		assert.NotContains(t, menuIDs(r.Menu), calibration.ItemResinCleaner)
	}
}

func TestSoftenerHighWaste(t *testing.T) {
	p := softener(2, equipment.SourceWell)
	p.Environment.HardnessGPG = ptr(30)
	p.Environment.Occupants = 5
	p.CapacityGrains = 24000

	r := assess(t, p)
	require.Less(t, r.Metrics.Softener.DaysPerCycle, 3.0)
	assert.Equal(t, verdict.ActionEfficiencyUpgrade, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeHighWaste, r.Verdict.Badge)
	assert.Contains(t, menuIDs(r.Menu), calibration.ItemEfficiencyValve)
}

func TestSoftenerBreach(t *testing.T) {
	p := softener(1, equipment.SourceWell)
	p.Observations.IsLeaking = true
	p.Observations.LeakSource = equipment.LeakValve

	r := assess(t, p)
	assert.Equal(t, verdict.ActionReplace, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeCritical, r.Verdict.Badge)
	assert.True(t, r.Verdict.Urgent)
	assert.Equal(t, 100.0, r.Metrics.FailureProbability)
	assert.Equal(t, 0.0, r.Metrics.HealthScore)
	assert.Nil(t, r.Plan)
}

func gasTank(age float64) equipment.Profile {
	return equipment.Profile{
		Family:   equipment.FamilyWaterHeater,
		Variant:  equipment.VariantGasTank,
		AgeYears: age,
		Environment: equipment.Environment{
			HousePSI:    55,
			HardnessGPG: ptr(5),
			Occupants:   2,
		},
		History: equipment.History{YearsSinceFlush: ptr(1)},
	}
}

func TestHeaterOptimal(t *testing.T) {
	r := assess(t, gasTank(2))

	assert.Equal(t, verdict.ActionPass, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeOptimal, r.Verdict.Badge)
	assert.Less(t, r.Metrics.FailureProbability, 15.0)
	assert.Nil(t, r.Plan)
	assert.Equal(t, []string{calibration.ItemDrainPan}, menuIDs(r.Menu))
	assert.True(t, r.Metrics.InWarranty)
	assert.InDelta(t, 4, r.Metrics.WarrantyRemainingYears, 1e-9)
}

func TestHeaterLeakScenario(t *testing.T) {
	p := gasTank(2)
	p.Observations.IsLeaking = true

	r := assess(t, p)
	assert.Equal(t, verdict.ActionReplace, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeCritical, r.Verdict.Badge)
	assert.True(t, r.Verdict.Urgent)
	assert.Equal(t, "active_leak", r.Verdict.RuleID)
	assert.Equal(t, risk.TerminalPct, r.Metrics.FailureProbability)
	assert.Equal(t, 0.0, r.Metrics.HealthScore)
	assert.Equal(t, risk.BreachLeak, r.Metrics.Breach)
	assert.Nil(t, r.Plan)
	assert.Contains(t, r.Verdict.Reason, "warranty")
}

func TestHeaterRustScenario(t *testing.T) {
	p := gasTank(8)
	p.Observations.VisibleRust = true

	r := assess(t, p)
	assert.Equal(t, verdict.ActionReplace, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeCritical, r.Verdict.Badge)
	assert.True(t, r.Verdict.Urgent)
	assert.Equal(t, "visible_rust", r.Verdict.RuleID)
	assert.Equal(t, 100.0, r.Metrics.FailureProbability)
}

func TestHeaterLeakOutranksEverything(t *testing.T) {
	p := gasTank(4)
	p.Environment.HousePSI = 95
	p.Accessories.ClosedLoop = true
	p.Observations.IsLeaking = true
	p.Observations.VisibleRust = true
	p.Observations.IgniterCondition = equipment.ConditionFailed

	r := assess(t, p)
	assert.Equal(t, "active_leak", r.Verdict.RuleID)
}

func TestHeaterEndOfLife(t *testing.T) {
	p := gasTank(10.5)
	p.Environment.HardnessGPG = ptr(0)
	p.History.YearsSinceFlush = ptr(0.5)
	p.History.YearsSinceAnode = ptr(1)

	r := assess(t, p)
	assert.Equal(t, verdict.ActionReplace, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeEndOfLife, r.Verdict.Badge)
	assert.False(t, r.Verdict.Urgent)
	require.NotNil(t, r.Plan)
	assert.Equal(t, finance.TierImmediate, r.Plan.Tier)
	assert.Equal(t, 2200.0, r.Plan.MonthlyBudget)
	for _, item := range r.Menu {
		assert.Equal(t, finance.KindInfrastructure, item.Kind)
	}
}

func TestHeaterMonitorAttachesPlan(t *testing.T) {
	p := gasTank(9)
	p.Environment.HardnessGPG = ptr(0)
	p.History.YearsSinceFlush = ptr(0.5)
	p.History.YearsSinceAnode = ptr(1)

	r := assess(t, p)
	assert.Equal(t, verdict.ActionPass, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeMonitor, r.Verdict.Badge)
	assert.InDelta(t, 39.7, r.Metrics.FailureProbability, 0.1)
	require.NotNil(t, r.Plan)
	assert.InDelta(t, 12, r.Plan.HorizonMonths, 1e-6)
	assert.Equal(t, finance.TierMedium, r.Plan.Tier)
	assert.InDelta(t, 183.33, r.Plan.MonthlyBudget, 0.01)
	assert.Equal(t, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), r.Plan.TargetDate)
}

func TestHeaterAcceleratedWear(t *testing.T) {
	p := gasTank(4)
	p.Environment.HousePSI = 95
	p.Environment.HardnessGPG = ptr(12)
	p.Environment.Occupants = 3
	p.History.YearsSinceAnode = ptr(1)

	r := assess(t, p)
	assert.Equal(t, risk.AxisPressure, r.Metrics.PrimaryStressor)
	assert.InDelta(t, 1.93, r.Metrics.AgingRate, 0.01)
	assert.InDelta(t, 27.3, r.Metrics.FailureProbability, 0.2)
	assert.Equal(t, verdict.BadgeAcceleratedWear, r.Verdict.Badge)
	assert.Equal(t, verdict.ActionRepair, r.Verdict.Action)
	assert.Equal(t, risk.AxisPressure, r.Verdict.PrimaryStressor)
	assert.InDelta(t, 0.9, r.Verdict.LifeExtension, 1e-9)

	require.NotNil(t, r.Plan)
	assert.Equal(t, finance.TierMedium, r.Plan.Tier)
	assert.Equal(t, []string{
		calibration.ItemPRVInstall,
		calibration.ItemDrainPan,
		calibration.ItemWholeHomeSoftener,
	}, menuIDs(r.Menu))
}

func TestHeaterInfrastructure(t *testing.T) {
	p := gasTank(2)
	p.Accessories.ClosedLoop = true

	r := assess(t, p)
	assert.Equal(t, verdict.ActionUpgrade, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeInfrastructure, r.Verdict.Badge)
	assert.Contains(t, r.Verdict.Reason, "expansion tank")
	require.NotEmpty(t, r.Menu)
	assert.Equal(t, calibration.ItemExpansionInstall, r.Menu[0].ID)
	assert.Equal(t, finance.PriorityCritical, r.Menu[0].Priority)
}

func TestTanklessServiceImpossible(t *testing.T) {
	p := equipment.Profile{
		Family:   equipment.FamilyWaterHeater,
		Variant:  equipment.VariantTanklessGas,
		AgeYears: 2,
		Environment: equipment.Environment{
			HardnessGPG: ptr(15),
			Occupants:   3,
		},
	}

	r := assess(t, p)
	require.NotNil(t, r.Metrics.Heater)
	assert.InDelta(t, 0.94, r.Metrics.Heater.SedimentLbs, 0.01)
	assert.False(t, r.Metrics.Heater.ShieldApplicable)
	assert.Equal(t, 100.0, r.Metrics.Heater.ShieldLife)
	assert.Equal(t, forecast.StatusImpossible, r.Metrics.Forecast.ServiceStatus)
	assert.Equal(t, forecast.StatusNotApplicable, r.Metrics.Forecast.LevelStatus)
	assert.Equal(t, verdict.ActionMaintain, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeServiceDue, r.Verdict.Badge)
	assert.Contains(t, r.Verdict.Reason, "isolation valves")
	assert.Equal(t, []string{
		calibration.ItemIsolationValves,
		calibration.ItemDescale,
		calibration.ItemWholeHomeSoftener,
	}, menuIDs(r.Menu))
}

func TestTanklessScaleLockout(t *testing.T) {
	p := equipment.Profile{
		Family:   equipment.FamilyWaterHeater,
		Variant:  equipment.VariantTanklessGas,
		AgeYears: 5,
		Environment: equipment.Environment{
			HardnessGPG: ptr(15),
			Occupants:   3,
		},
		Accessories:  equipment.Accessories{IsolationValves: true},
		Observations: equipment.Observations{ErrorCodeCount: 2},
	}

	r := assess(t, p)
	assert.Equal(t, verdict.ActionRepair, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeScaleLockout, r.Verdict.Badge)
	assert.True(t, r.Verdict.Urgent)
	assert.Nil(t, r.Plan)

	p.Observations.ErrorCodeCount = 0
	quiet := assess(t, p)
	assert.Equal(t, verdict.BadgeScaleLockout, quiet.Verdict.Badge)
	assert.False(t, quiet.Verdict.Urgent)
	assert.Contains(t, quiet.Verdict.Reason, "professional descale")

	p.Accessories.IsolationValves = false
	valveless := assess(t, p)
	assert.Equal(t, verdict.BadgeScaleLockout, valveless.Verdict.Badge)
	assert.Equal(t, forecast.StatusImpossible, valveless.Metrics.Forecast.ServiceStatus)
	assert.Contains(t, valveless.Verdict.Reason, "Isolation valves must be fitted")
	assert.NotContains(t, valveless.Verdict.Reason, "professional descale")
}

func TestHeaterComponentFailure(t *testing.T) {
	electric := gasTank(3)
	electric.Variant = equipment.VariantElectricTank
	electric.Observations.ElementCondition = equipment.ConditionFailed

	r := assess(t, electric)
	assert.Equal(t, verdict.ActionRepair, r.Verdict.Action)
	assert.Equal(t, verdict.BadgeComponentFailure, r.Verdict.Badge)
	assert.True(t, r.Verdict.Urgent)
	assert.Contains(t, r.Verdict.Reason, "heating element")

	gas := gasTank(3)
	gas.Observations.ElementCondition = equipment.ConditionFailed
	assert.NotEqual(t, verdict.BadgeComponentFailure, assess(t, gas).Verdict.Badge)
}

func TestHeaterSedimentLockout(t *testing.T) {
	p := gasTank(5)
	p.Environment.HardnessGPG = ptr(25)
	p.Environment.Occupants = 4
	p.History.YearsSinceFlush = ptr(5)
	p.History.YearsSinceAnode = ptr(1)

	r := assess(t, p)
	require.GreaterOrEqual(t, r.Metrics.Heater.SedimentLbs, 15.0)
	if r.Verdict.RuleID != "sediment_lockout" {
		require.True(t, r.Verdict.Action.Replacement(), "expected a replacement verdict, got %s", r.Verdict.RuleID)
	}
	assert.NotContains(t, menuIDs(r.Menu), calibration.ItemFlush)
}

func TestAssessUnknownEquipment(t *testing.T) {
	tests := []equipment.Profile{
		{Family: equipment.FamilyWaterHeater, Variant: "solar_thermal"},
		{Family: "boiler", Variant: equipment.VariantGasTank},
		{Family: equipment.FamilySoftener, Variant: equipment.VariantHybrid},
		{},
	}

	for _, p := range tests {
		_, err := Assess(p, asOf)
		require.Error(t, err)
		assert.True(t, errors.Is(err, equipment.ErrUnknownEquipment))
		var cfgErr *equipment.ConfigError
		assert.True(t, errors.As(err, &cfgErr))
	}
}

func TestAssessDeterministic(t *testing.T) {
	profiles := []equipment.Profile{
		softener(7, equipment.SourceCity),
		gasTank(6),
		{Family: equipment.FamilyWaterHeater, Variant: equipment.VariantHybrid, AgeYears: 9},
	}
	ev := NewEvaluator(calibration.Default())
	for _, p := range profiles {
		first, err := ev.Assess(p, asOf)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := ev.Assess(p, asOf)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestAssessClampsExtremeInputs(t *testing.T) {
	values := []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1e9, 0, 1e-12, 1e9, 1e300}
	variants := map[equipment.Variant]equipment.Family{
		equipment.VariantGasTank:          equipment.FamilyWaterHeater,
		equipment.VariantElectricTank:     equipment.FamilyWaterHeater,
		equipment.VariantPropaneTank:      equipment.FamilyWaterHeater,
		equipment.VariantTanklessGas:      equipment.FamilyWaterHeater,
		equipment.VariantTanklessElectric: equipment.FamilyWaterHeater,
		equipment.VariantHybrid:           equipment.FamilyWaterHeater,
		equipment.VariantIonExchange:      equipment.FamilySoftener,
	}

	ev := NewEvaluator(calibration.Default())
	for variant, family := range variants {
		for _, v := range values {
			p := equipment.Profile{
				Family:         family,
				Variant:        variant,
				AgeYears:       v,
				WarrantyYears:  v,
				TankGallons:    v,
				TempSettingF:   v,
				CapacityGrains: v,
				Environment: equipment.Environment{
					HousePSI:    v,
					HardnessGPG: ptr(v),
					Occupants:   v,
				},
				History: equipment.History{
					YearsSinceFlush:   ptr(v),
					YearsSinceAnode:   ptr(v),
					YearsSinceDescale: ptr(v),
				},
			}

			r, err := ev.Assess(p, asOf)
			require.NoError(t, err)
			m := r.Metrics
			for name, pct := range map[string]float64{
				"failure probability": m.FailureProbability,
				"health score":        m.HealthScore,
			} {
				assert.False(t, math.IsNaN(pct), "%s/%v %s is NaN", variant, v, name)
				assert.GreaterOrEqual(t, pct, 0.0, "%s/%v %s", variant, v, name)
				assert.LessOrEqual(t, pct, 100.0, "%s/%v %s", variant, v, name)
			}
			if m.Heater != nil {
				assert.GreaterOrEqual(t, m.Heater.ShieldLife, 0.0)
				assert.LessOrEqual(t, m.Heater.ShieldLife, 100.0)
				assert.GreaterOrEqual(t, m.Heater.SedimentLbs, 0.0)
			}
			if m.Softener != nil {
				assert.GreaterOrEqual(t, m.Softener.ResinHealth, 0.0)
				assert.LessOrEqual(t, m.Softener.ResinHealth, 100.0)
				assert.GreaterOrEqual(t, m.Softener.Odometer, 0.0)
			}
			assert.NotEmpty(t, r.Verdict.Action)

			_, err = json.Marshal(r)
			assert.NoError(t, err, "%s/%v report must encode", variant, v)
		}
	}
}

func TestAssessMonotonicInHardnessAndOccupants(t *testing.T) {
	ev := NewEvaluator(calibration.Default())

	var prevRegens, prevResinRate, prevAnode, prevSediment float64
	for _, hardness := range []float64{0, 3, 8, 12, 20, 35, 60, 120} {
		s := softener(5, equipment.SourceCity)
		s.Environment.HardnessGPG = ptr(hardness)
		sr, err := ev.Assess(s, asOf)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sr.Metrics.Softener.RegensPerYear, prevRegens)
		assert.GreaterOrEqual(t, sr.Metrics.Softener.ResinDecayRate, prevResinRate)
		prevRegens = sr.Metrics.Softener.RegensPerYear
		prevResinRate = sr.Metrics.Softener.ResinDecayRate

		h := gasTank(5)
		h.Environment.HardnessGPG = ptr(hardness)
		hr, err := ev.Assess(h, asOf)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, hr.Metrics.Heater.AnodeRate, prevAnode)
		assert.GreaterOrEqual(t, hr.Metrics.Heater.SedimentLbsPerYear, prevSediment)
		prevAnode = hr.Metrics.Heater.AnodeRate
		prevSediment = hr.Metrics.Heater.SedimentLbsPerYear
	}

	prevRegens, prevSediment = 0, 0
	for _, occupants := range []float64{1, 2, 3, 4, 6, 10} {
		s := softener(5, equipment.SourceCity)
		s.Environment.Occupants = occupants
		sr, err := ev.Assess(s, asOf)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sr.Metrics.Softener.RegensPerYear, prevRegens)
		prevRegens = sr.Metrics.Softener.RegensPerYear

		h := gasTank(5)
		h.Environment.Occupants = occupants
		hr, err := ev.Assess(h, asOf)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, hr.Metrics.Heater.SedimentLbsPerYear, prevSediment)
		prevSediment = hr.Metrics.Heater.SedimentLbsPerYear
	}
}

func TestEvaluatorCustomCalibration(t *testing.T) {
	cal := calibration.Default()
	cal.Softener.SealLimit = 200

	r, err := NewEvaluator(cal).Assess(softener(5, equipment.SourceWell), asOf)
	require.NoError(t, err)
	assert.Equal(t, verdict.ActionValveRebuild, r.Verdict.Action)
	assert.Equal(t, 200.0, NewEvaluator(cal).Calibration().Softener.SealLimit)
}

func TestJoinClauses(t *testing.T) {
	assert.Equal(t, "", joinClauses(nil))
	assert.Equal(t, "a", joinClauses([]string{"a"}))
	assert.Equal(t, "a and b", joinClauses([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinClauses([]string{"a", "b", "c"}))
	assert.Equal(t, "Abc", capitalize("abc"))
}
