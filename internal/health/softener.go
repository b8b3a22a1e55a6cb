package health

import (
	"fmt"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/clocks"
	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/finance"
	"github.com/nholik/plumb-sentinel/internal/forecast"
	"github.com/nholik/plumb-sentinel/internal/risk"
	"github.com/nholik/plumb-sentinel/internal/verdict"
)

type softenerFacts struct {
	profile  equipment.Profile
	metrics  Metrics
	softener SoftenerMetrics
}

func newSoftenerModel(cal calibration.Calibration) model[softenerFacts] {
	return model[softenerFacts]{
		measure: func(p equipment.Profile, m *Metrics) (forecast.Input, risk.Breach) {
			return measureSoftener(p, m, cal)
		},
		facts: func(p equipment.Profile, m Metrics) softenerFacts {
			return softenerFacts{profile: p, metrics: m, softener: *m.Softener}
		},
		ladder: softenerLadder(cal),
		menu:   softenerMenu(cal),
	}
}

func measureSoftener(p equipment.Profile, m *Metrics, cal calibration.Calibration) (forecast.Input, risk.Breach) {
	sc := cal.Softener
	env := p.Environment

	cycle := clocks.Mechanical(clocks.CycleInput{
		Occupants:       env.Occupants,
		PerPersonRate:   sc.PerPersonGallons,
		UsageMultiplier: cal.Usage.For(env.Usage),
		Stressor:        p.Hardness(),
		Capacity:        p.CapacityGrains,
		SafetyFactor:    sc.SafetyFactor,
		AgeYears:        p.AgeYears,
	})
	rate, cause := clocks.ResinRate(env, p.Accessories.CarbonFilter, sc.ResinRates)
	resin := clocks.Decay(p.AgeYears, rate)

	m.Factors = []risk.Factor{
		risk.NewFactor(risk.AxisChemical, clocks.ChemicalMultiplier(rate, sc.BaselineResinRate, sc.ChemicalSensitivity)),
		risk.NewFactor(risk.AxisMechanical, clocks.CyclingMultiplier(cycle.CyclesPerYear, sc.BaselineRegensPerYear, sc.MechanicalSensitivity)),
		risk.NewFactor(risk.AxisPressure, clocks.PressureMultiplier(env.HousePSI, p.Accessories.PRV, cal.Heater.Pressure)),
	}
	m.LifespanYears = sc.LifespanYears
	m.Softener = &SoftenerMetrics{
		DailyLoad:      cycle.DailyLoad,
		DaysPerCycle:   cycle.DaysPerCycle,
		RegensPerYear:  cycle.CyclesPerYear,
		Odometer:       cycle.Odometer,
		SealLimit:      sc.SealLimit,
		MotorLimit:     sc.MotorLimit,
		ResinHealth:    resin,
		ResinDecayRate: rate,
		ResinCause:     cause,
	}

	in := forecast.Input{
		Service:         forecast.ServiceValveRebuild,
		Current:         cycle.Odometer,
		PerYear:         cycle.CyclesPerYear,
		Thresholds:      forecast.Thresholds{Due: sc.SealLimit, Lockout: sc.MotorLimit},
		Serviceable:     true,
		Level:           resin,
		LevelApplicable: true,
		LevelPerYear:    rate,
	}
	return in, risk.BreachFor(p.Observations.IsLeaking, p.Observations.VisibleRust)
}

func softenerLadder(cal calibration.Calibration) []verdict.Rule[softenerFacts] {
	sc := cal.Softener

	return []verdict.Rule[softenerFacts]{
		{
			ID:    "breach",
			Match: func(f softenerFacts) bool { return f.metrics.Breach != risk.BreachNone },
			Build: func(f softenerFacts) verdict.Verdict {
				what := "Visible corrosion on the valve body"
				if f.metrics.Breach == risk.BreachLeak {
					what = fmt.Sprintf("Active leak at the %s", f.profile.Observations.LeakSource)
				}
				return verdict.Verdict{
					Action: verdict.ActionReplace,
					Badge:  verdict.BadgeCritical,
					Title:  "Containment breach",
					Reason: fmt.Sprintf("%s; the softener must be bypassed and replaced.%s", what, warrantyNote(f.metrics)),
					Urgent: true,
				}
			},
		},
		{
			ID:    "resin_failure",
			Match: func(f softenerFacts) bool { return f.softener.ResinHealth < sc.ResinFailurePct },
			Build: func(f softenerFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionRebedOrReplace,
					Badge:  verdict.BadgeResinFailure,
					Title:  "Resin exhausted",
					Reason: fmt.Sprintf("Resin capacity is down to %.0f%% (%s).", f.softener.ResinHealth, causeNote(f)),
				}
			},
		},
		{
			ID:    "motor_limit",
			Match: func(f softenerFacts) bool { return f.softener.Odometer > sc.MotorLimit },
			Build: func(f softenerFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionReplaceUnit,
					Badge:  verdict.BadgeMechanicalFailure,
					Title:  "Drive motor worn out",
					Reason: fmt.Sprintf("The control head has run %.0f regenerations, past the %.0f-cycle motor and body limit.",
						f.softener.Odometer, sc.MotorLimit),
				}
			},
		},
		{
			ID:    "seal_limit",
			Match: func(f softenerFacts) bool { return f.softener.Odometer > sc.SealLimit },
			Build: func(f softenerFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionValveRebuild,
					Badge:  verdict.BadgeSealWear,
					Title:  "Valve seals worn",
					Reason: fmt.Sprintf("The control valve has logged %.0f regenerations (%.1f per year), past the %.0f-cycle seal limit; rebuild the seals and spacers.",
						f.softener.Odometer, f.softener.RegensPerYear, sc.SealLimit),
				}
			},
		},
		{
			ID:    "resin_degraded",
			Match: func(f softenerFacts) bool { return detoxBand(f, sc) },
			Build: func(f softenerFacts) verdict.Verdict {
				outlook := "a resin cleaning can recover lost capacity"
				if !f.softener.ResinCause.Cleanable() {
					outlook = "a resin cleaning helps, but oxidation is only partly recoverable"
				}
				return verdict.Verdict{
					Action: verdict.ActionChemicalDetox,
					Badge:  verdict.BadgeResinDegraded,
					Title:  "Resin degraded",
					Reason: fmt.Sprintf("Resin capacity is at %.0f%% (%s); %s.",
						f.softener.ResinHealth, causeNote(f), outlook),
				}
			},
		},
		{
			ID:    "high_waste",
			Match: func(f softenerFacts) bool { return f.softener.DaysPerCycle < sc.MinDaysPerCycle },
			Build: func(f softenerFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionEfficiencyUpgrade,
					Badge:  verdict.BadgeHighWaste,
					Title:  "Regenerating too often",
					Reason: fmt.Sprintf("The unit regenerates every %.1f days (%.0f times a year) against a %.0f grain/day load; it is undersized for this house.",
						f.softener.DaysPerCycle, f.softener.RegensPerYear, f.softener.DailyLoad),
				}
			},
		},
		{
			ID:    "healthy",
			Match: verdict.Always[softenerFacts],
			Build: func(f softenerFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionMonitor,
					Badge:  verdict.BadgeHealthy,
					Title:  "Operating normally",
					Reason: fmt.Sprintf("%.0f regenerations logged against a %.0f-cycle seal limit; resin at %.0f%%.",
						f.softener.Odometer, sc.SealLimit, f.softener.ResinHealth),
				}
			},
		},
	}
}

func softenerMenu(cal calibration.Calibration) []finance.Trigger[softenerFacts] {
	sc := cal.Softener
	serviceNeeded := func(f softenerFacts) bool {
		return f.softener.Odometer > sc.SealLimit || f.softener.ResinHealth < sc.ResinFailurePct
	}

	return []finance.Trigger[softenerFacts]{
		{
			ID:    calibration.ItemCarbonPrefilter,
			Kind:  finance.KindInfrastructure,
			Pitch: "Strips chlorine before it reaches the resin, roughly doubling resin life.",
			Match: func(f softenerFacts) bool { return f.softener.ResinCause.Unfiltered() },
			Priority: func(f softenerFacts) finance.Priority {
				if f.softener.ResinHealth < sc.ResinDegradedPct {
					return finance.PriorityCritical
				}
				return finance.PriorityRecommended
			},
			Describe: func(f softenerFacts) string {
				return fmt.Sprintf("chlorinated supply consuming %.0f%% of resin per year", f.softener.ResinDecayRate)
			},
		},
		{
			ID:    calibration.ItemSealKit,
			Kind:  finance.KindMaintenance,
			Pitch: "Fresh seals and spacers stop brine bypass and hard water bleed-through.",
			Match: func(f softenerFacts) bool {
				s := f.metrics.Forecast.ServiceStatus
				return s == forecast.StatusDue || s == forecast.StatusCritical
			},
			Priority: func(f softenerFacts) finance.Priority {
				if f.metrics.Forecast.ServiceStatus == forecast.StatusCritical {
					return finance.PriorityCritical
				}
				return finance.PriorityRecommended
			},
			Describe: func(f softenerFacts) string {
				return fmt.Sprintf("%.0f regenerations (seal limit %.0f)", f.softener.Odometer, sc.SealLimit)
			},
		},
		{
			ID:       calibration.ItemResinRebed,
			Kind:     finance.KindMaintenance,
			Pitch:    "New resin restores full grain capacity in the existing tank.",
			Match:    func(f softenerFacts) bool { return f.softener.ResinHealth < sc.ResinFailurePct },
			Priority: finance.Fixed[softenerFacts](finance.PriorityCritical),
			Describe: func(f softenerFacts) string {
				return fmt.Sprintf("resin at %.0f%%", f.softener.ResinHealth)
			},
		},
		{
			ID:    calibration.ItemResinCleaner,
			Kind:  finance.KindMaintenance,
			Pitch: "Cleans fouling off the beads to recover capacity.",
			Match: func(f softenerFacts) bool {
				return detoxBand(f, sc) && (f.softener.ResinCause.Cleanable() || f.softener.ResinHealth >= sc.ResinFailurePct)
			},
			Priority: finance.Fixed[softenerFacts](finance.PriorityRecommended),
			Describe: func(f softenerFacts) string {
				return fmt.Sprintf("%s damage, resin at %.0f%%", f.softener.ResinCause, f.softener.ResinHealth)
			},
		},
		{
			ID:       calibration.ItemEfficiencyValve,
			Kind:     finance.KindInfrastructure,
			Pitch:    "A metered, upflow valve regenerates on demand and cuts salt and water use.",
			Match:    func(f softenerFacts) bool { return f.softener.DaysPerCycle < sc.MinDaysPerCycle },
			Priority: finance.Fixed[softenerFacts](finance.PriorityRecommended),
			Describe: func(f softenerFacts) string {
				return fmt.Sprintf("regenerating every %.1f days", f.softener.DaysPerCycle)
			},
		},
		{
			ID:    calibration.ItemPRVInstall,
			Kind:  finance.KindInfrastructure,
			Pitch: "Holds house pressure below the softener's rated maximum.",
			Match: func(f softenerFacts) bool {
				return f.profile.Accessories.PRV == equipment.PRVNone && f.profile.Environment.HousePSI > sc.MaxPSI
			},
			Priority: finance.Fixed[softenerFacts](finance.PriorityCritical),
			Describe: func(f softenerFacts) string {
				return fmt.Sprintf("%.0f psi exceeds the %.0f psi rating", f.profile.Environment.HousePSI, sc.MaxPSI)
			},
		},
		{
			ID:       calibration.ItemPRVReplace,
			Kind:     finance.KindInfrastructure,
			Pitch:    "Replaces a failed regulator that is passing street pressure into the house.",
			Match:    func(f softenerFacts) bool { return f.profile.Accessories.PRV == equipment.PRVFailed },
			Priority: finance.Fixed[softenerFacts](finance.PriorityCritical),
			Describe: func(f softenerFacts) string {
				return fmt.Sprintf("failed PRV, %.0f psi", f.profile.Environment.HousePSI)
			},
		},
		{
			ID:       calibration.ItemBypassValve,
			Kind:     finance.KindInfrastructure,
			Pitch:    "Lets the house keep water while the softener is serviced.",
			Match:    func(f softenerFacts) bool { return serviceNeeded(f) && !f.profile.Accessories.IsolationValves },
			Priority: finance.Fixed[softenerFacts](finance.PriorityOptional),
			Describe: func(softenerFacts) string { return "no bypass valve for upcoming service" },
		},
	}
}

// detoxBand reports resin below the degraded threshold. Unfiltered chlorine
// is left to the carbon pre-filter item: a city bed without a filter stays
// on MONITOR until it crosses the failure threshold.
func detoxBand(f softenerFacts, sc calibration.SoftenerCalibration) bool {
	return f.softener.ResinHealth < sc.ResinDegradedPct && !f.softener.ResinCause.Unfiltered()
}

func causeNote(f softenerFacts) string {
	switch f.softener.ResinCause {
	case clocks.CauseChlorine:
		return fmt.Sprintf("%.0f years of chlorinated city water with no carbon pre-filter", f.profile.AgeYears)
	case clocks.CauseChlorineFiltered:
		return "chlorinated city water, slowed by a carbon pre-filter"
	case clocks.CauseIronFouling:
		return "iron fouling from well water"
	default:
		return "sediment fouling from well water"
	}
}
