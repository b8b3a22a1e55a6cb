package health

import (
	"fmt"
	"math"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/clocks"
	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/finance"
	"github.com/nholik/plumb-sentinel/internal/forecast"
	"github.com/nholik/plumb-sentinel/internal/risk"
	"github.com/nholik/plumb-sentinel/internal/verdict"
)

type heaterFacts struct {
	profile equipment.Profile
	metrics Metrics
	heater  HeaterMetrics
}

func (f heaterFacts) tankless() bool {
	return f.profile.Variant.IsTankless()
}

func (f heaterFacts) factor(axis risk.Axis) float64 {
	for _, fc := range f.metrics.Factors {
		if fc.Axis == axis {
			return fc.Multiplier
		}
	}
	return 1
}

func newHeaterModel(cal calibration.Calibration) model[heaterFacts] {
	return model[heaterFacts]{
		measure: func(p equipment.Profile, m *Metrics) (forecast.Input, risk.Breach) {
			return measureHeater(p, m, cal)
		},
		facts: func(p equipment.Profile, m Metrics) heaterFacts {
			return heaterFacts{profile: p, metrics: m, heater: *m.Heater}
		},
		ladder: heaterLadder(cal),
		menu:   heaterMenu(cal),
	}
}

func measureHeater(p equipment.Profile, m *Metrics, cal calibration.Calibration) (forecast.Input, risk.Breach) {
	hc := cal.Heater
	env := p.Environment
	acc := p.Accessories
	tankless := p.Variant.IsTankless()
	usage := cal.Usage.For(env.Usage)
	hot := env.Occupants * hc.Cycling.PerPersonHotGallons * usage

	capacity, usable, reference := p.TankGallons, hc.Cycling.UsableFraction, hc.Cycling.ReferenceTankGallons*hc.Cycling.UsableFraction
	if tankless {
		capacity, usable, reference = hc.Cycling.TanklessEquivalentGal, 1, hc.Cycling.TanklessEquivalentGal
	}
	cycle := clocks.Mechanical(clocks.CycleInput{
		Occupants:       env.Occupants,
		PerPersonRate:   hc.Cycling.PerPersonHotGallons,
		UsageMultiplier: usage,
		Stressor:        1,
		Capacity:        capacity,
		SafetyFactor:    usable,
		AgeYears:        p.AgeYears,
	})
	baseline := 365 * hc.Cycling.BaselineDailyHotGallons / math.Max(reference, 1e-9)
	cycling := clocks.CyclingMultiplier(cycle.CyclesPerYear, baseline, hc.Cycling.Sensitivity) +
		clocks.ThermalMultiplier(p.TempSettingF, hc.Cycling.TempThresholdF, hc.Cycling.TempPerDegree) - 1

	service, since, due, lockout, perLb := forecast.ServiceFlush, *p.History.YearsSinceFlush,
		hc.Sediment.FlushDueLbs, hc.Sediment.FlushLockoutLbs, hc.Sediment.TankStressPerLb
	depositAxis := risk.AxisSediment
	if tankless {
		service, since, due, lockout, perLb = forecast.ServiceDescale, *p.History.YearsSinceDescale,
			hc.Sediment.DescaleDueLbs, hc.Sediment.DescaleLockoutLbs, hc.Sediment.TanklessStressPerLb
		depositAxis = risk.AxisScale
	}
	deposit := clocks.Accumulate(clocks.SedimentInput{
		HotGallonsPerDay: hot,
		HardnessGPG:      p.Hardness(),
		Softened:         acc.SoftenerInstalled,
		ResidualGPG:      hc.Sediment.SoftenedResidualGPG,
		Fraction:         hc.Sediment.Precipitation[p.Variant],
		YearsSince:       since,
	})

	shield, anodeRate, corrosion := 100.0, 0.0, 1.0
	if p.Variant.HasAnode() {
		anodeRate = clocks.AnodeRate(p.Hardness(), acc.SoftenerInstalled, hc.Anode)
		shield = clocks.Decay(*p.History.YearsSinceAnode, anodeRate)
		corrosion = clocks.CorrosionMultiplier(shield, hc.Anode.ProtectedPct, hc.Anode.DepletedFactor)
	}

	m.Factors = []risk.Factor{
		risk.NewFactor(depositAxis, clocks.SedimentMultiplier(deposit.Lbs, perLb, hc.Sediment.MaxMultiplier)),
		risk.NewFactor(risk.AxisCorrosion, corrosion),
		risk.NewFactor(risk.AxisPressure, clocks.PressureMultiplier(env.HousePSI, acc.PRV, hc.Pressure)),
		risk.NewFactor(risk.AxisExpansion, clocks.ExpansionMultiplier(acc, hc.ExpansionPenalty)),
		risk.NewFactor(risk.AxisCirculation, clocks.CirculationMultiplier(acc.RecircPump, tankless, hc)),
		risk.NewFactor(risk.AxisCycling, cycling),
	}
	m.LifespanYears = hc.LifespanYears[p.Variant]
	m.Heater = &HeaterMetrics{
		HotGallonsPerDay:   hot,
		Cycle:              cycle,
		SedimentLbs:        deposit.Lbs,
		SedimentLbsPerYear: deposit.LbsPerYear,
		ShieldApplicable:   p.Variant.HasAnode(),
		ShieldLife:         shield,
		AnodeRate:          anodeRate,
	}

	in := forecast.Input{
		Service:         service,
		Current:         deposit.Lbs,
		PerYear:         deposit.LbsPerYear,
		Thresholds:      forecast.Thresholds{Due: due, Lockout: lockout},
		Serviceable:     !tankless || acc.IsolationValves,
		Level:           shield,
		LevelApplicable: p.Variant.HasAnode(),
		LevelPerYear:    anodeRate,
	}
	return in, risk.BreachFor(p.Observations.IsLeaking, p.Observations.VisibleRust)
}

func heaterLadder(cal calibration.Calibration) []verdict.Rule[heaterFacts] {
	hc := cal.Heater
	th := hc.Verdict

	return []verdict.Rule[heaterFacts]{
		{
			ID:    "active_leak",
			Match: func(f heaterFacts) bool { return f.profile.Observations.IsLeaking },
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionReplace,
					Badge:  verdict.BadgeCritical,
					Title:  "Active leak",
					Reason: fmt.Sprintf("Active leak at the %s with failure probability at %.0f%%; a leaking %s is past repair.%s",
						f.profile.Observations.LeakSource, f.metrics.FailureProbability, f.profile.Variant.Label(), warrantyNote(f.metrics)),
					Urgent: true,
				}
			},
		},
		{
			ID:    "visible_rust",
			Match: func(f heaterFacts) bool { return f.profile.Observations.VisibleRust },
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionReplace,
					Badge:  verdict.BadgeCritical,
					Title:  "Tank corrosion breach",
					Reason: fmt.Sprintf("Visible rust on a %d-year-old %s means the tank lining has failed; failure probability is %.0f%%.%s",
						int(math.Round(f.profile.AgeYears)), f.profile.Variant.Label(), f.metrics.FailureProbability, warrantyNote(f.metrics)),
					Urgent: true,
				}
			},
		},
		{
			ID:    "critical_probability",
			Match: func(f heaterFacts) bool { return f.metrics.FailureProbability >= th.CriticalProbability },
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionReplace,
					Badge:  verdict.BadgeCritical,
					Title:  "Failure imminent",
					Reason: fmt.Sprintf("Failure probability is %.0f%% at a biological age of %.1f years against a %.0f-year lifespan.",
						f.metrics.FailureProbability, f.metrics.BiologicalAge, f.metrics.LifespanYears),
					Urgent: true,
				}
			},
		},
		{
			ID: "end_of_life",
			Match: func(f heaterFacts) bool {
				return f.metrics.FailureProbability >= th.ReplaceProbability || f.metrics.BiologicalAge >= f.metrics.LifespanYears
			},
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionReplace,
					Badge:  verdict.BadgeEndOfLife,
					Title:  "End of service life",
					Reason: fmt.Sprintf("Biological age is %.1f years (calendar %.1f at %.2fx wear) against a %.0f-year lifespan; failure probability %.0f%%. Plan the replacement before it fails.",
						f.metrics.BiologicalAge, f.profile.AgeYears, f.metrics.AgingRate, f.metrics.LifespanYears, f.metrics.FailureProbability),
				}
			},
		},
		{
			ID: "sediment_lockout",
			Match: func(f heaterFacts) bool {
				return !f.tankless() && f.heater.SedimentLbs >= hc.Sediment.FlushLockoutLbs
			},
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionReplace,
					Badge:  verdict.BadgeSedimentLockout,
					Title:  "Sediment lockout",
					Reason: fmt.Sprintf("An estimated %.1f lbs of sediment has hardened in the tank, past the %.0f lb lockout; flushing now risks opening leaks at the drain valve.",
						f.heater.SedimentLbs, hc.Sediment.FlushLockoutLbs),
				}
			},
		},
		{
			ID: "scale_lockout",
			Match: func(f heaterFacts) bool {
				return f.tankless() && f.heater.SedimentLbs >= hc.Sediment.DescaleLockoutLbs
			},
			Build: func(f heaterFacts) verdict.Verdict {
				codes := f.profile.Observations.ErrorCodeCount
				reason := fmt.Sprintf("Heat exchanger scale is estimated at %.2f lbs, past the %.1f lb lockout.",
					f.heater.SedimentLbs, hc.Sediment.DescaleLockoutLbs)
				if codes > 0 {
					reason += fmt.Sprintf(" The unit is already logging %d error code(s).", codes)
				}
				if f.profile.Accessories.IsolationValves {
					reason += " A professional descale and exchanger inspection is required."
				} else {
					reason += " Isolation valves must be fitted before the exchanger can be descaled and inspected."
				}
				return verdict.Verdict{
					Action: verdict.ActionRepair,
					Badge:  verdict.BadgeScaleLockout,
					Title:  "Scale lockout",
					Reason: reason,
					Urgent: codes > 0,
				}
			},
		},
		{
			ID:    "component_failure",
			Match: func(f heaterFacts) bool { return failedComponent(f.profile) != "" },
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionRepair,
					Badge:  verdict.BadgeComponentFailure,
					Title:  "Component failure",
					Reason: fmt.Sprintf("The %s has failed; the unit cannot heat reliably until it is replaced. Health score is %.0f.",
						failedComponent(f.profile), f.metrics.HealthScore),
					Urgent: true,
				}
			},
		},
		{
			ID: "accelerated_wear",
			Match: func(f heaterFacts) bool {
				return f.metrics.AgingRate >= th.ElevatedAgingRate && f.metrics.FailureProbability >= th.WatchProbability
			},
			Build: func(f heaterFacts) verdict.Verdict {
				axis := f.metrics.PrimaryStressor
				action := verdict.ActionMaintain
				switch axis {
				case risk.AxisPressure, risk.AxisExpansion, risk.AxisCirculation:
					action = verdict.ActionRepair
				}
				extension := lifeExtension(f.metrics, axis, cal.Risk)
				return verdict.Verdict{
					Action: action,
					Badge:  verdict.BadgeAcceleratedWear,
					Title:  "Accelerated wear",
					Reason: fmt.Sprintf("%s is aging this unit at %.2fx (%.1fx from this axis alone); failure probability is %.0f%%. Correcting it adds about %.1f years of service.",
						f.metrics.PrimaryStressorLabel, f.metrics.AgingRate, f.factor(axis), f.metrics.FailureProbability, extension),
					LifeExtension:   extension,
					PrimaryStressor: axis,
				}
			},
		},
		{
			ID: "missing_infrastructure",
			Match: func(f heaterFacts) bool {
				return pressureUnprotected(f.profile, hc.Pressure) || clocks.ExpansionExposed(f.profile.Accessories)
			},
			Build: func(f heaterFacts) verdict.Verdict {
				var gaps []string
				if pressureUnprotected(f.profile, hc.Pressure) {
					gaps = append(gaps, fmt.Sprintf("house pressure is %.0f psi with no working PRV", f.profile.Environment.HousePSI))
				}
				if clocks.ExpansionExposed(f.profile.Accessories) {
					gaps = append(gaps, "the closed-loop system has no working expansion tank")
				}
				return verdict.Verdict{
					Action: verdict.ActionUpgrade,
					Badge:  verdict.BadgeInfrastructure,
					Title:  "Protect the unit",
					Reason: fmt.Sprintf("The unit is sound (health %.0f) but %s.", f.metrics.HealthScore, joinClauses(gaps)),
				}
			},
		},
		{
			ID: "service_due",
			Match: func(f heaterFacts) bool {
				s := f.metrics.Forecast.ServiceStatus
				l := f.metrics.Forecast.LevelStatus
				return s == forecast.StatusCritical || s == forecast.StatusImpossible ||
					l == forecast.StatusCritical || l == forecast.StatusDepleted
			},
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionMaintain,
					Badge:  verdict.BadgeServiceDue,
					Title:  "Service due",
					Reason: serviceReason(f),
				}
			},
		},
		{
			ID:    "optimal",
			Match: func(f heaterFacts) bool { return f.metrics.FailureProbability < th.OptimalProbability },
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionPass,
					Badge:  verdict.BadgeOptimal,
					Title:  "Operating normally",
					Reason: fmt.Sprintf("Health score %.0f with failure probability %.0f%%; about %.1f years of service remain.",
						f.metrics.HealthScore, f.metrics.FailureProbability, f.metrics.Forecast.RemainingLifeYears),
				}
			},
		},
		{
			ID:    "monitor",
			Match: verdict.Always[heaterFacts],
			Build: func(f heaterFacts) verdict.Verdict {
				return verdict.Verdict{
					Action: verdict.ActionPass,
					Badge:  verdict.BadgeMonitor,
					Title:  "Monitor and budget",
					Reason: fmt.Sprintf("No action needed today, but failure probability is %.0f%% at a biological age of %.1f years; start budgeting for replacement.",
						f.metrics.FailureProbability, f.metrics.BiologicalAge),
				}
			},
		},
	}
}

func heaterMenu(cal calibration.Calibration) []finance.Trigger[heaterFacts] {
	hc := cal.Heater
	fc := cal.Forecast
	serviceWindow := func(f heaterFacts) bool {
		switch f.metrics.Forecast.ServiceStatus {
		case forecast.StatusDue, forecast.StatusCritical, forecast.StatusImpossible:
			return true
		default:
			return false
		}
	}
	servicePriority := func(f heaterFacts) finance.Priority {
		if f.metrics.Forecast.ServiceStatus == forecast.StatusCritical {
			return finance.PriorityCritical
		}
		return finance.PriorityRecommended
	}

	return []finance.Trigger[heaterFacts]{
		{
			ID:       calibration.ItemFlush,
			Kind:     finance.KindMaintenance,
			Pitch:    "Drains hardened sediment before it insulates the burner and overheats the tank bottom.",
			Match:    func(f heaterFacts) bool { return !f.tankless() && serviceWindow(f) },
			Priority: servicePriority,
			Describe: func(f heaterFacts) string {
				return fmt.Sprintf("%.1f lbs sediment (flush at %.0f lbs)", f.heater.SedimentLbs, hc.Sediment.FlushDueLbs)
			},
		},
		{
			ID:       calibration.ItemDescale,
			Kind:     finance.KindMaintenance,
			Pitch:    "Circulates descaler through the heat exchanger to restore flow and efficiency.",
			Match:    func(f heaterFacts) bool { return f.tankless() && serviceWindow(f) },
			Priority: servicePriority,
			Describe: func(f heaterFacts) string {
				return fmt.Sprintf("%.2f lbs scale (descale at %.1f lbs)", f.heater.SedimentLbs, hc.Sediment.DescaleDueLbs)
			},
		},
		{
			ID:    calibration.ItemIsolationValves,
			Kind:  finance.KindInfrastructure,
			Pitch: "Service valves make descaling possible without cutting into the supply lines.",
			Match: func(f heaterFacts) bool { return f.tankless() && !f.profile.Accessories.IsolationValves },
			Priority: func(f heaterFacts) finance.Priority {
				if f.metrics.Forecast.ServiceStatus == forecast.StatusImpossible {
					return finance.PriorityCritical
				}
				return finance.PriorityRecommended
			},
			Describe: func(heaterFacts) string { return "tankless unit without isolation valves" },
		},
		{
			ID:    calibration.ItemAnode,
			Kind:  finance.KindMaintenance,
			Pitch: "A fresh anode takes the corrosion so the tank lining does not.",
			Match: func(f heaterFacts) bool { return f.heater.ShieldApplicable && f.heater.ShieldLife < fc.ShieldOptimalPct },
			Priority: func(f heaterFacts) finance.Priority {
				if f.metrics.Forecast.LevelStatus.NeedsAttention() {
					return finance.PriorityCritical
				}
				return finance.PriorityRecommended
			},
			Describe: func(f heaterFacts) string { return fmt.Sprintf("anode shield at %.0f%%", f.heater.ShieldLife) },
		},
		{
			ID:    calibration.ItemPRVInstall,
			Kind:  finance.KindInfrastructure,
			Pitch: "Holds house pressure at a safe level for every fixture and appliance.",
			Match: func(f heaterFacts) bool {
				return f.profile.Accessories.PRV == equipment.PRVNone && f.profile.Environment.HousePSI > hc.Pressure.HighPSI
			},
			Priority: finance.Fixed[heaterFacts](finance.PriorityCritical),
			Describe: func(f heaterFacts) string {
				return fmt.Sprintf("%.0f psi with no PRV", f.profile.Environment.HousePSI)
			},
		},
		{
			ID:       calibration.ItemPRVReplace,
			Kind:     finance.KindInfrastructure,
			Pitch:    "Replaces a failed regulator that is passing street pressure into the house.",
			Match:    func(f heaterFacts) bool { return f.profile.Accessories.PRV == equipment.PRVFailed },
			Priority: finance.Fixed[heaterFacts](finance.PriorityCritical),
			Describe: func(f heaterFacts) string {
				return fmt.Sprintf("failed PRV, %.0f psi", f.profile.Environment.HousePSI)
			},
		},
		{
			ID:    calibration.ItemExpansionInstall,
			Kind:  finance.KindInfrastructure,
			Pitch: "Absorbs thermal expansion so the tank stops flexing every heating cycle.",
			Match: func(f heaterFacts) bool {
				acc := f.profile.Accessories
				return acc.ClosedLoop && acc.ExpansionTank == equipment.ExpansionNone
			},
			Priority: finance.Fixed[heaterFacts](finance.PriorityCritical),
			Describe: func(heaterFacts) string { return "closed loop without expansion tank" },
		},
		{
			ID:    calibration.ItemExpansionReplace,
			Kind:  finance.KindInfrastructure,
			Pitch: "A waterlogged expansion tank has lost its air charge and no longer protects the heater.",
			Match: func(f heaterFacts) bool {
				return f.profile.Accessories.ExpansionTank == equipment.ExpansionWaterlogged
			},
			Priority: finance.Fixed[heaterFacts](finance.PriorityCritical),
			Describe: func(heaterFacts) string { return "expansion tank waterlogged" },
		},
		{
			ID:       calibration.ItemDrainPan,
			Kind:     finance.KindInfrastructure,
			Pitch:    "Catches and routes a future leak before it reaches floors and ceilings.",
			Match:    func(f heaterFacts) bool { return !f.tankless() && !f.profile.Accessories.DrainPan },
			Priority: finance.Fixed[heaterFacts](finance.PriorityOptional),
			Describe: func(heaterFacts) string { return "no drain pan under tank" },
		},
		{
			ID:       calibration.ItemRecircTimer,
			Kind:     finance.KindInfrastructure,
			Pitch:    "Runs the recirculation pump only when hot water is actually wanted.",
			Match:    func(f heaterFacts) bool { return f.profile.Accessories.RecircPump },
			Priority: finance.Fixed[heaterFacts](finance.PriorityRecommended),
			Describe: func(f heaterFacts) string {
				return fmt.Sprintf("recirculation pump adds %.2fx wear", f.factor(risk.AxisCirculation))
			},
		},
		{
			ID:    calibration.ItemFilterCleaning,
			Kind:  finance.KindMaintenance,
			Pitch: "Restores air or inlet flow so the unit stops short-cycling and throwing faults.",
			Match: func(f heaterFacts) bool {
				return f.profile.Observations.FilterCondition != equipment.FilterClean
			},
			Priority: func(f heaterFacts) finance.Priority {
				if f.profile.Observations.FilterCondition == equipment.FilterClogged {
					return finance.PriorityCritical
				}
				return finance.PriorityRecommended
			},
			Describe: func(f heaterFacts) string {
				return fmt.Sprintf("filter %s", f.profile.Observations.FilterCondition)
			},
		},
		{
			ID:    calibration.ItemWholeHomeSoftener,
			Kind:  finance.KindInfrastructure,
			Pitch: "Stops hardness at the meter, cutting sediment and scale in every appliance.",
			Match: func(f heaterFacts) bool {
				return !f.profile.Accessories.SoftenerInstalled && f.profile.Hardness() >= hc.Sediment.HardWaterGPG
			},
			Priority: finance.Fixed[heaterFacts](finance.PriorityOptional),
			Describe: func(f heaterFacts) string {
				return fmt.Sprintf("%.0f gpg hardness with no softener", f.profile.Hardness())
			},
		},
	}
}

func failedComponent(p equipment.Profile) string {
	obs := p.Observations
	if p.Variant.Combustion() && obs.IgniterCondition == equipment.ConditionFailed {
		return "igniter"
	}
	if !p.Variant.Combustion() && obs.ElementCondition == equipment.ConditionFailed {
		return "heating element"
	}
	return ""
}

func pressureUnprotected(p equipment.Profile, cal calibration.PressureCalibration) bool {
	return p.Environment.HousePSI > cal.HighPSI && p.Accessories.PRV != equipment.PRVFunctional
}

// lifeExtension is the calendar years gained if the axis were corrected today.
func lifeExtension(m Metrics, axis risk.Axis, cal calibration.RiskCalibration) float64 {
	fixedRate := risk.RateWithout(m.Factors, axis, cal)
	if fixedRate >= m.AgingRate {
		return 0
	}
	now := risk.RemainingLife(m.BiologicalAge, m.LifespanYears, m.AgingRate)
	fixed := risk.RemainingLife(m.BiologicalAge, m.LifespanYears, fixedRate)
	return math.Round((fixed-now)*10) / 10
}

func serviceReason(f heaterFacts) string {
	fc := f.metrics.Forecast
	var parts []string
	switch fc.ServiceStatus {
	case forecast.StatusImpossible:
		parts = append(parts, fmt.Sprintf("scale is at %.2f lbs and due for descale, but without isolation valves the unit cannot be serviced", f.heater.SedimentLbs))
	case forecast.StatusCritical:
		parts = append(parts, fmt.Sprintf("%.1f lbs of deposits are past the %s threshold", f.heater.SedimentLbs, fc.Service))
	}
	switch fc.LevelStatus {
	case forecast.StatusCritical:
		parts = append(parts, fmt.Sprintf("anode shield is down to %.0f%%", f.heater.ShieldLife))
	case forecast.StatusDepleted:
		parts = append(parts, "anode is fully consumed and the tank is corroding")
	}
	return capitalize(joinClauses(parts)) + "."
}

func warrantyNote(m Metrics) string {
	if !m.InWarranty {
		return ""
	}
	return fmt.Sprintf(" The unit is still under warranty for %.1f years; file a claim before replacing.", m.WarrantyRemainingYears)
}
