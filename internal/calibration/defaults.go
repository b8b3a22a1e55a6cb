package calibration

import "github.com/nholik/plumb-sentinel/internal/equipment"

// Menu item identifiers shared with the service menu tables.
const (
	ItemFlush             = "tank_flush"
	ItemDescale           = "tankless_descale"
	ItemIsolationValves   = "isolation_valve_kit"
	ItemAnode             = "anode_replacement"
	ItemPRVInstall        = "prv_install"
	ItemPRVReplace        = "prv_replace"
	ItemExpansionInstall  = "expansion_tank_install"
	ItemExpansionReplace  = "expansion_tank_replace"
	ItemDrainPan          = "drain_pan"
	ItemRecircTimer       = "recirc_timer"
	ItemFilterCleaning    = "filter_cleaning"
	ItemWholeHomeSoftener = "whole_home_softener"
	ItemCarbonPrefilter   = "carbon_prefilter"
	ItemSealKit           = "valve_seal_kit"
	ItemResinRebed        = "resin_rebed"
	ItemResinCleaner      = "resin_cleaner"
	ItemEfficiencyValve   = "high_efficiency_valve"
	ItemBypassValve       = "bypass_valve"
)

// Default returns the baseline calibration.
func Default() Calibration {
	return Calibration{
		Usage: UsageMultipliers{
			Light:  0.75,
			Normal: 1.0,
			Heavy:  1.35,
		},
		Softener: SoftenerCalibration{
			PerPersonGallons:      75,
			SafetyFactor:          0.9,
			SealLimit:             600,
			MotorLimit:            1500,
			MinDaysPerCycle:       3,
			BaselineRegensPerYear: 26,
			MechanicalSensitivity: 0.5,
			ResinRates: ResinRates{
				CityChlorine: 10,
				CityCarbon:   5,
				WellIron:     7,
				Well:         3,
			},
			BaselineResinRate:   5,
			ChemicalSensitivity: 0.5,
			ResinFailurePct:     40,
			ResinDegradedPct:    75,
			LifespanYears:       15,
			MaxPSI:              80,
		},
		Heater: HeaterCalibration{
			LifespanYears: map[equipment.Variant]float64{
				equipment.VariantGasTank:          10,
				equipment.VariantPropaneTank:      10,
				equipment.VariantElectricTank:     13,
				equipment.VariantHybrid:           13,
				equipment.VariantTanklessGas:      20,
				equipment.VariantTanklessElectric: 20,
			},
			Pressure: PressureCalibration{
				BaselinePSI:     60,
				HighPSI:         80,
				RisePerPSI:      0.015,
				ExcessPerPSI:    0.04,
				FailedPRVFactor: 1.1,
				MaxMultiplier:   3.0,
			},
			ExpansionPenalty: 1.5,
			RecircTank:       1.15,
			RecircTankless:   1.35,
			Anode: AnodeCalibration{
				LifeYears:      6,
				HardnessCoef:   0.02,
				HardnessCap:    30,
				SoftenedFactor: 1.4,
				ProtectedPct:   25,
				DepletedFactor: 1.5,
			},
			Sediment: SedimentCalibration{
				Precipitation: map[equipment.Variant]float64{
					equipment.VariantGasTank:          0.08,
					equipment.VariantPropaneTank:      0.08,
					equipment.VariantElectricTank:     0.06,
					equipment.VariantHybrid:           0.05,
					equipment.VariantTanklessGas:      0.01,
					equipment.VariantTanklessElectric: 0.01,
				},
				SoftenedResidualGPG: 1,
				TankStressPerLb:     0.04,
				TanklessStressPerLb: 0.4,
				MaxMultiplier:       2.0,
				FlushDueLbs:         5,
				FlushLockoutLbs:     15,
				DescaleDueLbs:       0.5,
				DescaleLockoutLbs:   1.5,
				HardWaterGPG:        10,
			},
			Cycling: CyclingCalibration{
				PerPersonHotGallons:     20,
				UsableFraction:          0.7,
				TanklessEquivalentGal:   2.5,
				ReferenceTankGallons:    50,
				BaselineDailyHotGallons: 60,
				Sensitivity:             0.5,
				TempThresholdF:          120,
				TempPerDegree:           0.01,
			},
			Verdict: HeaterVerdictCalibration{
				CriticalProbability: 85,
				ReplaceProbability:  60,
				ElevatedAgingRate:   1.3,
				WatchProbability:    20,
				OptimalProbability:  15,
			},
		},
		Risk: RiskCalibration{
			SecondaryWeight: 0.25,
			MaxAgingRate:    4.0,
			WeibullShape:    3.0,
		},
		Forecast: ForecastCalibration{
			DueWindowMonths:  6,
			MaxHorizonMonths: 600,
			ShieldOptimalPct: 50,
			ShieldDuePct:     25,
		},
		Finance: FinanceCalibration{
			ReplacementCost: map[equipment.Variant]float64{
				equipment.VariantGasTank:          2200,
				equipment.VariantElectricTank:     1800,
				equipment.VariantPropaneTank:      2400,
				equipment.VariantTanklessGas:      4500,
				equipment.VariantTanklessElectric: 3000,
				equipment.VariantHybrid:           3800,
				equipment.VariantIonExchange:      2500,
			},
			ImmediateMonths:         1,
			HighMonths:              6,
			MediumMonths:            18,
			ReplaceHorizonCapMonths: 12,
			MenuPrices: map[string]float64{
				ItemFlush:             189,
				ItemDescale:           249,
				ItemIsolationValves:   225,
				ItemAnode:             275,
				ItemPRVInstall:        450,
				ItemPRVReplace:        425,
				ItemExpansionInstall:  325,
				ItemExpansionReplace:  295,
				ItemDrainPan:          150,
				ItemRecircTimer:       175,
				ItemFilterCleaning:    95,
				ItemWholeHomeSoftener: 2200,
				ItemCarbonPrefilter:   400,
				ItemSealKit:           350,
				ItemResinRebed:        600,
				ItemResinCleaner:      85,
				ItemEfficiencyValve:   900,
				ItemBypassValve:       150,
			},
		},
	}
}
