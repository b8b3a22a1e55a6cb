package equipment

import (
	"errors"
	"fmt"
	"math"
)

// Conservative defaults applied to missing or unusable optional fields.
const (
	DefaultHousePSI         = 60.0
	DefaultHardnessGPG      = 12.0
	DefaultOccupants        = 3.0
	DefaultTankGallons      = 50.0
	DefaultTempSettingF     = 120.0
	DefaultCapacityGrains   = 32000.0
	DefaultHeaterWarranty   = 6.0
	DefaultSoftenerWarranty = 10.0
)

// Upper bounds for readings; anything above is clamped.
const (
	MaxAgeYears       = 100.0
	MaxHousePSI       = 300.0
	MaxHardnessGPG    = 150.0
	MaxOccupants      = 50.0
	MaxTankGallons    = 1000.0
	MaxTempSettingF   = 200.0
	MaxCapacityGrains = 500000.0
	MaxErrorCodes     = 1000
)

// ErrUnknownEquipment is wrapped by every ConfigError.
var ErrUnknownEquipment = errors.New("unrecognized equipment")

// ConfigError reports an equipment identity the engine cannot evaluate.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrUnknownEquipment
}

// Validate checks the required identity fields.
func (p Profile) Validate() error {
	if p.Family == "" {
		return &ConfigError{Field: "family", Reason: "is required"}
	}
	variants, ok := familyVariants[p.Family]
	if !ok {
		return &ConfigError{Field: "family", Value: string(p.Family), Reason: "unknown equipment family"}
	}
	if p.Variant == "" {
		return &ConfigError{Field: "variant", Reason: "is required"}
	}
	for _, v := range variants {
		if v == p.Variant {
			return nil
		}
	}
	for family, list := range familyVariants {
		for _, v := range list {
			if v == p.Variant {
				return &ConfigError{
					Field:  "variant",
					Value:  string(p.Variant),
					Reason: fmt.Sprintf("belongs to family %s, not %s", family, p.Family),
				}
			}
		}
	}
	return &ConfigError{Field: "variant", Value: string(p.Variant), Reason: "unknown equipment variant"}
}

// Normalize validates the profile and returns a copy with every optional
// field resolved to a usable value. NaN, infinite and negative readings are
// treated as missing; implausibly large readings are clamped.
func (p Profile) Normalize() (Profile, error) {
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	n := p
	n.AgeYears = math.Min(nonNegative(p.AgeYears, 0), MaxAgeYears)
	n.WarrantyYears = positive(p.WarrantyYears, DefaultHeaterWarranty)
	if p.Family == FamilySoftener {
		n.WarrantyYears = positive(p.WarrantyYears, DefaultSoftenerWarranty)
	}
	n.TempSettingF = math.Min(positive(p.TempSettingF, DefaultTempSettingF), MaxTempSettingF)
	n.CapacityGrains = math.Min(positive(p.CapacityGrains, DefaultCapacityGrains), MaxCapacityGrains)
	n.TankGallons = math.Min(positive(p.TankGallons, DefaultTankGallons), MaxTankGallons)

	env := p.Environment
	env.HousePSI = math.Min(positive(env.HousePSI, DefaultHousePSI), MaxHousePSI)
	env.Occupants = math.Min(positive(env.Occupants, DefaultOccupants), MaxOccupants)
	hardness := DefaultHardnessGPG
	if env.HardnessGPG != nil {
		hardness = math.Min(nonNegative(*env.HardnessGPG, DefaultHardnessGPG), MaxHardnessGPG)
	}
	env.HardnessGPG = &hardness
	switch env.Usage {
	case UsageLight, UsageNormal, UsageHeavy:
	default:
		env.Usage = UsageNormal
	}
	switch env.WaterSource {
	case SourceCity, SourceWell:
	default:
		env.WaterSource = SourceCity
	}
	if env.WaterSource == SourceCity {
		env.WellIron = false
	}
	n.Environment = env

	acc := p.Accessories
	switch acc.PRV {
	case PRVFunctional, PRVFailed:
	default:
		acc.PRV = PRVNone
	}
	switch acc.ExpansionTank {
	case ExpansionFunctional, ExpansionWaterlogged:
	default:
		acc.ExpansionTank = ExpansionNone
	}
	if acc.PRV != PRVNone {
		acc.ClosedLoop = true
	}
	n.Accessories = acc

	n.History = History{
		YearsSinceFlush:   sinceService(p.History.YearsSinceFlush, n.AgeYears),
		YearsSinceAnode:   sinceService(p.History.YearsSinceAnode, n.AgeYears),
		YearsSinceDescale: sinceService(p.History.YearsSinceDescale, n.AgeYears),
	}

	obs := p.Observations
	if obs.IsLeaking {
		switch obs.LeakSource {
		case LeakTank, LeakFitting, LeakValve:
		default:
			obs.LeakSource = LeakTank
		}
	} else {
		obs.LeakSource = LeakNone
	}
	if obs.ErrorCodeCount < 0 {
		obs.ErrorCodeCount = 0
	}
	if obs.ErrorCodeCount > MaxErrorCodes {
		obs.ErrorCodeCount = MaxErrorCodes
	}
	switch obs.FilterCondition {
	case FilterDirty, FilterClogged:
	default:
		obs.FilterCondition = FilterClean
	}
	obs.IgniterCondition = normalizeCondition(obs.IgniterCondition)
	obs.ElementCondition = normalizeCondition(obs.ElementCondition)
	n.Observations = obs

	return n, nil
}

// Hardness returns the normalized hardness reading.
func (p Profile) Hardness() float64 {
	if p.Environment.HardnessGPG == nil {
		return DefaultHardnessGPG
	}
	return *p.Environment.HardnessGPG
}

// WarrantyRemaining returns the years of warranty left, never negative.
func (p Profile) WarrantyRemaining() float64 {
	return math.Max(0, p.WarrantyYears-p.AgeYears)
}

// sinceService resolves a maintenance interval. A missing interval means the
// unit was never serviced; an interval longer than the unit's age is capped.
func sinceService(value *float64, age float64) *float64 {
	years := age
	if value != nil && isUsable(*value) && *value >= 0 {
		years = math.Min(*value, age)
	}
	return &years
}

func normalizeCondition(c Condition) Condition {
	switch c {
	case ConditionDegraded, ConditionFailed:
		return c
	default:
		return ConditionGood
	}
}

func isUsable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v, fallback float64) float64 {
	if !isUsable(v) || v <= 0 {
		return fallback
	}
	return v
}

func nonNegative(v, fallback float64) float64 {
	if !isUsable(v) || v < 0 {
		return fallback
	}
	return v
}
