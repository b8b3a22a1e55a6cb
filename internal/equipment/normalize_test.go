package equipment

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestValidateRejectsUnknownEquipment(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		field   string
	}{
		{name: "missing family", profile: Profile{Variant: VariantGasTank}, field: "family"},
		{name: "unknown family", profile: Profile{Family: "boiler", Variant: VariantGasTank}, field: "family"},
		{name: "missing variant", profile: Profile{Family: FamilyWaterHeater}, field: "variant"},
		{name: "unknown variant", profile: Profile{Family: FamilyWaterHeater, Variant: "solar"}, field: "variant"},
		{name: "cross family variant", profile: Profile{Family: FamilySoftener, Variant: VariantGasTank}, field: "variant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownEquipment))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateAcceptsEveryKnownVariant(t *testing.T) {
	for family, variants := range familyVariants {
		for _, v := range variants {
			assert.NoError(t, Profile{Family: family, Variant: v}.Validate(), "%s/%s", family, v)
		}
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	n, err := Profile{Family: FamilyWaterHeater, Variant: VariantGasTank, AgeYears: 7}.Normalize()
	require.NoError(t, err)

	assert.Equal(t, DefaultHousePSI, n.Environment.HousePSI)
	assert.Equal(t, DefaultHardnessGPG, n.Hardness())
	assert.Equal(t, DefaultOccupants, n.Environment.Occupants)
	assert.Equal(t, UsageNormal, n.Environment.Usage)
	assert.Equal(t, SourceCity, n.Environment.WaterSource)
	assert.Equal(t, DefaultTankGallons, n.TankGallons)
	assert.Equal(t, DefaultTempSettingF, n.TempSettingF)
	assert.Equal(t, DefaultHeaterWarranty, n.WarrantyYears)
	assert.Equal(t, PRVNone, n.Accessories.PRV)
	assert.Equal(t, ExpansionNone, n.Accessories.ExpansionTank)
	assert.Equal(t, FilterClean, n.Observations.FilterCondition)
	assert.Equal(t, ConditionGood, n.Observations.IgniterCondition)

	require.NotNil(t, n.History.YearsSinceFlush)
	assert.Equal(t, 7.0, *n.History.YearsSinceFlush)
	assert.Equal(t, 7.0, *n.History.YearsSinceAnode)
}

func TestNormalizeSoftenerWarrantyDefault(t *testing.T) {
	n, err := Profile{Family: FamilySoftener, Variant: VariantIonExchange}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultSoftenerWarranty, n.WarrantyYears)
	assert.Equal(t, DefaultCapacityGrains, n.CapacityGrains)
}

func TestNormalizeTreatsBadReadingsAsMissing(t *testing.T) {
	p := Profile{
		Family:   FamilyWaterHeater,
		Variant:  VariantElectricTank,
		AgeYears: math.NaN(),
		Environment: Environment{
			HousePSI:    math.Inf(1),
			HardnessGPG: ptr(-4),
			Occupants:   -2,
		},
		History: History{YearsSinceFlush: ptr(math.NaN())},
	}

	n, err := p.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 0.0, n.AgeYears)
	assert.Equal(t, DefaultHousePSI, n.Environment.HousePSI)
	assert.Equal(t, DefaultHardnessGPG, n.Hardness())
	assert.Equal(t, DefaultOccupants, n.Environment.Occupants)
	assert.Equal(t, 0.0, *n.History.YearsSinceFlush)
}

func TestNormalizeClampsExtremeReadings(t *testing.T) {
	p := Profile{
		Family:         FamilySoftener,
		Variant:        VariantIonExchange,
		AgeYears:       1e12,
		CapacityGrains: 1e30,
		Environment: Environment{
			HousePSI:    1e9,
			HardnessGPG: ptr(1e9),
			Occupants:   1e9,
		},
		Observations: Observations{ErrorCodeCount: 1 << 30},
	}

	n, err := p.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MaxAgeYears, n.AgeYears)
	assert.Equal(t, MaxCapacityGrains, n.CapacityGrains)
	assert.Equal(t, MaxHousePSI, n.Environment.HousePSI)
	assert.Equal(t, MaxHardnessGPG, n.Hardness())
	assert.Equal(t, MaxOccupants, n.Environment.Occupants)
	assert.Equal(t, MaxErrorCodes, n.Observations.ErrorCodeCount)
}

func TestNormalizeServiceIntervalsCappedAtAge(t *testing.T) {
	p := Profile{
		Family:   FamilyWaterHeater,
		Variant:  VariantGasTank,
		AgeYears: 4,
		History:  History{YearsSinceFlush: ptr(9), YearsSinceAnode: ptr(1)},
	}

	n, err := p.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 4.0, *n.History.YearsSinceFlush)
	assert.Equal(t, 1.0, *n.History.YearsSinceAnode)
	assert.Equal(t, 4.0, *n.History.YearsSinceDescale)
}

func TestNormalizePRVImpliesClosedLoop(t *testing.T) {
	p := Profile{
		Family:      FamilyWaterHeater,
		Variant:     VariantGasTank,
		Accessories: Accessories{PRV: PRVFunctional},
	}

	n, err := p.Normalize()
	require.NoError(t, err)
	assert.True(t, n.Accessories.ClosedLoop)
}

func TestNormalizeLeakSource(t *testing.T) {
	leaking, err := Profile{
		Family:       FamilyWaterHeater,
		Variant:      VariantGasTank,
		Observations: Observations{IsLeaking: true},
	}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, LeakTank, leaking.Observations.LeakSource)

	dry, err := Profile{
		Family:       FamilyWaterHeater,
		Variant:      VariantGasTank,
		Observations: Observations{LeakSource: LeakFitting},
	}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, LeakNone, dry.Observations.LeakSource)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	hardness := -1.0
	p := Profile{
		Family:      FamilyWaterHeater,
		Variant:     VariantGasTank,
		Environment: Environment{HardnessGPG: &hardness},
	}

	_, err := p.Normalize()
	require.NoError(t, err)
	assert.Equal(t, -1.0, hardness)
	assert.Nil(t, p.History.YearsSinceFlush)
}

func TestWarrantyRemaining(t *testing.T) {
	assert.Equal(t, 2.0, Profile{AgeYears: 4, WarrantyYears: 6}.WarrantyRemaining())
	assert.Equal(t, 0.0, Profile{AgeYears: 9, WarrantyYears: 6}.WarrantyRemaining())
}

func TestFingerprintStable(t *testing.T) {
	a := Profile{Family: FamilySoftener, Variant: VariantIonExchange, AgeYears: 5, Environment: Environment{HardnessGPG: ptr(15)}}
	b := Profile{Family: FamilySoftener, Variant: VariantIonExchange, AgeYears: 5, Environment: Environment{HardnessGPG: ptr(15)}}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)

	b.AgeYears = 6
	fc, err := Fingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)
}
