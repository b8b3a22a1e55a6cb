package finance

import (
	"testing"
	"time"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	finCal = calibration.Default().Finance
	asOf   = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
)

func TestBuildPlanSkipsUrgentAndHealthy(t *testing.T) {
	assert.Nil(t, BuildPlan(verdict.Verdict{Action: verdict.ActionReplace, Badge: verdict.BadgeCritical, Urgent: true}, 24, 2200, asOf, finCal))
	assert.Nil(t, BuildPlan(verdict.Verdict{Action: verdict.ActionPass, Badge: verdict.BadgeOptimal}, 24, 2200, asOf, finCal))
	assert.Nil(t, BuildPlan(verdict.Verdict{Action: verdict.ActionMonitor, Badge: verdict.BadgeHealthy}, 24, 2200, asOf, finCal))
}

func TestBuildPlanMonitor(t *testing.T) {
	plan := BuildPlan(verdict.Verdict{Action: verdict.ActionPass, Badge: verdict.BadgeMonitor}, 48, 2400, asOf, finCal)
	require.NotNil(t, plan)
	assert.Equal(t, 50.0, plan.MonthlyBudget)
	assert.Equal(t, TierLow, plan.Tier)
	assert.Equal(t, 48.0, plan.HorizonMonths)
	assert.Equal(t, time.Date(2029, time.March, 1, 0, 0, 0, 0, time.UTC), plan.TargetDate)
	assert.NotEmpty(t, plan.Recommendation)
}

func TestBuildPlanCapsReplacementHorizon(t *testing.T) {
	plan := BuildPlan(verdict.Verdict{Action: verdict.ActionReplace, Badge: verdict.BadgeEndOfLife}, 40, 2400, asOf, finCal)
	require.NotNil(t, plan)
	assert.Equal(t, 12.0, plan.HorizonMonths)
	assert.Equal(t, 200.0, plan.MonthlyBudget)
	assert.Equal(t, TierMedium, plan.Tier)
}

func TestBuildPlanZeroHorizon(t *testing.T) {
	plan := BuildPlan(verdict.Verdict{Action: verdict.ActionReplace, Badge: verdict.BadgeEndOfLife}, 0, 2200, asOf, finCal)
	require.NotNil(t, plan)
	assert.Equal(t, 2200.0, plan.MonthlyBudget)
	assert.Equal(t, TierImmediate, plan.Tier)
	assert.Equal(t, asOf, plan.TargetDate)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		months float64
		want   Tier
	}{
		{months: 0.5, want: TierImmediate},
		{months: 1, want: TierHigh},
		{months: 5.9, want: TierHigh},
		{months: 6, want: TierMedium},
		{months: 17.9, want: TierMedium},
		{months: 18, want: TierLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.months, finCal), "months %v", tt.months)
	}
}

type menuFacts struct {
	sediment bool
	noPRV    bool
	noPan    bool
}

func menuTable() []Trigger[menuFacts] {
	return []Trigger[menuFacts]{
		{
			ID:       calibration.ItemFlush,
			Kind:     KindMaintenance,
			Match:    func(f menuFacts) bool { return f.sediment },
			Priority: Fixed[menuFacts](PriorityRecommended),
			Describe: func(menuFacts) string { return "sediment above flush threshold" },
		},
		{
			ID:       calibration.ItemDrainPan,
			Kind:     KindInfrastructure,
			Match:    func(f menuFacts) bool { return f.noPan },
			Priority: Fixed[menuFacts](PriorityOptional),
		},
		{
			ID:       calibration.ItemPRVInstall,
			Kind:     KindInfrastructure,
			Match:    func(f menuFacts) bool { return f.noPRV },
			Priority: Fixed[menuFacts](PriorityCritical),
		},
	}
}

func TestBuildMenuOrdersByPriorityThenTable(t *testing.T) {
	items := BuildMenu(menuTable(), menuFacts{sediment: true, noPRV: true, noPan: true},
		verdict.Verdict{Action: verdict.ActionMaintain}, finCal.MenuPrices)

	require.Len(t, items, 3)
	assert.Equal(t, calibration.ItemPRVInstall, items[0].ID)
	assert.Equal(t, calibration.ItemFlush, items[1].ID)
	assert.Equal(t, calibration.ItemDrainPan, items[2].ID)
	assert.Equal(t, finCal.MenuPrices[calibration.ItemFlush], items[1].Price)
	assert.Equal(t, "sediment above flush threshold", items[1].Trigger)
}

func TestBuildMenuSuppressesMaintenanceOnReplacement(t *testing.T) {
	items := BuildMenu(menuTable(), menuFacts{sediment: true, noPRV: true},
		verdict.Verdict{Action: verdict.ActionReplace}, finCal.MenuPrices)

	require.Len(t, items, 1)
	assert.Equal(t, calibration.ItemPRVInstall, items[0].ID)
	assert.Equal(t, KindInfrastructure, items[0].Kind)
}

func TestBuildMenuEmpty(t *testing.T) {
	items := BuildMenu(menuTable(), menuFacts{}, verdict.Verdict{Action: verdict.ActionPass}, finCal.MenuPrices)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
