// Package finance turns a verdict into a savings plan and scans threshold
// tables for priced service line items.
package finance

import (
	"fmt"
	"math"
	"time"

	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/verdict"
)

// Tier buckets how soon money is needed.
type Tier string

const (
	TierImmediate Tier = "immediate"
	TierHigh      Tier = "high"
	TierMedium    Tier = "medium"
	TierLow       Tier = "low"
)

// Plan is the savings target toward replacement.
type Plan struct {
	MonthlyBudget   float64   `json:"monthly_budget"`
	Tier            Tier      `json:"tier"`
	HorizonMonths   float64   `json:"horizon_months"`
	ReplacementCost float64   `json:"replacement_cost"`
	TargetDate      time.Time `json:"target_date"`
	Recommendation  string    `json:"recommendation"`
}

// BuildPlan derives the plan for a verdict. It returns nil for urgent
// verdicts and for healthy badges.
func BuildPlan(v verdict.Verdict, remainingMonths, cost float64, asOf time.Time, cal calibration.FinanceCalibration) *Plan {
	if v.Urgent || v.Badge.Healthy() {
		return nil
	}

	horizon := math.Max(0, remainingMonths)
	if math.IsNaN(horizon) {
		horizon = 0
	}
	if v.Action.Replacement() && cal.ReplaceHorizonCapMonths > 0 {
		horizon = math.Min(horizon, cal.ReplaceHorizonCapMonths)
	}

	budget := math.Max(0, cost) / math.Max(1, horizon)
	tier := TierFor(horizon, cal)

	return &Plan{
		MonthlyBudget:   round2(budget),
		Tier:            tier,
		HorizonMonths:   round2(horizon),
		ReplacementCost: cost,
		TargetDate:      asOf.AddDate(0, int(math.Ceil(horizon)), 0),
		Recommendation:  recommend(tier, budget, horizon),
	}
}

// TierFor buckets a horizon in months.
func TierFor(months float64, cal calibration.FinanceCalibration) Tier {
	switch {
	case months < cal.ImmediateMonths:
		return TierImmediate
	case months < cal.HighMonths:
		return TierHigh
	case months < cal.MediumMonths:
		return TierMedium
	default:
		return TierLow
	}
}

func recommend(tier Tier, budget, horizon float64) string {
	switch tier {
	case TierImmediate:
		return "Replacement funds are needed now; schedule the install this month."
	case TierHigh:
		return fmt.Sprintf("Set aside $%.0f/month; replacement is likely within %.0f months.", budget, math.Ceil(horizon))
	case TierMedium:
		return fmt.Sprintf("Start a replacement fund of $%.0f/month over the next %.0f months.", budget, math.Ceil(horizon))
	default:
		return fmt.Sprintf("A $%.0f/month reserve covers replacement at end of life.", budget)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
