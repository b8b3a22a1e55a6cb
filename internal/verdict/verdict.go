// Package verdict evaluates ordered rule ladders. A ladder is data: the first
// rule whose predicate matches builds the verdict and nothing below it runs.
package verdict

import (
	"errors"

	"github.com/nholik/plumb-sentinel/internal/risk"
)

// Action is the recommended course of action.
type Action string

const (
	ActionReplace           Action = "REPLACE"
	ActionRepair            Action = "REPAIR"
	ActionUpgrade           Action = "UPGRADE"
	ActionMaintain          Action = "MAINTAIN"
	ActionPass              Action = "PASS"
	ActionRebedOrReplace    Action = "REBED_OR_REPLACE"
	ActionReplaceUnit       Action = "REPLACE_UNIT"
	ActionValveRebuild      Action = "VALVE_REBUILD"
	ActionChemicalDetox     Action = "CHEMICAL_DETOX"
	ActionEfficiencyUpgrade Action = "EFFICIENCY_UPGRADE"
	ActionMonitor           Action = "MONITOR"
)

// Replacement reports whether the action retires the unit.
func (a Action) Replacement() bool {
	switch a {
	case ActionReplace, ActionReplaceUnit:
		return true
	default:
		return false
	}
}

// Badge is the severity shown next to a verdict.
type Badge string

const (
	BadgeCritical          Badge = "CRITICAL"
	BadgeEndOfLife         Badge = "END_OF_LIFE"
	BadgeSedimentLockout   Badge = "SEDIMENT_LOCKOUT"
	BadgeScaleLockout      Badge = "SCALE_LOCKOUT"
	BadgeComponentFailure  Badge = "COMPONENT_FAILURE"
	BadgeAcceleratedWear   Badge = "ACCELERATED_WEAR"
	BadgeInfrastructure    Badge = "INFRASTRUCTURE"
	BadgeServiceDue        Badge = "SERVICE_DUE"
	BadgeOptimal           Badge = "OPTIMAL"
	BadgeMonitor           Badge = "MONITOR"
	BadgeResinFailure      Badge = "RESIN_FAILURE"
	BadgeMechanicalFailure Badge = "MECHANICAL_FAILURE"
	BadgeSealWear          Badge = "SEAL_WEAR"
	BadgeResinDegraded     Badge = "RESIN_DEGRADED"
	BadgeHighWaste         Badge = "HIGH_WASTE"
	BadgeHealthy           Badge = "HEALTHY"
)

// Healthy reports whether the badge means no action is needed.
func (b Badge) Healthy() bool {
	return b == BadgeOptimal || b == BadgeHealthy
}

// Verdict is the single recommendation for one assessment.
type Verdict struct {
	RuleID          string    `json:"rule_id"`
	Action          Action    `json:"action"`
	Badge           Badge     `json:"badge"`
	Title           string    `json:"title"`
	Reason          string    `json:"reason"`
	Urgent          bool      `json:"urgent"`
	LifeExtension   float64   `json:"life_extension_years,omitempty"`
	PrimaryStressor risk.Axis `json:"primary_stressor,omitempty"`
}

// Rule is one rung of a ladder over facts of type F.
type Rule[F any] struct {
	ID    string
	Match func(F) bool
	Build func(F) Verdict
}

// ErrNoRuleMatched is returned when a ladder has no catch-all and nothing
// matched.
var ErrNoRuleMatched = errors.New("no verdict rule matched")

// Evaluate walks the ladder top to bottom and returns the first match.
func Evaluate[F any](ladder []Rule[F], facts F) (Verdict, error) {
	for _, rule := range ladder {
		if rule.Match == nil || !rule.Match(facts) {
			continue
		}
		v := rule.Build(facts)
		if v.RuleID == "" {
			v.RuleID = rule.ID
		}
		return v, nil
	}
	return Verdict{}, ErrNoRuleMatched
}

// Always matches every input; use it for a ladder's last rung.
func Always[F any](F) bool { return true }
