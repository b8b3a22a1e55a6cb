package transition

import (
	"math"
	"sort"

	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/state"
	"github.com/nholik/plumb-sentinel/internal/verdict"
)

// Severity routes a transition to the right alert channel.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityResolved Severity = "resolved"
)

// HealthChange captures the health score movement between snapshots.
type HealthChange struct {
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
}

// UnitTransition captures a verdict change for one unit.
type UnitTransition struct {
	UnitID         string            `json:"unit_id"`
	Variant        equipment.Variant `json:"variant"`
	PreviousAction verdict.Action    `json:"previous_action,omitempty"`
	CurrentAction  verdict.Action    `json:"current_action"`
	PreviousBadge  verdict.Badge     `json:"previous_badge,omitempty"`
	CurrentBadge   verdict.Badge     `json:"current_badge"`
	Title          string            `json:"title"`
	Reason         string            `json:"reason"`
	Urgent         bool              `json:"urgent"`
	Health         *HealthChange     `json:"health,omitempty"`
}

// Severity classifies the transition.
func (t UnitTransition) Severity() Severity {
	switch {
	case t.Urgent:
		return SeverityCritical
	case t.CurrentBadge.Healthy():
		return SeverityResolved
	default:
		return SeverityWarning
	}
}

// DetectUnitTransitions compares the previous feed snapshot with the current
// unit snapshots and emits one transition per unit whose badge changed since
// it was last notified. On a first run, and for newly added units, only
// non-healthy badges are reported.
func DetectUnitTransitions(prev *state.FeedSnapshot, current map[string]state.UnitSnapshot) []UnitTransition {
	prevUnits := map[string]state.UnitSnapshot{}
	if prev != nil && prev.Units != nil {
		prevUnits = prev.Units
	}
	firstRun := len(prevUnits) == 0

	transitions := make([]UnitTransition, 0)
	for id, unit := range current {
		before, hadPrev := prevUnits[id]
		prevBadge := before.Badge
		if before.NotifiedBadge != "" {
			prevBadge = before.NotifiedBadge
		}

		switch {
		case firstRun || !hadPrev:
			if unit.Badge.Healthy() {
				continue
			}
		case prevBadge == unit.Badge:
			continue
		}

		change := UnitTransition{
			UnitID:         id,
			Variant:        unit.Variant,
			PreviousAction: before.Action,
			CurrentAction:  unit.Action,
			PreviousBadge:  prevBadge,
			CurrentBadge:   unit.Badge,
			Title:          unit.Title,
			Reason:         unit.Reason,
			Urgent:         unit.Urgent,
		}
		if hadPrev {
			change.Health = &HealthChange{
				Previous: before.HealthScore,
				Current:  unit.HealthScore,
				Delta:    math.Round((unit.HealthScore-before.HealthScore)*10) / 10,
			}
		}
		transitions = append(transitions, change)
	}

	sort.Slice(transitions, func(i, j int) bool {
		return transitions[i].UnitID < transitions[j].UnitID
	})

	return transitions
}
