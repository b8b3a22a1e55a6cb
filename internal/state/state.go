package state

import (
	"context"
	"time"

	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/health"
	"github.com/nholik/plumb-sentinel/internal/risk"
	"github.com/nholik/plumb-sentinel/internal/verdict"
)

// UnitSnapshot is the persisted outcome of the latest assessment of one unit.
type UnitSnapshot struct {
	Variant            equipment.Variant `json:"variant"`
	ProfileFingerprint string            `json:"profile_fingerprint"`
	Action             verdict.Action    `json:"action"`
	Badge              verdict.Badge     `json:"badge"`
	Title              string            `json:"title"`
	Reason             string            `json:"reason"`
	Urgent             bool              `json:"urgent"`
	HealthScore        float64           `json:"health_score"`
	FailureProbability float64           `json:"failure_probability"`
	PrimaryStressor    risk.Axis         `json:"primary_stressor,omitempty"`
	// NotifiedBadge is the badge last delivered to notifiers. It lags Badge
	// when a notification failed and must be retried.
	NotifiedBadge verdict.Badge `json:"notified_badge,omitempty"`
}

// NewUnitSnapshot captures the fields of a report that are tracked over time.
func NewUnitSnapshot(fingerprint string, r health.Report) UnitSnapshot {
	return UnitSnapshot{
		Variant:            r.Metrics.Variant,
		ProfileFingerprint: fingerprint,
		Action:             r.Verdict.Action,
		Badge:              r.Verdict.Badge,
		Title:              r.Verdict.Title,
		Reason:             r.Verdict.Reason,
		Urgent:             r.Verdict.Urgent,
		HealthScore:        r.Metrics.HealthScore,
		FailureProbability: r.Metrics.FailureProbability,
		PrimaryStressor:    r.Metrics.PrimaryStressor,
	}
}

// FeedSnapshot captures the persisted state of one inventory feed.
type FeedSnapshot struct {
	InventoryFingerprint string                  `json:"inventory_fingerprint"`
	Units                map[string]UnitSnapshot `json:"units"`
	EvaluatedAt          time.Time               `json:"evaluated_at"`
}

// State stores snapshots for all feeds.
type State struct {
	Feeds map[string]FeedSnapshot `json:"feeds"`
}

// Store defines the interface for persisting state.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}
