package finance

import (
	"sort"

	"github.com/nholik/plumb-sentinel/internal/verdict"
)

// Kind separates servicing the unit from fixing what surrounds it.
type Kind string

const (
	KindMaintenance    Kind = "maintenance"
	KindInfrastructure Kind = "infrastructure"
)

// Priority ranks menu items.
type Priority string

const (
	PriorityCritical    Priority = "critical"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
)

func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityRecommended:
		return 1
	default:
		return 2
	}
}

// MenuItem is one priced line item.
type MenuItem struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Trigger  string   `json:"trigger"`
	Price    float64  `json:"price"`
	Pitch    string   `json:"pitch"`
	Priority Priority `json:"priority"`
}

// Trigger is one row of a menu table over facts of type F.
type Trigger[F any] struct {
	ID       string
	Kind     Kind
	Pitch    string
	Match    func(F) bool
	Priority func(F) Priority
	Describe func(F) string
}

// BuildMenu scans every trigger; each match adds an item. Maintenance items
// are dropped when the verdict replaces the unit. Items are ordered by
// priority, then table order.
func BuildMenu[F any](table []Trigger[F], facts F, v verdict.Verdict, prices map[string]float64) []MenuItem {
	items := make([]MenuItem, 0, len(table))
	for _, t := range table {
		if t.Kind == KindMaintenance && v.Action.Replacement() {
			continue
		}
		if t.Match == nil || !t.Match(facts) {
			continue
		}
		item := MenuItem{
			ID:       t.ID,
			Kind:     t.Kind,
			Price:    prices[t.ID],
			Pitch:    t.Pitch,
			Priority: PriorityRecommended,
		}
		if t.Priority != nil {
			item.Priority = t.Priority(facts)
		}
		if t.Describe != nil {
			item.Trigger = t.Describe(facts)
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority.rank() < items[j].Priority.rank()
	})
	return items
}

// Fixed returns a priority function that ignores its input.
func Fixed[F any](p Priority) func(F) Priority {
	return func(F) Priority { return p }
}
