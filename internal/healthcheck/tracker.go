package healthcheck

import (
	"sort"
	"sync"
	"time"
)

// FeedStatus describes the latest cycle of one inventory feed.
type FeedStatus struct {
	LastCycleTime   time.Time `json:"last_cycle_time"`
	CycleDurationMS int64     `json:"cycle_duration_ms"`
	UnitsEvaluated  int       `json:"units_evaluated"`
}

// Snapshot describes the latest cycle timing details across feeds.
type Snapshot struct {
	LastCycleTime  *time.Time            `json:"last_cycle_time"`
	UnitsEvaluated int                   `json:"units_evaluated"`
	Feeds          map[string]FeedStatus `json:"feeds"`
	Pending        []string              `json:"pending,omitempty"`
}

type feedCycle struct {
	last     time.Time
	duration time.Duration
	units    int
}

// Tracker records per-feed cycle timing for health endpoints.
type Tracker struct {
	mu       sync.RWMutex
	expected map[string]struct{}
	feeds    map[string]*feedCycle
	now      func() time.Time
}

// NewTracker constructs a Tracker that waits for the given feeds before
// reporting ready. With no feeds, any recorded cycle makes it ready.
func NewTracker(feeds ...string) *Tracker {
	expected := make(map[string]struct{}, len(feeds))
	for _, feed := range feeds {
		expected[feed] = struct{}{}
	}
	return &Tracker{
		expected: expected,
		feeds:    make(map[string]*feedCycle),
		now:      time.Now,
	}
}

// RecordCycle updates cycle timing for a feed.
func (t *Tracker) RecordCycle(feed string, duration time.Duration, unitsEvaluated int) {
	if t == nil {
		return
	}
	now := t.now().UTC()
	t.mu.Lock()
	t.feeds[feed] = &feedCycle{last: now, duration: duration, units: unitsEvaluated}
	t.mu.Unlock()
}

// Snapshot returns the current tracker snapshot.
func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{Feeds: map[string]FeedStatus{}}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := Snapshot{Feeds: make(map[string]FeedStatus, len(t.feeds))}
	var latest time.Time
	for name, cycle := range t.feeds {
		snapshot.Feeds[name] = FeedStatus{
			LastCycleTime:   cycle.last,
			CycleDurationMS: int64(cycle.duration / time.Millisecond),
			UnitsEvaluated:  cycle.units,
		}
		snapshot.UnitsEvaluated += cycle.units
		if cycle.last.After(latest) {
			latest = cycle.last
		}
	}
	if !latest.IsZero() {
		snapshot.LastCycleTime = &latest
	}
	snapshot.Pending = t.pendingLocked()
	return snapshot
}

// Ready reports whether every expected feed has completed a cycle.
func (t *Tracker) Ready() bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.feeds) > 0 && len(t.pendingLocked()) == 0
}

// Healthy reports whether every feed completed a cycle within 2x the poll interval.
func (t *Tracker) Healthy(now time.Time, pollInterval time.Duration) bool {
	if t == nil || pollInterval <= 0 {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.feeds) == 0 || len(t.pendingLocked()) > 0 {
		return false
	}
	for _, cycle := range t.feeds {
		if now.Sub(cycle.last) > 2*pollInterval {
			return false
		}
	}
	return true
}

func (t *Tracker) pendingLocked() []string {
	var pending []string
	for feed := range t.expected {
		if _, ok := t.feeds[feed]; !ok {
			pending = append(pending, feed)
		}
	}
	sort.Strings(pending)
	return pending
}
