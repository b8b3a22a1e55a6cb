package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/health"
	"github.com/nholik/plumb-sentinel/internal/healthcheck"
	"github.com/nholik/plumb-sentinel/internal/inventory"
	"github.com/nholik/plumb-sentinel/internal/metrics"
	"github.com/nholik/plumb-sentinel/internal/notify"
	"github.com/nholik/plumb-sentinel/internal/state"
	"github.com/nholik/plumb-sentinel/internal/transition"
	"github.com/rs/zerolog"
)

const defaultFeedName = "default"

// Ticker is the minimal interface needed for driving the runner loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t timeTicker) Stop() {
	t.ticker.Stop()
}

// Assessor evaluates one equipment profile as of a point in time.
type Assessor interface {
	Assess(p equipment.Profile, asOf time.Time) (health.Report, error)
}

type memoEntry struct {
	fingerprint string
	day         string
	report      health.Report
}

type assessed struct {
	fingerprint string
	report      health.Report
}

// Runner polls one inventory feed, assesses every unit and alerts on verdict
// changes.
type Runner struct {
	logger        zerolog.Logger
	feed          string
	pollInterval  time.Duration
	tickerFactory func(time.Duration) Ticker
	runOnce       func(context.Context) error
	now           func() time.Time

	fetcher  inventory.Fetcher
	assessor Assessor
	store    state.Store
	stateMu  *sync.Mutex
	notifier notify.Notifier
	metrics  *metrics.Metrics
	tracker  *healthcheck.Tracker

	inventoryETag string
	inventoryHash string
	inventory     *inventory.Inventory
	memo          map[string]memoEntry
	badges        map[string]struct{}
	previous      *state.FeedSnapshot
}

// Option customizes runner behavior.
type Option func(*Runner)

// WithTickerFactory overrides how tickers are created.
func WithTickerFactory(factory func(time.Duration) Ticker) Option {
	return func(r *Runner) {
		r.tickerFactory = factory
	}
}

// WithRunOnce overrides the single-cycle execution step.
func WithRunOnce(runOnce func(context.Context) error) Option {
	return func(r *Runner) {
		r.runOnce = runOnce
	}
}

// WithFetcher sets the inventory fetcher used by the default RunOnce.
func WithFetcher(fetcher inventory.Fetcher) Option {
	return func(r *Runner) {
		r.fetcher = fetcher
	}
}

// WithAssessor sets the evaluator applied to each unit.
func WithAssessor(assessor Assessor) Option {
	return func(r *Runner) {
		r.assessor = assessor
	}
}

// WithFeedName scopes persisted state, metrics and alerts to a feed.
func WithFeedName(name string) Option {
	return func(r *Runner) {
		r.feed = name
	}
}

// WithStateStore enables state persistence. The lock is shared by runners
// writing to the same store.
func WithStateStore(store state.Store, lock *sync.Mutex) Option {
	return func(r *Runner) {
		r.store = store
		r.stateMu = lock
	}
}

func WithNotifier(notifier notify.Notifier) Option {
	return func(r *Runner) {
		r.notifier = notifier
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

func WithTracker(tracker *healthcheck.Tracker) Option {
	return func(r *Runner) {
		r.tracker = tracker
	}
}

// WithClock overrides the time source. Assessments are made as of the
// clock's current time.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New constructs a Runner with the given logger and poll interval.
func New(logger zerolog.Logger, pollInterval time.Duration, opts ...Option) *Runner {
	r := &Runner{
		logger:       logger,
		feed:         defaultFeedName,
		pollInterval: pollInterval,
		tickerFactory: func(d time.Duration) Ticker {
			return timeTicker{ticker: time.NewTicker(d)}
		},
		now:    time.Now,
		memo:   make(map[string]memoEntry),
		badges: make(map[string]struct{}),
	}
	r.runOnce = r.defaultRunOnce

	for _, opt := range opts {
		opt(r)
	}
	if r.store != nil && r.stateMu == nil {
		r.stateMu = &sync.Mutex{}
	}

	return r
}

// Feed returns the feed name this runner serves.
func (r *Runner) Feed() string {
	return r.feed
}

// Run starts the main loop and blocks until the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	if r.pollInterval <= 0 {
		return errors.New("poll interval must be greater than zero")
	}

	// Run immediately on startup
	if err := r.RunOnce(ctx); err != nil {
		r.logCycleError(err, "initial run cycle failed")
	}

	ticker := r.tickerFactory(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("runner stopped")
			return nil
		case <-ticker.C():
			if err := r.RunOnce(ctx); err != nil {
				r.logCycleError(err, "run cycle failed")
			}
		}
	}
}

// RunOnce executes a single cycle of the runner.
func (r *Runner) RunOnce(ctx context.Context) error {
	return r.runOnce(ctx)
}

func (r *Runner) defaultRunOnce(ctx context.Context) error {
	start := r.now()
	logger := r.logger.With().Str("cycle_id", uuid.NewString()).Logger()

	if r.fetcher != nil {
		if err := r.refreshInventory(ctx, logger); err != nil {
			r.metrics.IncFetchErrors(r.feed)
			return r.wrapRuntime("fetch inventory", err)
		}
	}
	if r.inventory == nil {
		logger.Warn().Msg("inventory not yet available, skipping assessment")
		return nil
	}
	if r.assessor == nil {
		return nil
	}

	asOf := start.UTC()
	units := r.assessAll(logger, asOf)
	r.publishUnitMetrics(units)

	if err := r.reconcile(ctx, logger, units, asOf); err != nil {
		return err
	}

	duration := r.now().Sub(start)
	r.metrics.ObserveCycleDuration(r.feed, duration)
	r.metrics.SetLastSuccessfulCycleTimestamp(r.feed, r.now())
	r.tracker.RecordCycle(r.feed, duration, len(units))

	logger.Info().
		Int("units", len(units)).
		Dur("duration", duration).
		Msg("cycle complete")

	return nil
}

func (r *Runner) refreshInventory(ctx context.Context, logger zerolog.Logger) error {
	result, err := r.fetcher.Fetch(ctx, r.inventoryETag)
	if err != nil {
		return err
	}
	if result.ETag != "" {
		r.inventoryETag = result.ETag
	}
	if result.NotModified {
		logger.Debug().Msg("inventory unchanged")
		return nil
	}

	fingerprint, err := inventory.Fingerprint(result.Body)
	if err != nil {
		return err
	}
	if fingerprint == r.inventoryHash && r.inventory != nil {
		logger.Debug().Msg("inventory fingerprint unchanged")
		return nil
	}

	inv, err := inventory.Parse(result.Body)
	if err != nil {
		return err
	}
	r.inventory = &inv
	r.inventoryHash = fingerprint

	logger.Info().
		Int("bytes", len(result.Body)).
		Str("etag", result.ETag).
		Str("last_modified", result.LastModified).
		Str("fingerprint", fingerprint).
		Int("units", len(inv.Units)).
		Msg("inventory fetched")

	return nil
}

// assessAll evaluates every unit. Reports are reused while both the profile
// and the as-of day are unchanged.
func (r *Runner) assessAll(logger zerolog.Logger, asOf time.Time) map[string]assessed {
	day := asOf.Format(time.DateOnly)
	units := make(map[string]assessed, len(r.inventory.Units))

	for _, id := range r.inventory.IDs() {
		profile := r.inventory.Units[id]
		unitLogger := logger.With().Str("unit", id).Logger()

		fingerprint, err := equipment.Fingerprint(profile)
		if err != nil {
			unitLogger.Error().Err(err).Msg("fingerprint profile")
			continue
		}

		if cached, ok := r.memo[id]; ok && cached.fingerprint == fingerprint && cached.day == day {
			units[id] = assessed{fingerprint: fingerprint, report: cached.report}
			continue
		}

		began := time.Now()
		report, err := r.assessor.Assess(profile, asOf)
		if err != nil {
			var cfgErr *equipment.ConfigError
			if errors.As(err, &cfgErr) {
				unitLogger.Warn().Err(err).Msg("unit skipped: unrecognized equipment")
			} else {
				unitLogger.Error().Err(err).Msg("unit assessment failed")
			}
			r.metrics.IncAssessmentErrors(r.feed)
			delete(r.memo, id)
			continue
		}
		r.metrics.ObserveAssessment(string(report.Metrics.Family), string(report.Verdict.Action), time.Since(began))

		r.memo[id] = memoEntry{fingerprint: fingerprint, day: day, report: report}
		units[id] = assessed{fingerprint: fingerprint, report: report}

		unitLogger.Debug().
			Str("action", string(report.Verdict.Action)).
			Str("badge", string(report.Verdict.Badge)).
			Float64("health_score", report.Metrics.HealthScore).
			Float64("failure_probability", report.Metrics.FailureProbability).
			Msg("unit assessed")
	}

	for id := range r.memo {
		if _, ok := r.inventory.Units[id]; !ok {
			delete(r.memo, id)
		}
	}

	return units
}

func (r *Runner) publishUnitMetrics(units map[string]assessed) {
	counts := make(map[string]int)
	for id, unit := range units {
		counts[string(unit.report.Verdict.Badge)]++
		r.metrics.SetUnitHealth(r.feed, id, unit.report.Metrics.HealthScore, unit.report.Metrics.FailureProbability)
	}
	for badge := range r.badges {
		if _, ok := counts[badge]; !ok {
			r.metrics.SetUnitsTotal(r.feed, badge, 0)
		}
	}
	r.badges = make(map[string]struct{}, len(counts))
	for badge, count := range counts {
		r.metrics.SetUnitsTotal(r.feed, badge, count)
		r.badges[badge] = struct{}{}
	}
}

// reconcile detects transitions against the last persisted snapshot, delivers
// them and records what was delivered. Units whose alert could not be
// delivered keep their previous notified badge so the alert is retried.
func (r *Runner) reconcile(ctx context.Context, logger zerolog.Logger, units map[string]assessed, asOf time.Time) error {
	prev, err := r.loadPrevious(ctx)
	if err != nil {
		return r.wrapRuntime("load state", err)
	}

	current := make(map[string]state.UnitSnapshot, len(units))
	for id, unit := range units {
		current[id] = state.NewUnitSnapshot(unit.fingerprint, unit.report)
	}

	if prev != nil {
		for id := range prev.Units {
			if _, ok := current[id]; !ok {
				r.metrics.DeleteUnit(r.feed, id)
			}
		}
	}

	transitions := transition.DetectUnitTransitions(prev, current)
	r.logTransitions(logger, transitions)

	delivered := true
	if len(transitions) > 0 && r.notifier != nil {
		if err := r.notifier.Notify(ctx, r.feed, transitions); err != nil {
			delivered = false
			r.metrics.IncNotificationErrors(r.feed)
			logger.Error().Err(err).Int("transitions", len(transitions)).Msg("notification delivery failed")
		}
	}
	if delivered {
		for _, change := range transitions {
			r.metrics.IncAlertsTotal(r.feed, string(change.Severity()))
		}
	}

	pending := make(map[string]transition.UnitTransition, len(transitions))
	if !delivered {
		for _, change := range transitions {
			pending[change.UnitID] = change
		}
	}

	next := state.FeedSnapshot{
		InventoryFingerprint: r.inventoryHash,
		Units:                make(map[string]state.UnitSnapshot, len(current)),
		EvaluatedAt:          asOf,
	}
	for id, unit := range current {
		unit.NotifiedBadge = unit.Badge
		if change, ok := pending[id]; ok {
			if change.PreviousBadge == "" {
				// never delivered; leave it out so it is reported as new
				continue
			}
			unit.NotifiedBadge = change.PreviousBadge
		}
		next.Units[id] = unit
	}

	return r.wrapRuntime("save state", r.savePrevious(ctx, next))
}

func (r *Runner) loadPrevious(ctx context.Context) (*state.FeedSnapshot, error) {
	if r.store == nil {
		return r.previous, nil
	}

	var prev *state.FeedSnapshot
	err := r.withStateLock(func() error {
		loaded, err := r.store.Load(ctx)
		if err != nil {
			return err
		}
		if existing, ok := loaded.Feeds[r.feed]; ok {
			prev = &existing
		}
		return nil
	})
	return prev, err
}

func (r *Runner) savePrevious(ctx context.Context, snapshot state.FeedSnapshot) error {
	r.previous = &snapshot
	if r.store == nil {
		return nil
	}

	return r.withStateLock(func() error {
		loaded, err := r.store.Load(ctx)
		if err != nil {
			return err
		}
		if loaded.Feeds == nil {
			loaded.Feeds = map[string]state.FeedSnapshot{}
		}
		loaded.Feeds[r.feed] = snapshot
		return r.store.Save(ctx, loaded)
	})
}

func (r *Runner) logTransitions(logger zerolog.Logger, transitions []transition.UnitTransition) {
	for _, change := range transitions {
		var event *zerolog.Event
		switch change.Severity() {
		case transition.SeverityCritical:
			event = logger.Error()
		case transition.SeverityWarning:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Str("unit", change.UnitID).
			Str("variant", string(change.Variant)).
			Str("previous_badge", string(change.PreviousBadge)).
			Str("current_badge", string(change.CurrentBadge)).
			Str("action", string(change.CurrentAction)).
			Str("reason", change.Reason)
		if change.Health != nil {
			event = event.Float64("health_score", change.Health.Current).
				Float64("health_delta", change.Health.Delta)
		}
		event.Msg("unit transition detected")
	}
}

func (r *Runner) withStateLock(fn func() error) error {
	if r.stateMu == nil {
		return fn()
	}
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return fn()
}
