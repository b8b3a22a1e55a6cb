package coordinator

import (
	"context"
	"sync"

	"github.com/nholik/plumb-sentinel/internal/config"
	"github.com/nholik/plumb-sentinel/internal/healthcheck"
	"github.com/nholik/plumb-sentinel/internal/inventory"
	"github.com/nholik/plumb-sentinel/internal/metrics"
	"github.com/nholik/plumb-sentinel/internal/notify"
	"github.com/nholik/plumb-sentinel/internal/runner"
	"github.com/nholik/plumb-sentinel/internal/state"
	"github.com/rs/zerolog"
)

// Dependencies are shared by every feed runner.
type Dependencies struct {
	Assessor runner.Assessor
	Store    state.Store
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Tracker  *healthcheck.Tracker
}

// Coordinator manages multiple Runner instances, one per inventory feed.
// It spawns runners in parallel and waits for context cancellation.
type Coordinator struct {
	logger       zerolog.Logger
	cfg          config.Config
	feeds        []config.Feed
	deps         Dependencies
	stateMu      sync.Mutex
	runners      map[string]*runner.Runner
	runnerErrors map[string]error
	mu           sync.RWMutex
}

// New constructs a Coordinator for the given feeds.
func New(logger zerolog.Logger, cfg config.Config, feeds []config.Feed, deps Dependencies) *Coordinator {
	return &Coordinator{
		logger:       logger,
		cfg:          cfg,
		feeds:        feeds,
		deps:         deps,
		runners:      make(map[string]*runner.Runner),
		runnerErrors: make(map[string]error),
	}
}

// Run starts all runners in parallel and blocks until context is canceled.
// Returns nil on clean shutdown; per-runner errors are logged.
func (c *Coordinator) Run(ctx context.Context) error {
	c.logger.Info().
		Int("feeds", len(c.feeds)).
		Msg("starting coordinator")

	var wg sync.WaitGroup
	for _, feed := range c.feeds {
		wg.Add(1)
		go c.spawnRunner(ctx, &wg, feed)
	}

	wg.Wait()
	c.logger.Info().Msg("all runners stopped")

	c.mu.RLock()
	defer c.mu.RUnlock()
	for feed, err := range c.runnerErrors {
		if err != nil {
			c.logger.Error().Err(err).Str("feed", feed).Msg("runner error")
		}
	}

	return nil
}

func (c *Coordinator) spawnRunner(ctx context.Context, wg *sync.WaitGroup, feed config.Feed) {
	defer wg.Done()

	feedLogger := c.logger.With().Str("feed", feed.Name).Logger()

	fetcher, err := c.fetcherFor(feed)
	if err != nil {
		feedLogger.Error().Err(err).Msg("failed to initialize inventory fetcher")
		c.recordError(feed.Name, err)
		return
	}

	r := runner.New(
		feedLogger,
		c.cfg.PollInterval,
		runner.WithFeedName(feed.Name),
		runner.WithFetcher(fetcher),
		runner.WithAssessor(c.deps.Assessor),
		runner.WithStateStore(c.deps.Store, &c.stateMu),
		runner.WithNotifier(c.deps.Notifier),
		runner.WithMetrics(c.deps.Metrics),
		runner.WithTracker(c.deps.Tracker),
	)

	c.mu.Lock()
	c.runners[feed.Name] = r
	c.mu.Unlock()

	feedLogger.Info().Msg("runner started")

	if err := r.Run(ctx); err != nil {
		feedLogger.Error().Err(err).Msg("runner exited with error")
		c.recordError(feed.Name, err)
	} else {
		feedLogger.Info().Msg("runner exited cleanly")
	}
}

// fetcherFor picks a file or HTTP fetcher. The per-feed timeout overrides
// the global fetch timeout.
func (c *Coordinator) fetcherFor(feed config.Feed) (inventory.Fetcher, error) {
	if feed.InventoryPath != "" {
		return inventory.NewFileFetcher(feed.InventoryPath, 0)
	}

	timeout := c.cfg.FetchTimeout
	if feed.Timeout > 0 {
		timeout = feed.Timeout
	}
	return inventory.NewHTTPFetcher(feed.InventoryURL, timeout, 0)
}

func (c *Coordinator) recordError(feed string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runnerErrors[feed] = err
}

// GetRunners returns a copy of the runners map.
func (c *Coordinator) GetRunners() map[string]*runner.Runner {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]*runner.Runner, len(c.runners))
	for k, v := range c.runners {
		result[k] = v
	}
	return result
}

// Errors returns a copy of the per-feed startup and run errors.
func (c *Coordinator) Errors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]error, len(c.runnerErrors))
	for k, v := range c.runnerErrors {
		result[k] = v
	}
	return result
}
