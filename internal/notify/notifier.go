package notify

import (
	"context"

	"github.com/nholik/plumb-sentinel/internal/transition"
	"github.com/rs/zerolog"
)

// Notifier delivers unit transition alerts to external systems.
type Notifier interface {
	Notify(ctx context.Context, feed string, transitions []transition.UnitTransition) error
}

const defaultFeedName = "default"

func feedName(feed string) string {
	if feed == "" {
		return defaultFeedName
	}
	return feed
}

// NoopNotifier drops notifications.
type NoopNotifier struct{}

// NewNoop logs why alerts are off and returns a notifier that drops them.
func NewNoop(logger zerolog.Logger, reason string) *NoopNotifier {
	if reason != "" {
		logger.Info().Msg(reason)
	}
	return &NoopNotifier{}
}

func (*NoopNotifier) Notify(context.Context, string, []transition.UnitTransition) error {
	return nil
}
