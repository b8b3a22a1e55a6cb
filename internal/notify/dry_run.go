package notify

import (
	"context"

	"github.com/nholik/plumb-sentinel/internal/transition"
	"github.com/rs/zerolog"
)

// DryRunNotifier logs transitions without sending notifications.
type DryRunNotifier struct {
	logger zerolog.Logger
	inner  Notifier
}

// NewDryRunNotifier returns a notifier that suppresses delivery and logs instead.
func NewDryRunNotifier(logger zerolog.Logger, inner Notifier) *DryRunNotifier {
	return &DryRunNotifier{logger: logger, inner: inner}
}

// Notify implements Notifier.
func (n *DryRunNotifier) Notify(_ context.Context, feed string, transitions []transition.UnitTransition) error {
	for _, change := range transitions {
		n.logger.Info().
			Str("feed", feedName(feed)).
			Str("unit", change.UnitID).
			Str("severity", string(change.Severity())).
			Str("previous_badge", string(change.PreviousBadge)).
			Str("current_badge", string(change.CurrentBadge)).
			Str("action", string(change.CurrentAction)).
			Str("reason", change.Reason).
			Msg("[DRY-RUN] Would notify")
	}
	return nil
}
