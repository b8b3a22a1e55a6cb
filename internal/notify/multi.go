package notify

import (
	"context"
	"errors"

	"github.com/nholik/plumb-sentinel/internal/transition"
)

// MultiNotifier fans out notifications to multiple notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that dispatches to all provided notifiers.
// Nil notifiers, including typed nil webhook notifiers, are skipped.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	filtered := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier == nil {
			continue
		}
		if webhook, ok := notifier.(*WebhookNotifier); ok && webhook == nil {
			continue
		}
		filtered = append(filtered, notifier)
	}
	return &MultiNotifier{notifiers: filtered}
}

// Len reports how many notifiers receive alerts.
func (m *MultiNotifier) Len() int {
	return len(m.notifiers)
}

// Notify implements Notifier. Every notifier is attempted and all failures
// are joined.
func (m *MultiNotifier) Notify(ctx context.Context, feed string, transitions []transition.UnitTransition) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, feed, transitions); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
