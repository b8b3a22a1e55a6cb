package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/nholik/plumb-sentinel/internal/transition"
	"github.com/rs/zerolog"
)

const defaultWebhookTemplate = `{"feed":{{ toJson .Feed }},"generated_at":{{ toJson .GeneratedAt }},"counts":{{ toJson .Counts }},"urgent":{{ toJson .Urgent }},"transitions":{{ toJson .Transitions }}}`

// WebhookPayload is the template context for webhook notifications.
type WebhookPayload struct {
	Feed        string
	GeneratedAt time.Time
	Transitions []transition.UnitTransition

	// Counts maps each severity to its number of transitions.
	Counts map[transition.Severity]int

	// Urgent lists the unit IDs whose verdict needs immediate action.
	Urgent []string
}

func newWebhookPayload(feed string, generatedAt time.Time, transitions []transition.UnitTransition) WebhookPayload {
	payload := WebhookPayload{
		Feed:        feed,
		GeneratedAt: generatedAt,
		Transitions: transitions,
		Counts:      make(map[transition.Severity]int, 3),
		Urgent:      []string{},
	}
	for _, t := range transitions {
		payload.Counts[t.Severity()]++
		if t.Urgent {
			payload.Urgent = append(payload.Urgent, t.UnitID)
		}
	}
	return payload
}

var webhookFuncs = template.FuncMap{
	"toJson": func(v any) (string, error) {
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	},
	"severity": func(t transition.UnitTransition) string {
		return string(t.Severity())
	},
}

// WebhookNotifier posts a rendered template to a generic webhook.
type WebhookNotifier struct {
	logger   zerolog.Logger
	template *template.Template
	poster   *httpPoster
	now      func() time.Time
}

// NewWebhookNotifier parses tmpl, or the default JSON body when tmpl is
// empty. It returns a nil notifier when no URL is configured.
func NewWebhookNotifier(logger zerolog.Logger, webhookURL string, tmpl string) (*WebhookNotifier, error) {
	if webhookURL == "" {
		return nil, nil
	}
	if tmpl == "" {
		tmpl = defaultWebhookTemplate
	}

	parsed, err := template.New("webhook").Funcs(webhookFuncs).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse webhook template: %w", err)
	}

	return &WebhookNotifier{
		logger:   logger,
		template: parsed,
		poster:   newHTTPPoster(logger, "webhook", webhookURL, "application/json", defaultTiming),
		now:      time.Now,
	}, nil
}

func (n *WebhookNotifier) Notify(ctx context.Context, feed string, transitions []transition.UnitTransition) error {
	if n == nil || len(transitions) == 0 {
		return nil
	}
	feed = feedName(feed)

	var body bytes.Buffer
	payload := newWebhookPayload(feed, n.now().UTC(), transitions)
	if err := n.template.Execute(&body, payload); err != nil {
		return fmt.Errorf("render webhook template: %w", err)
	}

	if err := n.poster.waitForRateLimit(ctx, feed); err != nil {
		return err
	}
	if err := n.poster.postWithRetry(ctx, body.Bytes()); err != nil {
		return err
	}

	n.logger.Debug().
		Str("feed", feed).
		Int("transitions", len(transitions)).
		Strs("urgent", payload.Urgent).
		Msg("webhook notification sent")
	return nil
}
