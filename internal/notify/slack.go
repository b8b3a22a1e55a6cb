package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nholik/plumb-sentinel/internal/transition"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

const (
	slackMaxBlocks = 50
	// header and context blocks in each message
	slackReservedBlocks = 2
	slackMaxTransitions = slackMaxBlocks - slackReservedBlocks
	slackMaxFieldText   = 2000
)

type SlackNotifier struct {
	logger     zerolog.Logger
	webhookURL string
	timing     timingConfig
	poster     *httpPoster
}

// SlackOption customizes SlackNotifier behavior.
type SlackOption func(*SlackNotifier)

// WithSlackTiming overrides rate limiting and backoff parameters.
func WithSlackTiming(rateInterval time.Duration, rateBurst int, backoffInitial, backoffMax, backoffMaxElapsed time.Duration) SlackOption {
	return func(s *SlackNotifier) {
		s.timing.rateInterval = rateInterval
		s.timing.rateBurst = rateBurst
		s.timing.backoffInitial = backoffInitial
		s.timing.backoffMax = backoffMax
		s.timing.backoffMaxElapsed = backoffMaxElapsed
	}
}

// NewSlackNotifier creates a Slack notifier or a noop notifier when the webhook is empty.
func NewSlackNotifier(logger zerolog.Logger, webhookURL string, opts ...SlackOption) Notifier {
	if webhookURL == "" {
		return NewNoop(logger, "slack webhook not configured; slack notifications disabled")
	}

	notifier := &SlackNotifier{
		logger:     logger,
		webhookURL: webhookURL,
		timing:     defaultTiming,
	}
	for _, opt := range opts {
		opt(notifier)
	}
	notifier.poster = newHTTPPoster(logger, "slack", webhookURL, "application/json", notifier.timing)

	return notifier
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, feed string, transitions []transition.UnitTransition) error {
	if len(transitions) == 0 {
		return nil
	}
	feed = feedName(feed)
	if err := n.poster.waitForRateLimit(ctx, feed); err != nil {
		return err
	}

	messages := buildSlackMessages(feed, transitions)
	for _, message := range messages {
		payload, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("marshal slack payload: %w", err)
		}
		if err := n.poster.postWithRetry(ctx, payload); err != nil {
			return err
		}
	}

	n.logger.Debug().
		Str("feed", feed).
		Int("transitions", len(transitions)).
		Int("messages", len(messages)).
		Msg("slack notification sent")

	return nil
}

func (n *SlackNotifier) postOnce(ctx context.Context, payload []byte) error {
	return n.poster.postOnce(ctx, payload)
}

func buildSlackMessages(feed string, transitions []transition.UnitTransition) []slack.WebhookMessage {
	if len(transitions) == 0 {
		return nil
	}

	total := len(transitions)
	parts := (total + slackMaxTransitions - 1) / slackMaxTransitions
	messages := make([]slack.WebhookMessage, 0, parts)

	for i := 0; i < total; i += slackMaxTransitions {
		end := min(i+slackMaxTransitions, total)
		part := i/slackMaxTransitions + 1
		messages = append(messages, buildSlackMessage(feed, transitions[i:end], total, part, parts))
	}
	return messages
}

func buildSlackMessage(feed string, transitions []transition.UnitTransition, total, part, parts int) slack.WebhookMessage {
	summary := fmt.Sprintf("Feed %s: %d unit transition(s)", feed, total)
	if parts > 1 {
		summary = fmt.Sprintf("%s (part %d/%d)", summary, part, parts)
	}
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, summary, false, false))

	elements := []slack.MixedElement{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Feed: *%s*", feed), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, severitySummary(transitions), false, false),
	}
	if parts > 1 {
		elements = append(elements, slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Batch: %d/%d", part, parts), false, false))
	}

	blocks := []slack.Block{header, slack.NewContextBlock("", elements...)}
	for _, change := range transitions {
		blocks = append(blocks, buildTransitionBlock(change))
	}

	return slack.WebhookMessage{
		Text:   summary,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
}

func buildTransitionBlock(change transition.UnitTransition) slack.Block {
	title := fmt.Sprintf("%s *%s* (%s): `%s` → `%s`",
		severityIcon(change.Severity()), change.UnitID, change.Variant,
		badgeLabel(string(change.PreviousBadge)), badgeLabel(string(change.CurrentBadge)))
	text := slack.NewTextBlockObject(slack.MarkdownType, title, false, false)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Action:*\n"+formatAction(change), false, false),
	}
	if change.Title != "" {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, truncate("*Verdict:*\n"+change.Title, slackMaxFieldText), false, false))
	}
	if change.Reason != "" {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, truncate("*Reason:*\n"+change.Reason, slackMaxFieldText), false, false))
	}
	if change.Health != nil {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, formatHealthChange(change.Health), false, false))
	}

	return slack.NewSectionBlock(text, fields, nil)
}

func formatAction(change transition.UnitTransition) string {
	if change.PreviousAction == "" || change.PreviousAction == change.CurrentAction {
		return fmt.Sprintf("`%s`", change.CurrentAction)
	}
	return fmt.Sprintf("`%s` → `%s`", change.PreviousAction, change.CurrentAction)
}

func formatHealthChange(change *transition.HealthChange) string {
	return fmt.Sprintf("*Health:*\n%.1f (Δ %+.1f)", change.Current, change.Delta)
}

func severitySummary(transitions []transition.UnitTransition) string {
	counts := map[transition.Severity]int{}
	for _, change := range transitions {
		counts[change.Severity()]++
	}
	return fmt.Sprintf("Critical: %d · Warning: %d · Resolved: %d",
		counts[transition.SeverityCritical], counts[transition.SeverityWarning], counts[transition.SeverityResolved])
}

func severityIcon(severity transition.Severity) string {
	switch severity {
	case transition.SeverityCritical:
		return ":rotating_light:"
	case transition.SeverityResolved:
		return ":white_check_mark:"
	default:
		return ":warning:"
	}
}

func badgeLabel(badge string) string {
	if badge == "" {
		return "NEW"
	}
	return badge
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
