package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const httpErrorBodyLimit = 1024

type timingConfig struct {
	timeout           time.Duration
	rateInterval      time.Duration
	rateBurst         int
	backoffMaxElapsed time.Duration
	backoffMax        time.Duration
	backoffInitial    time.Duration
}

var defaultTiming = timingConfig{
	timeout:           10 * time.Second,
	rateInterval:      1 * time.Second,
	rateBurst:         1,
	backoffMaxElapsed: 30 * time.Second,
	backoffMax:        10 * time.Second,
	backoffInitial:    1 * time.Second,
}

// httpPoster posts JSON payloads with per-feed rate limiting and
// exponential backoff. Retries live here rather than in the HTTP client so
// Retry-After hints can steer the schedule.
type httpPoster struct {
	logger      zerolog.Logger
	channel     string
	url         string
	contentType string
	client      *retryablehttp.Client
	timing      timingConfig

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

func newHTTPPoster(logger zerolog.Logger, channel, url, contentType string, timing timingConfig) *httpPoster {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.CheckRetry = func(_ context.Context, _ *http.Response, _ error) (bool, error) {
		return false, nil
	}
	client.Logger = nil
	client.HTTPClient = &http.Client{Timeout: timing.timeout}

	return &httpPoster{
		logger:      logger.With().Str("channel", channel).Logger(),
		channel:     channel,
		url:         url,
		contentType: contentType,
		client:      client,
		timing:      timing,
		limiters:    make(map[string]*rate.Limiter),
	}
}

func (p *httpPoster) waitForRateLimit(ctx context.Context, feed string) error {
	return p.limiter(feed).Wait(ctx)
}

func (p *httpPoster) limiter(feed string) *rate.Limiter {
	p.limiterMu.Lock()
	defer p.limiterMu.Unlock()

	if limiter, ok := p.limiters[feed]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Every(p.timing.rateInterval), p.timing.rateBurst)
	p.limiters[feed] = limiter
	return limiter
}

func (p *httpPoster) postWithRetry(ctx context.Context, payload []byte) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.timing.backoffInitial
	exp.MaxInterval = p.timing.backoffMax
	exp.MaxElapsedTime = p.timing.backoffMaxElapsed

	policy := &retryAfterBackOff{BackOff: exp}
	operation := func() error {
		err := p.postOnce(ctx, payload)
		if err == nil {
			return nil
		}
		var retryAfter *retryAfterError
		if errors.As(err, &retryAfter) {
			policy.hint = retryAfter.Duration
			return err
		}
		var retryable *retryableError
		if errors.As(err, &retryable) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		p.logger.Debug().Err(err).Dur("wait", wait).Msg("retrying notification")
	}

	return backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
}

func (p *httpPoster) postOnce(ctx context.Context, payload []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, p.timing.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(reqCtx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", p.channel, err)
	}
	req.Header.Set("Content-Type", p.contentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return &retryableError{err: fmt.Errorf("%s request failed: %w", p.channel, err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, httpErrorBodyLimit))
	bodyText := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		limited := fmt.Errorf("%s rate limited: %s", p.channel, resp.Status)
		if wait, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			return &retryAfterError{Duration: wait, err: limited}
		}
		return &retryableError{err: limited}
	case resp.StatusCode >= http.StatusInternalServerError:
		return &retryableError{err: fmt.Errorf("%s server error: %s", p.channel, resp.Status)}
	case bodyText != "":
		return fmt.Errorf("%s request failed: %s (%s)", p.channel, resp.Status, bodyText)
	default:
		return fmt.Errorf("%s request failed: %s", p.channel, resp.Status)
	}
}

// retryAfterBackOff substitutes a server supplied Retry-After delay for the
// next exponential interval while still honoring the elapsed-time budget.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint > 0 {
		next = b.hint
		b.hint = 0
	}
	return next
}

func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		wait := time.Until(when)
		if wait <= 0 {
			return 0, false
		}
		return wait, true
	}
	return 0, false
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

type retryAfterError struct {
	Duration time.Duration
	err      error
}

func (e *retryAfterError) Error() string {
	return fmt.Sprintf("%v; retry after %s", e.err, e.Duration)
}

func (e *retryAfterError) Unwrap() error {
	return e.err
}
