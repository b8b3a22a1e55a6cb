package notify

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func TestRetryAfterBackOffUsesHintOnce(t *testing.T) {
	policy := &retryAfterBackOff{BackOff: backoff.NewConstantBackOff(10 * time.Millisecond)}

	policy.hint = 2 * time.Second
	if got := policy.NextBackOff(); got != 2*time.Second {
		t.Fatalf("expected hint to be used, got %s", got)
	}
	if got := policy.NextBackOff(); got != 10*time.Millisecond {
		t.Fatalf("expected fallback interval after hint, got %s", got)
	}
}

func TestRetryAfterBackOffRespectsStop(t *testing.T) {
	policy := &retryAfterBackOff{BackOff: &backoff.StopBackOff{}, hint: time.Second}
	if got := policy.NextBackOff(); got != backoff.Stop {
		t.Fatalf("expected stop, got %s", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
		ok    bool
	}{
		{value: "", ok: false},
		{value: "3", want: 3 * time.Second, ok: true},
		{value: "0", ok: false},
		{value: "soon", ok: false},
		{value: "Mon, 01 Jan 2001 00:00:00 GMT", ok: false},
	}
	for _, tt := range tests {
		got, ok := parseRetryAfter(tt.value)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("parseRetryAfter(%q) = %s, %v; want %s, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}
