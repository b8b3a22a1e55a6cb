package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultMaxBytes int64 = 5 << 20

// Fetcher retrieves an inventory document.
type Fetcher interface {
	Fetch(ctx context.Context, previousETag string) (FetchResult, error)
}

// FetchResult contains the fetched bytes and cache metadata.
type FetchResult struct {
	Body         []byte
	ETag         string
	LastModified string
	NotModified  bool
}

// FetchError reports an unexpected HTTP status after retries.
type FetchError struct {
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// IsRetryable reports whether a later poll may succeed.
func (e *FetchError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// HTTPFetcher retrieves an inventory over HTTP with retries on transient failures.
type HTTPFetcher struct {
	url      string
	client   *retryablehttp.Client
	maxBytes int64
}

// HTTPOption customizes an HTTPFetcher.
type HTTPOption func(*retryablehttp.Client)

// WithRetry overrides the retry budget and wait bounds.
func WithRetry(maxRetries int, waitMin, waitMax time.Duration) HTTPOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = maxRetries
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

// NewHTTPFetcher constructs an HTTPFetcher for the given URL.
func NewHTTPFetcher(url string, timeout time.Duration, maxBytes int64, opts ...HTTPOption) (*HTTPFetcher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("inventory url must not be empty")
	}
	if timeout <= 0 {
		return nil, errors.New("timeout must be greater than zero")
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	client.HTTPClient = &http.Client{Timeout: timeout}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	for _, opt := range opts {
		opt(client)
	}

	return &HTTPFetcher{url: url, client: client, maxBytes: maxBytes}, nil
}

// Fetch downloads the inventory, sending If-None-Match when an ETag is known.
func (f *HTTPFetcher) Fetch(ctx context.Context, previousETag string) (FetchResult, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, */*;q=0.1")
	if previousETag != "" {
		req.Header.Set("If-None-Match", previousETag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch inventory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return FetchResult{
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			NotModified:  true,
		}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, &FetchError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := readWithLimit(resp.Body, f.maxBytes)
	if err != nil {
		return FetchResult{}, err
	}
	if len(body) == 0 {
		return FetchResult{}, errors.New("inventory body is empty")
	}

	return FetchResult{
		Body:         body,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// FileFetcher reads an inventory from the local filesystem. The ETag is a
// content fingerprint, so an unchanged file reports NotModified.
type FileFetcher struct {
	path     string
	maxBytes int64
}

// NewFileFetcher constructs a FileFetcher for path.
func NewFileFetcher(path string, maxBytes int64) (*FileFetcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("inventory path must not be empty")
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &FileFetcher{path: path, maxBytes: maxBytes}, nil
}

// Fetch reads the file.
func (f *FileFetcher) Fetch(ctx context.Context, previousETag string) (FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return FetchResult{}, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return FetchResult{}, fmt.Errorf("open inventory: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return FetchResult{}, fmt.Errorf("stat inventory: %w", err)
	}
	body, err := readWithLimit(file, f.maxBytes)
	if err != nil {
		return FetchResult{}, err
	}
	sum, err := Fingerprint(body)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{
		ETag:         `"` + sum[:16] + `"`,
		LastModified: info.ModTime().UTC().Format(http.TimeFormat),
	}
	if result.ETag == previousETag {
		result.NotModified = true
		return result, nil
	}
	result.Body = body
	return result, nil
}

func readWithLimit(r io.Reader, maxBytes int64) ([]byte, error) {
	limited := io.LimitReader(r, maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("inventory body exceeds %d bytes", maxBytes)
	}
	return body, nil
}
