package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the number of retries after a 429 response.
	MaxRetries = 3

	// MaxBodySize caps a response body.
	MaxBodySize = 16 << 20

	userAgent = "knock-crawling/1.0"
)

// Client performs throttled GET requests.
// Every error it returns wraps domain.ErrSourceUnavailable.
type Client struct {
	http    *http.Client
	limiter *Limiter
}

// NewClient creates a client. A nil httpClient gets DefaultTimeout.
func NewClient(limiter *Limiter, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if limiter == nil {
		limiter = New(DefaultConfig)
	}
	return &Client{http: httpClient, limiter: limiter}
}

// Get fetches base with query parameters and returns the body.
// A 429 response sets the shared backoff and is retried up to MaxRetries.
func (c *Client) Get(ctx context.Context, base string, query url.Values) ([]byte, error) {
	target, err := buildURL(base, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrSourceUnavailable, err)
		}

		body, retryAfter, err := c.do(ctx, target)
		if err == nil {
			return body, nil
		}
		if retryAfter < 0 || attempt >= MaxRetries {
			if retryAfter >= 0 {
				err = &RateLimitError{RetryAt: time.Now().Add(retryAfter), URL: redact(target)}
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		c.limiter.Backoff(retryAfter)
	}
}

// do performs one request. retryAfter is negative unless the response was a 429.
func (c *Client) do(ctx context.Context, target string) (body []byte, retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, -1, fmt.Errorf("build request: %w", redactURLError(err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, -1, redactURLError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &APIError{
			StatusCode: resp.StatusCode,
			Message:    "too many requests",
			URL:        redact(target),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, -1, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			URL:        redact(target),
		}
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, -1, fmt.Errorf("read %s: %w", redact(target), err)
	}
	return body, -1, nil
}

func buildURL(base string, query url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// parseRetryAfter reads a delay in seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultBackoff
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds < 0 {
			return DefaultBackoff
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return DefaultBackoff
}

// redactURLError replaces the URL that *url.Error prints, so transport
// failures do not carry the API key into reports and notifications.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redact(urlErr.URL)
	}
	return err
}

// redact hides API keys in URLs that end up in logs and errors.
func redact(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	changed := false
	for _, k := range []string{"key", "service"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
