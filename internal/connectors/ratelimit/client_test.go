package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

func fastClient() *Client {
	return NewClient(New(Config{RequestsPerSecond: 1000, Burst: 100}), nil)
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("curPage"))
		assert.Equal(t, "fixed", r.URL.Query().Get("base"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := fastClient().Get(context.Background(), server.URL+"?base=fixed", url.Values{"curPage": {"2"}})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := fastClient().Get(context.Background(), server.URL, url.Values{"key": {"secret"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "invalid key")
	assert.NotContains(t, err.Error(), "secret", "API key is redacted")
}

func TestClient_RetriesAfter429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := fastClient().Get(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := fastClient().Get(context.Background(), server.URL, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, int32(MaxRetries+1), calls.Load())
}

func TestClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := server.URL
	server.Close()

	_, err := fastClient().Get(context.Background(), target, url.Values{
		"key":     {"SECRET-API-KEY"},
		"service": {"SECRET-SERVICE"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.NotContains(t, err.Error(), "SECRET-API-KEY")
	assert.NotContains(t, err.Error(), "SECRET-SERVICE")
	assert.Contains(t, err.Error(), "key=REDACTED")

	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastClient().Get(ctx, "http://127.0.0.1:1", nil)

	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"missing", "", DefaultBackoff},
		{"seconds", "7", 7 * time.Second},
		{"zero", "0", 0},
		{"negative", "-3", DefaultBackoff},
		{"past date", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
		{"garbage", "soon", DefaultBackoff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRetryAfter(tt.value))
		})
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "http://api.example/list?curPage=1&key=REDACTED", redact("http://api.example/list?key=abc&curPage=1"))
	assert.Equal(t, "http://api.example/list", redact("http://api.example/list"))
}
