// Package discord posts run summaries to a Discord channel webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
)

const userAgent = "knock-crawling/1.0"

// MaxContentLength is Discord's limit on a message body.
const MaxContentLength = 2000

// defaultTimeout applies when the configured timeout is not positive.
const defaultTimeout = 10 * time.Second

// Ensure implementations satisfy the port.
var (
	_ driven.Notifier = (*Notifier)(nil)
	_ driven.Notifier = Noop{}
)

// Notifier sends messages to a webhook URL.
type Notifier struct {
	webhook string
	client  *http.Client
}

// New returns a webhook notifier, or Noop when no webhook is configured.
func New(webhook string, timeout time.Duration) driven.Notifier {
	webhook = strings.TrimSpace(webhook)
	if webhook == "" {
		return Noop{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		webhook: webhook,
		client:  &http.Client{Timeout: timeout},
	}
}

type message struct {
	Content string `json:"content"`
}

// Notify posts text as the message content. Blank text is not sent.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	body, err := json.Marshal(message{Content: truncate(text, MaxContentLength)})
	if err != nil {
		return fmt.Errorf("encoding discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", hideWebhook(err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord message: %w", hideWebhook(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// hideWebhook strips the webhook path, which holds the token, from a
// *url.Error.
func hideWebhook(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	if u, perr := url.Parse(urlErr.URL); perr == nil && u.Host != "" {
		urlErr.URL = u.Scheme + "://" + u.Host + "/..."
	} else {
		urlErr.URL = "(webhook)"
	}
	return err
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// Noop discards every message.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(context.Context, string) error { return nil }
