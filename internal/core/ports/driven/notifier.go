package driven

import "context"

// Notifier delivers short text messages to an external sink.
// Callers treat delivery as fire-and-forget and only log failures.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
