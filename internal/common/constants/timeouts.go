// Package constants provides archiver-wide timeouts.
package constants

import "time"

// Timeouts for outbound calls and shutdown.
const (
	// TrackerRequestTimeout bounds one tracker HTTP call when no timeout is configured.
	TrackerRequestTimeout = 30 * time.Second

	// WebhookTimeout bounds one webhook delivery when no timeout is configured.
	WebhookTimeout = 10 * time.Second

	// EventFlushTimeout bounds the flush and drain of pending event publishes on exit.
	EventFlushTimeout = 5 * time.Second

	// TraceFlushTimeout is how long the process waits for pending spans on exit.
	TraceFlushTimeout = 5 * time.Second
)
