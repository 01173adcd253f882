// Package notifications delivers the run summary to the team channel.
package notifications

import "context"

// Message is a plain-text notification.
type Message struct {
	Channel string
	Text    string
}

// Provider is a notification delivery mechanism.
type Provider interface {
	Name() string
	Available() bool
	Send(ctx context.Context, message Message) error
}
