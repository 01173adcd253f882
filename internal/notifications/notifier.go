package notifications

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kandev/archiver/internal/common/config"
	"github.com/kandev/archiver/internal/common/logger"
)

// ErrNoProvider is reported when no provider is available to deliver a message.
var ErrNoProvider = errors.New("no notification provider available")

// Result describes the outcome of a single Notify call.
type Result struct {
	Provider  string
	Delivered bool
	Err       error
}

// Notifier sends messages through one provider. Delivery failures are
// logged and reported in the Result, never returned as errors.
type Notifier struct {
	provider Provider
	channel  string
	logger   *logger.Logger
}

// NewNotifier creates a notifier around the given provider.
func NewNotifier(provider Provider, channel string, log *logger.Logger) *Notifier {
	return &Notifier{
		provider: provider,
		channel:  channel,
		logger:   log.WithFields(zap.String("component", "notifier")),
	}
}

// Provide picks the Slack webhook when configured and the log provider otherwise.
func Provide(cfg config.SlackConfig, log *logger.Logger) *Notifier {
	var provider Provider = NewLogProvider(log)
	if cfg.Enabled() {
		provider = NewSlackWebhookProvider(cfg)
	}
	return NewNotifier(provider, cfg.Channel, log)
}

// ProviderName returns the name of the underlying provider.
func (n *Notifier) ProviderName() string {
	if n.provider == nil {
		return ""
	}
	return n.provider.Name()
}

// Notify delivers text to the configured channel.
func (n *Notifier) Notify(ctx context.Context, text string) Result {
	if n.provider == nil || !n.provider.Available() {
		n.logger.Error("failed to send notification", zap.Error(ErrNoProvider))
		return Result{Provider: n.ProviderName(), Err: ErrNoProvider}
	}

	res := Result{Provider: n.provider.Name()}
	if err := n.provider.Send(ctx, Message{Channel: n.channel, Text: text}); err != nil {
		n.logger.Error("failed to send notification",
			zap.String("provider", res.Provider),
			zap.Error(err),
		)
		res.Err = err
		return res
	}

	res.Delivered = true
	n.logger.Debug("notification sent", zap.String("provider", res.Provider))
	return res
}
