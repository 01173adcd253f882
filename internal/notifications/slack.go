package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kandev/archiver/internal/common/config"
	"github.com/kandev/archiver/internal/common/constants"
)

const defaultSlackWebhookBase = "https://hooks.slack.com/services/"

type slackPayload struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// SlackWebhookProvider posts messages to a Slack incoming webhook.
type SlackWebhookProvider struct {
	webhookURL string
	channel    string
	HTTP       *http.Client
}

// NewSlackWebhookProvider creates a provider for the configured webhook token.
func NewSlackWebhookProvider(cfg config.SlackConfig) *SlackWebhookProvider {
	base := cfg.WebhookBaseURL
	if base == "" {
		base = defaultSlackWebhookBase
	}
	webhookURL := ""
	if token := strings.Trim(cfg.WebhookToken, "/"); token != "" {
		webhookURL = strings.TrimRight(base, "/") + "/" + token
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = constants.WebhookTimeout
	}
	return &SlackWebhookProvider{
		webhookURL: webhookURL,
		channel:    cfg.Channel,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

func (p *SlackWebhookProvider) Name() string {
	return "slack"
}

func (p *SlackWebhookProvider) Available() bool {
	return p.webhookURL != ""
}

func (p *SlackWebhookProvider) Send(ctx context.Context, message Message) error {
	if !p.Available() {
		return fmt.Errorf("slack webhook not configured")
	}
	channel := message.Channel
	if channel == "" {
		channel = p.channel
	}
	b, err := json.Marshal(slackPayload{Channel: channel, Text: message.Text})
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := p.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	resp, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
	if res.StatusCode >= 300 {
		return fmt.Errorf("slack status %d: %s", res.StatusCode, strings.TrimSpace(string(resp)))
	}
	return nil
}
