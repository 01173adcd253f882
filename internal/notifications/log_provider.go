package notifications

import (
	"context"

	"go.uber.org/zap"

	"github.com/kandev/archiver/internal/common/logger"
)

// LogProvider writes notifications to the structured log.
// It stands in when no webhook is configured.
type LogProvider struct {
	logger *logger.Logger
}

func NewLogProvider(log *logger.Logger) *LogProvider {
	return &LogProvider{logger: log}
}

func (p *LogProvider) Name() string {
	return "log"
}

func (p *LogProvider) Available() bool {
	return p.logger != nil
}

func (p *LogProvider) Send(_ context.Context, message Message) error {
	p.logger.Info("notification",
		zap.String("channel", message.Channel),
		zap.String("text", message.Text),
	)
	return nil
}
