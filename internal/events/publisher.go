package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kandev/archiver/internal/common/logger"
	"github.com/kandev/archiver/internal/events/bus"
)

const eventSource = "archiver"

// Publisher emits archiver lifecycle events. Publish failures are logged and dropped.
type Publisher struct {
	bus    bus.Publisher
	prefix string
	logger *logger.Logger
}

// NewPublisher creates a publisher writing to eventBus under subject prefix.
func NewPublisher(eventBus bus.Publisher, prefix string, log *logger.Logger) *Publisher {
	return &Publisher{bus: eventBus, prefix: prefix, logger: log}
}

// ProjectArchived announces one archived project.
func (p *Publisher) ProjectArchived(ctx context.Context, runID, projectKey string, lastUpdated time.Time) {
	p.publish(ctx, ProjectArchived, map[string]interface{}{
		"run_id":       runID,
		"project_key":  projectKey,
		"last_updated": lastUpdated.UTC().Format(time.RFC3339),
	})
}

// RunCompleted announces a successful run.
func (p *Publisher) RunCompleted(ctx context.Context, runID string, cutoff time.Time, checked int, archived []string) {
	p.publish(ctx, RunCompleted, map[string]interface{}{
		"run_id":   runID,
		"cutoff":   cutoff.UTC().Format(time.RFC3339),
		"checked":  checked,
		"archived": archived,
	})
}

func (p *Publisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p == nil || p.bus == nil {
		return
	}
	subject := Subject(p.prefix, eventType)
	if err := p.bus.Publish(ctx, subject, bus.NewEvent(eventType, eventSource, data)); err != nil {
		p.logger.Warn("failed to publish event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
