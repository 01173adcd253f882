package events

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kandev/archiver/internal/common/config"
	"github.com/kandev/archiver/internal/common/logger"
	"github.com/kandev/archiver/internal/events/bus"
)

// Provide builds the configured event bus: NATS when a URL is set, in-memory
// otherwise. An unreachable NATS server falls back to the in-memory bus so
// events never block an archive run. The returned cleanup closes the bus.
func Provide(cfg config.NATSConfig, log *logger.Logger) (bus.EventBus, func()) {
	if strings.TrimSpace(cfg.URL) != "" {
		natsBus, err := bus.NewNATSEventBus(cfg, log)
		if err == nil {
			return natsBus, natsBus.Close
		}
		log.Warn("NATS unavailable, using in-memory event bus",
			zap.String("url", cfg.URL),
			zap.Error(err),
		)
	}

	memBus := bus.NewMemoryEventBus(log)
	return memBus, memBus.Close
}
