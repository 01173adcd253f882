package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kandev/archiver/internal/common/config"
	"github.com/kandev/archiver/internal/common/logger"
	"github.com/kandev/archiver/internal/events/bus"
)

func TestProvide_DefaultsToMemoryBus(t *testing.T) {
	log := logger.Default()

	eventBus, cleanup := Provide(config.NATSConfig{}, log)
	_, ok := eventBus.(*bus.MemoryEventBus)
	assert.True(t, ok)
	assert.True(t, eventBus.IsConnected())

	cleanup()
	assert.False(t, eventBus.IsConnected())
}

func TestProvide_UnreachableNATSFallsBackToMemory(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := logger.NewFromZap(zap.New(core))

	eventBus, cleanup := Provide(config.NATSConfig{URL: "nats://127.0.0.1:1", ClientID: "archiver"}, log)
	defer cleanup()

	_, ok := eventBus.(*bus.MemoryEventBus)
	assert.True(t, ok)
	assert.True(t, eventBus.IsConnected())
	require.Len(t, logs.FilterMessage("NATS unavailable, using in-memory event bus").All(), 1)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "archiver.project.archived", Subject("archiver", ProjectArchived))
	assert.Equal(t, "run.completed", Subject("", RunCompleted))
}

func TestPublisher(t *testing.T) {
	log := logger.Default()
	memBus := bus.NewMemoryEventBus(log)
	defer memBus.Close()

	var mu sync.Mutex
	received := map[string]*bus.Event{}
	_, err := memBus.Subscribe("ops.>", func(_ context.Context, e *bus.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received[e.Type] = e
		return nil
	})
	require.NoError(t, err)

	p := NewPublisher(memBus, "ops", log)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.ProjectArchived(context.Background(), "run-1", "OLD", cutoff.AddDate(0, -2, 0))
	p.RunCompleted(context.Background(), "run-1", cutoff, 3, []string{"OLD"})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	archived := received[ProjectArchived]
	require.NotNil(t, archived)
	assert.Equal(t, "OLD", archived.Data["project_key"])
	assert.Equal(t, "archiver", archived.Source)
	assert.NotEmpty(t, archived.ID)

	completed := received[RunCompleted]
	require.NotNil(t, completed)
	assert.Equal(t, "2024-01-01T00:00:00Z", completed.Data["cutoff"])
	assert.Equal(t, 3, completed.Data["checked"])
}

func TestPublisher_ClosedBusIsIgnored(t *testing.T) {
	log := logger.Default()
	memBus := bus.NewMemoryEventBus(log)
	memBus.Close()

	p := NewPublisher(memBus, "archiver", log)
	assert.NotPanics(t, func() {
		p.RunCompleted(context.Background(), "run-1", time.Now(), 0, nil)
	})

	var nilPublisher *Publisher
	assert.NotPanics(t, func() {
		nilPublisher.ProjectArchived(context.Background(), "run-1", "A", time.Now())
	})
}
