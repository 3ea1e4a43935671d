package mq

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/FlowMaster/internal/executor"
	"github.com/shaiso/FlowMaster/internal/telemetry"
)

const defaultPublishTimeout = 5 * time.Second

// EventSink — приёмник событий executor, публикующий их в RabbitMQ.
//
// Ошибки публикации не влияют на run: они логируются и попадают в метрики.
type EventSink struct {
	publisher *Publisher
	timeout   time.Duration
	logger    *slog.Logger
}

// NewEventSink создаёт EventSink.
func NewEventSink(publisher *Publisher, logger *slog.Logger) *EventSink {
	return &EventSink{
		publisher: publisher,
		timeout:   defaultPublishTimeout,
		logger:    logger,
	}
}

// HandleEvent реализует executor.EventHandler.
func (s *EventSink) HandleEvent(event executor.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.publisher.PublishEvent(ctx, event)
	telemetry.EventPublished(string(event.Kind), err)

	if err != nil {
		s.logger.Warn("failed to publish execution event",
			"run_id", event.RunID,
			"kind", event.Kind,
			"error", err,
		)
	}
}
