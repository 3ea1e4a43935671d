package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/FlowMaster/internal/executor"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeLog          MessageType = "execution.log"
	MessageTypeNodeStart    MessageType = "execution.node_start"
	MessageTypeNodeComplete MessageType = "execution.node_complete"
	MessageTypeResult       MessageType = "execution.result"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// EventMessageType возвращает тип сообщения для вида события.
func EventMessageType(kind executor.EventKind) MessageType {
	switch kind {
	case executor.EventLog:
		return MessageTypeLog
	case executor.EventNodeStart:
		return MessageTypeNodeStart
	case executor.EventNodeComplete:
		return MessageTypeNodeComplete
	case executor.EventResult:
		return MessageTypeResult
	default:
		return MessageType("execution." + string(kind))
	}
}

// NewEventMessage оборачивает событие выполнения в сообщение.
func NewEventMessage(event executor.Event) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      EventMessageType(event.Kind),
		Payload:   event,
		Timestamp: time.Now(),
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Type:         string(msg.Type),
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishEvent публикует событие выполнения в flowmaster.executions.
func (p *Publisher) PublishEvent(ctx context.Context, event executor.Event) error {
	msg := NewEventMessage(event)
	return p.Publish(ctx, ExchangeExecutions, EventRoutingKey(string(event.Kind)), msg)
}
