package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Flowcraft/internal/domain"
)

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeEvent       MessageType = "event.appended"
	MessageTypeRunFinished MessageType = "run.finished"
)

// publishTimeout — предел ожидания публикации из наблюдателя журнала.
const publishTimeout = 5 * time.Second

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

// Message — конверт сообщения.
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

// newMessage создаёт конверт с новым ID.
func newMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Publish публикует сообщение в exchange с routing key.
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
			false,              // mandatory
			false,              // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
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

// PublishEvent публикует запись журнала событий.
// Потребитель: flowcraft events tail.
func (p *Publisher) PublishEvent(ctx context.Context, event domain.Event) error {
	msg := newMessage(MessageTypeEvent, event)
	return p.Publish(ctx, ExchangeEvents, EventRoutingKey(event.Status.String()), msg)
}

// PublishRunFinished публикует итог запуска с журналом событий.
// Потребитель: flowcraft-api, архив запусков.
func (p *Publisher) PublishRunFinished(ctx context.Context, run domain.RunRecord) error {
	msg := newMessage(MessageTypeRunFinished, run)
	return p.Publish(ctx, ExchangeEvents, RoutingKeyRunFinished, msg)
}

// EventPublisher — наблюдатель журнала событий, публикующий каждую запись.
//
// Ошибки публикации логируются и не прерывают запуск.
type EventPublisher struct {
	publisher *Publisher
	logger    *slog.Logger
}

// NewEventPublisher создаёт EventPublisher.
func NewEventPublisher(publisher *Publisher, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{publisher: publisher, logger: logger}
}

// OnEvent публикует событие с таймаутом publishTimeout.
func (e *EventPublisher) OnEvent(event domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := e.publisher.PublishEvent(ctx, event); err != nil {
		e.logger.Warn("failed to publish event",
			"event_id", event.ID,
			"node_id", event.NodeID,
			"error", err,
		)
	}
}
