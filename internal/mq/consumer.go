package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Flowcraft/internal/domain"
)

// errDeliveriesClosed — брокер закрыл канал доставки.
var errDeliveriesClosed = errors.New("deliveries channel closed")

// Handler — функция обработки сообщения.
// Ошибка — сообщение возвращается в очередь один раз, повторная ошибка отправляет его в DLQ.
type Handler func(ctx context.Context, msg *Delivery) error

// Delivery — доставленное сообщение.
type Delivery struct {
	// Message — распарсенный конверт.
	Message Message

	// Redelivered — сообщение доставляется повторно.
	Redelivered bool
}

// Event извлекает запись журнала из сообщения event.appended.
func (d *Delivery) Event() (domain.Event, error) {
	if d.Message.Type != MessageTypeEvent {
		return domain.Event{}, fmt.Errorf("unexpected message type %q", d.Message.Type)
	}
	return ParsePayload[domain.Event](&d.Message)
}

// RunRecord извлекает итог запуска из сообщения run.finished.
func (d *Delivery) RunRecord() (domain.RunRecord, error) {
	if d.Message.Type != MessageTypeRunFinished {
		return domain.RunRecord{}, fmt.Errorf("unexpected message type %q", d.Message.Type)
	}
	return ParsePayload[domain.RunRecord](&d.Message)
}

// ParsePayload декодирует payload конверта в T.
// После json.Unmarshal конверта payload — map[string]any, поэтому он перекодируется.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T

	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return result, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("unmarshal payload: %w", err)
	}
	return result, nil
}

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	Queue   Queue
	Handler Handler

	// Prefetch — сообщений без ack одновременно. По умолчанию 1.
	Prefetch int
}

// Consumer читает очередь и передаёт сообщения обработчику по одному.
// Переживает переподключения Connection.
type Consumer struct {
	conn   *Connection
	logger *slog.Logger
	cfg    ConsumerConfig
}

// NewConsumer создаёт Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	return &Consumer{
		conn:   conn,
		logger: logger.With("queue", string(cfg.Queue)),
		cfg:    cfg,
	}
}

// Start читает очередь до отмены ctx или закрытия соединения.
// Возвращает ctx.Err() при отмене.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		// Канал переподключения берём до подписки, чтобы не пропустить его закрытие
		reconnected := c.conn.Reconnected()

		err := c.consumeOnce(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("consumer interrupted, waiting for reconnect", "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.Done():
			return ErrNoChannel
		case <-reconnected:
		}
	}
}

// consumeOnce подписывается на очередь текущего канала и обрабатывает
// сообщения, пока канал жив.
func (c *Consumer) consumeOnce(ctx context.Context) error {
	var deliveries <-chan amqp.Delivery

	err := c.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}

		var err error
		deliveries, err = ch.Consume(
			string(c.cfg.Queue), // queue
			"",                  // consumer tag (auto-generated)
			false,               // auto-ack
			false,               // exclusive
			false,               // no-local
			false,               // no-wait
			nil,                 // args
		)
		if err != nil {
			return fmt.Errorf("consume: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-deliveries:
			if !ok {
				return errDeliveriesClosed
			}
			c.handle(ctx, raw)
		}
	}
}

// handle разбирает конверт, вызывает обработчик и подтверждает сообщение.
func (c *Consumer) handle(ctx context.Context, raw amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		// Нечитаемое сообщение повтор не исправит
		c.logger.Error("malformed message, dead-lettering", "error", err)
		raw.Nack(false, false)
		return
	}

	logger := c.logger.With("message_id", msg.ID, "type", msg.Type)
	logger.Debug("received message")

	err := c.cfg.Handler(ctx, &Delivery{Message: msg, Redelivered: raw.Redelivered})
	if err != nil {
		logger.Error("handler failed", "error", err, "redelivered", raw.Redelivered)
		raw.Nack(false, !raw.Redelivered)
		return
	}

	raw.Ack(false)
}
