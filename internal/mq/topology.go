package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges.
const (
	ExchangeEvents Exchange = "flowcraft.events"
	ExchangeDLQ    Exchange = "flowcraft.dlq"
)

// Queues.
const (
	QueueEventsConsole Queue = "events.console"
	QueueRunsFinished  Queue = "runs.finished"
	QueueDLQRuns       Queue = "dlq.runs"
)

// Routing keys. События узлов публикуются с ключом event.<status>.
const (
	RoutingKeyEventPrefix = "event."
	RoutingKeyAllEvents   RoutingKey = "event.*"
	RoutingKeyRunFinished RoutingKey = "run.finished"
	RoutingKeyDLQRuns     RoutingKey = "runs"
)

// EventRoutingKey возвращает ключ маршрутизации события со статусом status.
func EventRoutingKey(status string) RoutingKey {
	return RoutingKey(RoutingKeyEventPrefix + status)
}

// SetupTopology объявляет обменники, очереди и привязки.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeEvents, amqp.ExchangeTopic},
		{ExchangeDLQ, amqp.ExchangeDirect},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}
	return nil
}

func declareQueues(ch *amqp.Channel) error {
	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// events.console — живой поток событий, старые записи не нужны
		{QueueEventsConsole, amqp.Table{"x-max-length": int32(10000)}},

		// runs.finished — архив запусков, после неудачных попыток уходит в DLQ
		{QueueRunsFinished, amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQRuns),
		}},

		{QueueDLQRuns, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}
	return nil
}

func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueEventsConsole, RoutingKeyAllEvents, ExchangeEvents},
		{QueueRunsFinished, RoutingKeyRunFinished, ExchangeEvents},
		{QueueDLQRuns, RoutingKeyDLQRuns, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}
	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Flowcraft RabbitMQ Topology:

    flowcraft.events (topic)
    ├── events.console [routing: event.*]
    │       Consumer: flowcraft events tail
    └── runs.finished [routing: run.finished]
            Consumer: flowcraft-api (run archive)
            DLQ: dlq.runs

    flowcraft.dlq (direct)
    └── dlq.runs [routing: runs]
            Manual processing
  `
}
