// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий журнала и итогов запусков
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - event.appended — запись журнала событий
//   - run.finished   — итог запуска вместе с журналом
//
// Exchanges:
//   - flowcraft.events — события запусков (topic)
//   - flowcraft.dlq    — dead letter queue
package mq
