// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики запусков, узлов и журнала событий
//
// Сервер и CLI используют единый формат логирования,
// сервер экспортирует метрики на /metrics endpoint.
package telemetry
