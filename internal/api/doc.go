// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (граф, движок, журнал, репозитории, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, metrics, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - graph_handler.go    — обработчики для /graph
//   - node_handler.go     — обработчики для /nodes и /connections
//   - lineage_handler.go  — каталог предков и связи полей
//   - run_handler.go      — запуск, журнал событий, SSE-поток
//   - activity_handler.go — типы активностей
//   - workflow_handler.go — сохранённые workflows и история запусков
//
// API — тонкая обёртка над graph.Store, engine.Engine и lineage.Resolver:
// один граф в памяти на процесс.
package api
