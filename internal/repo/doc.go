// Package repo — хранение workflows и истории запусков в PostgreSQL (pgx).
//
// Включает:
//   - db.go            — пул соединений по DB_URL
//   - schema.go        — DDL таблиц workflows, runs, run_events
//   - workflow_repo.go — сохранённые документы графа
//   - run_repo.go      — запуски и их журналы событий
//   - errors.go        — ErrNotFound, ErrAlreadyExists
package repo
