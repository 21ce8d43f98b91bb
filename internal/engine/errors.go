package engine

import "errors"

// Ошибки запуска.
var (
	// ErrRunInProgress — запуск уже идёт, повторный Run отклонён.
	ErrRunInProgress = errors.New("workflow run already in progress")

	// ErrNoEntryNodes — в графе нет активного узла-точки входа.
	ErrNoEntryNodes = errors.New("workflow must have at least one active start node")
)
