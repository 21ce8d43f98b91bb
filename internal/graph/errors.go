package graph

import "errors"

// Ошибки загрузки документа.
var (
	// ErrInvalidDocument — документ нарушает инварианты графа.
	ErrInvalidDocument = errors.New("invalid graph document")

	// ErrCycleDetected — рёбра документа образуют цикл.
	ErrCycleDetected = errors.New("graph: cycle detected, graph is not acyclic")

	// ErrNodeNotFound — узел не найден.
	ErrNodeNotFound = errors.New("graph: node not found")
)

// ValidationError — ошибка валидации документа с контекстом.
type ValidationError struct {
	ID      string // ID узла или ребра, где произошла ошибка
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.ID != "" {
		return e.ID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(id, message string, err error) *ValidationError {
	return &ValidationError{
		ID:      id,
		Message: message,
		Err:     err,
	}
}
