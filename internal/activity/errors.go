package activity

import (
	"errors"
	"fmt"
)

// Ошибки активностей.
var (
	// ErrActivityNotFound — тип активности не найден в реестре.
	ErrActivityNotFound = errors.New("activity type not found")

	// ErrInvalidConfig — невалидная конфигурация узла.
	ErrInvalidConfig = errors.New("invalid activity config")

	// ErrCancelled — вычисление отменено.
	ErrCancelled = errors.New("activity cancelled")

	// ErrRemoteCall — ошибка вызова внешнего сервиса активностей.
	ErrRemoteCall = errors.New("activity service call failed")
)

// OperationError — ошибка вычисления активности для конкретного узла.
type OperationError struct {
	Activity string // тип активности
	NodeID   string // узел
	Err      error  // исходная ошибка
}

// Error реализует интерфейс error.
// Возвращает только сообщение исходной ошибки: оно попадает в Node.Error.
func (e *OperationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Activity)
	}
	return e.Err.Error()
}

// Unwrap возвращает исходную ошибку.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError оборачивает ошибку активности.
// Уже обёрнутая ошибка возвращается как есть.
func NewOperationError(activityType, nodeID string, err error) *OperationError {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}
	return &OperationError{
		Activity: activityType,
		NodeID:   nodeID,
		Err:      err,
	}
}
