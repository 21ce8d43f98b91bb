package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord — итог одного запуска графа.
//
// Создаётся движком в начале Run и закрывается по его завершению.
// Events — копия журнала событий запуска.
type RunRecord struct {
	// ID — уникальный идентификатор запуска.
	ID uuid.UUID `json:"id"`

	// WorkflowID — workflow, из которого загружен граф (если известен).
	WorkflowID *uuid.UUID `json:"workflow_id,omitempty"`

	// Status — статус запуска.
	Status RunStatus `json:"status"`

	// StartedAt — время начала.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения. Nil, пока запуск идёт.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если запуск завершился с FAILED.
	Error string `json:"error,omitempty"`

	// Events — журнал событий запуска.
	Events []Event `json:"events,omitempty"`
}

// NewRunRecord создаёт запись о запуске в статусе RUNNING.
func NewRunRecord() *RunRecord {
	return &RunRecord{
		ID:        uuid.New(),
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если запуск ещё не завершён.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// IsFinished возвращает true, если запуск завершён.
func (r *RunRecord) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkSucceeded переводит запуск в статус SUCCEEDED.
func (r *RunRecord) MarkSucceeded() {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
}

// MarkFailed переводит запуск в статус FAILED с ошибкой.
func (r *RunRecord) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}
