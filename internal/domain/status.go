package domain

// NodeStatus — статус узла в рамках одного запуска графа.
//
// Жизненный цикл:
//
//	IDLE → RUNNING → SUCCESS
//	               ↘ ERROR
//
// В IDLE все узлы возвращаются в начале каждого запуска.
// Статус меняет только движок выполнения.
type NodeStatus string

const (
	// NodeStatusIdle — узел не выполнялся (или пропущен как неактивный).
	NodeStatusIdle NodeStatus = "idle"

	// NodeStatusRunning — узел выполняется.
	NodeStatusRunning NodeStatus = "running"

	// NodeStatusSuccess — узел выполнен успешно, Output заполнен.
	NodeStatusSuccess NodeStatus = "success"

	// NodeStatusError — выполнение узла завершилось ошибкой, Error заполнен.
	NodeStatusError NodeStatus = "error"
)

// IsTerminal возвращает true, если статус финальный для запуска.
func (s NodeStatus) IsTerminal() bool {
	switch s {
	case NodeStatusSuccess, NodeStatusError:
		return true
	default:
		return false
	}
}

// ParseNodeStatus парсит строку в NodeStatus.
// Неизвестные значения трактуются как IDLE.
func ParseNodeStatus(s string) NodeStatus {
	switch s {
	case "running":
		return NodeStatusRunning
	case "success":
		return NodeStatusSuccess
	case "error":
		return NodeStatusError
	default:
		return NodeStatusIdle
	}
}

// EventStatus — статус записи в журнале событий.
type EventStatus string

const (
	// EventStatusSkip — узел пропущен (неактивен), вход передан дальше без изменений.
	EventStatusSkip EventStatus = "skip"

	// EventStatusRunning — узел начал выполнение.
	EventStatusRunning EventStatus = "running"

	// EventStatusSuccess — узел выполнен успешно.
	EventStatusSuccess EventStatus = "success"

	// EventStatusError — ошибка узла или всего графа (для системных событий).
	EventStatusError EventStatus = "error"
)

// String возвращает строковое представление EventStatus.
func (s EventStatus) String() string {
	return string(s)
}

// RunStatus — итоговый статус запуска графа.
//
// Жизненный цикл:
//
//	RUNNING → SUCCEEDED
//	        ↘ FAILED
type RunStatus string

const (
	// RunStatusRunning — запуск в процессе.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все достижимые узлы выполнены без ошибок.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — ошибка конфигурации графа или ошибка активности.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный (запуск завершён).
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSucceeded || s == RunStatusFailed
}
