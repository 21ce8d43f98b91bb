package domain

import "time"

// SystemNodeID — идентификатор узла для событий уровня графа.
const SystemNodeID = "system"

// SystemNodeName — имя узла для событий уровня графа.
const SystemNodeName = "Workflow"

// Event — запись журнала выполнения.
type Event struct {
	// ID — уникальный идентификатор записи.
	ID string `json:"id"`

	// NodeID — узел, к которому относится событие, или SystemNodeID.
	NodeID string `json:"nodeId"`

	// NodeName — имя узла на момент записи.
	NodeName string `json:"nodeName"`

	// Timestamp — время записи.
	Timestamp time.Time `json:"timestamp"`

	// Status — статус события.
	Status EventStatus `json:"status"`

	// Message — текст события.
	Message string `json:"message"`

	// Details — произвольные данные (например, output узла).
	Details any `json:"details,omitempty"`
}

// IsSystem возвращает true для событий уровня графа.
func (e *Event) IsSystem() bool {
	return e.NodeID == SystemNodeID
}
