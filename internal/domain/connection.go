package domain

// Connection — направленное ребро графа: выход SourceID передаётся на вход TargetID.
type Connection struct {
	// ID — уникальный идентификатор ребра.
	ID string `json:"id"`

	// SourceID — узел-источник.
	SourceID string `json:"sourceId"`

	// TargetID — узел-приёмник.
	TargetID string `json:"targetId"`

	// SourceHandle, TargetHandle — метки портов. Движку не нужны,
	// хранятся для слоя представления.
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Touches возвращает true, если ребро инцидентно узлу.
func (c *Connection) Touches(nodeID string) bool {
	return c.SourceID == nodeID || c.TargetID == nodeID
}

// Document — сериализуемая форма графа, единица сохранения.
//
// Статусы и outputs узлов сохраняются как есть: загрузка документа
// их не сбрасывает (сброс делает только запуск или Clear).
type Document struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}
