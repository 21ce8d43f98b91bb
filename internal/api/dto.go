package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Flowcraft/internal/activity"
	"github.com/shaiso/Flowcraft/internal/domain"
)

// Node DTOs

// CreateNodeRequest — запрос на добавление узла.
type CreateNodeRequest struct {
	ActivityType string          `json:"activityType"`
	Position     domain.Position `json:"position"`
	Config       map[string]any  `json:"config,omitempty"`
	Enabled      *bool           `json:"enabled,omitempty"`
}

// UpdateNodeRequest — частичное обновление узла.
// Config сливается с текущей конфигурацией.
type UpdateNodeRequest struct {
	Config   map[string]any   `json:"config,omitempty"`
	Enabled  *bool            `json:"enabled,omitempty"`
	Position *domain.Position `json:"position,omitempty"`
}

// Connection DTOs

// CreateConnectionRequest — запрос на создание ребра.
type CreateConnectionRequest struct {
	SourceID     string `json:"sourceId"`
	TargetID     string `json:"targetId"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Lineage DTOs

// CreateMappingRequest — перенос значения поля предка в поле узла.
type CreateMappingRequest struct {
	TargetField string `json:"targetField"`
	AncestorID  string `json:"ancestorId"`
	Field       string `json:"field"`

	// Reference — альтернатива паре ancestorId/field: "ancestorName.fieldName".
	Reference string `json:"reference,omitempty"`
}

// Execution DTOs

// RunStateResponse — состояние выполнения: идёт ли запуск и итог последнего.
type RunStateResponse struct {
	Running bool              `json:"running"`
	LastRun *domain.RunRecord `json:"last_run,omitempty"`
}

// Activity DTOs

// ActivityResponse — описание типа активности.
type ActivityResponse struct {
	Type   string           `json:"type"`
	Label  string           `json:"label"`
	Entry  bool             `json:"entry"`
	Fields []activity.Field `json:"fields"`
}

// Workflow DTOs

// SaveWorkflowRequest — сохранение текущего графа под именем.
type SaveWorkflowRequest struct {
	Name string `json:"name"`
}

// WorkflowResponse — краткое описание workflow без документа.
type WorkflowResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkflowFromDomain конвертирует domain.Workflow в WorkflowResponse.
func WorkflowFromDomain(wf domain.Workflow) WorkflowResponse {
	return WorkflowResponse{
		ID:          wf.ID,
		Name:        wf.Name,
		Nodes:       len(wf.Document.Nodes),
		Connections: len(wf.Document.Connections),
		CreatedAt:   wf.CreatedAt,
		UpdatedAt:   wf.UpdatedAt,
	}
}
