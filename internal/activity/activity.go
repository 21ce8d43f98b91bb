package activity

import (
	"context"
)

// FieldKind — тип поля конфигурации активности.
type FieldKind string

const (
	FieldKindString  FieldKind = "string"
	FieldKindText    FieldKind = "text"
	FieldKindNumber  FieldKind = "number"
	FieldKindBoolean FieldKind = "boolean"
	FieldKindObject  FieldKind = "object"
)

// Field — описание поля конфигурации активности.
type Field struct {
	Name        string    `json:"name"`
	Kind        FieldKind `json:"kind"`
	Description string    `json:"description"`
}

// Activity — тип активности.
//
// Каждая активность (createFile, delay, httpRequest, ...) реализует этот интерфейс
// и регистрируется в Registry. Движок и резолвер lineage не знают о конкретных типах.
type Activity interface {
	// Type возвращает тип активности (ключ в реестре).
	Type() string

	// Label возвращает человекочитаемое название.
	Label() string

	// Fields возвращает схему конфигурации.
	Fields() []Field

	// Compute вычисляет output узла по конфигурации и входу.
	// Должна проверять ctx.Done() при долгих операциях.
	Compute(ctx context.Context, req *Request) (any, error)
}

// EntryPoint — маркер активностей, с которых начинается обход графа.
type EntryPoint interface {
	EntryPoint()
}

// Request — входные данные для вычисления активности.
type Request struct {
	// NodeID — узел, для которого вычисляется активность.
	NodeID string

	// Config — конфигурация узла.
	Config map[string]any

	// Input — output родительского узла (nil для точек входа).
	Input any
}

// NewRequest создаёт новый Request.
func NewRequest(nodeID string, config map[string]any, input any) *Request {
	if config == nil {
		config = make(map[string]any)
	}
	return &Request{
		NodeID: nodeID,
		Config: config,
		Input:  input,
	}
}

// ConfigString извлекает строковое значение из конфига.
func ConfigString(config map[string]any, key string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ConfigInt извлекает числовое значение из конфига.
func ConfigInt(config map[string]any, key string) int {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

// ConfigBool извлекает булево значение из конфига.
func ConfigBool(config map[string]any, key string, defaultVal bool) bool {
	if v, ok := config[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// ConfigMapString извлекает map[string]string из конфига.
func ConfigMapString(config map[string]any, key string) map[string]string {
	if v, ok := config[key]; ok {
		switch m := v.(type) {
		case map[string]string:
			return m
		case map[string]any:
			result := make(map[string]string, len(m))
			for k, val := range m {
				if s, ok := val.(string); ok {
					result[k] = s
				}
			}
			return result
		}
	}
	return nil
}
