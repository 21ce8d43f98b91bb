package domain

import (
	"encoding/json"
	"maps"
)

// LegacyActiveKey — ключ конфигурации, которым старые документы отключали узел.
// При загрузке переносится в Node.Enabled.
const LegacyActiveKey = "active"

// NameKey — ключ конфигурации с человекочитаемым именем узла.
const NameKey = "name"

// Position — координаты узла на холсте.
// Для выполнения значения не имеют, принадлежат слою представления.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node — узел графа: сконфигурированная активность.
type Node struct {
	// ID — уникальный идентификатор, назначается при создании и не меняется.
	ID string `json:"id"`

	// ActivityType — тип активности, ключ в реестре активностей.
	ActivityType string `json:"activityType"`

	// Enabled — флаг активности. Неактивный узел пропускается при выполнении,
	// а его вход передаётся дочерним узлам без изменений.
	Enabled bool `json:"enabled"`

	// Config — значения полей активности (схема задаётся реестром).
	Config map[string]any `json:"config"`

	// Status — статус в последнем запуске.
	Status NodeStatus `json:"status"`

	// Output — результат последнего успешного выполнения.
	Output any `json:"output,omitempty"`

	// Error — сообщение об ошибке, только при Status == error.
	Error string `json:"error,omitempty"`

	// Position — координаты на холсте.
	Position Position `json:"position"`

	// Mappings — поля конфигурации, значения которых взяты из полей предков
	// (targetField → FieldMapping).
	Mappings map[string]FieldMapping `json:"mappings,omitempty"`
}

// Name возвращает имя узла из конфигурации.
// Пустая строка, если имя не задано.
func (n *Node) Name() string {
	if v, ok := n.Config[NameKey].(string); ok {
		return v
	}
	return ""
}

// Clone возвращает копию узла.
// Config и Mappings копируются поверхностно, Output не копируется глубоко.
func (n *Node) Clone() Node {
	c := *n
	c.Config = maps.Clone(n.Config)
	if c.Config == nil {
		c.Config = make(map[string]any)
	}
	c.Mappings = maps.Clone(n.Mappings)
	return c
}

// ResetRunState возвращает узел в состояние до запуска.
func (n *Node) ResetRunState() {
	n.Status = NodeStatusIdle
	n.Output = nil
	n.Error = ""
}

// UnmarshalJSON декодирует узел с учётом значений по умолчанию:
// enabled=true при отсутствии поля, status=idle при пустом статусе,
// config.active из старых документов переносится в Enabled.
func (n *Node) UnmarshalJSON(data []byte) error {
	type nodeAlias Node
	aux := struct {
		*nodeAlias
		Enabled *bool `json:"enabled"`
	}{nodeAlias: (*nodeAlias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	n.Enabled = true
	if aux.Enabled != nil {
		n.Enabled = *aux.Enabled
	}

	if n.Config == nil {
		n.Config = make(map[string]any)
	}
	if active, ok := n.Config[LegacyActiveKey].(bool); ok {
		if aux.Enabled == nil {
			n.Enabled = active
		}
		delete(n.Config, LegacyActiveKey)
	}

	n.Status = ParseNodeStatus(string(n.Status))
	return nil
}
