package domain

import (
	"fmt"
	"strings"
)

// FieldMapping — связь поля конфигурации узла с полем предка.
//
// Создаётся, когда значение поля предка переносится в поле узла,
// и удаляется, как только поле редактируется вручную.
type FieldMapping struct {
	// TargetField — поле конфигурации узла-получателя.
	TargetField string `json:"targetField"`

	// SourceNodeID — узел-предок.
	SourceNodeID string `json:"sourceNodeId"`

	// SourceNodeName — имя предка на момент создания связи.
	SourceNodeName string `json:"sourceNodeName"`

	// SourceField — поле предка.
	SourceField string `json:"sourceField"`
}

// Reference возвращает ссылку в формате "ancestorName.fieldName".
func (m FieldMapping) Reference() string {
	return m.SourceNodeName + "." + m.SourceField
}

// ParseReference разбирает ссылку "ancestorName.fieldName".
// Имя предка может содержать точки, поле — нет.
func ParseReference(ref string) (nodeName, field string, err error) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("invalid field reference %q", ref)
	}
	return ref[:i], ref[i+1:], nil
}
