package lineage

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/shaiso/Flowcraft/internal/activity"
	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/graph"
)

// Ошибки резолвера.
var (
	// ErrNotAncestor — узел не является предком целевого узла.
	ErrNotAncestor = errors.New("node is not an upstream ancestor")

	// ErrUnknownField — у активности предка нет такого поля.
	ErrUnknownField = errors.New("unknown ancestor field")
)

// AncestorField — поле предка с текущим значением конфигурации.
type AncestorField struct {
	Name         string             `json:"name"`
	Kind         activity.FieldKind `json:"kind"`
	Description  string             `json:"description"`
	CurrentValue string             `json:"currentValue"`
}

// Ancestor — запись каталога: предок и его поля.
type Ancestor struct {
	AncestorID   string          `json:"ancestorId"`
	AncestorName string          `json:"ancestorName"`
	AncestorType string          `json:"ancestorType"`
	Fields       []AncestorField `json:"fields"`
}

// Resolver строит каталог полей предков узла.
//
// Читает только конфигурацию узлов и рёбра, от запусков не зависит.
type Resolver struct {
	store    *graph.Store
	registry *activity.Registry
}

// NewResolver создаёт Resolver.
// При удалении узла из графа связи полей, ссылающиеся на него, снимаются.
func NewResolver(store *graph.Store, registry *activity.Registry) *Resolver {
	store.OnNodeRemoved(store.DropMappingsFrom)
	return &Resolver{store: store, registry: registry}
}

// UpstreamCatalog возвращает всех предков узла в порядке обхода в глубину
// по входящим рёбрам. Предок, достижимый несколькими путями, входит один раз.
// Для неизвестного узла или узла без предков — пустой список.
func (r *Resolver) UpstreamCatalog(nodeID string) []Ancestor {
	catalog := make([]Ancestor, 0)
	visited := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		for _, c := range r.store.IncomingConnections(id) {
			if visited[c.SourceID] {
				continue
			}
			visited[c.SourceID] = true

			node, ok := r.store.GetNode(c.SourceID)
			if !ok {
				continue
			}
			catalog = append(catalog, r.describe(node))
			visit(node.ID)
		}
	}
	visit(nodeID)

	return catalog
}

// describe строит запись каталога для узла.
func (r *Resolver) describe(node domain.Node) Ancestor {
	schema := r.registry.Fields(node.ActivityType)
	fields := make([]AncestorField, 0, len(schema))
	for _, f := range schema {
		fields = append(fields, AncestorField{
			Name:         f.Name,
			Kind:         f.Kind,
			Description:  f.Description,
			CurrentValue: DisplayValue(node.Config[f.Name]),
		})
	}

	return Ancestor{
		AncestorID:   node.ID,
		AncestorName: r.nodeName(node),
		AncestorType: node.ActivityType,
		Fields:       fields,
	}
}

func (r *Resolver) nodeName(node domain.Node) string {
	if name := node.Name(); name != "" {
		return name
	}
	return r.registry.Label(node.ActivityType)
}

// Map переносит значение поля предка в поле конфигурации узла
// и запоминает связь. Ручная правка поля связь удаляет.
func (r *Resolver) Map(targetNodeID, targetField, ancestorID, field string) (domain.FieldMapping, error) {
	if _, ok := r.store.GetNode(targetNodeID); !ok {
		return domain.FieldMapping{}, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, targetNodeID)
	}
	if targetField == "" {
		return domain.FieldMapping{}, fmt.Errorf("%w: empty target field", activity.ErrInvalidConfig)
	}

	var ancestor *Ancestor
	for _, a := range r.UpstreamCatalog(targetNodeID) {
		if a.AncestorID == ancestorID {
			ancestor = &a
			break
		}
	}
	if ancestor == nil {
		return domain.FieldMapping{}, fmt.Errorf("%w: %s", ErrNotAncestor, ancestorID)
	}

	known := false
	for _, f := range ancestor.Fields {
		if f.Name == field {
			known = true
			break
		}
	}
	if !known {
		return domain.FieldMapping{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, ancestor.AncestorName, field)
	}

	node, _ := r.store.GetNode(ancestorID)
	mapping := domain.FieldMapping{
		TargetField:    targetField,
		SourceNodeID:   ancestorID,
		SourceNodeName: ancestor.AncestorName,
		SourceField:    field,
	}
	if !r.store.SetFieldMapping(targetNodeID, mapping, node.Config[field]) {
		return domain.FieldMapping{}, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, targetNodeID)
	}
	return mapping, nil
}

// MapReference — Map по ссылке "ancestorName.fieldName".
// Если несколько предков носят одно имя, берётся ближайший в порядке обнаружения.
func (r *Resolver) MapReference(targetNodeID, targetField, ref string) (domain.FieldMapping, error) {
	name, field, err := domain.ParseReference(ref)
	if err != nil {
		return domain.FieldMapping{}, fmt.Errorf("%w: %v", activity.ErrInvalidConfig, err)
	}
	for _, a := range r.UpstreamCatalog(targetNodeID) {
		if a.AncestorName == name {
			return r.Map(targetNodeID, targetField, a.AncestorID, field)
		}
	}
	if _, ok := r.store.GetNode(targetNodeID); !ok {
		return domain.FieldMapping{}, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, targetNodeID)
	}
	return domain.FieldMapping{}, fmt.Errorf("%w: %s", ErrNotAncestor, name)
}

// DisplayValue приводит значение конфигурации к строке для каталога:
// bool — "true"/"false", map, slice, массивы и структуры — JSON с отступами, nil — "",
// остальное — fmt.Sprint.
func DisplayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return val
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
