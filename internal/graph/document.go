package graph

import (
	"encoding/json"
	"fmt"

	"github.com/shaiso/Flowcraft/internal/domain"
)

// Document возвращает снимок графа для сохранения.
func (s *Store) Document() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := domain.Document{
		Nodes:       make([]domain.Node, 0, len(s.order)),
		Connections: s.connectionValues(),
	}
	for _, id := range s.order {
		doc.Nodes = append(doc.Nodes, s.nodes[id].Clone())
	}
	return doc
}

// Load заменяет граф содержимым документа.
//
// Статусы, outputs и ошибки узлов загружаются как есть.
// Документ с нарушенными инвариантами не загружается, граф остаётся прежним.
// Подписчики OnNodeRemoved узнают об узлах, которых нет в новом документе.
func (s *Store) Load(doc domain.Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}

	nodes := make(map[string]*domain.Node, len(doc.Nodes))
	order := make([]string, 0, len(doc.Nodes))
	for i := range doc.Nodes {
		node := doc.Nodes[i].Clone()
		if node.Status == "" {
			node.Status = domain.NodeStatusIdle
		}
		nodes[node.ID] = &node
		order = append(order, node.ID)
	}

	connections := make([]*domain.Connection, len(doc.Connections))
	for i := range doc.Connections {
		c := doc.Connections[i]
		connections[i] = &c
	}

	s.structMu.Lock()
	s.mu.Lock()
	var removed []string
	for _, id := range s.order {
		if _, ok := nodes[id]; !ok {
			removed = append(removed, id)
		}
	}
	s.nodes = nodes
	s.order = order
	s.connections = connections
	s.mu.Unlock()
	s.structMu.Unlock()

	s.notifyRemoved(removed)
	return nil
}

// MarshalJSON сериализует граф в документ JSON.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Document())
}

// LoadJSON загружает граф из документа JSON.
func (s *Store) LoadJSON(data []byte) error {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return s.Load(doc)
}

// ValidateDocument проверяет инварианты графа:
//   - ID узлов и рёбер непустые и уникальные
//   - рёбра ссылаются на существующие узлы
//   - нет рёбер на себя и повторяющихся пар
//   - нет циклов
func ValidateDocument(doc domain.Document) error {
	nodeIDs := make(map[string]bool, len(doc.Nodes))
	order := make([]string, 0, len(doc.Nodes))

	for _, node := range doc.Nodes {
		if node.ID == "" {
			return NewValidationError("", "node has empty ID", ErrInvalidDocument)
		}
		if nodeIDs[node.ID] {
			return NewValidationError(node.ID, "duplicate node ID", ErrInvalidDocument)
		}
		if node.ActivityType == "" {
			return NewValidationError(node.ID, "node has empty activity type", ErrInvalidDocument)
		}
		nodeIDs[node.ID] = true
		order = append(order, node.ID)
	}

	connIDs := make(map[string]bool, len(doc.Connections))
	pairs := make(map[[2]string]bool, len(doc.Connections))

	for _, c := range doc.Connections {
		if c.ID == "" {
			return NewValidationError("", "connection has empty ID", ErrInvalidDocument)
		}
		if connIDs[c.ID] {
			return NewValidationError(c.ID, "duplicate connection ID", ErrInvalidDocument)
		}
		connIDs[c.ID] = true

		if !nodeIDs[c.SourceID] {
			return NewValidationError(c.ID,
				fmt.Sprintf("unknown source node: %s", c.SourceID), ErrInvalidDocument)
		}
		if !nodeIDs[c.TargetID] {
			return NewValidationError(c.ID,
				fmt.Sprintf("unknown target node: %s", c.TargetID), ErrInvalidDocument)
		}
		if c.SourceID == c.TargetID {
			return NewValidationError(c.ID, "connection links node to itself", ErrInvalidDocument)
		}

		pair := [2]string{c.SourceID, c.TargetID}
		if pairs[pair] {
			return NewValidationError(c.ID, "duplicate connection", ErrInvalidDocument)
		}
		pairs[pair] = true
	}

	if hasCycle(order, doc.Connections) {
		return ErrCycleDetected
	}
	return nil
}
