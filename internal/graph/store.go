package graph

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/Flowcraft/internal/domain"
)

// Store — граф workflow в памяти.
//
// Узлы хранятся в порядке добавления, рёбра — в порядке создания:
// от этого порядка зависят обход движка и порядок журнала событий.
//
// Потокобезопасен. Структурные правки (узлы, рёбра, Clear, Load)
// блокируются, пока запуск удерживает FreezeStructure.
type Store struct {
	mu          sync.RWMutex
	nodes       map[string]*domain.Node
	order       []string
	connections []*domain.Connection

	// structMu — блокировка структуры на время запуска.
	structMu sync.RWMutex

	listenersMu sync.RWMutex
	onRemove    []func(nodeID string)

	newID func() string
}

// NewStore создаёт пустой граф.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*domain.Node),
		newID: uuid.NewString,
	}
}

// NodeUpdate — частичное обновление узла.
//
// Config сливается поверхностно с текущей конфигурацией;
// остальные поля заменяются, если заданы (не nil).
type NodeUpdate struct {
	Config   map[string]any
	Enabled  *bool
	Status   *domain.NodeStatus
	Output   *any
	Error    *string
	Position *domain.Position
}

// StatusUpdate возвращает обновление статуса вместе с output и ошибкой.
func StatusUpdate(status domain.NodeStatus, output any, errMsg string) NodeUpdate {
	return NodeUpdate{
		Status: &status,
		Output: &output,
		Error:  &errMsg,
	}
}

// ConnectionOption — опция создания ребра.
type ConnectionOption func(*domain.Connection)

// WithHandles задаёт метки портов ребра.
func WithHandles(sourceHandle, targetHandle string) ConnectionOption {
	return func(c *domain.Connection) {
		c.SourceHandle = sourceHandle
		c.TargetHandle = targetHandle
	}
}

// --- Nodes ---

// AddNode добавляет узел и возвращает его ID.
// Новый узел активен, в статусе idle, с пустой конфигурацией.
func (s *Store) AddNode(activityType string, position domain.Position) string {
	s.structMu.Lock()
	defer s.structMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.nodes[id] = &domain.Node{
		ID:           id,
		ActivityType: activityType,
		Enabled:      true,
		Config:       make(map[string]any),
		Status:       domain.NodeStatusIdle,
		Position:     position,
	}
	s.order = append(s.order, id)
	return id
}

// UpdateNode применяет частичное обновление к узлу.
// Ручная правка поля конфигурации удаляет его FieldMapping.
// Булев config.active переносится в Enabled, как при загрузке документа.
// Если узла нет — ничего не делает.
func (s *Store) UpdateNode(id string, upd NodeUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return
	}

	for key, val := range upd.Config {
		if active, ok := val.(bool); ok && key == domain.LegacyActiveKey {
			node.Enabled = active
			continue
		}
		node.Config[key] = val
		delete(node.Mappings, key)
	}
	if upd.Enabled != nil {
		node.Enabled = *upd.Enabled
	}
	if upd.Status != nil {
		node.Status = *upd.Status
	}
	if upd.Output != nil {
		node.Output = *upd.Output
	}
	if upd.Error != nil {
		node.Error = *upd.Error
	}
	if upd.Position != nil {
		node.Position = *upd.Position
	}
}

// SetFieldMapping записывает значение поля предка в конфигурацию узла
// и запоминает связь. Возвращает false, если узла нет.
func (s *Store) SetFieldMapping(nodeID string, m domain.FieldMapping, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return false
	}
	if node.Mappings == nil {
		node.Mappings = make(map[string]domain.FieldMapping)
	}
	node.Config[m.TargetField] = value
	node.Mappings[m.TargetField] = m
	return true
}

// RemoveNode удаляет узел и все инцидентные рёбра,
// затем уведомляет подписчиков OnNodeRemoved.
func (s *Store) RemoveNode(id string) {
	s.structMu.Lock()
	removed := s.removeNode(id)
	s.structMu.Unlock()

	if !removed {
		return
	}
	s.notifyRemoved([]string{id})
}

// notifyRemoved вызывает подписчиков OnNodeRemoved. Вызывается без блокировок.
func (s *Store) notifyRemoved(ids []string) {
	s.listenersMu.RLock()
	listeners := slices.Clone(s.onRemove)
	s.listenersMu.RUnlock()

	for _, id := range ids {
		for _, fn := range listeners {
			fn(id)
		}
	}
}

func (s *Store) removeNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return false
	}
	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	s.connections = slices.DeleteFunc(s.connections, func(c *domain.Connection) bool {
		return c.Touches(id)
	})
	return true
}

// OnNodeRemoved регистрирует обработчик удаления узла
// (например, сброс выделения в UI). Вызывается и для узлов,
// исчезнувших при Clear и Load.
func (s *Store) OnNodeRemoved(fn func(nodeID string)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.onRemove = append(s.onRemove, fn)
}

// DropMappingsFrom удаляет у всех узлов FieldMapping, источник которых sourceID.
// Значения полей остаются, пропадает только связь.
func (s *Store) DropMappingsFrom(sourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, node := range s.nodes {
		maps.DeleteFunc(node.Mappings, func(_ string, m domain.FieldMapping) bool {
			return m.SourceNodeID == sourceID
		})
	}
}

// GetNode возвращает копию узла.
func (s *Store) GetNode(id string) (domain.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return node.Clone(), true
}

// Nodes возвращает копии всех узлов в порядке добавления.
func (s *Store) Nodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]domain.Node, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, s.nodes[id].Clone())
	}
	return nodes
}

// NodeCount возвращает количество узлов.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// ResetRunState переводит все узлы в idle и очищает output/error.
func (s *Store) ResetRunState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, node := range s.nodes {
		node.ResetRunState()
	}
}

// --- Connections ---

// AddConnection создаёт ребро source → target.
//
// Молча отклоняет (возвращает "", false), если:
//   - source == target
//   - один из узлов не существует
//   - такое ребро уже есть
//   - есть обратное ребро target → source
//   - ребро замкнуло бы цикл любой длины
func (s *Store) AddConnection(sourceID, targetID string, opts ...ConnectionOption) (string, bool) {
	s.structMu.Lock()
	defer s.structMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if sourceID == targetID {
		return "", false
	}
	if _, ok := s.nodes[sourceID]; !ok {
		return "", false
	}
	if _, ok := s.nodes[targetID]; !ok {
		return "", false
	}
	for _, c := range s.connections {
		if c.SourceID == sourceID && c.TargetID == targetID {
			return "", false
		}
		if c.SourceID == targetID && c.TargetID == sourceID {
			return "", false
		}
	}

	conn := &domain.Connection{
		ID:       s.newID(),
		SourceID: sourceID,
		TargetID: targetID,
	}
	for _, opt := range opts {
		opt(conn)
	}

	candidate := append(s.connectionValues(), *conn)
	if hasCycle(s.order, candidate) {
		return "", false
	}

	s.connections = append(s.connections, conn)
	return conn.ID, true
}

// RemoveConnection удаляет ребро по ID.
func (s *Store) RemoveConnection(id string) {
	s.structMu.Lock()
	defer s.structMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connections = slices.DeleteFunc(s.connections, func(c *domain.Connection) bool {
		return c.ID == id
	})
}

// Connections возвращает все рёбра в порядке создания.
func (s *Store) Connections() []domain.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectionValues()
}

// ConnectionCount возвращает количество рёбер.
func (s *Store) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// OutgoingConnections возвращает рёбра, выходящие из узла, в порядке создания.
func (s *Store) OutgoingConnections(nodeID string) []domain.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Connection, 0)
	for _, c := range s.connections {
		if c.SourceID == nodeID {
			result = append(result, *c)
		}
	}
	return result
}

// IncomingConnections возвращает рёбра, входящие в узел, в порядке создания.
func (s *Store) IncomingConnections(nodeID string) []domain.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Connection, 0)
	for _, c := range s.connections {
		if c.TargetID == nodeID {
			result = append(result, *c)
		}
	}
	return result
}

// connectionValues копирует рёбра. Вызывается под s.mu.
func (s *Store) connectionValues() []domain.Connection {
	result := make([]domain.Connection, len(s.connections))
	for i, c := range s.connections {
		result[i] = *c
	}
	return result
}

// --- Graph ---

// Clear удаляет все узлы и рёбра.
func (s *Store) Clear() {
	s.structMu.Lock()
	s.mu.Lock()
	removed := s.order
	s.nodes = make(map[string]*domain.Node)
	s.order = nil
	s.connections = nil
	s.mu.Unlock()
	s.structMu.Unlock()

	s.notifyRemoved(removed)
}

// FreezeStructure запрещает структурные правки до вызова release.
// Правки, начатые во время заморозки, ждут её снятия.
func (s *Store) FreezeStructure() (release func()) {
	s.structMu.RLock()
	var once sync.Once
	return func() {
		once.Do(s.structMu.RUnlock)
	}
}
