package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shaiso/Flowcraft/internal/graph"
)

// ListNodes возвращает все узлы в порядке добавления.
// GET /api/v1/nodes
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes := h.store.Nodes()
	List(w, nodes, len(nodes))
}

// CreateNode добавляет узел.
// POST /api/v1/nodes
func (h *Handler) CreateNode(w http.ResponseWriter, r *http.Request) {
	if h.rejectWhileRunning(w) {
		return
	}

	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.ActivityType == "" {
		BadRequest(w, "activityType is required")
		return
	}
	if !h.registry.Has(req.ActivityType) {
		InvalidState(w, fmt.Sprintf("unknown activity type: %s", req.ActivityType))
		return
	}

	id := h.store.AddNode(req.ActivityType, req.Position)
	if len(req.Config) > 0 || req.Enabled != nil {
		h.store.UpdateNode(id, graph.NodeUpdate{
			Config:  req.Config,
			Enabled: req.Enabled,
		})
	}

	node, _ := h.store.GetNode(id)
	Created(w, node)
}

// GetNode возвращает узел по ID.
// GET /api/v1/nodes/{id}
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, ok := h.store.GetNode(r.PathValue("id"))
	if !ok {
		NotFound(w, "node not found")
		return
	}
	Success(w, node)
}

// UpdateNode частично обновляет узел.
// Ручная правка поля конфигурации удаляет его связь с предком.
// PATCH /api/v1/nodes/{id}
func (h *Handler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.store.GetNode(id); !ok {
		NotFound(w, "node not found")
		return
	}

	var req UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	h.store.UpdateNode(id, graph.NodeUpdate{
		Config:   req.Config,
		Enabled:  req.Enabled,
		Position: req.Position,
	})

	node, ok := h.store.GetNode(id)
	if !ok {
		NotFound(w, "node not found")
		return
	}
	Success(w, node)
}

// DeleteNode удаляет узел вместе с инцидентными рёбрами.
// DELETE /api/v1/nodes/{id}
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if h.rejectWhileRunning(w) {
		return
	}

	id := r.PathValue("id")
	if _, ok := h.store.GetNode(id); !ok {
		NotFound(w, "node not found")
		return
	}

	h.store.RemoveNode(id)
	NoContent(w)
}

// ListConnections возвращает все рёбра в порядке создания.
// GET /api/v1/connections
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns := h.store.Connections()
	List(w, conns, len(conns))
}

// CreateConnection создаёт ребро.
// Ребро на себя, повтор, обратная пара и цикл отклоняются с 422.
// POST /api/v1/connections
func (h *Handler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	if h.rejectWhileRunning(w) {
		return
	}

	var req CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.SourceID == "" || req.TargetID == "" {
		BadRequest(w, "sourceId and targetId are required")
		return
	}

	id, ok := h.store.AddConnection(req.SourceID, req.TargetID,
		graph.WithHandles(req.SourceHandle, req.TargetHandle))
	if !ok {
		InvalidState(w, fmt.Sprintf("connection %s -> %s rejected", req.SourceID, req.TargetID))
		return
	}

	for _, c := range h.store.Connections() {
		if c.ID == id {
			Created(w, c)
			return
		}
	}
	NotFound(w, "connection not found")
}

// DeleteConnection удаляет ребро.
// DELETE /api/v1/connections/{id}
func (h *Handler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	if h.rejectWhileRunning(w) {
		return
	}

	h.store.RemoveConnection(r.PathValue("id"))
	NoContent(w)
}
