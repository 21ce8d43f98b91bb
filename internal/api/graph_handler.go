package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/engine"
)

// rejectWhileRunning отвечает 409, если идёт запуск.
// Структурные правки во время запуска ждали бы его завершения.
func (h *Handler) rejectWhileRunning(w http.ResponseWriter) bool {
	if h.engine.IsRunning() {
		Error(w, http.StatusConflict, ErrCodeRunInProgress, engine.ErrRunInProgress.Error())
		return true
	}
	return false
}

// GetGraph возвращает документ графа.
// GET /api/v1/graph
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	Success(w, h.store.Document())
}

// LoadGraph заменяет граф документом из тела запроса.
// PUT /api/v1/graph
func (h *Handler) LoadGraph(w http.ResponseWriter, r *http.Request) {
	if h.rejectWhileRunning(w) {
		return
	}

	var doc domain.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if HandleError(w, h.logger, h.store.Load(doc), "") {
		return
	}
	h.setCurrentWorkflow(nil)

	h.logger.Info("graph loaded",
		"nodes", len(doc.Nodes),
		"connections", len(doc.Connections),
	)
	Success(w, h.store.Document())
}

// ClearGraph удаляет все узлы и рёбра.
// DELETE /api/v1/graph
func (h *Handler) ClearGraph(w http.ResponseWriter, r *http.Request) {
	if h.rejectWhileRunning(w) {
		return
	}

	h.store.Clear()
	h.setCurrentWorkflow(nil)
	NoContent(w)
}

// GetStats возвращает количество узлов по статусам.
// GET /api/v1/graph/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	Success(w, h.engine.Stats())
}

// GetOrder возвращает узлы в топологическом порядке.
// GET /api/v1/graph/order
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.TopologicalOrder()
	if HandleError(w, h.logger, err, "") {
		return
	}
	List(w, order, len(order))
}
