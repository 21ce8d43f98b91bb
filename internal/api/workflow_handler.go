package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Flowcraft/internal/domain"
)

// ListWorkflows возвращает сохранённые workflows.
// GET /api/v1/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := h.workflows.List(r.Context())
	if HandleError(w, h.logger, err, "") {
		return
	}

	result := make([]WorkflowResponse, len(workflows))
	for i, wf := range workflows {
		result[i] = WorkflowFromDomain(wf)
	}

	List(w, result, len(result))
}

// SaveWorkflow сохраняет текущий граф как новый workflow.
// POST /api/v1/workflows
func (h *Handler) SaveWorkflow(w http.ResponseWriter, r *http.Request) {
	var req SaveWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	wf := domain.NewWorkflow(req.Name, h.store.Document())
	if HandleError(w, h.logger, h.workflows.Create(r.Context(), wf), "") {
		return
	}
	h.setCurrentWorkflow(&wf.ID)

	h.logger.Info("workflow saved", "workflow_id", wf.ID, "name", wf.Name)
	Created(w, WorkflowFromDomain(*wf))
}

// GetWorkflow возвращает workflow вместе с документом.
// GET /api/v1/workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, err := h.workflows.GetByID(r.Context(), id)
	if HandleError(w, h.logger, err, "workflow not found") {
		return
	}

	Success(w, wf)
}

// UpdateWorkflow перезаписывает документ workflow текущим графом.
// PUT /api/v1/workflows/{id}
func (h *Handler) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, err := h.workflows.GetByID(r.Context(), id)
	if HandleError(w, h.logger, err, "workflow not found") {
		return
	}

	wf.Document = h.store.Document()
	wf.UpdatedAt = time.Now()

	if HandleError(w, h.logger, h.workflows.Update(r.Context(), wf), "workflow not found") {
		return
	}
	h.setCurrentWorkflow(&wf.ID)

	Success(w, WorkflowFromDomain(*wf))
}

// DeleteWorkflow удаляет workflow.
// DELETE /api/v1/workflows/{id}
func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	if HandleError(w, h.logger, h.workflows.Delete(r.Context(), id), "workflow not found") {
		return
	}
	if cur := h.currentWorkflowID(); cur != nil && *cur == id {
		h.setCurrentWorkflow(nil)
	}

	NoContent(w)
}

// LoadWorkflow заменяет граф документом workflow.
// Следующие запуски будут связаны с этим workflow.
// POST /api/v1/workflows/{id}/load
func (h *Handler) LoadWorkflow(w http.ResponseWriter, r *http.Request) {
	if h.rejectWhileRunning(w) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, err := h.workflows.GetByID(r.Context(), id)
	if HandleError(w, h.logger, err, "workflow not found") {
		return
	}

	if HandleError(w, h.logger, h.store.Load(wf.Document), "") {
		return
	}
	h.setCurrentWorkflow(&wf.ID)

	h.logger.Info("workflow loaded", "workflow_id", wf.ID, "name", wf.Name)
	Success(w, h.store.Document())
}

// ListWorkflowRuns возвращает последние запуски workflow.
// GET /api/v1/workflows/{id}/runs?limit=...
func (h *Handler) ListWorkflowRuns(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			BadRequest(w, "invalid limit")
			return
		}
	}

	runs, err := h.runs.ListByWorkflow(r.Context(), id, limit)
	if HandleError(w, h.logger, err, "") {
		return
	}

	List(w, runs, len(runs))
}

// GetRun возвращает запуск вместе с журналом событий.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if HandleError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, run)
}
