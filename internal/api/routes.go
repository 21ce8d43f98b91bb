package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
		Metrics(h.metrics),
	)

	// Graph
	mux.Handle("GET /api/v1/graph", chain(http.HandlerFunc(h.GetGraph)))
	mux.Handle("PUT /api/v1/graph", chain(http.HandlerFunc(h.LoadGraph)))
	mux.Handle("DELETE /api/v1/graph", chain(http.HandlerFunc(h.ClearGraph)))
	mux.Handle("GET /api/v1/graph/stats", chain(http.HandlerFunc(h.GetStats)))
	mux.Handle("GET /api/v1/graph/order", chain(http.HandlerFunc(h.GetOrder)))

	// Nodes
	mux.Handle("GET /api/v1/nodes", chain(http.HandlerFunc(h.ListNodes)))
	mux.Handle("POST /api/v1/nodes", chain(http.HandlerFunc(h.CreateNode)))
	mux.Handle("GET /api/v1/nodes/{id}", chain(http.HandlerFunc(h.GetNode)))
	mux.Handle("PATCH /api/v1/nodes/{id}", chain(http.HandlerFunc(h.UpdateNode)))
	mux.Handle("DELETE /api/v1/nodes/{id}", chain(http.HandlerFunc(h.DeleteNode)))

	// Lineage
	mux.Handle("GET /api/v1/nodes/{id}/upstream", chain(http.HandlerFunc(h.GetUpstream)))
	mux.Handle("POST /api/v1/nodes/{id}/mappings", chain(http.HandlerFunc(h.CreateMapping)))

	// Connections
	mux.Handle("GET /api/v1/connections", chain(http.HandlerFunc(h.ListConnections)))
	mux.Handle("POST /api/v1/connections", chain(http.HandlerFunc(h.CreateConnection)))
	mux.Handle("DELETE /api/v1/connections/{id}", chain(http.HandlerFunc(h.DeleteConnection)))

	// Execution
	mux.Handle("POST /api/v1/run", chain(http.HandlerFunc(h.StartRun)))
	mux.Handle("GET /api/v1/run", chain(http.HandlerFunc(h.GetRunState)))
	mux.Handle("GET /api/v1/events", chain(http.HandlerFunc(h.ListEvents)))
	mux.Handle("GET /api/v1/events/stream", chain(http.HandlerFunc(h.StreamEvents)))

	// Activities
	mux.Handle("GET /api/v1/activities", chain(http.HandlerFunc(h.ListActivities)))

	// Workflows и история запусков — только с базой данных
	if h.workflows != nil {
		mux.Handle("GET /api/v1/workflows", chain(http.HandlerFunc(h.ListWorkflows)))
		mux.Handle("POST /api/v1/workflows", chain(http.HandlerFunc(h.SaveWorkflow)))
		mux.Handle("GET /api/v1/workflows/{id}", chain(http.HandlerFunc(h.GetWorkflow)))
		mux.Handle("PUT /api/v1/workflows/{id}", chain(http.HandlerFunc(h.UpdateWorkflow)))
		mux.Handle("DELETE /api/v1/workflows/{id}", chain(http.HandlerFunc(h.DeleteWorkflow)))
		mux.Handle("POST /api/v1/workflows/{id}/load", chain(http.HandlerFunc(h.LoadWorkflow)))
	}
	if h.runs != nil {
		mux.Handle("GET /api/v1/workflows/{id}/runs", chain(http.HandlerFunc(h.ListWorkflowRuns)))
		mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	}
}
