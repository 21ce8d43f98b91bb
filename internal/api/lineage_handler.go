package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Flowcraft/internal/domain"
)

// GetUpstream возвращает каталог полей всех предков узла.
// GET /api/v1/nodes/{id}/upstream
func (h *Handler) GetUpstream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.store.GetNode(id); !ok {
		NotFound(w, "node not found")
		return
	}

	catalog := h.resolver.UpstreamCatalog(id)
	List(w, catalog, len(catalog))
}

// CreateMapping переносит значение поля предка в поле конфигурации узла.
// POST /api/v1/nodes/{id}/mappings
func (h *Handler) CreateMapping(w http.ResponseWriter, r *http.Request) {
	var req CreateMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	id := r.PathValue("id")
	var (
		mapping domain.FieldMapping
		err     error
	)
	switch {
	case req.Reference != "":
		mapping, err = h.resolver.MapReference(id, req.TargetField, req.Reference)
	case req.AncestorID != "" && req.Field != "":
		mapping, err = h.resolver.Map(id, req.TargetField, req.AncestorID, req.Field)
	default:
		BadRequest(w, "reference or ancestorId and field are required")
		return
	}
	if HandleError(w, h.logger, err, "") {
		return
	}

	Created(w, mapping)
}
