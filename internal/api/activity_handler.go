package api

import (
	"net/http"

	"github.com/shaiso/Flowcraft/internal/activity"
)

// ListActivities возвращает зарегистрированные типы активностей со схемами полей.
// GET /api/v1/activities
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	types := h.registry.Types()

	result := make([]ActivityResponse, 0, len(types))
	for _, t := range types {
		fields := h.registry.Fields(t)
		if fields == nil {
			fields = []activity.Field{}
		}
		result = append(result, ActivityResponse{
			Type:   t,
			Label:  h.registry.Label(t),
			Entry:  h.registry.IsEntry(t),
			Fields: fields,
		})
	}

	List(w, result, len(result))
}
