package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/engine"
)

// StartRun запускает граф.
//
// По умолчанию запуск идёт в фоне, ответ 202. С ?wait=true ответ
// приходит после завершения и содержит RunRecord; ошибка активности
// не является ошибкой запроса, она видна в статусе запуска.
// POST /api/v1/run
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	if h.rejectWhileRunning(w) {
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		record, err := h.run(r.Context())
		if HandleError(w, h.logger, err, "") {
			return
		}
		Success(w, record)
		return
	}

	go func() {
		if _, err := h.run(h.baseCtx); err != nil {
			h.logger.Warn("background run not started", "error", err)
		}
	}()

	Accepted(w, RunStateResponse{Running: true})
}

// run выполняет граф и передаёт итог в onRunFinished.
// Ошибка возвращается, только если запуск не состоялся.
func (h *Handler) run(ctx context.Context) (domain.RunRecord, error) {
	var opts []engine.RunOption
	if id := h.currentWorkflowID(); id != nil {
		opts = append(opts, engine.WithWorkflowID(*id))
	}

	err := h.engine.Run(ctx, opts...)
	if errors.Is(err, engine.ErrRunInProgress) {
		return domain.RunRecord{}, err
	}

	record, ok := h.engine.LastRun()
	if !ok {
		return domain.RunRecord{}, fmt.Errorf("run finished without record: %w", err)
	}
	if h.onRunFinished != nil {
		h.onRunFinished(context.WithoutCancel(ctx), record)
	}
	return record, nil
}

// GetRunState возвращает состояние выполнения.
// GET /api/v1/run
func (h *Handler) GetRunState(w http.ResponseWriter, r *http.Request) {
	state := RunStateResponse{Running: h.engine.IsRunning()}
	if last, ok := h.engine.LastRun(); ok {
		state.LastRun = &last
	}
	Success(w, state)
}

// ListEvents возвращает журнал событий текущего запуска.
// GET /api/v1/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events := h.log.Entries()
	List(w, events, len(events))
}

// StreamEvents отдаёт новые записи журнала как Server-Sent Events.
// GET /api/v1/events/stream
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	events, cancel := h.log.Subscribe(r.Context(), 0)
	defer cancel()

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("events stream: flush not supported", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("events stream: marshal event", "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Status, data)
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
